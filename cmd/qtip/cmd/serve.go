package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mypersonaltherapeutics/qtip/internal/adapters/bbolt"
	"github.com/mypersonaltherapeutics/qtip/internal/adapters/web"
)

var (
	serveDB   string
	serveAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve archived runs over HTTP",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveDB, "db", "", "Run archive (as written by qtip run --db)")
	f.StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveDB == "" {
		return errors.New("no archive given (--db)")
	}
	if _, err := os.Stat(serveDB); err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	store, err := bbolt.NewStore(serveDB)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := web.NewServer(store)
	if err := srv.Start(serveAddr); err != nil {
		return err
	}
	fmt.Printf("serving archived runs at %s\n", srv.URL())

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nshutting down...")
	srv.Stop()
	return nil
}
