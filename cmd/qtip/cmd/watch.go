package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mypersonaltherapeutics/qtip/internal/adapters/fsnotify"
	"github.com/mypersonaltherapeutics/qtip/internal/app"
)

var (
	watchConfigPath string
	watchExtra      []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rerun the evaluation whenever the aligner changes",
	Long: "Runs the evaluation once, then watches the aligner executable, " +
		"the reference files, and any --watch extras (index files, say) and " +
		"reruns on every settled change. The seed is resolved once, so " +
		"successive runs see identical reads and differ only by aligner.",
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchConfigPath, "config", "", "YAML config file for the runs")
	f.StringArrayVar(&watchExtra, "watch", nil, "Additional file to watch (repeatable)")
}

func runWatch(cmd *cobra.Command, args []string) (err error) {
	if watchConfigPath == "" {
		return errors.New("no config given (--config)")
	}
	cfg, err := app.LoadConfigFile(watchConfigPath, app.DefaultConfig())
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	paths := append([]string{}, cfg.Fasta...)
	paths = append(paths, watchExtra...)
	if exe, lerr := exec.LookPath(cfg.AlignerExe); lerr == nil {
		paths = append(paths, exe)
	} else {
		fmt.Fprintf(os.Stderr, "[warning] not watching aligner executable: %v\n", lerr)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Stop()

	// A 1-buffered channel coalesces changes that land mid-run.
	changes := make(chan string, 1)
	onChange := func(path string) {
		select {
		case changes <- path:
		default:
		}
	}
	if err := w.Watch(paths, onChange); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "seed: %d\n", a.Seed())
	watchRun(cmd, a, cfg.Cumulative)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintf(os.Stderr, "watching %d files; ctrl-c to stop\n", len(paths))
	for {
		select {
		case path := <-changes:
			fmt.Fprintf(os.Stderr, "\n%s changed; rerunning\n", filepath.Base(path))
			watchRun(cmd, a, cfg.Cumulative)
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nstopping")
			return nil
		}
	}
}

// watchRun runs one evaluation, reporting failures as warnings so the
// watch loop survives a broken aligner build.
func watchRun(cmd *cobra.Command, a *app.App, cumulative bool) {
	rec, err := a.Run(cmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[warning] run failed: %v\n", err)
		return
	}
	if err := writeTable(os.Stdout, rec, cumulative); err != nil {
		fmt.Fprintf(os.Stderr, "[warning] writing table: %v\n", err)
	}
}
