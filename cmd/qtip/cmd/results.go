package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mypersonaltherapeutics/qtip/internal/adapters/bbolt"
)

var (
	resultsDB         string
	resultsCumulative bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect runs archived with qtip run --db",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE:  runResultsList,
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one archived run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsShow,
}

var resultsTableCmd = &cobra.Command{
	Use:   "table <run-id>",
	Short: "Render an archived run's recovery table",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsTable,
}

var resultsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsDelete,
}

func init() {
	resultsCmd.PersistentFlags().StringVar(&resultsDB, "db", "", "Run archive (as written by qtip run --db)")
	resultsTableCmd.Flags().BoolVar(&resultsCumulative, "cumulative", false, "Render the cumulative table instead of the flat one")
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
	resultsCmd.AddCommand(resultsTableCmd)
	resultsCmd.AddCommand(resultsDeleteCmd)
}

// openArchive opens the archive named by --db. It refuses to create one:
// opening a mistyped path would otherwise leave an empty database behind.
func openArchive() (*bbolt.Store, error) {
	if resultsDB == "" {
		return nil, errors.New("no archive given (--db)")
	}
	if _, err := os.Stat(resultsDB); err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return bbolt.NewStore(resultsDB)
}

func runResultsList(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	sums, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		fmt.Println("no archived runs")
		return nil
	}
	for _, s := range sums {
		pct := 0.0
		if s.Reads > 0 {
			pct = 100 * float64(s.Recovered) / float64(s.Reads)
		}
		fmt.Printf("%s  %s  %s reads  %5.1f%% recovered  %s\n",
			s.ID,
			s.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			humanize.Comma(int64(s.Reads)),
			pct,
			s.AlignerCmd)
	}
	return nil
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.LoadRun(args[0])
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("rendering run: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runResultsTable(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.LoadRun(args[0])
	if err != nil {
		return err
	}
	return writeTable(os.Stdout, rec, resultsCumulative)
}

func runResultsDelete(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteRun(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
