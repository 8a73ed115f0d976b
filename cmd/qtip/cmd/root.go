package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qtip",
	Short: "Aligner sensitivity harness",
	Long: "qtip samples reads from a reference, applies edits with a known " +
		"score cost, feeds the mutated reads to an aligner, and reports how " +
		"often the aligner recovers the expected best score.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(combosCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}
