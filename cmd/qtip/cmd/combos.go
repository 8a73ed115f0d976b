package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/combo"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
)

var (
	combosScoring string
	combosMinID   float64
	combosReadLen int
)

var combosCmd = &cobra.Command{
	Use:   "combos",
	Short: "Print the edit combinations a run would draw from",
	Long: "Enumerates every (mismatch, read gap, ref gap) combination " +
		"admissible under the identity floor for the given read length, in " +
		"both index orders.",
	RunE: runCombos,
}

func init() {
	f := combosCmd.Flags()
	f.StringVar(&combosScoring, "scoring", scoring.DefaultString, "Scoring: match,mmMin,mmMax,nPen,rdOpen,rdExt,rfOpen,rfExt")
	f.Float64Var(&combosMinID, "min-id", 0.95, "Identity floor for mutated reads")
	f.IntVar(&combosReadLen, "read-len", 400, "Read length the floor is computed against")
}

func runCombos(cmd *cobra.Command, args []string) error {
	model, err := scoring.Parse(combosScoring)
	if err != nil {
		return err
	}
	ix, err := combo.Build(model, combosMinID, combosReadLen)
	if err != nil {
		return err
	}

	fmt.Printf("%d combos for a %d-base read at identity >= %g\n",
		ix.Len(), combosReadLen, combosMinID)

	fmt.Println("\nby edits (mm/rdg/rfg\tedits\tpenalty):")
	printEntries(ix.EntriesByEdits())

	fmt.Println("\nby penalty (mm/rdg/rfg\tedits\tpenalty):")
	printEntries(ix.EntriesByPenalty())
	return nil
}

func printEntries(entries []combo.Entry) {
	for _, e := range entries {
		fmt.Printf("%s\t%d\t%d\n", e.Combo, e.Edits, e.Penalty)
	}
}
