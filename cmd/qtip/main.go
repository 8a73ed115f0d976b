// qtip measures how reliably an aligner recovers the best achievable
// score for reads mutated by a known, scored set of edits.
package main

import (
	"os"

	"github.com/mypersonaltherapeutics/qtip/cmd/qtip/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
