package cmd

import (
	"io"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/recovery"
	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// writeTable renders a run's tally in the requested mode. Shared by the
// run, watch, and results table commands.
func writeTable(w io.Writer, rec *ports.RunRecord, cumulative bool) error {
	tally := recovery.FromRows(rec.ByScore, rec.ByScoreLen)
	if cumulative {
		return recovery.WriteCumulative(w, tally)
	}
	return recovery.WriteFlat(w, tally)
}
