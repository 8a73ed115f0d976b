// Package combo enumerates the edit combinations admissible for a read
// under an identity floor and indexes them for randomized sampling.
package combo

import (
	"fmt"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
)

// Combo is one way to perturb a read: counts of mismatches, read gaps
// (bases deleted from the read), and ref gaps (bases inserted into the
// read). Each gap is modeled as length 1.
type Combo struct {
	Mismatches int
	ReadGaps   int
	RefGaps    int
}

// Edits returns the total number of edited positions.
func (c Combo) Edits() int {
	return c.Mismatches + c.ReadGaps + c.RefGaps
}

// Penalty returns the combo's total edit cost under m, charging every
// mismatch at the worst-case (maximum) penalty and every gap as a
// length-1 affine gap (open + one extend).
func (c Combo) Penalty(m scoring.Model) int {
	return c.Mismatches*m.MismatchMax +
		c.ReadGaps*m.ReadGap.Penalty(1) +
		c.RefGaps*m.RefGap.Penalty(1)
}

// String renders the combo as "mm/rdg/rfg".
func (c Combo) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Mismatches, c.ReadGaps, c.RefGaps)
}

// less orders combos by (mismatches, read gaps, ref gaps); used as the
// final sort tiebreak so index orders are deterministic.
func (c Combo) less(o Combo) bool {
	if c.Mismatches != o.Mismatches {
		return c.Mismatches < o.Mismatches
	}
	if c.ReadGaps != o.ReadGaps {
		return c.ReadGaps < o.ReadGaps
	}
	return c.RefGaps < o.RefGaps
}
