// Package align is the exact global-alignment oracle used to verify
// that an applied edit combination achieved its intended penalty.
package align

import (
	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
)

// inf is an unreachable penalty for invalid DP states. Small enough that
// adding per-step costs cannot overflow.
const inf = 1 << 30

// Cost returns the minimal total penalty of a global alignment of read
// against ref: 0 per matching position, mismatch per substitution,
// affine readGap cost for a gap in the read (a ref base with no read
// counterpart) and affine refGap cost for a gap in the ref (a read base
// with no ref counterpart).
//
// Three-state Gotoh recurrence: state m aligns two bases, state x sits
// in a read gap (consumes a ref base), state y sits in a ref gap
// (consumes a read base). Two rolling rows keep memory at O(len(ref)).
func Cost(read, ref string, mismatch int, readGap, refGap scoring.GapCost) int {
	rn, cn := len(read), len(ref)

	prevM := make([]int, cn+1)
	prevX := make([]int, cn+1)
	prevY := make([]int, cn+1)
	curM := make([]int, cn+1)
	curX := make([]int, cn+1)
	curY := make([]int, cn+1)

	prevM[0], prevX[0], prevY[0] = 0, inf, inf
	for j := 1; j <= cn; j++ {
		prevM[j] = inf
		prevX[j] = readGap.Penalty(j)
		prevY[j] = inf
	}

	for i := 1; i <= rn; i++ {
		curM[0] = inf
		curX[0] = inf
		curY[0] = refGap.Penalty(i)
		for j := 1; j <= cn; j++ {
			sub := 0
			if read[i-1] != ref[j-1] {
				sub = mismatch
			}
			curM[j] = min(prevM[j-1], prevX[j-1], prevY[j-1]) + sub
			curX[j] = min(curX[j-1]+readGap.Extend, min(curM[j-1], curY[j-1])+readGap.Penalty(1))
			curY[j] = min(prevY[j]+refGap.Extend, min(prevM[j], prevX[j])+refGap.Penalty(1))
		}
		prevM, curM = curM, prevM
		prevX, curX = curX, prevX
		prevY, curY = curY, prevY
	}

	return min(prevM[cn], prevX[cn], prevY[cn])
}

// Oracle adapts Cost to ports.Oracle for one scoring model, charging
// substitutions at the worst-case mismatch penalty (the same convention
// combo penalties use).
type Oracle struct {
	model scoring.Model
}

// NewOracle returns the verification oracle for model.
func NewOracle(model scoring.Model) *Oracle {
	return &Oracle{model: model}
}

// Penalty implements ports.Oracle.
func (o *Oracle) Penalty(mutated, original string) int {
	return Cost(mutated, original, o.model.MismatchMax, o.model.ReadGap, o.model.RefGap)
}
