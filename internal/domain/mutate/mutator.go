package mutate

import (
	"fmt"
	"math/rand"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/combo"
)

// Policy selects how an edit combination is drawn for each read.
type Policy string

const (
	// PolicyScore draws a target penalty uniformly from the achievable
	// range, picks a combo achieving it, and mutates the read.
	PolicyScore Policy = "score"
	// PolicyEdits draws uniformly over combos ordered by edit count and
	// leaves the read itself unchanged: score bookkeeping only.
	PolicyEdits Policy = "nedit"
)

// ParsePolicy maps a CLI token to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyScore, PolicyEdits:
		return Policy(s), nil
	}
	return "", fmt.Errorf("sampling policy %q: want %q or %q", s, PolicyScore, PolicyEdits)
}

// DefaultMaxDraws bounds the outer redraw loop of PolicyScore. Every
// failed placement (combo infeasible for the sequence, or verification
// exhausted) costs one draw.
const DefaultMaxDraws = 100

// Mutator draws one edit combination per read and applies it.
type Mutator struct {
	Index    *combo.Index
	Applier  *Applier
	Policy   Policy
	Rng      *rand.Rand
	MaxDraws int // <= 0 means DefaultMaxDraws
}

// Mutate perturbs seq and returns the mutated sequence together with
// the penalty the aligner is expected to pay for it (the expected
// alignment score is the penalty's negation). Under PolicyEdits the
// sequence comes back unchanged.
func (m *Mutator) Mutate(seq string) (string, int, error) {
	maxElt := m.Index.EditBound(len(seq))
	if maxElt == 0 {
		return "", 0, fmt.Errorf("identity floor %v admits no edit combination for a %d-base read",
			m.Index.MinIdentity(), len(seq))
	}

	switch m.Policy {
	case PolicyEdits:
		e := m.Index.ByEditsAt(m.Rng.Intn(maxElt))
		return seq, e.Penalty, nil
	case PolicyScore:
		return m.mutateByScore(seq, maxElt)
	}
	return "", 0, fmt.Errorf("sampling policy %q: want %q or %q", m.Policy, PolicyScore, PolicyEdits)
}

// mutateByScore draws target penalties until one combo is placed. The
// penalty range comes from the prefix bounds at maxElt-1; a drawn value
// no combo achieves advances to the next achievable one.
func (m *Mutator) mutateByScore(seq string, maxElt int) (string, int, error) {
	minP, maxP := m.Index.PenaltyRange(maxElt)
	draws := m.MaxDraws
	if draws <= 0 {
		draws = DefaultMaxDraws
	}

	for d := 0; d < draws; d++ {
		p := minP + m.Rng.Intn(maxP-minP+1)
		lo, hi, _, ok := m.Index.PenaltyRun(p)
		if !ok {
			continue
		}
		e := m.Index.ByPenaltyAt(lo + m.Rng.Intn(hi-lo))
		if mutated, ok := m.Applier.Apply(seq, e.Combo); ok {
			return mutated, e.Penalty, nil
		}
	}
	return "", 0, fmt.Errorf("no edit combination placed on a %d-base read after %d draws", len(seq), draws)
}
