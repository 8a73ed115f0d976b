package mutate

import (
	"math/rand"
	"sort"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/combo"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// bases is the unambiguous alphabet mutations draw from.
const bases = "ACGT"

// DefaultMaxAttempts bounds verified placement retries per combo.
const DefaultMaxAttempts = 10

// Applier places a combo's edits at random positions in a sequence.
// With Verify set, each candidate is checked against the oracle and
// redrawn when the achieved penalty differs from the combo's intended
// one; independently placed edits can cancel (an adjacent insertion and
// deletion collapse to a mismatch under optimal alignment), so the
// intended penalty is not guaranteed by construction.
type Applier struct {
	Model       scoring.Model
	Rng         *rand.Rand
	Oracle      ports.Oracle // consulted only when Verify is set
	Verify      bool
	MaxAttempts int                              // <= 0 means DefaultMaxAttempts
	Warnf       func(format string, args ...any) // optional retry diagnostics
}

// Apply mutates seq according to c and reports whether placement
// succeeded. It returns the original sequence with ok=false when the
// combo demands more distinct positions than the sequence offers, or
// when verification fails on every attempt; the caller is expected to
// resample a different combo rather than accept a failed mutation.
func (a *Applier) Apply(seq string, c combo.Combo) (string, bool) {
	n := len(seq)
	if c.Mismatches > n || c.ReadGaps > n || (c.RefGaps > 0 && c.RefGaps >= n) {
		return seq, false
	}

	attempts := a.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	target := c.Penalty(a.Model)

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && a.Warnf != nil {
			a.Warnf("retrying edit placement (attempt %d of %d, combo %v, target penalty %d)",
				attempt, attempts, c, target)
		}
		mutated := a.place(seq, c)
		if !a.Verify || a.Oracle.Penalty(mutated, seq) == target {
			return mutated, true
		}
	}
	return seq, false
}

// place performs one unverified placement of c's edits on seq.
func (a *Applier) place(seq string, c combo.Combo) string {
	n := len(seq)
	rd := NewEditable(seq)

	mmSet := a.drawDistinct(c.Mismatches, 0, n)
	rdgSet := a.drawDistinct(c.ReadGaps, 0, n)
	rfgSet := a.drawDistinct(c.RefGaps, 1, n)

	// Mismatches first, in ascending position order so a fixed seed
	// reproduces the same read.
	for _, i := range sortedKeys(mmSet) {
		rd.Set(i, string(a.substitute(seq[i])))
	}

	// Gap edits walk the union of positions in descending order so the
	// tombstones and insertions never shift a pending index. A position
	// drawn by both sets is deleted and then prepended to.
	gaps := make([]int, 0, len(rdgSet)+len(rfgSet))
	for p := range rdgSet {
		gaps = append(gaps, p)
	}
	for p := range rfgSet {
		if !rdgSet[p] {
			gaps = append(gaps, p)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(gaps)))
	for _, i := range gaps {
		if rdgSet[i] {
			rd.Delete(i)
		}
		if rfgSet[i] {
			rd.Prepend(i, a.randomBase())
		}
	}
	return rd.String()
}

// drawDistinct samples k distinct positions uniformly from [lo, hi),
// rejecting repeats against the growing set. The caller guarantees
// hi-lo >= k.
func (a *Applier) drawDistinct(k, lo, hi int) map[int]bool {
	set := make(map[int]bool, k)
	for len(set) < k {
		set[lo+a.Rng.Intn(hi-lo)] = true
	}
	return set
}

// substitute returns a uniformly random base different from orig.
func (a *Applier) substitute(orig byte) byte {
	for {
		if b := a.randomBase(); b != orig {
			return b
		}
	}
}

// randomBase returns a uniformly random unambiguous base.
func (a *Applier) randomBase() byte {
	return bases[a.Rng.Intn(len(bases))]
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for p := range set {
		keys = append(keys, p)
	}
	sort.Ints(keys)
	return keys
}
