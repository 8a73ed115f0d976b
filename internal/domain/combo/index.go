package combo

import (
	"fmt"
	"math"
	"sort"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
)

// Entry is one combo inside an Index together with its derived totals.
type Entry struct {
	Combo   Combo
	Edits   int
	Penalty int
}

// Index holds every combo admissible under an identity floor for reads
// up to a maximum length, in two orders: byEdits sorted by (edits,
// penalty) and byPenalty sorted by (penalty, edits). byPenalty is
// contiguous in penalty, which PenaltyRun relies on. Built once per run;
// read-only afterwards.
type Index struct {
	model       scoring.Model
	minIdentity float64
	maxReadLen  int

	byEdits   []Entry
	byPenalty []Entry

	// Running min/max of byPenalty[0..i].Penalty.
	minPrefix []int
	maxPrefix []int
}

// Build enumerates all (mismatches, readGaps, refGaps) triples whose
// cumulative identity loss for a maxReadLen read stays at or above
// minIdentity. Each nested loop breaks at its first violation rather
// than skipping: identity loss is monotonic in every count, so nothing
// admissible lies beyond it. Enumeration always yields at least the
// zero-edit combo.
func Build(model scoring.Model, minIdentity float64, maxReadLen int) (*Index, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if minIdentity <= 0 || minIdentity > 1 {
		return nil, fmt.Errorf("min identity %v: want a fraction in (0, 1]", minIdentity)
	}
	if maxReadLen < 1 {
		return nil, fmt.Errorf("max read length %d: want >= 1", maxReadLen)
	}

	ix := &Index{model: model, minIdentity: minIdentity, maxReadLen: maxReadLen}
	n := float64(maxReadLen)
	for i := 0; 1-float64(i)/n >= minIdentity; i++ {
		for j := 0; 1-float64(i+j)/n >= minIdentity; j++ {
			for k := 0; 1-float64(i+j+k)/n >= minIdentity; k++ {
				c := Combo{Mismatches: i, ReadGaps: j, RefGaps: k}
				e := Entry{Combo: c, Edits: c.Edits(), Penalty: c.Penalty(model)}
				ix.byEdits = append(ix.byEdits, e)
				ix.byPenalty = append(ix.byPenalty, e)
			}
		}
	}

	sort.Slice(ix.byEdits, func(a, b int) bool {
		x, y := ix.byEdits[a], ix.byEdits[b]
		if x.Edits != y.Edits {
			return x.Edits < y.Edits
		}
		if x.Penalty != y.Penalty {
			return x.Penalty < y.Penalty
		}
		return x.Combo.less(y.Combo)
	})
	sort.Slice(ix.byPenalty, func(a, b int) bool {
		x, y := ix.byPenalty[a], ix.byPenalty[b]
		if x.Penalty != y.Penalty {
			return x.Penalty < y.Penalty
		}
		if x.Edits != y.Edits {
			return x.Edits < y.Edits
		}
		return x.Combo.less(y.Combo)
	})

	ix.minPrefix = make([]int, len(ix.byPenalty))
	ix.maxPrefix = make([]int, len(ix.byPenalty))
	minP, maxP := math.MaxInt, math.MinInt
	for i, e := range ix.byPenalty {
		if e.Penalty < minP {
			minP = e.Penalty
		}
		if e.Penalty > maxP {
			maxP = e.Penalty
		}
		ix.minPrefix[i] = minP
		ix.maxPrefix[i] = maxP
	}

	return ix, nil
}

// Len returns the number of enumerated combos.
func (ix *Index) Len() int {
	return len(ix.byPenalty)
}

// Model returns the scoring model the index was built from.
func (ix *Index) Model() scoring.Model {
	return ix.model
}

// MinIdentity returns the identity floor the index was built with.
func (ix *Index) MinIdentity() float64 {
	return ix.minIdentity
}

// MaxReadLen returns the read length the enumeration assumed.
func (ix *Index) MaxReadLen() int {
	return ix.maxReadLen
}

// MaxEdits returns the edit budget for a read of the given length: the
// number of edited positions that keeps identity at or above the floor.
func (ix *Index) MaxEdits(readLen int) int {
	return int(math.Ceil(float64(readLen) * (1 - ix.minIdentity)))
}

// EditBound returns how many byEdits entries fit a read of the given
// length (the prefix of combos with edits <= MaxEdits). Zero means the
// identity floor admits nothing for that length.
func (ix *Index) EditBound(readLen int) int {
	budget := ix.MaxEdits(readLen)
	return sort.Search(len(ix.byEdits), func(i int) bool {
		return ix.byEdits[i].Edits > budget
	})
}

// PenaltyRange returns the min and max penalty over the first n entries
// of the by-penalty order. n must be in [1, Len()].
func (ix *Index) PenaltyRange(n int) (minP, maxP int) {
	return ix.minPrefix[n-1], ix.maxPrefix[n-1]
}

// PenaltyRun locates the contiguous half-open run [lo, hi) of byPenalty
// entries whose penalty equals p. When p itself does not occur, the run
// of the next higher occurring penalty is returned and actual carries
// that value. ok is false only when p exceeds every enumerated penalty.
func (ix *Index) PenaltyRun(p int) (lo, hi, actual int, ok bool) {
	lo = sort.Search(len(ix.byPenalty), func(i int) bool {
		return ix.byPenalty[i].Penalty >= p
	})
	if lo == len(ix.byPenalty) {
		return 0, 0, 0, false
	}
	actual = ix.byPenalty[lo].Penalty
	hi = sort.Search(len(ix.byPenalty), func(i int) bool {
		return ix.byPenalty[i].Penalty > actual
	})
	return lo, hi, actual, true
}

// ByEditsAt returns the i'th entry of the by-edits order.
func (ix *Index) ByEditsAt(i int) Entry {
	return ix.byEdits[i]
}

// ByPenaltyAt returns the i'th entry of the by-penalty order.
func (ix *Index) ByPenaltyAt(i int) Entry {
	return ix.byPenalty[i]
}

// EntriesByEdits returns a copy of the by-edits order.
func (ix *Index) EntriesByEdits() []Entry {
	return append([]Entry(nil), ix.byEdits...)
}

// EntriesByPenalty returns a copy of the by-penalty order.
func (ix *Index) EntriesByPenalty() []Entry {
	return append([]Entry(nil), ix.byPenalty...)
}
