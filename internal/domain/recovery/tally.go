// Package recovery classifies aligner output against the expected score
// encoded in each read identifier and accumulates the run's statistics.
package recovery

import (
	"sort"

	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// Counts of recovered vs non-recovered reads.
type Counts struct {
	Correct   int
	Incorrect int
}

// ScoreLen keys the secondary tally.
type ScoreLen struct {
	Score  int
	Length int
}

// Tally accumulates recovery outcomes keyed by expected score (≤ 0) and
// by (expected score, read length). Owned by the collector goroutine
// while a run is in flight; safe to read only after the collector's
// Wait returns.
type Tally struct {
	ByScore    map[int]*Counts
	ByScoreLen map[ScoreLen]*Counts
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		ByScore:    make(map[int]*Counts),
		ByScoreLen: make(map[ScoreLen]*Counts),
	}
}

// FromRows rebuilds a tally from its archived row form. The inverse of
// Rows and LenRows; either slice may be nil.
func FromRows(byScore []ports.ScoreCounts, byScoreLen []ports.ScoreLenCounts) *Tally {
	t := NewTally()
	for _, r := range byScore {
		t.ByScore[r.Score] = &Counts{Correct: r.Correct, Incorrect: r.Incorrect}
	}
	for _, r := range byScoreLen {
		t.ByScoreLen[ScoreLen{Score: r.Score, Length: r.Length}] = &Counts{Correct: r.Correct, Incorrect: r.Incorrect}
	}
	return t
}

// Add records one outcome.
func (t *Tally) Add(score, length int, recovered bool) {
	c := t.ByScore[score]
	if c == nil {
		c = &Counts{}
		t.ByScore[score] = c
	}
	cl := t.ByScoreLen[ScoreLen{Score: score, Length: length}]
	if cl == nil {
		cl = &Counts{}
		t.ByScoreLen[ScoreLen{Score: score, Length: length}] = cl
	}
	if recovered {
		c.Correct++
		cl.Correct++
	} else {
		c.Incorrect++
		cl.Incorrect++
	}
}

// Totals sums both outcome counters across every score.
func (t *Tally) Totals() (correct, incorrect int) {
	for _, c := range t.ByScore {
		correct += c.Correct
		incorrect += c.Incorrect
	}
	return correct, incorrect
}

// Rows returns the per-score tally sorted by ascending score.
func (t *Tally) Rows() []ports.ScoreCounts {
	rows := make([]ports.ScoreCounts, 0, len(t.ByScore))
	for sc, c := range t.ByScore {
		rows = append(rows, ports.ScoreCounts{Score: sc, Correct: c.Correct, Incorrect: c.Incorrect})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Score < rows[j].Score })
	return rows
}

// LenRows returns the per-(score, length) tally sorted by ascending
// score, then length.
func (t *Tally) LenRows() []ports.ScoreLenCounts {
	rows := make([]ports.ScoreLenCounts, 0, len(t.ByScoreLen))
	for k, c := range t.ByScoreLen {
		rows = append(rows, ports.ScoreLenCounts{
			Score: k.Score, Length: k.Length,
			Correct: c.Correct, Incorrect: c.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score < rows[j].Score
		}
		return rows[i].Length < rows[j].Length
	})
	return rows
}
