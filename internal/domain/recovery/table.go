package recovery

import (
	"fmt"
	"io"
)

// WriteFlat renders the per-score tally, one tab-separated row per
// observed score in ascending order: score, correct, incorrect.
func WriteFlat(w io.Writer, t *Tally) error {
	for _, row := range t.Rows() {
		if _, err := fmt.Fprintf(w, "%d\t%d\t%d\n", row.Score, row.Correct, row.Incorrect); err != nil {
			return err
		}
	}
	return nil
}

// WriteCumulative renders running totals from the best (highest)
// observed score down to the worst, one row per integer score in that
// span, including scores with no reads. Each row carries the counts
// accumulated strictly before its score, so the top row is always 0, 0:
// row s answers "how many reads would a threshold of s already have
// passed or failed above it".
func WriteCumulative(w io.Writer, t *Tally) error {
	if len(t.ByScore) == 0 {
		return nil
	}

	first := true
	var best, worst int
	for sc := range t.ByScore {
		if first || sc > best {
			best = sc
		}
		if first || sc < worst {
			worst = sc
		}
		first = false
	}

	correct, incorrect := 0, 0
	for sc := best; sc >= worst; sc-- {
		if _, err := fmt.Fprintf(w, "%d\t%d\t%d\n", sc, correct, incorrect); err != nil {
			return err
		}
		if c, ok := t.ByScore[sc]; ok {
			correct += c.Correct
			incorrect += c.Incorrect
		}
	}
	return nil
}
