// Package scoring defines the alignment scoring parameters shared by the
// whole run: match bonus, mismatch penalty range, ambiguous-base penalty,
// and affine gap costs for read gaps and reference gaps. Everything here
// is pure arithmetic on an immutable parameter set.
package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultString is the default scoring configuration in its 8-field
// textual form: match bonus, mismatch penalty min and max, N penalty,
// read-gap open and extend, ref-gap open and extend. It mirrors the
// aligner's own end-to-end defaults.
const DefaultString = "1,2,6,1,5,3,5,3"

// GapCost is an affine gap cost function.
type GapCost struct {
	Open   int
	Extend int
}

// Penalty returns the cost of one contiguous gap of the given length.
func (g GapCost) Penalty(length int) int {
	return g.Open + length*g.Extend
}

// Model is the immutable scoring parameter set.
//
// Mismatches carry a (min, max) penalty range; everything downstream
// charges the worst case (max). The min is parsed and validated so a
// model round-trips its textual form, but no current consumer uses it.
type Model struct {
	MatchBonus  int
	MismatchMin int
	MismatchMax int
	NPenalty    int
	ReadGap     GapCost
	RefGap      GapCost
}

// Default returns the model described by DefaultString.
func Default() Model {
	return Model{
		MatchBonus:  1,
		MismatchMin: 2,
		MismatchMax: 6,
		NPenalty:    1,
		ReadGap:     GapCost{Open: 5, Extend: 3},
		RefGap:      GapCost{Open: 5, Extend: 3},
	}
}

// Parse reads the 8-field comma-separated scoring form.
func Parse(s string) (Model, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 8 {
		return Model{}, fmt.Errorf("scoring %q: want 8 comma-separated fields, got %d", s, len(fields))
	}
	vals := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return Model{}, fmt.Errorf("scoring %q: field %d: %w", s, i+1, err)
		}
		vals[i] = n
	}
	m := Model{
		MatchBonus:  vals[0],
		MismatchMin: vals[1],
		MismatchMax: vals[2],
		NPenalty:    vals[3],
		ReadGap:     GapCost{Open: vals[4], Extend: vals[5]},
		RefGap:      GapCost{Open: vals[6], Extend: vals[7]},
	}
	if err := m.Validate(); err != nil {
		return Model{}, fmt.Errorf("scoring %q: %w", s, err)
	}
	return m, nil
}

// Validate rejects parameter sets the combination enumeration cannot
// work with. Penalty terms must be non-negative (combo penalties are
// monotone in each edit count only under that condition) and the
// mismatch range must be ordered.
func (m Model) Validate() error {
	if m.MismatchMin < 0 || m.MismatchMax < 0 {
		return fmt.Errorf("mismatch penalties (%d, %d) must be non-negative", m.MismatchMin, m.MismatchMax)
	}
	if m.MismatchMin > m.MismatchMax {
		return fmt.Errorf("mismatch penalty min %d exceeds max %d", m.MismatchMin, m.MismatchMax)
	}
	if m.NPenalty < 0 {
		return fmt.Errorf("N penalty %d must be non-negative", m.NPenalty)
	}
	if m.ReadGap.Open < 0 || m.ReadGap.Extend < 0 {
		return fmt.Errorf("read gap costs (%d, %d) must be non-negative", m.ReadGap.Open, m.ReadGap.Extend)
	}
	if m.RefGap.Open < 0 || m.RefGap.Extend < 0 {
		return fmt.Errorf("ref gap costs (%d, %d) must be non-negative", m.RefGap.Open, m.RefGap.Extend)
	}
	return nil
}

// String renders the model back to its 8-field form.
func (m Model) String() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d,%d,%d",
		m.MatchBonus, m.MismatchMin, m.MismatchMax, m.NPenalty,
		m.ReadGap.Open, m.ReadGap.Extend, m.RefGap.Open, m.RefGap.Extend)
}
