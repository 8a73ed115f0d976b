package mutate

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/combo"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
)

// scriptedOracle replays a fixed sequence of penalties, then repeats the
// last one.
type scriptedOracle struct {
	penalties []int
	calls     int
}

func (o *scriptedOracle) Penalty(mutated, original string) int {
	i := o.calls
	if i >= len(o.penalties) {
		i = len(o.penalties) - 1
	}
	o.calls++
	return o.penalties[i]
}

func newApplier(seed int64) *Applier {
	return &Applier{
		Model: scoring.Default(),
		Rng:   rand.New(rand.NewSource(seed)),
	}
}

func makeSeq(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString("ACGT")
	}
	return b.String()[:n]
}

func countDiffs(a, b string) int {
	diffs := 0
	for i := range a {
		if a[i] != b[i] {
			diffs++
		}
	}
	return diffs
}

func TestApply_ZeroComboIsIdentity(t *testing.T) {
	a := newApplier(1)
	for _, seq := range []string{"", "A", "ACGT", makeSeq(100)} {
		out, ok := a.Apply(seq, combo.Combo{})
		assert.True(t, ok)
		assert.Equal(t, seq, out)
	}
}

func TestApply_SingleMismatch(t *testing.T) {
	// The end-to-end reference case: one mismatch on a 100-base read
	// changes exactly one position and keeps the length.
	a := newApplier(42)
	seq := makeSeq(100)
	out, ok := a.Apply(seq, combo.Combo{Mismatches: 1})
	require.True(t, ok)
	assert.Len(t, out, 100)
	assert.Equal(t, 1, countDiffs(seq, out))
}

func TestApply_MismatchCountMatchesCombo(t *testing.T) {
	a := newApplier(7)
	seq := makeSeq(60)
	out, ok := a.Apply(seq, combo.Combo{Mismatches: 3})
	require.True(t, ok)
	assert.Len(t, out, 60)
	// Positions are distinct and every replacement differs from the
	// original, so the diff count equals the mismatch count.
	assert.Equal(t, 3, countDiffs(seq, out))
}

func TestApply_ReadGapsShrink(t *testing.T) {
	a := newApplier(3)
	seq := makeSeq(50)
	out, ok := a.Apply(seq, combo.Combo{ReadGaps: 2})
	require.True(t, ok)
	assert.Len(t, out, 48)
}

func TestApply_RefGapsGrowAndNeverLead(t *testing.T) {
	a := newApplier(5)
	seq := makeSeq(50)
	for i := 0; i < 20; i++ {
		out, ok := a.Apply(seq, combo.Combo{RefGaps: 2})
		require.True(t, ok)
		assert.Len(t, out, 52)
		// Insertion points exclude position 0.
		assert.Equal(t, seq[0], out[0])
	}
}

func TestApply_MixedComboLengthAccounting(t *testing.T) {
	a := newApplier(11)
	seq := makeSeq(80)
	out, ok := a.Apply(seq, combo.Combo{Mismatches: 1, ReadGaps: 1, RefGaps: 1})
	require.True(t, ok)
	assert.Len(t, out, 80)
}

func TestApply_InfeasibleCombos(t *testing.T) {
	a := newApplier(1)

	out, ok := a.Apply("ACGT", combo.Combo{Mismatches: 5})
	assert.False(t, ok)
	assert.Equal(t, "ACGT", out)

	_, ok = a.Apply("ACGT", combo.Combo{ReadGaps: 5})
	assert.False(t, ok)

	// Only positions [1, len) accept insertions.
	_, ok = a.Apply("ACGT", combo.Combo{RefGaps: 4})
	assert.False(t, ok)
	_, ok = a.Apply("A", combo.Combo{RefGaps: 1})
	assert.False(t, ok)
}

func TestApply_VerifyRetriesUntilTargetPenalty(t *testing.T) {
	oracle := &scriptedOracle{penalties: []int{99, 6}}
	var warnings []string
	a := newApplier(9)
	a.Verify = true
	a.Oracle = oracle
	a.Warnf = func(format string, args ...any) {
		warnings = append(warnings, format)
	}

	_, ok := a.Apply(makeSeq(40), combo.Combo{Mismatches: 1})
	assert.True(t, ok)
	assert.Equal(t, 2, oracle.calls)
	assert.Len(t, warnings, 1)
}

func TestApply_VerifyExhaustionReturnsOriginal(t *testing.T) {
	oracle := &scriptedOracle{penalties: []int{99}}
	a := newApplier(9)
	a.Verify = true
	a.Oracle = oracle
	a.MaxAttempts = 3

	seq := makeSeq(40)
	out, ok := a.Apply(seq, combo.Combo{Mismatches: 1})
	assert.False(t, ok)
	assert.Equal(t, seq, out)
	assert.Equal(t, 3, oracle.calls)
}

func TestApply_DeterministicUnderSeed(t *testing.T) {
	seq := makeSeq(70)
	c := combo.Combo{Mismatches: 2, ReadGaps: 1, RefGaps: 1}

	first, ok := newApplier(123).Apply(seq, c)
	require.True(t, ok)
	second, ok := newApplier(123).Apply(seq, c)
	require.True(t, ok)
	assert.Equal(t, first, second)
}
