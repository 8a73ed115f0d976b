package mutate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/combo"
	"github.com/mypersonaltherapeutics/qtip/internal/domain/scoring"
)

func newMutator(t *testing.T, policy Policy, seed int64) *Mutator {
	t.Helper()
	ix, err := combo.Build(scoring.Default(), 0.95, 100)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	return &Mutator{
		Index:   ix,
		Applier: &Applier{Model: scoring.Default(), Rng: rng},
		Policy:  policy,
		Rng:     rng,
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("score")
	require.NoError(t, err)
	assert.Equal(t, PolicyScore, p)

	p, err = ParsePolicy("nedit")
	require.NoError(t, err)
	assert.Equal(t, PolicyEdits, p)

	_, err = ParsePolicy("uniform")
	assert.Error(t, err)
}

func TestMutate_EditPolicyLeavesSequenceAlone(t *testing.T) {
	m := newMutator(t, PolicyEdits, 21)
	seq := makeSeq(100)

	for i := 0; i < 50; i++ {
		out, penalty, err := m.Mutate(seq)
		require.NoError(t, err)
		assert.Equal(t, seq, out)
		// The returned penalty is one some enumerated combo achieves.
		_, _, actual, ok := m.Index.PenaltyRun(penalty)
		require.True(t, ok)
		assert.Equal(t, penalty, actual)
	}
}

func TestMutate_EditPolicyHonorsPerReadBudget(t *testing.T) {
	m := newMutator(t, PolicyEdits, 4)
	// A 19-base read at identity 0.95 tolerates one edit: penalties can
	// only be 0 (zero combo), 6 (mismatch), or 8 (either gap).
	for i := 0; i < 50; i++ {
		_, penalty, err := m.Mutate(makeSeq(19))
		require.NoError(t, err)
		assert.Contains(t, []int{0, 6, 8}, penalty)
	}
}

func TestMutate_ScorePolicyPenaltyAchievable(t *testing.T) {
	m := newMutator(t, PolicyScore, 99)
	seq := makeSeq(100)

	for i := 0; i < 50; i++ {
		out, penalty, err := m.Mutate(seq)
		require.NoError(t, err)
		minP, maxP := m.Index.PenaltyRange(m.Index.EditBound(len(seq)))
		assert.GreaterOrEqual(t, penalty, minP)
		assert.LessOrEqual(t, penalty, maxP)
		_, _, actual, ok := m.Index.PenaltyRun(penalty)
		require.True(t, ok)
		assert.Equal(t, penalty, actual)
		if penalty == 0 {
			assert.Equal(t, seq, out)
		}
	}
}

func TestMutate_ScorePolicyDeterministicUnderSeed(t *testing.T) {
	seq := makeSeq(90)

	a := newMutator(t, PolicyScore, 1234)
	b := newMutator(t, PolicyScore, 1234)
	for i := 0; i < 20; i++ {
		outA, penA, errA := a.Mutate(seq)
		outB, penB, errB := b.Mutate(seq)
		require.NoError(t, errA)
		require.NoError(t, errB)
		assert.Equal(t, outA, outB)
		assert.Equal(t, penA, penB)
	}
}

func TestMutate_ScorePolicyDrawCap(t *testing.T) {
	m := newMutator(t, PolicyScore, 7)
	m.MaxDraws = 5
	m.Applier.Verify = true
	m.Applier.Oracle = &scriptedOracle{penalties: []int{1 << 20}}
	m.Applier.MaxAttempts = 1

	_, _, err := m.Mutate(makeSeq(100))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "5 draws")
}

func TestMutate_UnknownPolicy(t *testing.T) {
	m := newMutator(t, Policy("bogus"), 1)
	_, _, err := m.Mutate(makeSeq(100))
	assert.Error(t, err)
}
