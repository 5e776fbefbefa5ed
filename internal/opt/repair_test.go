package opt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairBringsNearestEligibleForward(t *testing.T) {
	// w0=6: id2 (z=4) needs w>8; id1 is the nearest eligible and moves in front of it.
	weights := []float64{1, 2, 4}
	in := []int{2, 1, 0}
	out, err := Repair(in, weights, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, out)
	assert.Equal(t, []int{2, 1, 0}, in, "input must not change")
}

func TestRepairStableShift(t *testing.T) {
	weights := []float64{1, 3, 2, 1}
	// w=3: id1, id2 fail, id0 moves up -> [0 1 2 3]
	// w=4: id1, id2 fail, id3 moves up -> [0 3 1 2]
	// w=5: id1 fails, id2 moves up -> [0 3 2 1]; w=7: id1 passes
	out, err := Repair([]int{1, 2, 0, 3}, weights, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 2, 1}, out)
	assert.True(t, IsFeasible(out, weights, 3))
}

func TestRepairKeepsFeasibleOrder(t *testing.T) {
	weights := []float64{1, 1, 1}
	out, err := Repair([]int{2, 0, 1}, weights, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, out)
}

func TestRepairUnrepairable(t *testing.T) {
	_, err := Repair([]int{0}, []float64{5}, 2)
	require.ErrorIs(t, err, ErrUnrepairable)
}

func TestRepairAnyPermutationOfReachable(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for it := 0; it < 200; it++ {
		ts := randomTargets(rng, 12, 15)
		weights := weightsOf(ts)
		w0 := float64(1 + rng.Intn(20))
		r := Reachable(weights, w0)
		perm := append([]int(nil), r...)
		rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		out, err := Repair(perm, weights, w0)
		require.NoError(t, err)
		require.True(t, IsFeasible(out, weights, w0))
		require.True(t, isPermutationOf(out, r))
	}
}
