package store

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightnav/internal/model"
	"weightnav/internal/opt"
)

func TestComputeInputKey(t *testing.T) {
	targets := []opt.Target{{X: 1, Y: 2, Z: 3}}
	k := ComputeInputKey(5, targets, 1, 10)
	b, err := hex.DecodeString(k)
	require.NoError(t, err)
	assert.Len(t, b, 16)
	assert.Equal(t, k, ComputeInputKey(5, []opt.Target{{X: 1, Y: 2, Z: 3}}, 1, 10))
	assert.NotEqual(t, k, ComputeInputKey(5, targets, 2, 10), "seed is part of the key")
	assert.NotEqual(t, k, ComputeInputKey(6, targets, 1, 10))
	assert.NotEqual(t, k, ComputeInputKey(5, []opt.Target{{X: 2, Y: 1, Z: 3}}, 1, 10))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", nullIfEmpty("x"))
}

func TestDecodeColumns(t *testing.T) {
	var rec model.SolutionRecord
	err := decodeColumns([]byte(`[{"x":1,"y":2,"z":3}]`), []byte(`null`), []byte(`{"reachable":1,"bestStrategy":"hilbert"}`), &rec)
	require.NoError(t, err)
	assert.Equal(t, []opt.Target{{X: 1, Y: 2, Z: 3}}, rec.Targets)
	assert.Equal(t, []int{}, rec.Order)
	assert.Equal(t, opt.StrategyHilbert, rec.Metrics.BestStrategy)

	require.Error(t, decodeColumns([]byte(`{`), []byte(`[]`), []byte(`{}`), &rec))
}
