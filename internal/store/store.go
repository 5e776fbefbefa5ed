package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"

	"weightnav/internal/model"
	"weightnav/internal/opt"
)

// Store persists solved cases.
type Store interface {
	// SaveSolution assigns ID and CreatedAt when they are empty and returns the stored record.
	SaveSolution(ctx context.Context, rec model.SolutionRecord) (model.SolutionRecord, error)
	GetSolution(ctx context.Context, id string) (model.SolutionRecord, error)
	// FindByInputKey returns the most recent solution for key.
	FindByInputKey(ctx context.Context, key string) (model.SolutionRecord, error)
	ListSolutions(ctx context.Context, cursor string, limit int) ([]model.SolutionRecord, string, error)
}

var ErrNotFound = errors.New("not found")

const (
	defaultLimit = 100
	maxLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLimit {
		return defaultLimit
	}
	return limit
}

// ComputeInputKey identifies a case together with the solver settings that
// influence its result: hex of the first 16 bytes of a SHA-256 over the
// canonical JSON encoding.
func ComputeInputKey(w0 float64, targets []opt.Target, seed int64, randomSeeds int) string {
	body, _ := json.Marshal(struct {
		W0          float64      `json:"w0"`
		Targets     []opt.Target `json:"targets"`
		Seed        int64        `json:"seed"`
		RandomSeeds int          `json:"randomSeeds"`
	}{w0, targets, seed, randomSeeds})
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:16])
}
