package api

import (
	"github.com/pkg/errors"

	"weightnav/internal/model"
)

const (
	maxCases          = 100
	maxTargetsPerCase = 2000
	maxRandomSeeds    = 10000
)

// validateSolveRequest checks request shape; per-target values are checked by the solver.
func validateSolveRequest(req *model.SolveRequest) error {
	if len(req.Cases) == 0 {
		return errors.New("cases must not be empty")
	}
	if len(req.Cases) > maxCases {
		return errors.Errorf("at most %d cases per request", maxCases)
	}
	for i, c := range req.Cases {
		if len(c.Targets) > maxTargetsPerCase {
			return errors.Errorf("case %d: at most %d targets", i, maxTargetsPerCase)
		}
		if len(c.Label) > 200 {
			return errors.Errorf("case %d: label too long", i)
		}
	}
	if req.RandomSeeds > maxRandomSeeds {
		return errors.Errorf("randomSeeds must be <= %d", maxRandomSeeds)
	}
	return nil
}
