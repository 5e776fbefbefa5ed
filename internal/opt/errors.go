package opt

import "github.com/pkg/errors"

var (
	// ErrInvalidInput is returned for w0 <= 0, negative weights or non-finite values.
	ErrInvalidInput = errors.New("opt: invalid input")
	// ErrUnrepairable is returned by Repair when no remaining target is eligible.
	ErrUnrepairable = errors.New("opt: order cannot be repaired")
	// ErrInvariantViolation marks a failed repair or walk over a permutation of the
	// reachable set. That cannot happen for a correct reachable set; it is a defect.
	ErrInvariantViolation = errors.New("opt: feasibility invariant violated")
	// ErrNoFeasibleSeed is returned when every seed was dropped before local search.
	ErrNoFeasibleSeed = errors.New("opt: no feasible seed survived")
)
