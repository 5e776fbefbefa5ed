package opt

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// IsFeasible walks order with running weight w0 and reports whether every
// target i satisfies w > 2*z_i at the moment it is visited.
func IsFeasible(order []int, weights []float64, w0 float64) bool {
	w := w0
	for _, i := range order {
		z := weights[i]
		if w <= 2*z {
			return false
		}
		w += z
	}
	return true
}

// Reachable returns the targets that can ever be visited, in ascending weight
// order (ties by id). Visiting them in that order is always feasible.
//
// The result is the largest feasible set. After the first rejection at
// weight W <= 2*z_q nothing heavier can pass, so the set is a prefix of the
// weight order. Any feasible order reaching an element outside that prefix
// would carry at most W when it first does, which is too little.
func Reachable(weights []float64, w0 float64) []int {
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return weights[idx[a]] < weights[idx[b]] })
	w := w0
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		z := weights[i]
		if w > 2*z {
			r = append(r, i)
			w += z
		}
	}
	return r
}

// isPermutationOf reports whether order holds exactly the ids of r.
func isPermutationOf(order, r []int) bool {
	if len(order) != len(r) {
		return false
	}
	seen := make(map[int]int, len(r))
	for _, id := range r {
		seen[id]++
	}
	for _, id := range order {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}

func validateInput(targets []Target, w0 float64) error {
	if math.IsNaN(w0) || math.IsInf(w0, 0) || w0 <= 0 {
		return errors.Wrapf(ErrInvalidInput, "w0 must be positive and finite, got %v", w0)
	}
	for i, t := range targets {
		if !finite(t.X) || !finite(t.Y) || !finite(t.Z) {
			return errors.Wrapf(ErrInvalidInput, "target %d has a non-finite field", i)
		}
		if math.Abs(t.X) > MaxCoordinate || math.Abs(t.Y) > MaxCoordinate {
			return errors.Wrapf(ErrInvalidInput, "target %d lies beyond %g of the origin on an axis", i, MaxCoordinate)
		}
		if t.Z < 0 {
			return errors.Wrapf(ErrInvalidInput, "target %d has negative weight %v", i, t.Z)
		}
	}
	return nil
}

// MaxCoordinate bounds |X| and |Y| so that every distance and path length
// stays finite.
const MaxCoordinate = 1e150

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
