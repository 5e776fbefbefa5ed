package opt

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

// Strategy names the heuristic that produced a seed.
type Strategy string

const (
	StrategyNearest Strategy = "nearest-feasible"
	StrategyWeight  Strategy = "weight-ascending"
	StrategyMST     Strategy = "mst-preorder"
	StrategyHilbert Strategy = "hilbert"
	StrategyMorton  Strategy = "morton"
	StrategyRandom  Strategy = "random-repaired"
)

// Seed is one starting order for local search.
type Seed struct {
	Strategy Strategy
	Order    []int
}

// NearestFeasible walks from the origin, always moving to the closest
// unvisited target of r that is currently eligible. Ties go to the target
// listed first in r.
func NearestFeasible(r []int, targets []Target, w0 float64, m *DistanceMatrix) ([]int, error) {
	remaining := append([]int(nil), r...)
	out := make([]int, 0, len(r))
	w := w0
	cur := Origin
	for len(remaining) > 0 {
		best, bestD := -1, math.Inf(1)
		for k, id := range remaining {
			if w <= 2*targets[id].Z {
				continue
			}
			// best < 0 admits the first candidate even when every distance overflowed
			if d := m.At(cur, id); best < 0 || d < bestD {
				best, bestD = k, d
			}
		}
		if best < 0 {
			return nil, errors.Wrapf(ErrInvariantViolation, "nearest-feasible walk stuck with %d targets left", len(remaining))
		}
		id := remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)
		out = append(out, id)
		w += targets[id].Z
		cur = id
	}
	return out, nil
}

// WeightAscending orders r lightest first (ties by id).
func WeightAscending(r []int, targets []Target) []int {
	out := append([]int(nil), r...)
	sort.SliceStable(out, func(a, b int) bool {
		if targets[out[a]].Z != targets[out[b]].Z {
			return targets[out[a]].Z < targets[out[b]].Z
		}
		return out[a] < out[b]
	})
	return out
}

// MSTPreorder builds a Euclidean minimum spanning tree over r with Prim's
// O(n²) dense algorithm rooted at r[0] and returns its depth-first preorder.
// The result ignores weights and usually needs Repair.
func MSTPreorder(r []int, targets []Target) []int {
	n := len(r)
	if n == 0 {
		return []int{}
	}
	used := make([]bool, n)
	parent := make([]int, n)
	key := make([]float64, n)
	for i := range key {
		key[i] = math.Inf(1)
		parent[i] = -1
	}
	key[0] = 0
	for it := 0; it < n; it++ {
		u := -1
		for i := 0; i < n; i++ {
			if !used[i] && (u < 0 || key[i] < key[u]) {
				u = i
			}
		}
		used[u] = true
		pu := targets[r[u]]
		for v := 0; v < n; v++ {
			if used[v] {
				continue
			}
			pv := targets[r[v]]
			dx, dy := pu.X-pv.X, pu.Y-pv.Y
			if d := dx*dx + dy*dy; d < key[v] {
				key[v] = d
				parent[v] = u
			}
		}
	}
	children := make([][]int, n)
	for v := 1; v < n; v++ {
		children[parent[v]] = append(children[parent[v]], v)
	}
	out := make([]int, 0, n)
	stack := []int{0}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, r[u])
		// push in reverse so the lowest child is visited first
		for k := len(children[u]) - 1; k >= 0; k-- {
			stack = append(stack, children[u][k])
		}
	}
	return out
}

// HilbertOrder sorts r along a Hilbert curve. The result usually needs Repair.
func HilbertOrder(r []int, targets []Target) []int {
	return sortByCurve(r, targets, hilbertIndex)
}

// MortonOrder sorts r along a Z-order curve. The result usually needs Repair.
func MortonOrder(r []int, targets []Target) []int {
	return sortByCurve(r, targets, mortonIndex)
}

// RandomRepaired shuffles r with rng and repairs the result.
func RandomRepaired(r []int, weights []float64, w0 float64, rng *rand.Rand) ([]int, error) {
	perm := append([]int(nil), r...)
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	return Repair(perm, weights, w0)
}

// generateSeeds runs every strategy once (the random one opts.RandomSeeds
// times) in a fixed order. A repair failure here means r is not a correct
// reachable set and is reported as ErrInvariantViolation.
func generateSeeds(r []int, targets []Target, w0 float64, m *DistanceMatrix, opts Options) ([]Seed, error) {
	weights := weightsOf(targets)
	seeds := make([]Seed, 0, 5+opts.RandomSeeds)

	nn, err := NearestFeasible(r, targets, w0, m)
	if err != nil {
		return nil, errors.WithMessage(err, string(StrategyNearest))
	}
	seeds = append(seeds,
		Seed{Strategy: StrategyNearest, Order: nn},
		Seed{Strategy: StrategyWeight, Order: WeightAscending(r, targets)},
	)

	spatial := []struct {
		strategy Strategy
		order    []int
	}{
		{StrategyMST, MSTPreorder(r, targets)},
		{StrategyHilbert, HilbertOrder(r, targets)},
		{StrategyMorton, MortonOrder(r, targets)},
	}
	for _, s := range spatial {
		fixed, err := Repair(s.order, weights, w0)
		if err != nil {
			return nil, errors.Wrapf(ErrInvariantViolation, "%s seed: %v", s.strategy, err)
		}
		seeds = append(seeds, Seed{Strategy: s.strategy, Order: fixed})
	}

	for i := 0; i < opts.RandomSeeds; i++ {
		fixed, err := RandomRepaired(r, weights, w0, streamRNG(opts.Seed, uint64(i)))
		if err != nil {
			return nil, errors.Wrapf(ErrInvariantViolation, "%s seed %d: %v", StrategyRandom, i, err)
		}
		seeds = append(seeds, Seed{Strategy: StrategyRandom, Order: fixed})
	}
	return seeds, nil
}
