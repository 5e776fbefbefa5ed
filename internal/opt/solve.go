package opt

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Eps is the strict-improvement tolerance shared by every length comparison.
const Eps = 1e-9

// DefaultRandomSeeds is the number of random-repaired seeds when Options.RandomSeeds is 0.
const DefaultRandomSeeds = 245

// Options tunes SolveCase. The zero value is usable.
type Options struct {
	// Seed drives the random-repaired strategy; 0 selects a fixed default.
	Seed int64
	// RandomSeeds is the number of random-repaired seeds. 0 selects
	// DefaultRandomSeeds, a negative value disables the strategy.
	RandomSeeds int
	// Workers bounds concurrent seed refinement; 0 means GOMAXPROCS.
	Workers int
	// SeedTimeLimit caps the local search wall clock per seed; 0 is unlimited.
	SeedTimeLimit time.Duration
	// MaxMoves caps accepted local search moves per seed; 0 is unlimited.
	MaxMoves int
	Logger   *log.Entry
}

func (o Options) withDefaults() Options {
	switch {
	case o.RandomSeeds == 0:
		o.RandomSeeds = DefaultRandomSeeds
	case o.RandomSeeds < 0:
		o.RandomSeeds = 0
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewEntry(log.StandardLogger())
	}
	return o
}

// Solution is a visiting order and its open path length.
type Solution struct {
	Order  []int   `json:"order"`
	Length float64 `json:"length"`
}

// Metrics describes one SolveCase run.
type Metrics struct {
	Reachable       int              `json:"reachable"`
	SeedsGenerated  int              `json:"seedsGenerated"`
	SeedsDropped    map[Strategy]int `json:"seedsDropped,omitempty"`
	TwoOptMoves     int              `json:"twoOptMoves"`
	OrOptMoves      int              `json:"orOptMoves"`
	ThreeOptMoves   int              `json:"threeOptMoves"`
	BudgetExhausted int              `json:"budgetExhausted"`
	BestStrategy    Strategy         `json:"bestStrategy,omitempty"`
	BestSeed        int              `json:"bestSeed"`
	Elapsed         time.Duration    `json:"elapsedNs"`
}

type refined struct {
	order                   []int
	length                  float64
	twoOpt, orOpt, threeOpt int
	exhausted               bool
}

// SolveCase returns a feasible visiting order over every reachable target,
// locally optimal under 2-opt and Or-opt and stable under one 3-opt pass.
// An empty reachable set yields an empty order of length 0.
func SolveCase(ctx context.Context, targets []Target, w0 float64, opts Options) (Solution, Metrics, error) {
	start := time.Now()
	if err := validateInput(targets, w0); err != nil {
		return Solution{}, Metrics{}, err
	}
	opts = opts.withDefaults()
	logger := opts.Logger.WithFields(log.Fields{"targets": len(targets), "w0": w0})

	weights := weightsOf(targets)
	r := Reachable(weights, w0)
	mx := Metrics{Reachable: len(r), BestSeed: -1}
	if len(r) == 0 {
		mx.Elapsed = time.Since(start)
		return Solution{Order: []int{}}, mx, nil
	}

	m := NewDistanceMatrix(targets)
	seeds, err := generateSeeds(r, targets, w0, m, opts)
	if err != nil {
		logger.WithError(err).Error("seed generation broke the reachable-set invariant")
		return Solution{}, mx, err
	}
	mx.SeedsGenerated = len(seeds)

	valid := make([]Seed, 0, len(seeds))
	for _, sd := range seeds {
		if !isPermutationOf(sd.Order, r) || !IsFeasible(sd.Order, weights, w0) {
			if mx.SeedsDropped == nil {
				mx.SeedsDropped = map[Strategy]int{}
			}
			mx.SeedsDropped[sd.Strategy]++
			logger.WithField("strategy", sd.Strategy).Debug("dropping infeasible seed")
			continue
		}
		valid = append(valid, sd)
	}
	if len(valid) == 0 {
		return Solution{}, mx, errors.Wrapf(ErrNoFeasibleSeed, "%d seeds generated", len(seeds))
	}

	results := make([]refined, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for idx := range valid {
		idx := idx
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := newBudget(gctx, opts.SeedTimeLimit, opts.MaxMoves)
			results[idx] = refine(newSearcher(m, weights, w0, b), valid[idx].Order)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Solution{}, mx, err
	}
	if err := ctx.Err(); err != nil {
		return Solution{}, mx, err
	}

	best := Solution{Length: math.Inf(1)}
	for idx, res := range results {
		mx.TwoOptMoves += res.twoOpt
		mx.OrOptMoves += res.orOpt
		mx.ThreeOptMoves += res.threeOpt
		if res.exhausted {
			mx.BudgetExhausted++
		}
		if best.Order == nil || res.length < best.Length-Eps {
			best = Solution{Order: res.order, Length: res.length}
			mx.BestStrategy = valid[idx].Strategy
			mx.BestSeed = idx
		}
	}
	mx.Elapsed = time.Since(start)
	logger.WithFields(log.Fields{
		"reachable": len(r),
		"seeds":     len(valid),
		"length":    best.Length,
		"strategy":  mx.BestStrategy,
		"elapsed":   mx.Elapsed,
	}).Debug("case solved")
	return best, mx, nil
}

// refine runs 2-opt, Or-opt and one 3-opt pass under a shared budget.
func refine(s *searcher, order []int) refined {
	var res refined
	cur := order
	cur, res.twoOpt = s.twoOpt(cur)
	if !s.b.exhausted() {
		cur, res.orOpt = s.orOpt(cur)
	}
	if !s.b.exhausted() {
		cur, res.threeOpt = s.threeOptPass(cur)
	}
	res.order = cur
	res.length = TourLength(cur, s.m)
	res.exhausted = s.b.exhausted()
	return res
}
