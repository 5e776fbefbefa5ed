package opt

// Local search over open paths anchored at the origin. All three move
// families are first-improvement: a candidate is accepted only if its length
// drops by more than Eps and the materialized order passes IsFeasible.
// Position 0 is preceded by Origin; the last position has no successor.

type searcher struct {
	m       *DistanceMatrix
	weights []float64
	w0      float64
	b       *budget
}

func newSearcher(m *DistanceMatrix, weights []float64, w0 float64, b *budget) *searcher {
	return &searcher{m: m, weights: weights, w0: w0, b: b}
}

// TwoOpt reverses segments until no improving feasible reversal remains.
// It returns the improved order and the number of accepted moves.
func TwoOpt(order []int, weights []float64, w0 float64, m *DistanceMatrix) ([]int, int) {
	return newSearcher(m, weights, w0, nil).twoOpt(order)
}

// OrOpt relocates single targets until no improving feasible relocation remains.
func OrOpt(order []int, weights []float64, w0 float64, m *DistanceMatrix) ([]int, int) {
	return newSearcher(m, weights, w0, nil).orOpt(order)
}

// ThreeOptPass scans every triple of cut points once and returns the first
// improving feasible reconnection, or the input unchanged. It does not iterate.
func ThreeOptPass(order []int, weights []float64, w0 float64, m *DistanceMatrix) ([]int, int) {
	return newSearcher(m, weights, w0, nil).threeOptPass(order)
}

func (s *searcher) dist(a, b int) float64 {
	if a == tail || b == tail {
		return 0
	}
	return s.m.At(a, b)
}

func before(order []int, i int) int {
	if i == 0 {
		return Origin
	}
	return order[i-1]
}

func after(order []int, i int) int {
	if i == len(order)-1 {
		return tail
	}
	return order[i+1]
}

func (s *searcher) feasible(order []int) bool { return IsFeasible(order, s.weights, s.w0) }

func (s *searcher) twoOpt(order []int) ([]int, int) {
	cur := append([]int(nil), order...)
	n := len(cur)
	moves := 0
	for {
		improved := false
	scan:
		for i := 0; i < n-1; i++ {
			a, b := before(cur, i), cur[i]
			for k := i + 1; k < n; k++ {
				if s.b.tick() {
					return cur, moves
				}
				c, d := cur[k], after(cur, k)
				delta := s.dist(a, c) + s.dist(b, d) - s.dist(a, b) - s.dist(c, d)
				if delta >= -Eps {
					continue
				}
				cand := reverseSegment(cur, i, k)
				if !s.feasible(cand) {
					continue
				}
				cur = cand
				moves++
				improved = true
				if s.b.accept() {
					return cur, moves
				}
				break scan
			}
		}
		if !improved {
			return cur, moves
		}
	}
}

func (s *searcher) orOpt(order []int) ([]int, int) {
	cur := append([]int(nil), order...)
	n := len(cur)
	moves := 0
	// reduced is cur without position i.
	reduced := func(i, p int) int {
		if p < i {
			return cur[p]
		}
		return cur[p+1]
	}
	for {
		improved := false
	scan:
		for i := 0; i < n; i++ {
			node := cur[i]
			p, q := before(cur, i), after(cur, i)
			gain := s.dist(p, node) + s.dist(node, q) - s.dist(p, q)
			// insertion slots in the reduced path: 0..n-1, slot i restores cur
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				if s.b.tick() {
					return cur, moves
				}
				l, r := Origin, tail
				if j > 0 {
					l = reduced(i, j-1)
				}
				if j < n-1 {
					r = reduced(i, j)
				}
				delta := s.dist(l, node) + s.dist(node, r) - s.dist(l, r) - gain
				if delta >= -Eps {
					continue
				}
				cand := relocate(cur, i, j)
				if !s.feasible(cand) {
					continue
				}
				cur = cand
				moves++
				improved = true
				if s.b.accept() {
					return cur, moves
				}
				break scan
			}
		}
		if !improved {
			return cur, moves
		}
	}
}

// threeOptPass cuts cur into P=cur[:i], S1=cur[i:j], S2=cur[j:k], T=cur[k:]
// and tries P+rev(S1)+rev(S2)+T, P+S2+S1+T and P+S2+rev(S1)+T.
func (s *searcher) threeOptPass(order []int) ([]int, int) {
	cur := append([]int(nil), order...)
	n := len(cur)
	for i := 0; i < n-1; i++ {
		a, b := before(cur, i), cur[i]
		for j := i + 1; j < n; j++ {
			c, d := cur[j-1], cur[j]
			for k := j + 1; k <= n; k++ {
				if s.b.tick() {
					return cur, 0
				}
				e, f := cur[k-1], tail
				if k < n {
					f = cur[k]
				}
				old := s.dist(a, b) + s.dist(c, d) + s.dist(e, f)
				patterns := [3]float64{
					s.dist(a, c) + s.dist(b, e) + s.dist(d, f),
					s.dist(a, d) + s.dist(e, b) + s.dist(c, f),
					s.dist(a, d) + s.dist(e, c) + s.dist(b, f),
				}
				for p, now := range patterns {
					if now-old >= -Eps {
						continue
					}
					cand := reconnect(cur, i, j, k, p)
					if s.feasible(cand) {
						s.b.accept()
						return cand, 1
					}
				}
			}
		}
	}
	return cur, 0
}

func reverseSegment(order []int, i, k int) []int {
	out := append([]int(nil), order...)
	for l, r := i, k; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// relocate moves order[i] so it lands at index j of the result.
func relocate(order []int, i, j int) []int {
	node := order[i]
	out := make([]int, 0, len(order))
	out = append(out, order[:i]...)
	out = append(out, order[i+1:]...)
	out = append(out[:j], append([]int{node}, out[j:]...)...)
	return out
}

func reconnect(order []int, i, j, k, pattern int) []int {
	s1 := append([]int(nil), order[i:j]...)
	s2 := append([]int(nil), order[j:k]...)
	out := make([]int, 0, len(order))
	out = append(out, order[:i]...)
	switch pattern {
	case 0:
		out = append(out, reversed(s1)...)
		out = append(out, reversed(s2)...)
	case 1:
		out = append(out, s2...)
		out = append(out, s1...)
	default:
		out = append(out, s2...)
		out = append(out, reversed(s1)...)
	}
	return append(out, order[k:]...)
}

func reversed(seg []int) []int {
	out := make([]int, len(seg))
	for i, v := range seg {
		out[len(seg)-1-i] = v
	}
	return out
}
