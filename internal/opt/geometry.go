package opt

import "math"

// Origin addresses the collector's start point (0,0) in a DistanceMatrix.
// It is the only negative index At accepts.
const Origin = -1

// tail marks the missing successor of the last position on an open path.
// Edges touching it cost nothing.
const tail = -2

// Target is a weighted point on the plane. Its id is its index in the input slice.
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceMatrix is a read-only (n+1)x(n+1) table of Euclidean distances
// between targets and the origin. Slot n holds the origin.
type DistanceMatrix struct {
	n int
	d []float64
}

// NewDistanceMatrix builds the table in O(n²).
func NewDistanceMatrix(targets []Target) *DistanceMatrix {
	n := len(targets)
	size := n + 1
	m := &DistanceMatrix{n: n, d: make([]float64, size*size)}
	for i := 0; i < n; i++ {
		d0 := math.Hypot(targets[i].X, targets[i].Y)
		m.d[i*size+n] = d0
		m.d[n*size+i] = d0
		for j := i + 1; j < n; j++ {
			d := math.Hypot(targets[i].X-targets[j].X, targets[i].Y-targets[j].Y)
			m.d[i*size+j] = d
			m.d[j*size+i] = d
		}
	}
	return m
}

// Len returns the number of targets (the origin is not counted).
func (m *DistanceMatrix) Len() int { return m.n }

// At returns the distance between a and b. Either may be Origin.
func (m *DistanceMatrix) At(a, b int) float64 {
	return m.d[m.slot(a)*(m.n+1)+m.slot(b)]
}

func (m *DistanceMatrix) slot(i int) int {
	if i == Origin {
		return m.n
	}
	return i
}

// TourLength is the open path length from the origin through order.
func TourLength(order []int, m *DistanceMatrix) float64 {
	if len(order) == 0 {
		return 0
	}
	total := m.At(Origin, order[0])
	for k := 0; k < len(order)-1; k++ {
		total += m.At(order[k], order[k+1])
	}
	return total
}

func weightsOf(targets []Target) []float64 {
	w := make([]float64, len(targets))
	for i, t := range targets {
		w[i] = t.Z
	}
	return w
}
