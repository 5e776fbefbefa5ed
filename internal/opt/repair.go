package opt

import "github.com/pkg/errors"

// Repair turns order into a feasible order with minimal disruption. Scanning
// left to right, an ineligible target at position i is left in place and the
// nearest eligible target after it is brought forward to i, shifting the
// targets in between back by one. The input slice is not modified.
//
// Worst case O(n²).
func Repair(order []int, weights []float64, w0 float64) ([]int, error) {
	out := append([]int(nil), order...)
	w := w0
	for i := 0; i < len(out); i++ {
		if w > 2*weights[out[i]] {
			w += weights[out[i]]
			continue
		}
		j := i + 1
		for j < len(out) && w <= 2*weights[out[j]] {
			j++
		}
		if j == len(out) {
			return nil, errors.Wrapf(ErrUnrepairable, "no eligible target at or after position %d (w=%v)", i, w)
		}
		id := out[j]
		copy(out[i+1:j+1], out[i:j])
		out[i] = id
		w += weights[id]
	}
	return out, nil
}
