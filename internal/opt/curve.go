package opt

import (
	"math"
	"sort"
)

// curveBits is the per-axis precision of the space-filling curve keys.
const curveBits = 21

// quantizer maps plane coordinates onto [0, 2^curveBits-1] per axis using the
// bounding box of the points being ordered, so negative and fractional
// coordinates need no special handling.
type quantizer struct {
	minX, minY float64
	scale      float64
}

func newQuantizer(r []int, targets []Target) quantizer {
	q := quantizer{minX: math.Inf(1), minY: math.Inf(1)}
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, id := range r {
		t := targets[id]
		q.minX = math.Min(q.minX, t.X)
		q.minY = math.Min(q.minY, t.Y)
		maxX = math.Max(maxX, t.X)
		maxY = math.Max(maxY, t.Y)
	}
	span := math.Max(maxX-q.minX, maxY-q.minY)
	if span > 0 {
		q.scale = float64(uint32(1)<<curveBits-1) / span
	}
	return q
}

func (q quantizer) point(t Target) (uint32, uint32) {
	return uint32((t.X - q.minX) * q.scale), uint32((t.Y - q.minY) * q.scale)
}

// hilbertIndex returns the distance of (x, y) along a Hilbert curve filling a
// 2^curveBits square.
func hilbertIndex(x, y uint32) uint64 {
	const side = uint32(1) << curveBits
	var d uint64
	for s := side / 2; s > 0; s /= 2 {
		var rx, ry uint32
		if x&s != 0 {
			rx = 1
		}
		if y&s != 0 {
			ry = 1
		}
		d += uint64(s) * uint64(s) * uint64((3*rx)^ry)
		if ry == 0 {
			if rx == 1 {
				x = side - 1 - x
				y = side - 1 - y
			}
			x, y = y, x
		}
	}
	return d
}

// mortonIndex interleaves the bits of x (even positions) and y (odd positions).
func mortonIndex(x, y uint32) uint64 {
	return spreadBits(x) | spreadBits(y)<<1
}

func spreadBits(v uint32) uint64 {
	x := uint64(v) & (1<<curveBits - 1)
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return x
}

// sortByCurve orders r by key, keeping r's order for equal keys.
func sortByCurve(r []int, targets []Target, key func(x, y uint32) uint64) []int {
	q := newQuantizer(r, targets)
	keys := make(map[int]uint64, len(r))
	for _, id := range r {
		keys[id] = key(q.point(targets[id]))
	}
	out := append([]int(nil), r...)
	sort.SliceStable(out, func(a, b int) bool { return keys[out[a]] < keys[out[b]] })
	return out
}
