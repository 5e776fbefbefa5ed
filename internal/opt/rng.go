package opt

import "math/rand"

// defaultSeed is used when callers pass seed == 0.
const defaultSeed int64 = 1

// deriveSeed mixes a parent seed and a stream id with the SplitMix64 finalizer
// so each random seed strategy run gets its own decorrelated stream.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// streamRNG returns the deterministic RNG for stream under parent.
// math/rand.Rand is not goroutine safe; never share the result.
func streamRNG(parent int64, stream uint64) *rand.Rand {
	if parent == 0 {
		parent = defaultSeed
	}
	return rand.New(rand.NewSource(deriveSeed(parent, stream)))
}
