// Package randutil derives reproducible math/rand/v2 generators.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Two calls with
// the same seed produce identical sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Seed returns *fixed when set, otherwise a time-derived seed. The chosen
// value is returned so callers can log it and replay a session.
func Seed(fixed *int64) int64 {
	if fixed != nil {
		return *fixed
	}
	return time.Now().UnixNano()
}

// Child derives an independent generator from parent. Each room draws its
// own child so rooms never share generator state.
func Child(parent *rand.Rand) *rand.Rand {
	return rand.New(rand.NewPCG(parent.Uint64(), parent.Uint64()))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
