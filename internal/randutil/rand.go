// Package randutil derives reproducible math/rand/v2 generators from a
// single int64 seed so that dealt tables can be replayed.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand seeded from seed. Equal seeds always
// produce equal sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Resolve returns the seed to use and a generator for it. A nil seed picks
// one from the wall clock; the chosen seed is returned so it can be logged.
func Resolve(seed *int64) (int64, *rand.Rand) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return s, New(s)
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
