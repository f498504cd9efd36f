package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Source is the slice of *rand.Rand the engine draws from: random dealer
// seats and payout remainders.
type Source interface {
	IntN(n int) int
}

// New returns a *rand.Rand seeded deterministically from seed. Both PCG
// words are derived from the one value so every caller reproduces the
// same sequence for the same seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seeded returns a generator for *seed, or a time-seeded one when seed is
// nil. The seed actually used is returned so runs can be replayed.
func Seeded(seed *int64) (*rand.Rand, int64) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return New(s), s
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
