// Package randutil builds reproducible PCG generators for simulated players
// and test fixtures. Deck shuffles never use it; see package fairness.
package randutil

import (
	"hash/fnv"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// FromString seeds a generator from a label such as a player name, so each
// simulated seat gets its own stable stream.
func FromString(label string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(label))
	return New(int64(h.Sum64()))
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
