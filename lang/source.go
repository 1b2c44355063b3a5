package lang

import "math/rand/v2"

// Source supplies uniform pseudo-random numbers in [0, 1).
//
// [*math/rand/v2.Rand] satisfies Source. A Source is used by one expansion
// at a time and need not be safe for concurrent use.
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic [Source] seeded with seed.
func NewSource(seed uint64) Source {
	return streamSource(seed, 0)
}

// streamSource returns stream i of the generator family seeded with seed.
// Distinct streams are independent, which lets parallel workers draw
// reproducibly regardless of scheduling.
func streamSource(seed, i uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, i))
}

// randomSeed returns a seed from the runtime's entropy-seeded generator.
func randomSeed() uint64 {
	return rand.Uint64()
}
