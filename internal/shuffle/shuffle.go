// Package shuffle permutes line sequences with a seeded Fisher-Yates shuffle.
package shuffle

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// stream selects the PCG sequence; it is fixed so a seed alone determines
// the permutation.
const stream = 0x71736875665f7631 // "qshuf_v1"

// Shuffler produces uniformly random permutations from one seed.
// It is not safe for concurrent use.
type Shuffler struct {
	seed uint64
	rng  *rand.Rand
}

// New returns a Shuffler whose output depends only on seed.
func New(seed uint64) *Shuffler {
	return &Shuffler{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, stream)),
	}
}

// Seed returns the seed the Shuffler was created with.
func (s *Shuffler) Seed() uint64 {
	return s.seed
}

// Shuffle permutes items in place. For i from the last index down to 1 it
// draws j uniformly from [0, i] and swaps items i and j.
func Shuffle[T any](s *Shuffler, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// NewSeed draws a seed from the operating system's entropy source.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read entropy for seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
