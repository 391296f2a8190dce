// Package sampling implements secure sampling of bytes: seeds, seeders, keyed
// pseudo-random generators and forkable byte sources.
package sampling

import (
	"crypto/rand"
	"fmt"
)

// SeedSize is the size in bytes of a seed.
const SeedSize = 32

// NewSeed returns a new random seed drawn from the OS entropy source.
func NewSeed() (seed [SeedSize]byte) {
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Errorf("rand.Read: %w", err))
	}
	return
}
