package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// SeedFrom hashes a session name into the two PCG seed words.
func SeedFrom(name string) (uint64, uint64) {
	return xxhash.Sum64String(name), xxhash.Sum64String(name + "#stream")
}

// NewRand returns the random source for a named session.
func NewRand(name string) *rand.Rand {
	hi, lo := SeedFrom(name)
	return rand.New(rand.NewPCG(hi, lo))
}

// SessionName derives the name of the i-th session of a sweep.
func SessionName(base string, i int) string {
	return fmt.Sprintf("%s/%03d", base, i)
}
