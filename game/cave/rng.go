package cave

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// Source produces uniformly distributed floats in [0, 1).
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSeededSource returns a deterministic Source for a string seed.
// Equal seeds always yield equal sequences.
func NewSeededSource(seed string) *rand.Rand {
	return rand.New(rand.NewSource(int64(xxhash.Sum64String(seed))))
}

// Intn draws an integer in [0, n) from src. n must be positive.
func Intn(src Source, n int) int {
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
