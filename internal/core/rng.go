package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Uniform returns a value in [lo, hi).
func (r *RNG) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.r.Float64()
}

// FillUniform sets every cell of b to an independent value in [lo, hi).
func (r *RNG) FillUniform(b *Buffer, lo, hi float64) {
	ext := b.Extent()
	for row := 0; row < ext[0]; row++ {
		cells := b.Row(row)
		for c := range cells {
			cells[c] = r.Uniform(lo, hi)
		}
	}
}
