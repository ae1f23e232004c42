package visualization

import (
	"math/rand/v2"
	"sync"
)

// Rand draws integers from an inclusive range. Implementations used by a
// shared Synthesizer must be safe for concurrent use.
type Rand interface {
	Between(lo, hi int) int
}

// LockedRand is a seedable Rand guarded by a mutex.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a Rand that produces the same sequence for the same seed.
func NewRand(seed uint64) *LockedRand {
	return &LockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomRand returns a Rand seeded from the runtime's entropy source.
func NewRandomRand() *LockedRand {
	return NewRand(rand.Uint64())
}

// Between returns a value in [lo, hi]. The bounds are swapped if reversed.
func (r *LockedRand) Between(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rng.IntN(hi-lo+1)
}
