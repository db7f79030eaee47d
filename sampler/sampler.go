// Package sampler picks random subsets of LMS tree leaf indices.
package sampler

import (
	"fmt"
	"math/rand"
	"time"
)

// TooManyTestsError reports a request for more distinct leaves than the
// tree holds, or for an empty selection.
type TooManyTestsError struct {
	Count  int
	Height int
}

func (e *TooManyTestsError) Error() string {
	return fmt.Sprintf("can't pick %d distinct leaves from a tree of height %d", e.Count, e.Height)
}

// Sampler draws leaf indices without replacement. The random source is
// injected so fixture batches can be reproduced under test with a
// seeded source; leaf selection has no secrecy requirement.
type Sampler struct {
	rng *rand.Rand
}

// New returns a Sampler seeded from the clock.
func New() *Sampler {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Sampler with a fixed seed, for reproducible runs.
func NewSeeded(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns count distinct leaf indices drawn uniformly from
// [0, 2^height). The order of the result is arbitrary.
func (s *Sampler) Pick(count int, height int) ([]uint32, error) {
	if height < 0 || height > 31 {
		return nil, fmt.Errorf("invalid tree height: %d", height)
	}
	leaves := 1 << height
	if count < 1 || count > leaves {
		return nil, &TooManyTestsError{Count: count, Height: height}
	}

	// Prefix of a uniform permutation: uniqueness holds structurally.
	perm := s.rng.Perm(leaves)
	picked := make([]uint32, count)
	for i := 0; i < count; i++ {
		picked[i] = uint32(perm[i])
	}
	return picked, nil
}
