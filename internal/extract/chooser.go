package extract

import (
	"math/rand"
	"sync"
	"time"
)

// Chooser makes the uniform random picks used for tie-breaks and fallback nouns.
// It is safe for concurrent use. Two choosers built with the same seed produce
// the same sequence of picks.
type Chooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewChooser creates a chooser seeded with seed.
func NewChooser(seed int64) *Chooser {
	return &Chooser{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeChooser creates a chooser seeded from the wall clock.
func NewTimeChooser() *Chooser {
	return NewChooser(time.Now().UnixNano())
}

// Pick returns one element of candidates uniformly at random.
// Returns "" when candidates is empty.
func (c *Chooser) Pick(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	c.mu.Lock()
	i := c.rng.Intn(len(candidates))
	c.mu.Unlock()

	return candidates[i]
}
