// Package filter selects which mirrored thoughts a watcher prints.
package filter

import (
	"fmt"
	"path/filepath"

	"github.com/dyluth/whirlpool/pkg/blackboard"
)

// Criteria defines filtering criteria for thoughts.
// All filters are ANDed together.
type Criteria struct {
	SinceTimestampMs int64  // Unix milliseconds, 0 = no lower bound
	UntilTimestampMs int64  // Unix milliseconds, 0 = no upper bound
	ThinkerGlob      string // Glob over the thinker name, empty = any thinker
	SkipEmpty        bool   // Drop thoughts where the thinker had nothing to say
}

// Matches reports whether r passes every criterion.
// A nil Criteria matches everything.
func (c *Criteria) Matches(r *blackboard.ThoughtRecord) bool {
	if c == nil {
		return true
	}
	if c.SinceTimestampMs > 0 && r.CreatedAtMs < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && r.CreatedAtMs > c.UntilTimestampMs {
		return false
	}
	if c.ThinkerGlob != "" {
		matched, err := filepath.Match(c.ThinkerGlob, r.Thinker)
		if err != nil || !matched {
			return false
		}
	}
	if c.SkipEmpty && r.Thought == "" {
		return false
	}
	return true
}

// Validate checks the glob syntax and the time range.
func (c *Criteria) Validate() error {
	if c.ThinkerGlob != "" {
		if _, err := filepath.Match(c.ThinkerGlob, ""); err != nil {
			return fmt.Errorf("invalid thinker pattern %q: %w", c.ThinkerGlob, err)
		}
	}
	if c.SinceTimestampMs > 0 && c.UntilTimestampMs > 0 && c.SinceTimestampMs >= c.UntilTimestampMs {
		return fmt.Errorf("since must be before until")
	}
	return nil
}
