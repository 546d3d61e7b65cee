package blackboard

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ThoughtRecord is one committed thought as mirrored to Redis.
type ThoughtRecord struct {
	ID          string `json:"id"`            // UUID of this commit
	Thinker     string `json:"thinker"`       // Name of the thinker that committed it
	Thought     string `json:"thought"`       // The thought itself, possibly empty
	CreatedAtMs int64  `json:"created_at_ms"` // Unix timestamp in milliseconds
}

// NewThoughtRecord stamps a thought with a fresh ID and the current time.
func NewThoughtRecord(thinker, thought string) *ThoughtRecord {
	return &ThoughtRecord{
		ID:          uuid.New().String(),
		Thinker:     thinker,
		Thought:     thought,
		CreatedAtMs: time.Now().UnixMilli(),
	}
}

// CreatedAt returns the commit time.
func (r *ThoughtRecord) CreatedAt() time.Time {
	return time.UnixMilli(r.CreatedAtMs)
}

// Validate checks that the record can be stored.
// The thought may be empty; a failed lookup is still a commit.
func (r *ThoughtRecord) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("invalid ID: %w", err)
	}
	if r.Thinker == "" {
		return fmt.Errorf("thinker cannot be empty")
	}
	if r.CreatedAtMs <= 0 {
		return fmt.Errorf("created_at_ms must be positive")
	}
	return nil
}
