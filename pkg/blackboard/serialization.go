package blackboard

import (
	"fmt"
	"strconv"
)

// ThoughtToHash converts a ThoughtRecord to a Redis hash.
func ThoughtToHash(r *ThoughtRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":            r.ID,
		"thinker":       r.Thinker,
		"thought":       r.Thought,
		"created_at_ms": r.CreatedAtMs,
	}
}

// HashToThought converts a Redis hash back to a ThoughtRecord.
func HashToThought(hash map[string]string) (*ThoughtRecord, error) {
	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}

	return &ThoughtRecord{
		ID:          hash["id"],
		Thinker:     hash["thinker"],
		Thought:     hash["thought"],
		CreatedAtMs: createdAtMs,
	}, nil
}
