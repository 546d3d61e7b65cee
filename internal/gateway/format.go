package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/dyluth/whirlpool/internal/cave"
)

// Format is the wire encoding of a delivered event.
type Format string

const (
	// FormatText sends the bare thought.
	FormatText Format = "text"
	// FormatJSON sends {"thinker": ..., "thought": ...}.
	FormatJSON Format = "json"
)

// Validate checks the format value.
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %q (must be 'text' or 'json')", string(f))
	}
}

// Encode renders e for the wire.
func (f Format) Encode(e cave.Event) ([]byte, error) {
	switch f {
	case FormatText:
		return []byte(e.Thought), nil
	case FormatJSON:
		return json.Marshal(e)
	default:
		return nil, f.Validate()
	}
}
