// Package watch follows a cave's thoughts through its Redis mirror.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dyluth/whirlpool/internal/filter"
	"github.com/dyluth/whirlpool/internal/printer"
	"github.com/dyluth/whirlpool/pkg/blackboard"
)

// OutputFormat selects how thoughts are written.
type OutputFormat string

const (
	// OutputFormatDefault writes human-readable lines with timestamps.
	OutputFormatDefault OutputFormat = "default"
	// OutputFormatJSON writes line-delimited JSON records.
	OutputFormatJSON OutputFormat = "json"
)

// Source is the part of the blackboard client the watcher needs.
type Source interface {
	GetLatestThought(ctx context.Context) (*blackboard.ThoughtRecord, error)
	SubscribeThoughtEvents(ctx context.Context) (*blackboard.Subscription, error)
}

type formatter interface {
	FormatThought(r *blackboard.ThoughtRecord) error
}

type defaultFormatter struct {
	writer io.Writer
}

func (f *defaultFormatter) FormatThought(r *blackboard.ThoughtRecord) error {
	if _, err := fmt.Fprintf(f.writer, "[%s] 💭 ", r.CreatedAt().Format("15:04:05")); err != nil {
		return err
	}
	return printer.Thought(f.writer, r.Thinker, r.Thought)
}

type jsonFormatter struct {
	writer io.Writer
}

func (f *jsonFormatter) FormatThought(r *blackboard.ThoughtRecord) error {
	return WriteJSON(f.writer, r)
}

// WriteJSON writes r as a single JSON line.
func WriteJSON(w io.Writer, r *blackboard.ThoughtRecord) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal thought: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func newFormatter(format OutputFormat, w io.Writer) (formatter, error) {
	switch format {
	case OutputFormatDefault, "":
		return &defaultFormatter{writer: w}, nil
	case OutputFormatJSON:
		return &jsonFormatter{writer: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// StreamThoughts writes the latest mirrored thought, then every new one, until
// ctx is cancelled. The subscription is opened before the latest thought is
// read so nothing committed in between is missed.
func StreamThoughts(ctx context.Context, src Source, format OutputFormat, w io.Writer) error {
	return StreamFilteredThoughts(ctx, src, format, nil, w)
}

// StreamFilteredThoughts is StreamThoughts restricted to thoughts matching
// criteria. A nil criteria prints everything.
func StreamFilteredThoughts(ctx context.Context, src Source, format OutputFormat, criteria *filter.Criteria, w io.Writer) error {
	f, err := newFormatter(format, w)
	if err != nil {
		return err
	}

	sub, err := src.SubscribeThoughtEvents(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	var lastID string
	errs := sub.Errors()
	latest, err := src.GetLatestThought(ctx)
	switch {
	case err == nil:
		lastID = latest.ID
		if criteria.Matches(latest) {
			if err := f.FormatThought(latest); err != nil {
				return err
			}
		}
	case blackboard.IsNotFound(err):
	default:
		return fmt.Errorf("failed to read latest thought: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if r.ID == lastID {
				continue
			}
			lastID = r.ID
			if !criteria.Matches(r) {
				continue
			}
			if err := f.FormatThought(r); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("[Watch] %v", err)
		}
	}
}

// PollForThought polls until a thought newer than since is mirrored.
// Polls every 200ms for the specified timeout duration.
func PollForThought(ctx context.Context, src Source, since time.Time, timeout time.Duration) (*blackboard.ThoughtRecord, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for thought after %v", timeout)

		case <-ticker.C:
			r, err := src.GetLatestThought(ctx)
			if err != nil {
				if blackboard.IsNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("failed to query for thought: %w", err)
			}
			if r.CreatedAtMs < since.UnixMilli() {
				continue
			}
			return r, nil
		}
	}
}
