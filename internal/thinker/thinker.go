// Package thinker binds a content source to the extraction pipeline.
//
// A thinker takes the previous shared thought, looks it up with its source and
// mines the result for the next thought. Failures never escape Think: they
// become an empty thought or a fallback noun depending on the thinker's Policy.
package thinker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dyluth/whirlpool/internal/extract"
	"github.com/dyluth/whirlpool/internal/source"
)

// DefaultTimeout bounds a single source lookup.
const DefaultTimeout = 10 * time.Second

// Thinker produces the next thought from the previous one.
type Thinker interface {
	Name() string
	Think(ctx context.Context, previous string) string
}

// Outcome is what a thinker returns when it has nothing to mine.
type Outcome string

const (
	// OutcomeEmpty returns the empty thought.
	OutcomeEmpty Outcome = "empty"
	// OutcomeNoun returns a random fallback noun.
	OutcomeNoun Outcome = "noun"
)

// Validate checks the outcome value.
func (o Outcome) Validate() error {
	switch o {
	case OutcomeEmpty, OutcomeNoun:
		return nil
	default:
		return fmt.Errorf("invalid outcome: %q (must be 'empty' or 'noun')", string(o))
	}
}

// Policy decides the outcome of each way a round can come up empty.
type Policy struct {
	// OnEmptyInput applies when the previous thought is blank. No lookup is made.
	OnEmptyInput Outcome
	// OnFailure applies when the source fails or times out.
	OnFailure Outcome
	// OnNoResult applies when the source finds nothing.
	OnNoResult Outcome
	// OnExhausted applies when the source answered but the pipeline, including
	// its own fallbacks, found nothing to mine. Zero means OutcomeEmpty.
	OnExhausted Outcome
}

// Validate checks every outcome in the policy.
func (p Policy) Validate() error {
	if err := p.OnEmptyInput.Validate(); err != nil {
		return fmt.Errorf("on_empty_input: %w", err)
	}
	if err := p.OnFailure.Validate(); err != nil {
		return fmt.Errorf("on_failure: %w", err)
	}
	if err := p.OnNoResult.Validate(); err != nil {
		return fmt.Errorf("on_no_result: %w", err)
	}
	if p.OnExhausted != "" {
		if err := p.OnExhausted.Validate(); err != nil {
			return fmt.Errorf("on_exhausted: %w", err)
		}
	}
	return nil
}

// SourceThinker is the Thinker backed by one content source.
type SourceThinker struct {
	name     string
	source   source.Source
	pipeline *extract.Pipeline
	policy   Policy
	timeout  time.Duration
}

// New creates a thinker. A zero timeout selects DefaultTimeout.
func New(name string, src source.Source, pipeline *extract.Pipeline, policy Policy, timeout time.Duration) (*SourceThinker, error) {
	if name == "" {
		return nil, fmt.Errorf("thinker name cannot be empty")
	}
	if src == nil {
		return nil, fmt.Errorf("thinker '%s': source is required", name)
	}
	if pipeline == nil {
		return nil, fmt.Errorf("thinker '%s': pipeline is required", name)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("thinker '%s': %w", name, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if policy.OnExhausted == "" {
		policy.OnExhausted = OutcomeEmpty
	}

	return &SourceThinker{
		name:     name,
		source:   src,
		pipeline: pipeline,
		policy:   policy,
		timeout:  timeout,
	}, nil
}

// Name returns the thinker's name.
func (t *SourceThinker) Name() string {
	return t.name
}

// Think runs one round against the source. It never fails; see Policy.
func (t *SourceThinker) Think(ctx context.Context, previous string) string {
	query := strings.TrimSpace(previous)
	if query == "" {
		log.Printf("[Thinker:%s] Empty thought received", t.name)
		return t.outcome(t.policy.OnEmptyInput)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.source.Search(lookupCtx, query)
	if errors.Is(err, source.ErrNotFound) {
		log.Printf("[Thinker:%s] No result for %q", t.name, query)
		return t.outcome(t.policy.OnNoResult)
	}
	if err != nil {
		log.Printf("[Thinker:%s] Lookup failed for %q: %v", t.name, query, err)
		return t.outcome(t.policy.OnFailure)
	}

	in := extract.Input{Text: res.Extract, Title: res.Title}
	if strings.TrimSpace(in.Text) == "" {
		in.Text = res.Title
	}

	word, ok := t.pipeline.Extract(in, query)
	if !ok {
		log.Printf("[Thinker:%s] Nothing to extract from %q", t.name, res.Title)
		return t.outcome(t.policy.OnExhausted)
	}

	word = clean(word)
	log.Printf("[Thinker:%s] %q -> %q", t.name, query, word)
	return word
}

func (t *SourceThinker) outcome(o Outcome) string {
	if o == OutcomeNoun {
		return t.pipeline.FallbackNoun()
	}
	return ""
}

// clean keeps a thought on a single trimmed line.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ Thinker = (*SourceThinker)(nil)
