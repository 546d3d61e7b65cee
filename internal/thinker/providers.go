package thinker

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dyluth/whirlpool/internal/extract"
	"github.com/dyluth/whirlpool/internal/source"
)

// Defaults is the per-provider behaviour a thinker starts from.
// The providers deliberately disagree; overrides come from Spec.
type Defaults struct {
	Policy   Policy
	Tagged   bool
	Fallback extract.Fallback
	Title    extract.TitleMode
}

var quiet = Policy{OnEmptyInput: OutcomeEmpty, OnFailure: OutcomeEmpty, OnNoResult: OutcomeEmpty, OnExhausted: OutcomeEmpty}

var providerDefaults = map[string]Defaults{
	source.Wikipedia: {Policy: quiet, Fallback: extract.FallbackNone, Title: extract.TitleFirstToken},
	source.LOC: {
		Policy:   Policy{OnEmptyInput: OutcomeNoun, OnFailure: OutcomeEmpty, OnNoResult: OutcomeNoun, OnExhausted: OutcomeEmpty},
		Tagged:   true,
		Fallback: extract.FallbackNoun,
		Title:    extract.TitleFirstToken,
	},
	source.NYT:      {Policy: quiet, Tagged: true, Fallback: extract.FallbackNoun, Title: extract.TitleFirstToken},
	source.Guardian: {Policy: quiet, Fallback: extract.FallbackNone, Title: extract.TitleFirstToken},
	source.Reddit:   {Policy: quiet, Fallback: extract.FallbackNone, Title: extract.TitleFirstToken},
	source.SerpAPI:  {Policy: quiet, Fallback: extract.FallbackNone, Title: extract.TitleFirstToken},
	source.OpenLibrary: {
		Policy:   Policy{OnEmptyInput: OutcomeNoun, OnFailure: OutcomeNoun, OnNoResult: OutcomeNoun, OnExhausted: OutcomeNoun},
		Tagged:   true,
		Fallback: extract.FallbackNoun,
		Title:    extract.TitleFirstToken,
	},
}

// DefaultsFor returns the defaults of provider.
func DefaultsFor(provider string) (Defaults, error) {
	d, ok := providerDefaults[provider]
	if !ok {
		return Defaults{}, fmt.Errorf("%w: %s", source.ErrUnknownProvider, provider)
	}
	return d, nil
}

// Spec describes one thinker to build. Empty fields keep the provider default.
type Spec struct {
	Name     string
	Provider string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration

	OnEmptyInput Outcome
	OnFailure    Outcome
	OnNoResult   Outcome
	OnExhausted  Outcome
	Tagged       *bool
	Fallback     extract.Fallback
	Title        extract.TitleMode
}

// Shared holds the collaborators every built thinker reuses.
type Shared struct {
	HTTPClient *http.Client
	// Tagger is attached to thinkers whose spec or defaults ask for tagging.
	// When nil, tagged thinkers run the regex ladder only.
	Tagger  extract.Tagger
	Chooser *extract.Chooser
}

// Build constructs the thinker described by spec.
func Build(spec Spec, shared Shared) (*SourceThinker, error) {
	d, err := DefaultsFor(spec.Provider)
	if err != nil {
		return nil, fmt.Errorf("thinker '%s': %w", spec.Name, err)
	}

	src, err := source.New(spec.Provider, source.Options{
		APIKey:     spec.APIKey,
		BaseURL:    spec.BaseURL,
		HTTPClient: shared.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("thinker '%s': %w", spec.Name, err)
	}

	policy := d.Policy
	if spec.OnEmptyInput != "" {
		policy.OnEmptyInput = spec.OnEmptyInput
	}
	if spec.OnFailure != "" {
		policy.OnFailure = spec.OnFailure
	}
	if spec.OnNoResult != "" {
		policy.OnNoResult = spec.OnNoResult
	}
	if spec.OnExhausted != "" {
		policy.OnExhausted = spec.OnExhausted
	}

	opts := extract.Options{
		Fallback: d.Fallback,
		Title:    d.Title,
		Chooser:  shared.Chooser,
	}
	if spec.Fallback != "" {
		opts.Fallback = spec.Fallback
	}
	if spec.Title != "" {
		opts.Title = spec.Title
	}
	tagged := d.Tagged
	if spec.Tagged != nil {
		tagged = *spec.Tagged
	}
	if tagged {
		opts.Tagger = shared.Tagger
	}
	// Tagged providers only reach for the noun fallback when a tagger is present.
	if d.Tagged && opts.Tagger == nil && spec.Fallback == "" {
		opts.Fallback = extract.FallbackNone
	}

	return New(spec.Name, src, extract.New(opts), policy, spec.Timeout)
}
