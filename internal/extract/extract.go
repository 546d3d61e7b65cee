// Package extract turns a retrieved text blob into the next thought.
//
// The pipeline is a fixed ladder of rules. The first rule that yields at least
// one candidate wins; when a rule yields several, one is picked uniformly at
// random through the pipeline's Chooser. Every candidate a rule returns differs
// case-insensitively from the exclude word. Only the absolute fallback noun may
// repeat it.
package extract

import (
	"fmt"
	"strings"
)

// Fallback selects what the pipeline returns when every rule comes up empty.
type Fallback string

const (
	// FallbackNone reports no result.
	FallbackNone Fallback = "none"
	// FallbackNoun draws one of FallbackNouns.
	FallbackNoun Fallback = "noun"
)

// TitleMode selects how the untruncated title is used as a last resort.
type TitleMode string

const (
	// TitleFirstToken uses the first word token of the title.
	TitleFirstToken TitleMode = "first-token"
	// TitleFull uses the whole normalized title.
	TitleFull TitleMode = "title"
	// TitleNone skips the title rule.
	TitleNone TitleMode = "none"
)

// FallbackNouns is the fixed set of abstract nouns used by FallbackNoun.
var FallbackNouns = []string{
	"idea", "concept", "thought", "question", "answer",
	"theory", "subject", "topic", "matter", "issue",
}

// Validate checks the fallback value.
func (f Fallback) Validate() error {
	switch f {
	case FallbackNone, FallbackNoun:
		return nil
	default:
		return fmt.Errorf("invalid fallback: %q (must be 'none' or 'noun')", string(f))
	}
}

// Validate checks the title mode value.
func (m TitleMode) Validate() error {
	switch m {
	case TitleFirstToken, TitleFull, TitleNone:
		return nil
	default:
		return fmt.Errorf("invalid title fallback: %q (must be 'first-token', 'title' or 'none')", string(m))
	}
}

// Input is the text handed to the pipeline.
// Text is the extract to mine; Title is the full title or identifier of the
// item it came from.
type Input struct {
	Text  string
	Title string
}

// Tags is the output of a part-of-speech tagger for one sentence.
type Tags struct {
	ProperNouns []string
	Entities    []string
	Nouns       []string
}

// Tagger is the optional part-of-speech capability.
type Tagger interface {
	Tag(sentence string) (Tags, error)
}

// Options configure a Pipeline. Zero values select TitleFirstToken,
// FallbackNone, no tagger and a time-seeded chooser.
type Options struct {
	Tagger   Tagger
	Title    TitleMode
	Fallback Fallback
	Chooser  *Chooser
}

// Pipeline is the canonical noun-extraction ladder. It holds no per-call
// state and is safe for concurrent use.
type Pipeline struct {
	tagger   Tagger
	title    TitleMode
	fallback Fallback
	chooser  *Chooser
}

// New creates a pipeline from opts.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		tagger:   opts.Tagger,
		title:    opts.Title,
		fallback: opts.Fallback,
		chooser:  opts.Chooser,
	}
	if p.title == "" {
		p.title = TitleFirstToken
	}
	if p.fallback == "" {
		p.fallback = FallbackNone
	}
	if p.chooser == nil {
		p.chooser = NewTimeChooser()
	}
	return p
}

// Extract derives one word or short phrase from in, never returning a
// candidate equal to exclude (case-insensitive) except through the noun
// fallback. The boolean is false when there is no result.
func (p *Pipeline) Extract(in Input, exclude string) (string, bool) {
	if strings.TrimSpace(in.Text) == "" {
		return "", false
	}

	span := firstSentence(normalize(in.Text))

	if p.tagger != nil {
		if word, ok := p.tagged(span, exclude); ok {
			return word, true
		}
	}

	tokens := tokenize(span)

	if word, ok := properNounRun(tokens, exclude); ok {
		return word, true
	}

	if candidates := genericTokens(tokens, exclude); len(candidates) > 0 {
		return p.chooser.Pick(candidates), true
	}

	if word, ok := p.fromTitle(in.Title, exclude); ok {
		return word, true
	}

	if p.fallback == FallbackNoun {
		return p.FallbackNoun(), true
	}

	return "", false
}

// FallbackNoun draws one of FallbackNouns.
func (p *Pipeline) FallbackNoun() string {
	return p.chooser.Pick(FallbackNouns)
}

// HasTagger reports whether the pipeline uses a part-of-speech tagger.
func (p *Pipeline) HasTagger() bool {
	return p.tagger != nil
}

// tagged applies the tagger rule: proper nouns and named entities first,
// then nouns longer than two characters. A tagger error skips the rule.
func (p *Pipeline) tagged(span, exclude string) (string, bool) {
	tags, err := p.tagger.Tag(span)
	if err != nil {
		return "", false
	}

	var candidates []string
	for _, tok := range tags.ProperNouns {
		if isAlpha(tok) && !sameWord(tok, exclude) {
			candidates = append(candidates, tok)
		}
	}
	for _, ent := range tags.Entities {
		ent = normalize(ent)
		if hasLetter(ent) && !sameWord(ent, exclude) {
			candidates = append(candidates, ent)
		}
	}

	if len(candidates) == 0 {
		nouns := append(append([]string{}, tags.ProperNouns...), tags.Nouns...)
		for _, tok := range nouns {
			if len(tok) > 2 && isAlpha(tok) && !sameWord(tok, exclude) {
				candidates = append(candidates, tok)
			}
		}
	}

	if len(candidates) == 0 {
		return "", false
	}
	return p.chooser.Pick(candidates), true
}

// properNounRun returns the first run of capitalized tokens that does not
// match exclude. Stop words are skipped and never start a run. A rejected run
// does not consume its tokens, so a shorter run starting inside it may win.
func properNounRun(tokens []string, exclude string) (string, bool) {
	for i, tok := range tokens {
		if isStopWord(tok) || !isUpperInitial(tok) {
			continue
		}

		run := []string{tok}
		for j := i + 1; j < len(tokens) && isUpperInitial(tokens[j]) && isAlpha(tokens[j]); j++ {
			run = append(run, tokens[j])
		}

		name := strings.Join(run, " ")
		if !sameWord(name, exclude) {
			return name, true
		}
	}
	return "", false
}

// genericTokens collects every content token longer than two characters.
func genericTokens(tokens []string, exclude string) []string {
	var candidates []string
	for _, tok := range tokens {
		if len(tok) <= 2 || isStopWord(tok) || isFunctionWord(tok) {
			continue
		}
		if sameWord(tok, exclude) {
			continue
		}
		candidates = append(candidates, tok)
	}
	return candidates
}

// fromTitle applies the configured title rule.
func (p *Pipeline) fromTitle(title, exclude string) (string, bool) {
	switch p.title {
	case TitleFirstToken:
		tokens := tokenize(title)
		if len(tokens) > 0 && !sameWord(tokens[0], exclude) {
			return tokens[0], true
		}
	case TitleFull:
		title = normalize(title)
		if hasLetter(title) && !sameWord(title, exclude) {
			return title, true
		}
	}
	return "", false
}
