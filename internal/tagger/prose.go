// Package tagger provides the part-of-speech capability used by tagged thinkers.
package tagger

import (
	"fmt"
	"sync"

	"github.com/dyluth/whirlpool/internal/extract"
	"github.com/jdkato/prose/v2"
)

// warmUp is tagged once at construction to load the embedded model.
const warmUp = "Whirlpool loads the tagger."

// Prose tags sentences with the prose English model.
// The model is embedded in the library and loaded once by NewProse.
type Prose struct {
	mu    sync.Mutex
	model *prose.Model
}

// NewProse loads the prose model and returns a tagger that reuses it.
func NewProse() (*Prose, error) {
	doc, err := prose.NewDocument(warmUp, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to load tagger model: %w", err)
	}
	return &Prose{model: doc.Model}, nil
}

// Tag splits sentence into Penn Treebank tagged tokens and named entities.
// NNP/NNPS become proper nouns and NN/NNS become nouns.
func (p *Prose) Tag(sentence string) (extract.Tags, error) {
	doc, err := p.document(sentence)
	if err != nil {
		return extract.Tags{}, fmt.Errorf("failed to tag sentence: %w", err)
	}

	var tags extract.Tags
	for _, tok := range doc.Tokens() {
		switch tok.Tag {
		case "NNP", "NNPS":
			tags.ProperNouns = append(tags.ProperNouns, tok.Text)
		case "NN", "NNS":
			tags.Nouns = append(tags.Nouns, tok.Text)
		}
	}

	for _, ent := range doc.Entities() {
		tags.Entities = append(tags.Entities, ent.Text)
	}

	return tags, nil
}

// document runs the pipeline over sentence with the shared model.
// prose does not document Model as safe for concurrent use.
func (p *Prose) document(sentence string) (*prose.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return prose.NewDocument(sentence, prose.WithSegmentation(false), prose.UsingModel(p.model))
}

var _ extract.Tagger = (*Prose)(nil)
