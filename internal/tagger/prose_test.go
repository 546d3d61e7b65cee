package tagger

import (
	"sync"
	"testing"

	"github.com/dyluth/whirlpool/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProse(t *testing.T) *Prose {
	t.Helper()
	p, err := NewProse()
	require.NoError(t, err)
	return p
}

func TestProseTag(t *testing.T) {
	tags, err := newTestProse(t).Tag("Barack Obama visited Paris with his family.")
	require.NoError(t, err)

	nouns := append(append([]string{}, tags.ProperNouns...), tags.Nouns...)
	assert.NotEmpty(t, nouns)
}

func TestProse_ModelLoadedOnce(t *testing.T) {
	p := newTestProse(t)
	require.NotNil(t, p.model)
	loaded := p.model

	sentences := []string{
		"Barack Obama visited Paris.",
		"The Library of Congress holds maps.",
		"",
		"rivers flow to the sea",
	}
	for i := 0; i < 5; i++ {
		for _, s := range sentences {
			doc, err := p.document(s)
			require.NoError(t, err)
			assert.Same(t, loaded, doc.Model, "every document must reuse the loaded model")
		}
	}
	assert.Same(t, loaded, p.model)
}

func TestProse_RepeatedTagsAgree(t *testing.T) {
	p := newTestProse(t)
	first, err := p.Tag("Barack Obama visited Paris.")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tags, err := p.Tag("Barack Obama visited Paris.")
			assert.NoError(t, err)
			assert.Equal(t, first, tags)
		}()
	}
	wg.Wait()
}

func TestProseInPipeline(t *testing.T) {
	p := extract.New(extract.Options{Tagger: newTestProse(t), Chooser: extract.NewChooser(7)})
	word, ok := p.Extract(extract.Input{Text: "Barack Obama visited Paris."}, "paris")
	require.True(t, ok)
	assert.NotEqual(t, "paris", word)
	assert.NotEmpty(t, word)
}
