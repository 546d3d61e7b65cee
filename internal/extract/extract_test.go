package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(opts Options) *Pipeline {
	if opts.Chooser == nil {
		opts.Chooser = NewChooser(42)
	}
	return New(opts)
}

func TestExtract_Scenarios(t *testing.T) {
	t.Run("capitalized run skips leading article", func(t *testing.T) {
		p := newTestPipeline(Options{})
		word, ok := p.Extract(Input{Text: "The Eiffel Tower is a landmark in Paris."}, "tower")
		require.True(t, ok)
		assert.Equal(t, "Eiffel Tower", word)
	})

	t.Run("empty text has no result", func(t *testing.T) {
		p := newTestPipeline(Options{})
		word, ok := p.Extract(Input{Text: ""}, "anything")
		assert.False(t, ok)
		assert.Empty(t, word)
	})

	t.Run("whitespace text has no result even with noun fallback", func(t *testing.T) {
		p := newTestPipeline(Options{Fallback: FallbackNoun})
		_, ok := p.Extract(Input{Text: " \n\t ", Title: "Something"}, "anything")
		assert.False(t, ok)
	})

	t.Run("generic tokens when no capitalized run", func(t *testing.T) {
		seen := map[string]bool{}
		for seed := int64(0); seed < 64; seed++ {
			p := New(Options{Chooser: NewChooser(seed)})
			word, ok := p.Extract(Input{Text: "ideas and thoughts persist"}, "ideas")
			require.True(t, ok)
			require.Contains(t, []string{"thoughts", "persist"}, word)
			seen[word] = true
		}
		assert.Len(t, seen, 2, "both candidates should be reachable across seeds")
	})
}

func TestGenericTokens_OnlyConjunctionsFiltered(t *testing.T) {
	got := genericTokens(tokenize("ships and boats were sailing with the tide"), "ships")
	assert.Equal(t, []string{"boats", "were", "sailing", "with", "tide"}, got)

	assert.Empty(t, genericTokens(tokenize("and but for nor yet"), ""))
}

func TestExtract_FirstSentenceOnly(t *testing.T) {
	p := newTestPipeline(Options{})
	word, ok := p.Extract(Input{Text: "a quiet river.  Then   London\ncalled!"}, "")
	require.True(t, ok)
	assert.Contains(t, []string{"quiet", "river"}, word)
}

func TestExtract_ProperNounPrecedence(t *testing.T) {
	p := newTestPipeline(Options{})
	for i := 0; i < 20; i++ {
		word, ok := p.Extract(Input{Text: "many gardens surround New York City today."}, "")
		require.True(t, ok)
		assert.Equal(t, "New York City", word)
	}
}

func TestExtract_ExcludedRunFallsToInnerRun(t *testing.T) {
	p := newTestPipeline(Options{})
	word, ok := p.Extract(Input{Text: "Eiffel Tower stands tall."}, "EIFFEL TOWER")
	require.True(t, ok)
	assert.Equal(t, "Tower", word)
}

func TestExtract_StopWords(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		exclude string
		want    []string
	}{
		{name: "leading article is never a run", text: "The cat sat", exclude: "", want: []string{"cat", "sat"}},
		{name: "demonstrative skipped", text: "These dogs bark", exclude: "dogs", want: []string{"bark"}},
		{name: "stop word inside sentence", text: "Those birds", exclude: "birds", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(Options{Title: TitleNone})
			word, ok := p.Extract(Input{Text: tt.text}, tt.exclude)
			if tt.want == nil {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Contains(t, tt.want, word)
			assert.False(t, isStopWord(word))
		})
	}
}

func TestExtract_Determinism(t *testing.T) {
	text := "many small, bright, curious, restless ideas wander around"
	for seed := int64(1); seed < 10; seed++ {
		a := New(Options{Chooser: NewChooser(seed)})
		b := New(Options{Chooser: NewChooser(seed)})
		wa, _ := a.Extract(Input{Text: text}, "ideas")
		wb, _ := b.Extract(Input{Text: text}, "ideas")
		assert.Equal(t, wa, wb, "seed %d", seed)
	}
}

func TestExtract_NeverReturnsExcludeWord(t *testing.T) {
	texts := []string{
		"Paris is the capital of France.",
		"paris paris paris Paris",
		"river river stream",
		"The Louvre holds art.",
	}
	for seed := int64(0); seed < 50; seed++ {
		p := New(Options{Chooser: NewChooser(seed)})
		for _, text := range texts {
			word, ok := p.Extract(Input{Text: text, Title: "Paris"}, "paris")
			if !ok {
				continue
			}
			assert.NotEqual(t, "paris", strings.ToLower(word), "text %q seed %d", text, seed)
		}
	}
}

func TestExtract_TitleFallback(t *testing.T) {
	in := Input{Text: "is it so", Title: "Grand Central Terminal"}

	t.Run("first token", func(t *testing.T) {
		p := newTestPipeline(Options{Title: TitleFirstToken})
		word, ok := p.Extract(in, "")
		require.True(t, ok)
		assert.Equal(t, "Grand", word)
	})

	t.Run("full title", func(t *testing.T) {
		p := newTestPipeline(Options{Title: TitleFull})
		word, ok := p.Extract(in, "")
		require.True(t, ok)
		assert.Equal(t, "Grand Central Terminal", word)
	})

	t.Run("first token equal to exclude", func(t *testing.T) {
		p := newTestPipeline(Options{Title: TitleFirstToken})
		_, ok := p.Extract(in, "grand")
		assert.False(t, ok)
	})

	t.Run("disabled", func(t *testing.T) {
		p := newTestPipeline(Options{Title: TitleNone})
		_, ok := p.Extract(in, "")
		assert.False(t, ok)
	})
}

func TestExtract_NounFallback(t *testing.T) {
	p := newTestPipeline(Options{Title: TitleNone, Fallback: FallbackNoun})
	word, ok := p.Extract(Input{Text: "is it so"}, "")
	require.True(t, ok)
	assert.Contains(t, FallbackNouns, word)
}

type fakeTagger struct {
	tags Tags
	err  error
	got  string
}

func (f *fakeTagger) Tag(sentence string) (Tags, error) {
	f.got = sentence
	return f.tags, f.err
}

func TestExtract_Tagger(t *testing.T) {
	t.Run("proper nouns and entities preferred", func(t *testing.T) {
		tagger := &fakeTagger{tags: Tags{
			ProperNouns: []string{"Lincoln", "Abraham"},
			Entities:    []string{"Abraham Lincoln"},
			Nouns:       []string{"president"},
		}}
		p := newTestPipeline(Options{Tagger: tagger})
		word, ok := p.Extract(Input{Text: "Abraham Lincoln was a president. Second sentence."}, "lincoln")
		require.True(t, ok)
		assert.Contains(t, []string{"Abraham", "Abraham Lincoln"}, word)
		assert.Equal(t, "Abraham Lincoln was a president.", tagger.got)
	})

	t.Run("nouns when no proper nouns", func(t *testing.T) {
		tagger := &fakeTagger{tags: Tags{Nouns: []string{"ox", "meadow", "123"}}}
		p := newTestPipeline(Options{Tagger: tagger})
		word, ok := p.Extract(Input{Text: "an ox in the meadow"}, "")
		require.True(t, ok)
		assert.Equal(t, "meadow", word)
	})

	t.Run("empty tags fall through to regex ladder", func(t *testing.T) {
		p := newTestPipeline(Options{Tagger: &fakeTagger{}})
		word, ok := p.Extract(Input{Text: "The Eiffel Tower is tall."}, "")
		require.True(t, ok)
		assert.Equal(t, "Eiffel Tower", word)
	})

	t.Run("tagger error falls through", func(t *testing.T) {
		p := newTestPipeline(Options{Tagger: &fakeTagger{err: errors.New("boom")}})
		word, ok := p.Extract(Input{Text: "The Eiffel Tower is tall."}, "")
		require.True(t, ok)
		assert.Equal(t, "Eiffel Tower", word)
	})
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "One.", firstSentence("One. Two."))
	assert.Equal(t, "Why?", firstSentence("Why? Because"))
	assert.Equal(t, "U.S.A is big", firstSentence("U.S.A is big"))
	assert.Equal(t, "no end", firstSentence("no end"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"O'Neil", "well-known", "x"}, tokenize("O'Neil, 42 well-known x!"))
}

func TestOptionValidation(t *testing.T) {
	assert.NoError(t, FallbackNoun.Validate())
	assert.Error(t, Fallback("maybe").Validate())
	assert.NoError(t, TitleFull.Validate())
	assert.Error(t, TitleMode("half").Validate())
}
