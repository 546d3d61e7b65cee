package extract

import (
	"regexp"
	"strings"
)

// tokenPattern matches alphabetic words, allowing internal apostrophes and hyphens.
var tokenPattern = regexp.MustCompile(`[A-Za-z][A-Za-z'-]*`)

// stopWords are articles and demonstratives that never start a candidate.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

// functionWords are the coordinating conjunctions. They pass the generic
// length filter but never stand for anything; only the generic-token rule
// consults them.
var functionWords = map[string]struct{}{
	"and": {}, "but": {}, "for": {}, "nor": {}, "yet": {},
}

// normalize collapses every whitespace run to a single space and trims the ends.
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// firstSentence returns the text up to and including the first '.', '!' or '?'
// that is followed by whitespace. The input must already be normalized.
func firstSentence(text string) string {
	for i := 0; i+1 < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				return text[:i+1]
			}
		}
	}
	return text
}

// tokenize splits text into word tokens.
func tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

func isStopWord(tok string) bool {
	_, ok := stopWords[strings.ToLower(tok)]
	return ok
}

func isFunctionWord(tok string) bool {
	_, ok := functionWords[strings.ToLower(tok)]
	return ok
}

func isUpperInitial(tok string) bool {
	return tok != "" && tok[0] >= 'A' && tok[0] <= 'Z'
}

// isAlpha reports whether tok consists of ASCII letters only.
func isAlpha(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// hasLetter reports whether s contains at least one ASCII letter.
func hasLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			return true
		}
	}
	return false
}

// sameWord compares case-insensitively after trimming.
func sameWord(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
