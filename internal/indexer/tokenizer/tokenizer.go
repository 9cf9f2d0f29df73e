// Package tokenizer provides text tokenisation for the search engine.
// Text is split on whitespace and every raw token is normalised by
// lower-casing it and dropping all non-word characters. No stemming or
// stop-word removal is applied.
package tokenizer

import (
	"strings"
	"unicode"
)

// Fields splits text into raw tokens on any run of Unicode white space.
// Line breaks are treated like any other whitespace.
func Fields(text string) []string {
	return strings.Fields(text)
}

// Normalize lower-cases raw and keeps only word characters (letters,
// numbers and underscore). A token made only of punctuation normalises to
// the empty string. Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(raw string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if isWordRune(r) {
			return r
		}
		return -1
	}, raw)
}

// Tokenize splits text with Fields and normalises every raw token. The
// result has exactly one entry per raw token, so empty tokens are kept.
func Tokenize(text string) []string {
	words := Fields(text)
	tokens := make([]string, len(words))
	for i, word := range words {
		tokens[i] = Normalize(word)
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
