// Package textnorm normalizes free text into a sequence of searchable stems.
// It strips everything outside [A-Za-z ], lower-cases, splits on whitespace,
// removes stop words, and Porter-stems each surviving token. The same pipeline
// runs at index time and at query time so that both sides agree on stems.
package textnorm

import (
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
)

// Normalize reduces raw text to an ordered sequence of stems. Duplicates are
// retained because term frequency matters to the index writer. It never
// fails; unparseable input yields an empty sequence.
//
// Stripping is lossy on purpose: numerals, hyphens, and non-Latin scripts are
// discarded before tokenization, matching the behavior the index was built
// around.
func Normalize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ':
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	stems := make([]string, 0, len(words))
	for _, word := range words {
		if IsStopWord(word) {
			continue
		}
		stems = append(stems, Stem(word))
	}
	return stems
}

// Stem reduces a single lower-case alphabetic token to its root form using
// the Snowball English (Porter) stemmer.
func Stem(word string) string {
	return snowballeng.Stem(word, false)
}
