// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm canonicalizes titles for comparison and decides
// whether two normalized titles denote the same work. Both sides of any
// fuzzy comparison must go through Normalize for the thresholds to be
// meaningful.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes,
// turning "Écologie" into "Ecologie".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a title: strip diacritics, replace every
// character that is not alphanumeric or whitespace with a space,
// collapse whitespace runs, lower-case, trim. Total and deterministic;
// any input, including the empty string, returns a string.
func Normalize(text string) string {
	unaccented, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Malformed input passes through untransformed; the character
		// filter below still applies.
		unaccented = text
	}

	var b strings.Builder
	b.Grow(len(unaccented))
	for _, r := range unaccented {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// StripAccents removes diacritics without touching punctuation or case.
// Callers that need their own character filtering build on this.
func StripAccents(text string) string {
	unaccented, _, err := transform.String(stripMarks, text)
	if err != nil {
		return text
	}
	return unaccented
}
