// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textnorm

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity thresholds for fuzzy title comparison. Short titles use the
// looser threshold because a single edit moves the ratio much further on
// them; the strict threshold applies once the shorter title exceeds
// shortTitleLen characters.
const (
	strictThreshold = 0.90
	shortThreshold  = 0.85
	shortTitleLen   = 20
)

// TitlesMatch reports whether two normalized titles denote the same
// work. The similarity ratio is 1 - editDistance/longerLen; the
// threshold is strictThreshold when the shorter title is longer than
// shortTitleLen characters, shortThreshold otherwise. An empty string on
// either side never matches.
func TitlesMatch(normA, normB string) bool {
	if normA == "" || normB == "" {
		return false
	}

	lenA := utf8.RuneCountInString(normA)
	lenB := utf8.RuneCountInString(normB)
	shorter, longer := lenA, lenB
	if lenB < lenA {
		shorter, longer = lenB, lenA
	}

	threshold := shortThreshold
	if shorter > shortTitleLen {
		threshold = strictThreshold
	}

	dist := levenshtein.ComputeDistance(normA, normB)
	ratio := 1.0 - float64(dist)/float64(longer)
	return ratio >= threshold
}
