// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authors detects a lab's own researchers inside the author
// lists attached to reconciled publications. Names are canonicalized
// before comparison so "Dupont, J.-P." and "jean pierre dupont" can meet
// in the middle, with a stricter threshold for initial-only forms.
package authors

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/meshintel/labhal/internal/textnorm"
)

// Similarity cutoffs. Full normalized names tolerate more distance than
// initial forms, where one wrong letter is a different person.
const (
	fullNameThreshold = 0.85
	initialThreshold  = 0.90
)

var spaceRuns = regexp.MustCompile(`\s+`)

// NormalizeName canonicalizes a person name: trim, lower-case, strip
// accents, turn hyphens and dots into spaces, collapse whitespace, and
// rewrite "Family, Given" into "given family".
func NormalizeName(name string) string {
	n := textnorm.StripAccents(strings.ToLower(strings.TrimSpace(name)))
	n = strings.NewReplacer("-", " ", ".", " ").Replace(n)
	n = strings.TrimSpace(spaceRuns.ReplaceAllString(n, " "))

	if family, given, found := strings.Cut(n, ","); found {
		family = strings.TrimSpace(family)
		given = strings.TrimSpace(given)
		if family != "" && given != "" {
			return given + " " + family
		}
	}
	return n
}

// InitialForm reduces a normalized name to "first-initial family-name".
// Single-token names pass through unchanged.
func InitialForm(normalized string) string {
	parts := strings.Fields(normalized)
	switch {
	case len(parts) >= 2:
		return string([]rune(parts[0])[0]) + " " + parts[len(parts)-1]
	case len(parts) == 1:
		return normalized
	}
	return ""
}

// Roster is a lab's researcher list prepared for matching. The original
// spellings are kept so detections report the roster's own form.
type Roster struct {
	byFullName map[string]string
	byInitial  map[string]string
}

// NewRoster indexes researcher names by normalized full name and by
// initial form.
func NewRoster(names []string) *Roster {
	r := &Roster{
		byFullName: make(map[string]string, len(names)),
		byInitial:  make(map[string]string, len(names)),
	}
	for _, name := range names {
		normalized := NormalizeName(name)
		if normalized == "" {
			continue
		}
		r.byFullName[normalized] = name
		r.byInitial[InitialForm(normalized)] = name
	}
	return r
}

// Len returns the number of distinct normalized names in the roster.
func (r *Roster) Len() int { return len(r.byFullName) }

// Detect returns the roster names recognized among the publication's
// authors, sorted, each at most once. Full-name matches are tried first;
// an initial-form match only applies when the full name missed.
func (r *Roster) Detect(pubAuthors []string) []string {
	found := make(map[string]bool)

	for _, author := range pubAuthors {
		normalized := NormalizeName(author)
		if normalized == "" {
			continue
		}
		if original, ok := r.closest(r.byFullName, normalized, fullNameThreshold); ok {
			found[original] = true
			continue
		}
		if original, ok := r.closest(r.byInitial, InitialForm(normalized), initialThreshold); ok {
			found[original] = true
		}
	}

	detected := make([]string, 0, len(found))
	for name := range found {
		detected = append(detected, name)
	}
	sort.Strings(detected)
	return detected
}

// closest returns the roster entry most similar to candidate, if any
// entry reaches the threshold.
func (r *Roster) closest(index map[string]string, candidate string, threshold float64) (string, bool) {
	bestScore := 0.0
	bestName := ""
	for key, original := range index {
		score := similarity(candidate, key)
		if score > bestScore || (score == bestScore && original < bestName) {
			bestScore = score
			bestName = original
		}
	}
	if bestScore >= threshold {
		return bestName, true
	}
	return "", false
}

// similarity is 1 minus the normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longer := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > longer {
		longer = l
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longer)
}
