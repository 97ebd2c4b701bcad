// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hal

import "strings"

// solrEscapes maps Solr query metacharacters to their escaped form.
// Backslash is handled first in EscapeTerm so already-escaped sequences
// are not double-processed incorrectly.
var solrEscapes = map[rune]string{
	'+': `\+`, '-': `\-`, '&': `\&`, '|': `\|`, '!': `\!`, '(': `\(`,
	')': `\)`, '{': `\{`, '}': `\}`, '[': `\[`, ']': `\]`, '^': `\^`,
	'~': `\~`, '*': `\*`, '?': `\?`, ':': `\:`, '"': `\"`,
}

// EscapeTerm escapes a free-text term for inclusion in a Solr query.
func EscapeTerm(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if esc, ok := solrEscapes[r]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
