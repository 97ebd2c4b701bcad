// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n ", ""},
		{"lowercases", "Deep Learning", "deep learning"},
		{"strips accents", "Écologie, Biodiversité!", "ecologie biodiversite"},
		{"punctuation to space", "CRISPR-Cas9: a review", "crispr cas9 a review"},
		{"collapses whitespace", "a   b\t\tc", "a b c"},
		{"trims", "  hello world  ", "hello world"},
		{"digits kept", "COVID-19 vaccines", "covid 19 vaccines"},
		{"mixed diacritics", "naïve Bayes résumé", "naive bayes resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Écologie, Biodiversité!",
		"The  Structure of Scientific   Revolutions",
		"naïve β-lactamase inhibitors (2nd ed.)",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent on %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeAccentCaseEquivalence(t *testing.T) {
	if Normalize("Écologie, Biodiversité!") != Normalize("ecologie biodiversite") {
		t.Errorf("accented and plain forms should normalize identically")
	}
}
