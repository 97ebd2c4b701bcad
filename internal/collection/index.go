// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collection materializes a repository collection snapshot as an
// in-memory index with exact-title, fuzzy-title, and DOI lookup, plus a
// SQLite cache so a re-run can reuse an imported snapshot.
package collection

import (
	"sort"

	"github.com/meshintel/labhal/internal/textnorm"
	"github.com/meshintel/labhal/pkg/types"
)

// Index is a read-only snapshot of the collection's entries. It is built
// once and then shared by concurrent matchers without locking; no writer
// exists after construction.
type Index struct {
	entries []types.CollectionEntry
	byTitle map[string]int
	byDOI   map[string]int
}

// NewIndex builds an index over the entries. Entries are sorted by
// (repositoryID, title) so the fuzzy scan's first-match-wins order is
// reproducible across rebuilds. Entries missing a normalized title get
// one derived from the title, preserving the invariant that normalized
// forms always come from textnorm.Normalize.
func NewIndex(entries []types.CollectionEntry) *Index {
	sorted := make([]types.CollectionEntry, len(entries))
	copy(sorted, entries)
	for i := range sorted {
		if sorted[i].NormalizedTitle == "" {
			sorted[i].NormalizedTitle = textnorm.Normalize(sorted[i].Title)
		}
		sorted[i].DOI = types.CleanDOI(sorted[i].DOI)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RepositoryID != sorted[j].RepositoryID {
			return sorted[i].RepositoryID < sorted[j].RepositoryID
		}
		return sorted[i].Title < sorted[j].Title
	})

	ix := &Index{
		entries: sorted,
		byTitle: make(map[string]int, len(sorted)),
		byDOI:   make(map[string]int, len(sorted)),
	}
	for i, e := range sorted {
		if _, ok := ix.byTitle[e.Title]; !ok {
			ix.byTitle[e.Title] = i
		}
		if e.DOI != "" {
			if _, ok := ix.byDOI[e.DOI]; !ok {
				ix.byDOI[e.DOI] = i
			}
		}
	}
	return ix
}

// Len returns the number of indexed title-variant entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Entries returns the sorted entries, for persistence and export.
func (ix *Index) Entries() []types.CollectionEntry { return ix.entries }

// FindExactTitle returns the entry whose title equals the given title
// byte-for-byte, or nil. The comparison is deliberately not normalized.
func (ix *Index) FindExactTitle(title string) *types.CollectionEntry {
	if i, ok := ix.byTitle[title]; ok {
		e := ix.entries[i]
		return &e
	}
	return nil
}

// FindFuzzyTitle scans every entry's normalized title against the given
// normalized title and returns the first fuzzy match in index order, or
// nil. The argument must already be normalized.
func (ix *Index) FindFuzzyTitle(normalizedTitle string) *types.CollectionEntry {
	if normalizedTitle == "" {
		return nil
	}
	for i := range ix.entries {
		if textnorm.TitlesMatch(normalizedTitle, ix.entries[i].NormalizedTitle) {
			e := ix.entries[i]
			return &e
		}
	}
	return nil
}

// FindByDOI returns the entry with the given DOI (cleaned before
// comparison), or nil.
func (ix *Index) FindByDOI(doi string) *types.CollectionEntry {
	doi = types.CleanDOI(doi)
	if doi == "" {
		return nil
	}
	if i, ok := ix.byDOI[doi]; ok {
		e := ix.entries[i]
		return &e
	}
	return nil
}
