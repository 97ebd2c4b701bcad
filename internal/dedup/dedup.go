// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup merges publication records pulled from multiple
// bibliographic sources into one row per unique work, keyed by
// normalized DOI. Records without a usable DOI are never merged with
// each other: title-based merging is intentionally not performed, so
// every no-DOI record survives as its own row.
package dedup

import (
	"sort"
	"strings"

	"github.com/meshintel/labhal/pkg/types"
)

// Merge deduplicates records by cleaned DOI. Within a DOI group, each
// non-identity field keeps its single distinct value, or joins the
// distinct values with "|" in sorted order to document the disagreement
// rather than silently picking one. Source names and source IDs are
// unioned with "|" semantics (unique, encounter order). Output order is
// DOI groups first, then no-DOI records, each partition in original
// encounter order.
func Merge(records []types.PublicationRecord) []types.MergedPublication {
	var (
		groupOrder []string
		groups     = make(map[string][]types.PublicationRecord)
		loners     []types.PublicationRecord
	)

	for _, r := range records {
		if !types.UsableDOI(r.DOI) {
			loners = append(loners, r)
			continue
		}
		key := types.CleanDOI(r.DOI)
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], r)
	}

	merged := make([]types.MergedPublication, 0, len(groupOrder)+len(loners))
	for _, key := range groupOrder {
		merged = append(merged, mergeGroup(key, groups[key]))
	}
	for _, r := range loners {
		merged = append(merged, types.MergedPublication{
			Title: r.Title,
			// Placeholder DOIs ("nan", "none", ...) are dropped, not
			// carried into the merged row.
			DOI:             "",
			Sources:         []string{string(r.Source)},
			SourceIDs:       appendDistinct(nil, r.SourceID),
			VenueTitle:      r.VenueTitle,
			PublicationDate: r.PublicationDate,
		})
	}
	return merged
}

// mergeGroup collapses all records sharing one cleaned DOI.
func mergeGroup(doi string, group []types.PublicationRecord) types.MergedPublication {
	m := types.MergedPublication{DOI: doi}

	var titles, venues, dates []string
	for _, r := range group {
		titles = appendDistinct(titles, r.Title)
		venues = appendDistinct(venues, r.VenueTitle)
		dates = appendDistinct(dates, r.PublicationDate)
		m.Sources = appendDistinct(m.Sources, string(r.Source))
		m.SourceIDs = appendDistinct(m.SourceIDs, r.SourceID)
	}

	m.Title = joinDistinct(titles)
	m.VenueTitle = joinDistinct(venues)
	m.PublicationDate = joinDistinct(dates)
	return m
}

// appendDistinct adds v to values if it is non-empty and not yet present.
func appendDistinct(values []string, v string) []string {
	if v == "" {
		return values
	}
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

// joinDistinct returns the single value, or all values joined with "|"
// in sorted order when sources disagreed.
func joinDistinct(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
