// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the labhal
// reconciliation pipeline: bibliographic records harvested from external
// sources, repository collection entries, match verdicts, and open-access
// enrichment results.
package types

import "strings"

// SourceName identifies the bibliographic database a record came from.
type SourceName string

const (
	SourceScopus   SourceName = "scopus"
	SourceOpenAlex SourceName = "openalex"
	SourcePubMed   SourceName = "pubmed"
)

// doiPrefix is the URL form some sources put in front of a bare DOI.
const doiPrefix = "https://doi.org/"

// doiPlaceholders are string values that look like a DOI cell but carry
// no identifier. They come from upstream exports that stringify missing
// values.
var doiPlaceholders = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"na":   true,
	"<na>": true,
}

// CleanDOI returns the canonical form of a DOI: trimmed, lower-cased,
// with the https://doi.org/ prefix stripped. Every comparison and every
// dedup key in the pipeline goes through this function.
func CleanDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	return strings.TrimPrefix(doi, doiPrefix)
}

// UsableDOI reports whether the cleaned DOI carries a real identifier
// rather than a placeholder left behind by an upstream export.
func UsableDOI(doi string) bool {
	return !doiPlaceholders[CleanDOI(doi)]
}

// PublicationRecord is one bibliographic item from one source, mapped
// from the raw API payload at the system boundary. The DOI field, once
// present, is always lower-cased and stripped of the URL prefix.
type PublicationRecord struct {
	// Title is the publication title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// DOI is the cleaned DOI, or empty if the source had none.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Source identifies the database that produced this record.
	Source SourceName `json:"source" yaml:"source"`

	// SourceID is the record identifier inside the source database
	// (Scopus EID, OpenAlex work ID, PubMed PMID).
	SourceID string `json:"source_id" yaml:"source_id"`

	// VenueTitle is the journal or container title.
	VenueTitle string `json:"venue_title,omitempty" yaml:"venue_title,omitempty"`

	// PublicationDate is the publication date string as reported by the
	// source; formats differ per source and are not reinterpreted.
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
}

// MergedPublication is one record per unique work after cross-source
// deduplication. Field values that disagreed across sources are joined
// with "|" in sorted order; Sources and SourceIDs union the contributing
// records. At most one MergedPublication exists per DOI; records without
// a DOI are never merged with each other.
type MergedPublication struct {
	Title           string   `json:"title" yaml:"title"`
	DOI             string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Sources         []string `json:"sources" yaml:"sources"`
	SourceIDs       []string `json:"source_ids" yaml:"source_ids"`
	VenueTitle      string   `json:"venue_title,omitempty" yaml:"venue_title,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
}

// HasDOI reports whether the merged record carries a usable DOI.
func (m MergedPublication) HasDOI() bool {
	return UsableDOI(m.DOI)
}
