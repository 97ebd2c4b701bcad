// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Unpaywall status sentinels. Transport failures are converted to these
// values at the call site so one record's failure never aborts a batch.
const (
	OAStatusOpen    = "open"
	OAStatusClosed  = "closed"
	OAStatusNoDOI   = "missing doi"
	OAStatusMissing = "not found in unpaywall"
	OAStatusTimeout = "unpaywall timeout"
)

// OpenAccess holds the Unpaywall signals for one DOI.
type OpenAccess struct {
	// Status is "open", "closed", or one of the sentinel values above
	// (including formatted HTTP/transport error strings).
	Status string `json:"status" yaml:"status"`

	// OAStatus is Unpaywall's own classification (gold, green, hybrid,
	// bronze, closed).
	OAStatus string `json:"oa_status,omitempty" yaml:"oa_status,omitempty"`

	// PublisherLicense is the license of the best publisher-hosted copy.
	PublisherLicense string `json:"publisher_license,omitempty" yaml:"publisher_license,omitempty"`

	// PublisherLink is the best publisher-hosted open copy (PDF first,
	// landing page as fallback).
	PublisherLink string `json:"publisher_link,omitempty" yaml:"publisher_link,omitempty"`

	// RepositoryLink is the best repository-hosted open copy.
	RepositoryLink string `json:"repository_link,omitempty" yaml:"repository_link,omitempty"`

	// Publisher is the publisher name as reported by Unpaywall.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	// QueriedDOI is the DOI actually sent to the API.
	QueriedDOI string `json:"queried_doi,omitempty" yaml:"queried_doi,omitempty"`
}

// Row is one publication after the full pipeline: merged record, match
// verdict, open-access enrichment, deposit permission summary, optional
// author list, and the derived action.
type Row struct {
	MergedPublication `yaml:",inline"`

	Verdict    MatchVerdict `json:"verdict" yaml:"verdict"`
	OpenAccess OpenAccess   `json:"open_access" yaml:"open_access"`

	// Permission is the human-readable deposit-permission summary from
	// the OA permissions service; the action engine greps it for the
	// allowed version.
	Permission string `json:"permission,omitempty" yaml:"permission,omitempty"`

	// Authors holds "Given Family" names from Crossref when author
	// enrichment is enabled.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Action is the recommended next step, derived last, never mutated.
	Action string `json:"action" yaml:"action"`
}
