// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MatchStatus is the terminal state of reconciling one merged publication
// against the collection index and the live repository. Downstream
// consumers parse the leading clause of the derived action, so these
// strings are stable output, not free-form messages.
type MatchStatus string

const (
	// StatusInCollection: the DOI resolved inside the target collection.
	StatusInCollection MatchStatus = "in collection"

	// StatusInRepository: the DOI resolved in the repository but outside
	// the target collection.
	StatusInRepository MatchStatus = "in repository outside collection"

	// StatusExactTitleInCollection: the exact title string exists in the
	// collection snapshot.
	StatusExactTitleInCollection MatchStatus = "exact title match in collection: likely already deposited"

	// StatusFuzzyTitleInCollection: a normalized title in the collection
	// snapshot is close enough to count, pending human confirmation.
	StatusFuzzyTitleInCollection MatchStatus = "approximate title match in collection: needs verification"

	// StatusExactTitleInRepository: a live repository query returned a
	// notice carrying the exact title, outside the collection.
	StatusExactTitleInRepository MatchStatus = "exact title match in repository outside collection: affiliation likely needs correction"

	// StatusFuzzyTitleInRepository: a live repository query returned a
	// notice whose alternate titles fuzzy-match, outside the collection.
	StatusFuzzyTitleInRepository MatchStatus = "approximate title match in repository outside collection: verify affiliation"

	// StatusInsufficientData: the record had neither a usable DOI nor a
	// usable title, so no lookup was possible.
	StatusInsufficientData MatchStatus = "insufficient input data"

	// StatusOutsideRepository: every lookup missed.
	StatusOutsideRepository MatchStatus = "outside repository entirely"
)

// MatchVerdict is the outcome of reconciling one MergedPublication. The
// Matched* fields are empty when Status indicates no match. Computed once
// per record, read-only afterward.
type MatchVerdict struct {
	Status              MatchStatus `json:"status" yaml:"status"`
	MatchedTitle        string      `json:"matched_title,omitempty" yaml:"matched_title,omitempty"`
	MatchedRepositoryID string      `json:"matched_repository_id,omitempty" yaml:"matched_repository_id,omitempty"`
	MatchedDepositType  DepositType `json:"matched_deposit_type,omitempty" yaml:"matched_deposit_type,omitempty"`
	MatchedExternalLink string      `json:"matched_external_link,omitempty" yaml:"matched_external_link,omitempty"`
	MatchedExternalID   string      `json:"matched_external_id,omitempty" yaml:"matched_external_id,omitempty"`
	MatchedCanonicalURI string      `json:"matched_canonical_uri,omitempty" yaml:"matched_canonical_uri,omitempty"`
}

// InCollection reports whether the verdict landed inside the target
// collection, by DOI or by exact title.
func (v MatchVerdict) InCollection() bool {
	return v.Status == StatusInCollection || v.Status == StatusExactTitleInCollection
}

// OutsideCollection reports whether the verdict found the work in the
// repository but outside the target collection, which signals an
// affiliation problem on the existing notice.
func (v MatchVerdict) OutsideCollection() bool {
	switch v.Status {
	case StatusInRepository, StatusExactTitleInRepository, StatusFuzzyTitleInRepository:
		return true
	}
	return false
}
