// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DepositType describes what a repository entry holds: a full-text
// deposit, a bibliographic-only notice, or something the repository did
// not classify.
type DepositType string

const (
	DepositFile    DepositType = "file"
	DepositNotice  DepositType = "notice"
	DepositUnknown DepositType = ""
)

// CollectionEntry is one repository notice belonging to the target
// collection and date window. A notice carrying several alternate titles
// produces one entry per title variant, all sharing the same
// RepositoryID. NormalizedTitle is derived from Title at entry-creation
// time and never recomputed ad hoc.
type CollectionEntry struct {
	RepositoryID    string      `json:"repository_id" yaml:"repository_id"`
	DOI             string      `json:"doi,omitempty" yaml:"doi,omitempty"`
	Title           string      `json:"title" yaml:"title"`
	NormalizedTitle string      `json:"normalized_title" yaml:"normalized_title"`
	DepositType     DepositType `json:"deposit_type,omitempty" yaml:"deposit_type,omitempty"`
	ExternalLink    string      `json:"external_link,omitempty" yaml:"external_link,omitempty"`
	ExternalID      string      `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	CanonicalURI    string      `json:"canonical_uri,omitempty" yaml:"canonical_uri,omitempty"`
}

// Notice is a repository record as returned by a live search query. It
// keeps all alternate titles so the matcher can test each one.
type Notice struct {
	RepositoryID string      `json:"repository_id" yaml:"repository_id"`
	DOI          string      `json:"doi,omitempty" yaml:"doi,omitempty"`
	Titles       []string    `json:"titles" yaml:"titles"`
	DepositType  DepositType `json:"deposit_type,omitempty" yaml:"deposit_type,omitempty"`
	ExternalLink string      `json:"external_link,omitempty" yaml:"external_link,omitempty"`
	ExternalID   string      `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	CanonicalURI string      `json:"canonical_uri,omitempty" yaml:"canonical_uri,omitempty"`
}

// Entry converts the notice into a CollectionEntry for the given title
// variant with its precomputed normalized form.
func (n Notice) Entry(title, normalizedTitle string) CollectionEntry {
	return CollectionEntry{
		RepositoryID:    n.RepositoryID,
		DOI:             n.DOI,
		Title:           title,
		NormalizedTitle: normalizedTitle,
		DepositType:     n.DepositType,
		ExternalLink:    n.ExternalLink,
		ExternalID:      n.ExternalID,
		CanonicalURI:    n.CanonicalURI,
	}
}
