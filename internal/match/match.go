// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match reconciles one merged publication against the collection
// index, falling back to live repository queries, following a strict
// precedence order: DOI in collection, DOI in repository, exact title in
// collection, fuzzy title in collection, exact title in repository,
// fuzzy title in repository.
package match

import (
	"context"
	"strings"

	"github.com/meshintel/labhal/internal/collection"
	"github.com/meshintel/labhal/internal/textnorm"
	"github.com/meshintel/labhal/pkg/types"
)

// LiveRepository performs live lookups against the repository's search
// index when the collection snapshot does not resolve a record. A nil
// notice with a nil error means no document matched.
type LiveRepository interface {
	QueryDOI(ctx context.Context, doi string) (*types.Notice, error)
	QueryTitle(ctx context.Context, title string) (*types.Notice, error)
}

// Resolve produces the match verdict for one record. Precedence is
// evaluated in order and the first success wins; DOI evidence always
// beats title evidence, and the local snapshot is always tried before
// the live repository. Live-call failures are treated as misses, not
// propagated: one record's transport error must never abort the batch.
func Resolve(ctx context.Context, record types.MergedPublication, index *collection.Index, live LiveRepository) types.MatchVerdict {
	hasDOI := record.HasDOI()
	hasTitle := strings.TrimSpace(record.Title) != ""

	if hasDOI {
		doi := types.CleanDOI(record.DOI)
		if e := index.FindByDOI(doi); e != nil {
			return entryVerdict(types.StatusInCollection, e)
		}
		if live != nil {
			if n, err := live.QueryDOI(ctx, doi); err == nil && n != nil {
				return noticeVerdict(types.StatusInRepository, n)
			}
		}
	}

	if hasTitle {
		if e := index.FindExactTitle(record.Title); e != nil {
			return entryVerdict(types.StatusExactTitleInCollection, e)
		}

		normalized := textnorm.Normalize(trimBracketNote(record.Title))
		if e := index.FindFuzzyTitle(normalized); e != nil {
			return entryVerdict(types.StatusFuzzyTitleInCollection, e)
		}

		if live != nil {
			// One live lookup serves both the exact and fuzzy checks
			// against the top candidate's alternate titles.
			if n, err := live.QueryTitle(ctx, record.Title); err == nil && n != nil {
				for _, t := range n.Titles {
					if t == record.Title {
						return noticeVerdict(types.StatusExactTitleInRepository, n)
					}
				}
				for _, t := range n.Titles {
					if textnorm.TitlesMatch(normalized, textnorm.Normalize(t)) {
						return noticeVerdict(types.StatusFuzzyTitleInRepository, n)
					}
				}
			}
		}
	}

	if !hasDOI && !hasTitle {
		return types.MatchVerdict{Status: types.StatusInsufficientData}
	}
	return types.MatchVerdict{Status: types.StatusOutsideRepository}
}

// trimBracketNote strips a trailing bracketed note before normalization.
// PubMed decorates translated titles like "Title. [Article in French]";
// the note would otherwise poison the fuzzy comparison.
func trimBracketNote(title string) string {
	t := strings.TrimSpace(title)
	if !strings.HasSuffix(t, "]") {
		return title
	}
	i := strings.LastIndex(t, "[")
	if i <= 0 {
		return title
	}
	head := strings.TrimSpace(t[:i])
	if head == "" {
		return title
	}
	return head
}

func entryVerdict(status types.MatchStatus, e *types.CollectionEntry) types.MatchVerdict {
	return types.MatchVerdict{
		Status:              status,
		MatchedTitle:        e.Title,
		MatchedRepositoryID: e.RepositoryID,
		MatchedDepositType:  e.DepositType,
		MatchedExternalLink: e.ExternalLink,
		MatchedExternalID:   e.ExternalID,
		MatchedCanonicalURI: e.CanonicalURI,
	}
}

func noticeVerdict(status types.MatchStatus, n *types.Notice) types.MatchVerdict {
	title := ""
	if len(n.Titles) > 0 {
		title = n.Titles[0]
	}
	return types.MatchVerdict{
		Status:              status,
		MatchedTitle:        title,
		MatchedRepositoryID: n.RepositoryID,
		MatchedDepositType:  n.DepositType,
		MatchedExternalLink: n.ExternalLink,
		MatchedExternalID:   n.ExternalID,
		MatchedCanonicalURI: n.CanonicalURI,
	}
}
