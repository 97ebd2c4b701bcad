// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package action derives one recommended next step per publication from
// the match verdict and the open-access signals. This is a decision
// table with a fixed clause precedence; downstream consumers parse the
// leading clause, and clause order, exact-string dedup, and the " | "
// separator are all part of the contract.
package action

import (
	"fmt"
	"strings"

	"github.com/meshintel/labhal/pkg/types"
)

// Markers the engine greps inside the permission summary produced by the
// OA permissions client.
const (
	permPublishedMarker = "allowed version (oa.works): publishedversion"
	permAcceptedMarker  = "allowed version (oa.works): acceptedversion"
)

// separator joins the accumulated clauses.
const separator = " | "

// fallback is returned when no clause produced any text; every record
// always receives a recommendation.
const fallback = "needs manual review (no specific action deduced)."

// Deduce derives the recommended action for one row.
func Deduce(verdict types.MatchVerdict, hasDOI bool, oa types.OpenAccess, permission string) string {
	depositType := strings.ToLower(strings.TrimSpace(string(verdict.MatchedDepositType)))
	repoID := strings.TrimSpace(verdict.MatchedRepositoryID)
	oaStatus := strings.ToLower(strings.TrimSpace(oa.Status))
	repoLink := strings.TrimSpace(oa.RepositoryLink)
	pubLink := strings.TrimSpace(oa.PublisherLink)
	perm := strings.ToLower(permission)

	depositedWithFile := verdict.InCollection() && depositType == string(types.DepositFile)
	needsCreation := repoID == "" &&
		(verdict.Status == types.StatusOutsideRepository || verdict.Status == types.StatusInsufficientData)
	noticeOnly := verdict.InCollection() && depositType == string(types.DepositNotice) && repoID != ""
	fuzzyInCollection := verdict.Status == types.StatusFuzzyTitleInCollection
	affiliationIssue := verdict.OutsideCollection()

	canPublished := strings.Contains(perm, permPublishedMarker)
	canAccepted := strings.Contains(perm, permAcceptedMarker)

	noticeLink := noticeLink(verdict)

	var parts []string

	// An in-collection match that already carries the full text ends the
	// deduction: no OA clause may follow it.
	if depositedWithFile {
		parts = append(parts, "already deposited with file")
		if affiliationIssue {
			parts = append(parts, affiliationClause(noticeLink))
		}
		return joinDeduped(parts)
	}

	switch {
	case needsCreation:
		switch {
		case hasDOI && canPublished:
			parts = append(parts, withSource("create the notice and deposit the publisher version", pubLink))
		case hasDOI && canAccepted:
			parts = append(parts, "create the notice and deposit the postprint version.")
		default:
			parts = append(parts, "create the repository notice.")
		}

	case noticeOnly:
		clause := fmt.Sprintf("notice %s without file.", noticeLink)
		switch {
		case hasDOI && canPublished:
			clause += " " + withSource("deposit the publisher version", pubLink)
		case hasDOI && canAccepted:
			clause += " deposit the postprint version."
		}
		parts = append(parts, clause)

	case fuzzyInCollection:
		parts = append(parts, fmt.Sprintf("approximate title match in the collection (%s): verify manually.", noticeLink))
		if depositType == string(types.DepositNotice) && repoID != "" {
			parts = append(parts, "the matched notice has no file.")
			switch {
			case hasDOI && canPublished:
				parts = append(parts, withSource("if confirmed, deposit the publisher version", pubLink))
			case hasDOI && canAccepted:
				parts = append(parts, "if confirmed, deposit the postprint version.")
			}
		}
	}

	if affiliationIssue && !strings.Contains(strings.Join(parts, separator), "check affiliation") {
		parts = append(parts, affiliationClause(noticeLink))
	}

	// Complementary open-access evidence; links already cited by a
	// deposit clause are not repeated.
	if hasDOI {
		joined := strings.Join(parts, separator)
		if repoLink != "" && !strings.Contains(joined, repoLink) {
			parts = append(parts, fmt.Sprintf("open-access copy in a repository (unpaywall): %s.", repoLink))
		}
		joined = strings.Join(parts, separator)
		if pubLink != "" && !strings.Contains(joined, pubLink) {
			parts = append(parts, fmt.Sprintf("publisher link (unpaywall): %s.", pubLink))
		}

		oaPathFound := canPublished || canAccepted ||
			repoLink != "" || pubLink != "" ||
			strings.Contains(perm, "404 oa.works") || strings.Contains(perm, "501 oa.works") ||
			anyDepositSuggestion(parts)
		if oaStatus == types.OAStatusClosed && !oaPathFound {
			parts = append(parts, "closed access (unpaywall) and no clear permission: contact the author for a manuscript copy.")
		}
	}

	if len(parts) == 0 {
		return fallback
	}
	return joinDeduped(parts)
}

// noticeLink picks the most useful reference to an existing notice: the
// canonical URI, a constructed repository URL, or the bare id.
func noticeLink(v types.MatchVerdict) string {
	if uri := strings.TrimSpace(v.MatchedCanonicalURI); uri != "" {
		return uri
	}
	if id := strings.TrimSpace(v.MatchedRepositoryID); id != "" {
		return "https://hal.science/" + id
	}
	return ""
}

func affiliationClause(link string) string {
	clause := "check affiliation in the repository"
	if link != "" {
		clause += ": " + link
	}
	return clause
}

// withSource appends the publisher link as the deposit source when one
// exists, otherwise closes the clause.
func withSource(clause, publisherLink string) string {
	if publisherLink != "" {
		return clause + " (source: " + publisherLink + ")"
	}
	return clause + "."
}

// anyDepositSuggestion reports whether a prior clause already recommends
// depositing a specific version.
func anyDepositSuggestion(parts []string) bool {
	for _, p := range parts {
		if strings.Contains(p, "deposit the publisher version") || strings.Contains(p, "deposit the postprint version") {
			return true
		}
	}
	return false
}

// joinDeduped removes exact-duplicate clauses, preserving the order in
// which they were appended, and joins with the fixed separator.
func joinDeduped(parts []string) string {
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, p := range parts {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return strings.Join(out, separator)
}
