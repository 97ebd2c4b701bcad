// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"reflect"
	"testing"

	"github.com/meshintel/labhal/pkg/types"
)

func TestMergeGroupsByCleanedDOI(t *testing.T) {
	records := []types.PublicationRecord{
		{Title: "Paper X", DOI: "10.1000/x", Source: types.SourceScopus, SourceID: "2-s2.0-1"},
		{Title: "Paper X", DOI: "https://doi.org/10.1000/X", Source: types.SourceOpenAlex, SourceID: "W123"},
		{Title: "Paper X", Source: types.SourcePubMed, SourceID: "999"},
	}

	merged := Merge(records)
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2 (DOI group + no-DOI loner)", len(merged))
	}

	group := merged[0]
	if group.DOI != "10.1000/x" {
		t.Errorf("group DOI = %q, want %q", group.DOI, "10.1000/x")
	}
	if want := []string{"scopus", "openalex"}; !reflect.DeepEqual(group.Sources, want) {
		t.Errorf("group Sources = %v, want %v", group.Sources, want)
	}
	if want := []string{"2-s2.0-1", "W123"}; !reflect.DeepEqual(group.SourceIDs, want) {
		t.Errorf("group SourceIDs = %v, want %v", group.SourceIDs, want)
	}

	// The same-title no-DOI record must not join the group.
	loner := merged[1]
	if loner.Title != "Paper X" || loner.DOI != "" {
		t.Errorf("loner = %+v, want title kept and no DOI", loner)
	}
	if want := []string{"pubmed"}; !reflect.DeepEqual(loner.Sources, want) {
		t.Errorf("loner Sources = %v, want %v", loner.Sources, want)
	}
}

func TestMergeDocumentsFieldConflicts(t *testing.T) {
	records := []types.PublicationRecord{
		{Title: "Same", DOI: "10.1/a", Source: types.SourceScopus, SourceID: "s1", VenueTitle: "Journal B"},
		{Title: "Same", DOI: "10.1/a", Source: types.SourceOpenAlex, SourceID: "w1", VenueTitle: "Journal A"},
	}

	merged := Merge(records)
	if len(merged) != 1 {
		t.Fatalf("len(merged) = %d, want 1", len(merged))
	}
	if merged[0].VenueTitle != "Journal A|Journal B" {
		t.Errorf("VenueTitle = %q, want sorted pipe join %q", merged[0].VenueTitle, "Journal A|Journal B")
	}
	if merged[0].Title != "Same" {
		t.Errorf("Title = %q, agreeing values must not be joined", merged[0].Title)
	}
}

func TestMergeNoDOIRecordsNeverMergeWithEachOther(t *testing.T) {
	records := []types.PublicationRecord{
		{Title: "Untracked work", Source: types.SourceScopus, SourceID: "s1"},
		{Title: "Untracked work", Source: types.SourcePubMed, SourceID: "p1"},
		{Title: "Untracked work", DOI: "nan", Source: types.SourceOpenAlex, SourceID: "w1"},
	}

	merged := Merge(records)
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3: identical titles without DOI stay separate", len(merged))
	}
}

func TestMergePlaceholderDOIsAreUnusable(t *testing.T) {
	for _, placeholder := range []string{"", "nan", "NONE", " na ", "<NA>"} {
		r := types.PublicationRecord{Title: "T", DOI: placeholder, Source: types.SourceScopus}
		merged := Merge([]types.PublicationRecord{r})
		if len(merged) != 1 || merged[0].DOI != "" {
			t.Errorf("placeholder %q should produce one loner with empty DOI, got %+v", placeholder, merged)
		}
	}
}

func TestMergeOutputOrder(t *testing.T) {
	records := []types.PublicationRecord{
		{Title: "No DOI first", Source: types.SourcePubMed, SourceID: "p1"},
		{Title: "B", DOI: "10.1/b", Source: types.SourceScopus, SourceID: "s1"},
		{Title: "A", DOI: "10.1/a", Source: types.SourceScopus, SourceID: "s2"},
		{Title: "B", DOI: "10.1/b", Source: types.SourceOpenAlex, SourceID: "w1"},
	}

	merged := Merge(records)
	if len(merged) != 3 {
		t.Fatalf("len(merged) = %d, want 3", len(merged))
	}
	// DOI groups in encounter order, then loners.
	if merged[0].DOI != "10.1/b" || merged[1].DOI != "10.1/a" {
		t.Errorf("DOI group order = %q, %q; want encounter order b, a", merged[0].DOI, merged[1].DOI)
	}
	if merged[2].Title != "No DOI first" {
		t.Errorf("loners must come after DOI groups, got %+v", merged[2])
	}
}
