// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/labhal/internal/collection"
	"github.com/meshintel/labhal/pkg/types"
)

// fakeOA returns canned signals keyed by DOI.
type fakeOA struct {
	access      map[string]types.OpenAccess
	permissions map[string]string
	authors     map[string][]string
}

func (f *fakeOA) Unpaywall(_ context.Context, doi string) types.OpenAccess {
	if oa, ok := f.access[doi]; ok {
		return oa
	}
	return types.OpenAccess{Status: types.OAStatusMissing, QueriedDOI: doi}
}

func (f *fakeOA) Permissions(_ context.Context, doi string) string {
	if p, ok := f.permissions[doi]; ok {
		return p
	}
	return "no permission found (oa.works)"
}

func (f *fakeOA) Authors(_ context.Context, doi string) ([]string, error) {
	return f.authors[doi], nil
}

func testIndex() *collection.Index {
	return collection.NewIndex([]types.CollectionEntry{
		{
			RepositoryID: "hal-001",
			DOI:          "10.1000/deposited",
			Title:        "A deposited article with full text",
			DepositType:  types.DepositFile,
			CanonicalURI: "https://hal.science/hal-001",
		},
		{
			RepositoryID: "hal-002",
			DOI:          "10.1000/noticeonly",
			Title:        "An article present only as a notice",
			DepositType:  types.DepositNotice,
			CanonicalURI: "https://hal.science/hal-002",
		},
	})
}

func TestRunEndToEnd(t *testing.T) {
	records := []types.PublicationRecord{
		// Two sources report the deposited article; they must merge.
		{Title: "A deposited article with full text", DOI: "10.1000/deposited", Source: types.SourceScopus, SourceID: "SCOPUS_ID:1"},
		{Title: "A deposited article with full text", DOI: "https://doi.org/10.1000/DEPOSITED", Source: types.SourceOpenAlex, SourceID: "W1"},
		// Notice-only match: open access at the publisher, published
		// version allowed.
		{Title: "An article present only as a notice", DOI: "10.1000/noticeonly", Source: types.SourceScopus, SourceID: "SCOPUS_ID:2"},
		// Unknown everywhere.
		{Title: "A brand new unseen manuscript", DOI: "10.1000/new", Source: types.SourcePubMed, SourceID: "333"},
	}

	oaSvc := &fakeOA{
		access: map[string]types.OpenAccess{
			"10.1000/noticeonly": {
				Status:        types.OAStatusOpen,
				OAStatus:      "gold",
				PublisherLink: "https://press.example.org/no.pdf",
				QueriedDOI:    "10.1000/noticeonly",
			},
			"10.1000/new": {
				Status:     types.OAStatusClosed,
				QueriedDOI: "10.1000/new",
			},
		},
		permissions: map[string]string{
			"10.1000/noticeonly": "allowed version (oa.works): publishedVersion ; licence: cc-by ; embargo: none",
			"10.1000/new":        "permissions not found (404 oa.works) for doi 10.1000/new",
		},
	}

	var out bytes.Buffer
	rows, err := Run(context.Background(), records, Deps{
		Index: testIndex(),
		OA:    oaSvc,
		Cfg:   types.ReconcileConfig{Workers: 4},
	}, &out)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Merge collapsed the two deposited-article records.
	deposited := rows[0]
	assert.ElementsMatch(t, []string{"scopus", "openalex"}, deposited.Sources)
	assert.Equal(t, types.StatusInCollection, deposited.Verdict.Status)
	assert.Equal(t, "already deposited with file", deposited.Action)

	noticeOnly := rows[1]
	assert.Equal(t, types.StatusInCollection, noticeOnly.Verdict.Status)
	assert.Contains(t, noticeOnly.Action, "notice https://hal.science/hal-002 without file.")
	assert.Contains(t, noticeOnly.Action, "deposit the publisher version (source: https://press.example.org/no.pdf)")

	unseen := rows[2]
	assert.Equal(t, types.StatusOutsideRepository, unseen.Verdict.Status)
	assert.True(t, strings.HasPrefix(unseen.Action, "create the repository notice."), unseen.Action)

	assert.Contains(t, out.String(), "merged 4 harvested records into 3 publications")
}

func TestRunWithoutEnrichment(t *testing.T) {
	records := []types.PublicationRecord{
		{Title: "A deposited article with full text", DOI: "10.1000/deposited", Source: types.SourceScopus, SourceID: "SCOPUS_ID:1"},
	}

	var out bytes.Buffer
	rows, err := Run(context.Background(), records, Deps{
		Index: testIndex(),
		Cfg:   types.ReconcileConfig{},
	}, &out)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].OpenAccess.Status)
	assert.Equal(t, "already deposited with file", rows[0].Action)
}

func TestRunFetchesAuthors(t *testing.T) {
	records := []types.PublicationRecord{
		{Title: "A deposited article with full text", DOI: "10.1000/deposited", Source: types.SourceScopus, SourceID: "SCOPUS_ID:1"},
	}
	oaSvc := &fakeOA{
		authors: map[string][]string{"10.1000/deposited": {"Marie Curie", "Paul Langevin"}},
	}

	var out bytes.Buffer
	rows, err := Run(context.Background(), records, Deps{
		Index: testIndex(),
		OA:    oaSvc,
		Cfg:   types.ReconcileConfig{FetchAuthors: true},
	}, &out)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Marie Curie", "Paul Langevin"}, rows[0].Authors)
}

func TestResultsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	rows := []types.Row{
		{
			MergedPublication: types.MergedPublication{
				Title:     "Saved row",
				DOI:       "10.1000/x",
				Sources:   []string{"scopus"},
				SourceIDs: []string{"SCOPUS_ID:9"},
			},
			Verdict: types.MatchVerdict{Status: types.StatusInCollection, MatchedRepositoryID: "hal-9"},
			Action:  "already deposited with file",
		},
	}

	params := RunParams{Collection: "MIP", StartYear: 2020, EndYear: 2024}
	require.NoError(t, WriteResultsFile(path, params, rows))

	rf, err := ReadResultsFile(path)
	require.NoError(t, err)
	assert.Equal(t, params, rf.Run)
	assert.Equal(t, 1, rf.Summary.Total)
	assert.Equal(t, 1, rf.Summary.InCollection)
	require.Len(t, rf.Rows, 1)
	assert.Equal(t, "Saved row", rf.Rows[0].Title)
	assert.Equal(t, types.StatusInCollection, rf.Rows[0].Verdict.Status)
}
