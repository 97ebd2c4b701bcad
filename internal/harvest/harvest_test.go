// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/labhal/pkg/types"
)

func testHarvestConfig() types.HarvestConfig {
	return types.HarvestConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "labhal-test"},
		MaxRecords: 2000,
	}
}

func TestScopusPagesUntilTotal(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "key123", r.Header.Get("X-ELS-APIKey"))
		start := r.URL.Query().Get("start")

		// 30 results total: a full first page, then 5 more.
		var entries []string
		switch start {
		case "0":
			for i := 0; i < 25; i++ {
				entries = append(entries, scopusEntryJSON(i))
			}
		case "25":
			for i := 25; i < 30; i++ {
				entries = append(entries, scopusEntryJSON(i))
			}
		}
		fmt.Fprintf(w, `{"search-results": {"opensearch:totalResults": "30", "entry": [%s]}}`,
			strings.Join(entries, ","))
	}))
	defer server.Close()

	oldBase := scopusAPIBase
	scopusAPIBase = server.URL
	defer func() { scopusAPIBase = oldBase }()

	cfg := testHarvestConfig()
	cfg.ScopusAPIKey = "key123"
	src := &Scopus{HTTP: server.Client(), Query: "AF-ID(60105638)", Cfg: cfg}

	records, err := src.Fetch(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, records, 30)
	assert.Equal(t, 2, requests)

	assert.Equal(t, "Publication 0", records[0].Title)
	assert.Equal(t, "10.1000/p0", records[0].DOI)
	assert.Equal(t, types.SourceScopus, records[0].Source)
	assert.Equal(t, "SCOPUS_ID:0", records[0].SourceID)
	assert.Equal(t, "Journal of Tests", records[0].VenueTitle)
}

func scopusEntryJSON(i int) string {
	return fmt.Sprintf(`{
		"dc:title": "Publication %d",
		"prism:doi": "https://doi.org/10.1000/P%d",
		"dc:identifier": "SCOPUS_ID:%d",
		"prism:publicationName": "Journal of Tests",
		"prism:coverDate": "2024-01-0%d"
	}`, i, i, i, i%9+1)
}

func TestScopusRequiresAPIKey(t *testing.T) {
	src := &Scopus{HTTP: http.DefaultClient, Query: "x", Cfg: testHarvestConfig()}
	_, err := src.Fetch(context.Background(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestScopusFailedPageReturnsPartial(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var entries []string
		for i := 0; i < 25; i++ {
			entries = append(entries, scopusEntryJSON(i))
		}
		fmt.Fprintf(w, `{"search-results": {"opensearch:totalResults": "50", "entry": [%s]}}`,
			strings.Join(entries, ","))
	}))
	defer server.Close()

	oldBase := scopusAPIBase
	scopusAPIBase = server.URL
	defer func() { scopusAPIBase = oldBase }()

	cfg := testHarvestConfig()
	cfg.ScopusAPIKey = "key123"
	src := &Scopus{HTTP: server.Client(), Query: "x", Cfg: cfg}

	records, err := src.Fetch(context.Background(), &bytes.Buffer{})
	assert.Error(t, err)
	assert.Len(t, records, 25)
}

func TestOpenAlexCursorPaging(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lab@example.org", r.URL.Query().Get("mailto"))
		switch r.URL.Query().Get("cursor") {
		case "*":
			fmt.Fprint(w, `{
				"meta": {"next_cursor": "page2"},
				"results": [{
					"id": "https://openalex.org/W1",
					"title": "First work",
					"doi": "https://doi.org/10.1000/W1",
					"publication_date": "2024-02-01",
					"primary_location": {"source": {"display_name": "Venue One"}}
				}]
			}`)
		case "page2":
			fmt.Fprint(w, `{
				"meta": {"next_cursor": null},
				"results": [{
					"id": "https://openalex.org/W2",
					"title": "Second work",
					"doi": null,
					"publication_date": "2024-03-01"
				}]
			}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer server.Close()

	oldBase := openAlexAPIBase
	openAlexAPIBase = server.URL
	defer func() { openAlexAPIBase = oldBase }()

	cfg := testHarvestConfig()
	cfg.OpenAlexMailto = "lab@example.org"
	src := &OpenAlex{HTTP: server.Client(), Filter: "authorships.institutions.id:i1", Cfg: cfg}

	records, err := src.Fetch(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "First work", records[0].Title)
	assert.Equal(t, "10.1000/w1", records[0].DOI)
	assert.Equal(t, types.SourceOpenAlex, records[0].Source)
	assert.Equal(t, "Venue One", records[0].VenueTitle)

	assert.Equal(t, "Second work", records[1].Title)
	assert.Empty(t, records[1].DOI)
	assert.Empty(t, records[1].VenueTitle)
}

func TestOpenAlexHonorsMaxRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every page claims another one follows.
		fmt.Fprint(w, `{
			"meta": {"next_cursor": "again"},
			"results": [
				{"id": "W1", "title": "A"},
				{"id": "W2", "title": "B"}
			]
		}`)
	}))
	defer server.Close()

	oldBase := openAlexAPIBase
	openAlexAPIBase = server.URL
	defer func() { openAlexAPIBase = oldBase }()

	cfg := testHarvestConfig()
	cfg.MaxRecords = 3
	src := &OpenAlex{HTTP: server.Client(), Filter: "x", Cfg: cfg}

	records, err := src.Fetch(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestPubMedSearchAndSummarize(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
		assert.Equal(t, "apikey1", r.URL.Query().Get("api_key"))
		fmt.Fprint(w, `{"esearchresult": {"idlist": ["111", "222"]}}`)
	}))
	defer search.Close()

	summary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "111,222", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"result": {
			"uids": ["111", "222"],
			"111": {
				"title": "Article one",
				"fulljournalname": "Journal One",
				"sortpubdate": "2024/01/15 00:00",
				"articleids": [
					{"idtype": "pubmed", "value": "111"},
					{"idtype": "doi", "value": "10.1000/A1"}
				]
			},
			"222": {
				"title": "Article two",
				"fulljournalname": "Journal Two",
				"pubdate": "2024 Mar",
				"articleids": [{"idtype": "pubmed", "value": "222"}]
			}
		}}`)
	}))
	defer summary.Close()

	oldSearch, oldSummary := pubmedESearchBase, pubmedESummaryBase
	pubmedESearchBase = search.URL
	pubmedESummaryBase = summary.URL
	defer func() {
		pubmedESearchBase = oldSearch
		pubmedESummaryBase = oldSummary
	}()

	cfg := testHarvestConfig()
	cfg.PubMedAPIKey = "apikey1"
	cfg.RequestDelay = time.Millisecond
	src := &PubMed{HTTP: search.Client(), Query: "MIP[Affiliation]", Cfg: cfg}

	records, err := src.Fetch(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Article one", records[0].Title)
	assert.Equal(t, "10.1000/a1", records[0].DOI)
	assert.Equal(t, types.SourcePubMed, records[0].Source)
	assert.Equal(t, "111", records[0].SourceID)
	assert.Equal(t, "2024/01/15 00:00", records[0].PublicationDate)

	assert.Equal(t, "Article two", records[1].Title)
	assert.Empty(t, records[1].DOI)
	assert.Equal(t, "2024 Mar", records[1].PublicationDate)
}

func TestFetchAllContinuesAfterFailure(t *testing.T) {
	good := sourceFunc{
		name: types.SourceOpenAlex,
		fetch: func(context.Context) ([]types.PublicationRecord, error) {
			return []types.PublicationRecord{{Title: "ok", Source: types.SourceOpenAlex}}, nil
		},
	}
	bad := sourceFunc{
		name: types.SourceScopus,
		fetch: func(context.Context) ([]types.PublicationRecord, error) {
			return nil, fmt.Errorf("api down")
		},
	}

	var out bytes.Buffer
	records := FetchAll(context.Background(), []Source{bad, good}, &out)
	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].Title)
	assert.Contains(t, out.String(), "scopus harvest incomplete")
}

type sourceFunc struct {
	name  types.SourceName
	fetch func(context.Context) ([]types.PublicationRecord, error)
}

func (s sourceFunc) Name() types.SourceName { return s.name }

func (s sourceFunc) Fetch(ctx context.Context, _ io.Writer) ([]types.PublicationRecord, error) {
	return s.fetch(ctx)
}
