// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/labhal/pkg/types"
)

func swapBase(t *testing.T, server *httptest.Server) {
	t.Helper()
	old := halSearchBase
	halSearchBase = server.URL + "/"
	t.Cleanup(func() { halSearchBase = old })
}

func newClient(server *httptest.Server) *Client {
	return &Client{HTTP: server.Client(), UserAgent: "labhal-test"}
}

const noticeJSON = `{
	"docid": 123456,
	"doiId_s": "10.1000/Found",
	"title_s": ["A found notice", "Une notice trouvée"],
	"submitType_s": "file",
	"linkExtUrl_s": "https://ext.example.org/1",
	"linkExtId_s": "ext-1",
	"uri_s": "https://hal.science/hal-123456"
}`

func TestQueryDOI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `doiId_s:"10.1000/found"`, r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("wt"))
		fmt.Fprintf(w, `{"response": {"numFound": 1, "docs": [%s]}}`, noticeJSON)
	}))
	defer server.Close()
	swapBase(t, server)

	n, err := newClient(server).QueryDOI(context.Background(), "https://doi.org/10.1000/FOUND")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "123456", n.RepositoryID)
	assert.Equal(t, "10.1000/found", n.DOI)
	assert.Equal(t, []string{"A found notice", "Une notice trouvée"}, n.Titles)
	assert.Equal(t, types.DepositFile, n.DepositType)
	assert.Equal(t, "https://hal.science/hal-123456", n.CanonicalURI)
}

func TestQueryDOIMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"response": {"numFound": 0, "docs": []}}`)
	}))
	defer server.Close()
	swapBase(t, server)

	n, err := newClient(server).QueryDOI(context.Background(), "10.1000/absent")
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestQueryDOIEmptyDOISkipsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty DOI")
	}))
	defer server.Close()
	swapBase(t, server)

	n, err := newClient(server).QueryDOI(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestQueryTitleEscapesSolrCharacters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `title_t:(stress \(oxidative\) \&\& recovery)`, r.URL.Query().Get("q"))
		fmt.Fprintf(w, `{"response": {"numFound": 1, "docs": [%s]}}`, noticeJSON)
	}))
	defer server.Close()
	swapBase(t, server)

	n, err := newClient(server).QueryTitle(context.Background(), "stress (oxidative) && recovery")
	require.NoError(t, err)
	require.NotNil(t, n)
}

func TestQueryTitleServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	swapBase(t, server)

	_, err := newClient(server).QueryTitle(context.Background(), "any title")
	assert.Error(t, err)
}

func TestCountCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/MIP/", r.URL.Path)
		assert.Equal(t, "publicationDateY_i:[2020 TO 2024]", r.URL.Query().Get("fq"))
		assert.Equal(t, "0", r.URL.Query().Get("rows"))
		fmt.Fprint(w, `{"response": {"numFound": 245, "docs": []}}`)
	}))
	defer server.Close()
	swapBase(t, server)

	total, err := newClient(server).CountCollection(context.Background(),
		types.CollectionConfig{Code: "MIP", StartYear: 2020, EndYear: 2024})
	require.NoError(t, err)
	assert.Equal(t, 245, total)
}

func TestPageCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "docid asc", r.URL.Query().Get("sort"))
		switch r.URL.Query().Get("cursorMark") {
		case "*":
			fmt.Fprintf(w, `{"response": {"numFound": 2, "docs": [%s]}, "nextCursorMark": "c2"}`, noticeJSON)
		case "c2":
			// Same cursor back means the walk is finished.
			fmt.Fprint(w, `{"response": {"numFound": 2, "docs": [{"docid": 789}]}, "nextCursorMark": "c2"}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursorMark"))
		}
	}))
	defer server.Close()
	swapBase(t, server)

	client := newClient(server)
	cfg := types.CollectionConfig{Code: "MIP", StartYear: 2020, EndYear: 2024}

	notices, next, more, err := client.PageCollection(context.Background(), cfg, "*")
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "c2", next)
	assert.True(t, more)

	notices, _, more, err = client.PageCollection(context.Background(), cfg, "c2")
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "789", notices[0].RepositoryID)
	assert.False(t, more)
}

func TestYearFilterOpenEnds(t *testing.T) {
	assert.Equal(t, "publicationDateY_i:[2020 TO 2024]", yearFilter(2020, 2024))
	assert.Equal(t, "publicationDateY_i:[* TO 2024]", yearFilter(0, 2024))
	assert.Equal(t, "publicationDateY_i:[2020 TO *]", yearFilter(2020, 0))
	assert.Equal(t, "publicationDateY_i:[* TO *]", yearFilter(0, 0))
}
