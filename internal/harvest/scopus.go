// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/meshintel/labhal/internal/httputil"
	"github.com/meshintel/labhal/pkg/types"
)

// scopusAPIBase is the Scopus Search endpoint. Declared as a var so
// tests can substitute an httptest server.
var scopusAPIBase = "https://api.elsevier.com/content/search/scopus"

// scopusPageSize is the number of entries requested per page. The
// standard API quota caps pages at 25 entries.
const scopusPageSize = 25

// Scopus harvests publications from the Elsevier Scopus Search API
// using offset paging.
type Scopus struct {
	HTTP  *http.Client
	Query string
	Cfg   types.HarvestConfig
}

// ScopusAffiliationQuery builds the standard affiliation query for one
// lab over an inclusive year range.
func ScopusAffiliationQuery(labID string, startYear, endYear int) string {
	return fmt.Sprintf("AF-ID(%s) AND PUBYEAR > %d AND PUBYEAR < %d", labID, startYear-1, endYear+1)
}

type scopusResponse struct {
	SearchResults struct {
		TotalResults string        `json:"opensearch:totalResults"`
		Entries      []scopusEntry `json:"entry"`
	} `json:"search-results"`
}

type scopusEntry struct {
	Title      string `json:"dc:title"`
	DOI        string `json:"prism:doi"`
	Identifier string `json:"dc:identifier"`
	Venue      string `json:"prism:publicationName"`
	CoverDate  string `json:"prism:coverDate"`
}

func (s *Scopus) Name() types.SourceName { return types.SourceScopus }

// Fetch pages through the search results 25 entries at a time until the
// reported total, the configured maximum, or an empty page. A failed
// page returns the records fetched so far together with the error.
func (s *Scopus) Fetch(ctx context.Context, w io.Writer) ([]types.PublicationRecord, error) {
	if s.Cfg.ScopusAPIKey == "" {
		return nil, fmt.Errorf("scopus api key is not configured")
	}

	maxRecords := s.Cfg.MaxRecords
	var records []types.PublicationRecord
	total := -1

	for start := 0; ; start += scopusPageSize {
		if total >= 0 && (len(records) >= total || len(records) >= maxRecords) {
			break
		}

		page, pageTotal, err := s.fetchPage(ctx, start, w)
		if err != nil {
			return records, fmt.Errorf("scopus page at offset %d: %w", start, err)
		}
		if total < 0 {
			total = pageTotal
			if total == 0 {
				fmt.Fprintln(w, "scopus: no results for this query")
				return nil, nil
			}
		}
		if len(page) == 0 {
			if len(records) < total {
				fmt.Fprintf(w, "warning: scopus reported %d results but returned an empty page at offset %d\n", total, start)
			}
			break
		}
		records = append(records, page...)
	}

	if len(records) > maxRecords {
		records = records[:maxRecords]
	}
	return records, nil
}

func (s *Scopus) fetchPage(ctx context.Context, start int, w io.Writer) ([]types.PublicationRecord, int, error) {
	params := url.Values{
		"query": {s.Query},
		"count": {strconv.Itoa(scopusPageSize)},
		"start": {strconv.Itoa(start)},
	}
	req, err := newGetRequest(ctx, scopusAPIBase+"?"+params.Encode(), s.Cfg.UserAgent)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-ELS-APIKey", s.Cfg.ScopusAPIKey)

	resp, err := httputil.DoWithRetry(ctx, s.HTTP, req, 0, w)
	if err != nil {
		return nil, 0, fmt.Errorf("scopus request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("scopus returned status %d", resp.StatusCode)
	}

	var sr scopusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("decoding scopus response: %w", err)
	}

	total, err := strconv.Atoi(sr.SearchResults.TotalResults)
	if err != nil {
		return nil, 0, fmt.Errorf("unexpected scopus total %q", sr.SearchResults.TotalResults)
	}

	records := make([]types.PublicationRecord, 0, len(sr.SearchResults.Entries))
	for _, e := range sr.SearchResults.Entries {
		records = append(records, types.PublicationRecord{
			Title:           e.Title,
			DOI:             types.CleanDOI(e.DOI),
			Source:          types.SourceScopus,
			SourceID:        e.Identifier,
			VenueTitle:      e.Venue,
			PublicationDate: e.CoverDate,
		})
	}
	return records, total, nil
}
