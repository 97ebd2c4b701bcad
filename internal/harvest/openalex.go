// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/meshintel/labhal/internal/httputil"
	"github.com/meshintel/labhal/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

const openAlexPageSize = 200

// OpenAlex harvests publications from the OpenAlex works API using
// cursor paging.
type OpenAlex struct {
	HTTP   *http.Client
	Filter string
	Cfg    types.HarvestConfig
}

// OpenAlexInstitutionFilter builds the works filter for one institution
// over an inclusive publication-year range.
func OpenAlexInstitutionFilter(institutionID string, startYear, endYear int) string {
	return fmt.Sprintf("authorships.institutions.id:%s,publication_year:%d-%d", institutionID, startYear, endYear)
}

type openAlexResponse struct {
	Meta struct {
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DOI             string `json:"doi"`
	PublicationDate string `json:"publication_date"`
	PrimaryLocation *struct {
		Source *struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
}

func (o *OpenAlex) Name() types.SourceName { return types.SourceOpenAlex }

// Fetch walks the cursor chain until OpenAlex stops returning one or
// the configured maximum is reached. A failed page returns the records
// fetched so far together with the error.
func (o *OpenAlex) Fetch(ctx context.Context, w io.Writer) ([]types.PublicationRecord, error) {
	maxRecords := o.Cfg.MaxRecords
	var records []types.PublicationRecord

	for cursor := "*"; cursor != "" && len(records) < maxRecords; {
		page, next, err := o.fetchPage(ctx, cursor, w)
		if err != nil {
			return records, fmt.Errorf("openalex page at cursor %q: %w", cursor, err)
		}
		records = append(records, page...)
		cursor = next
	}

	if len(records) > maxRecords {
		records = records[:maxRecords]
	}
	return records, nil
}

func (o *OpenAlex) fetchPage(ctx context.Context, cursor string, w io.Writer) ([]types.PublicationRecord, string, error) {
	params := url.Values{
		"filter":   {o.Filter},
		"per-page": {fmt.Sprint(openAlexPageSize)},
		"cursor":   {cursor},
	}
	if o.Cfg.OpenAlexMailto != "" {
		params.Set("mailto", o.Cfg.OpenAlexMailto)
	}

	req, err := newGetRequest(ctx, openAlexAPIBase+"?"+params.Encode(), o.Cfg.UserAgent)
	if err != nil {
		return nil, "", err
	}

	resp, err := httputil.DoWithRetry(ctx, o.HTTP, req, 0, w)
	if err != nil {
		return nil, "", fmt.Errorf("openalex request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("openalex returned status %d", resp.StatusCode)
	}

	var or openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, "", fmt.Errorf("decoding openalex response: %w", err)
	}

	records := make([]types.PublicationRecord, 0, len(or.Results))
	for _, work := range or.Results {
		venue := ""
		if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
			venue = work.PrimaryLocation.Source.DisplayName
		}
		records = append(records, types.PublicationRecord{
			Title:           work.Title,
			DOI:             types.CleanDOI(work.DOI),
			Source:          types.SourceOpenAlex,
			SourceID:        work.ID,
			VenueTitle:      venue,
			PublicationDate: work.PublicationDate,
		})
	}
	return records, or.Meta.NextCursor, nil
}
