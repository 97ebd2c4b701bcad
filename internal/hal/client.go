// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hal talks to the HAL open-archive search API: cursor-paged
// collection imports and single-notice live lookups by DOI or title.
package hal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/meshintel/labhal/internal/httputil"
	"github.com/meshintel/labhal/pkg/types"
)

// halSearchBase is the HAL search endpoint. Declared as a var so tests
// can substitute an httptest server.
var halSearchBase = "https://api.archives-ouvertes.fr/search/"

// noticeFields is the field list requested on every query: enough to
// build a CollectionEntry, nothing more.
const noticeFields = "docid,doiId_s,title_s,submitType_s,linkExtUrl_s,linkExtId_s,uri_s"

// Client performs HAL search API requests.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// searchResponse mirrors the Solr JSON envelope.
type searchResponse struct {
	Response struct {
		NumFound int         `json:"numFound"`
		Docs     []noticeDoc `json:"docs"`
	} `json:"response"`
	NextCursorMark string `json:"nextCursorMark"`
}

// noticeDoc is one HAL document in the wire format.
type noticeDoc struct {
	DocID        json.Number `json:"docid"`
	DOI          string      `json:"doiId_s"`
	Titles       []string    `json:"title_s"`
	SubmitType   string      `json:"submitType_s"`
	ExternalLink string      `json:"linkExtUrl_s"`
	ExternalID   string      `json:"linkExtId_s"`
	URI          string      `json:"uri_s"`
}

// notice converts the wire document to the shared Notice type. The DOI
// is cleaned here, at the boundary, so every later comparison sees the
// canonical form.
func (d noticeDoc) notice() types.Notice {
	return types.Notice{
		RepositoryID: d.DocID.String(),
		DOI:          types.CleanDOI(d.DOI),
		Titles:       d.Titles,
		DepositType:  types.DepositType(d.SubmitType),
		ExternalLink: d.ExternalLink,
		ExternalID:   d.ExternalID,
		CanonicalURI: d.URI,
	}
}

// get performs one search request against path (collection code or
// empty) with the given parameters and decodes the Solr envelope.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*searchResponse, error) {
	base := halSearchBase
	if path != "" {
		base += path + "/"
	}
	params.Set("wt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("HAL API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HAL API returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing HAL response: %w", err)
	}
	return &sr, nil
}

// QueryDOI looks up one notice by DOI anywhere in HAL. A nil notice with
// a nil error means no document matched.
func (c *Client) QueryDOI(ctx context.Context, doi string) (*types.Notice, error) {
	doi = types.CleanDOI(doi)
	if doi == "" {
		return nil, nil
	}

	params := url.Values{
		"q":    {`doiId_s:"` + EscapeTerm(doi) + `"`},
		"rows": {"1"},
		"fl":   {noticeFields},
	}
	sr, err := c.get(ctx, "", params)
	if err != nil {
		return nil, err
	}
	if sr.Response.NumFound == 0 || len(sr.Response.Docs) == 0 {
		return nil, nil
	}
	n := sr.Response.Docs[0].notice()
	return &n, nil
}

// QueryTitle returns the top notice for a full-text title query, or nil
// when nothing matched. The caller decides whether the candidate's
// alternate titles match exactly or approximately.
func (c *Client) QueryTitle(ctx context.Context, title string) (*types.Notice, error) {
	if title == "" {
		return nil, nil
	}

	params := url.Values{
		"q":    {"title_t:(" + EscapeTerm(title) + ")"},
		"rows": {"1"},
		"fl":   {noticeFields},
	}
	sr, err := c.get(ctx, "", params)
	if err != nil {
		return nil, err
	}
	if sr.Response.NumFound == 0 || len(sr.Response.Docs) == 0 {
		return nil, nil
	}
	n := sr.Response.Docs[0].notice()
	return &n, nil
}

// CountCollection returns the number of documents in the collection for
// the publication-year window.
func (c *Client) CountCollection(ctx context.Context, cfg types.CollectionConfig) (int, error) {
	params := url.Values{
		"q":    {"*:*"},
		"fq":   {yearFilter(cfg.StartYear, cfg.EndYear)},
		"rows": {"0"},
	}
	sr, err := c.get(ctx, cfg.Code, params)
	if err != nil {
		return 0, err
	}
	return sr.Response.NumFound, nil
}

// PageCollection fetches one page of collection notices starting at
// cursor ("*" for the first page). It returns the notices, the next
// cursor, and whether more pages remain.
func (c *Client) PageCollection(ctx context.Context, cfg types.CollectionConfig, cursor string) ([]types.Notice, string, bool, error) {
	rows := cfg.PageSize
	if rows <= 0 {
		rows = 1000
	}

	params := url.Values{
		"q":          {"*:*"},
		"fq":         {yearFilter(cfg.StartYear, cfg.EndYear)},
		"fl":         {noticeFields},
		"rows":       {strconv.Itoa(rows)},
		"sort":       {"docid asc"},
		"cursorMark": {cursor},
	}
	sr, err := c.get(ctx, cfg.Code, params)
	if err != nil {
		return nil, "", false, err
	}

	notices := make([]types.Notice, 0, len(sr.Response.Docs))
	for _, doc := range sr.Response.Docs {
		notices = append(notices, doc.notice())
	}

	next := sr.NextCursorMark
	more := len(sr.Response.Docs) > 0 && next != "" && next != cursor
	return notices, next, more, nil
}

// yearFilter builds the publication-year range filter. A zero EndYear
// leaves the range open-ended.
func yearFilter(start, end int) string {
	from := "*"
	if start > 0 {
		from = strconv.Itoa(start)
	}
	to := "*"
	if end > 0 {
		to = strconv.Itoa(end)
	}
	return fmt.Sprintf("publicationDateY_i:[%s TO %s]", from, to)
}
