// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package oa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/meshintel/labhal/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works/"

type crossrefResponse struct {
	Message struct {
		Author []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
	} `json:"message"`
}

// Authors returns the author names registered for a DOI with Crossref,
// as "Given Family" strings. Unlike the status and permission lookups
// this returns an error: author enrichment is optional and the caller
// decides whether a failure is worth reporting.
func (c *Client) Authors(ctx context.Context, doi string) ([]string, error) {
	doi = strings.TrimSpace(doi)
	if !types.UsableDOI(doi) {
		return nil, fmt.Errorf("no usable doi for author lookup")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crossrefAPIBase+doi, nil)
	if err != nil {
		return nil, fmt.Errorf("building crossref request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying crossref for %s: %w", doi, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crossref returned status %d for %s", resp.StatusCode, doi)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decoding crossref response for %s: %w", doi, err)
	}

	var names []string
	for _, a := range cr.Message.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
