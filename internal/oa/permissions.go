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

// permissionsAPIBase is the oa.works permissions endpoint. Declared as a
// var so tests can substitute an httptest server.
var permissionsAPIBase = "https://bg.api.oa.works/permissions/"

// permissionsResponse is the subset of the oa.works payload we read.
type permissionsResponse struct {
	BestPermission *struct {
		Version       string `json:"version"`
		Licence       string `json:"licence"`
		EmbargoMonths *int   `json:"embargo_months"`
		Locations     []any  `json:"locations"`
	} `json:"best_permission"`
}

// Permissions returns the human-readable deposit-permission summary for
// one DOI. The action engine greps this string for the allowed version,
// so the "allowed version (oa.works): <version>" prefix is part of the
// contract. Failures are encoded in the returned string, never raised.
func (c *Client) Permissions(ctx context.Context, doi string) string {
	doi = strings.TrimSpace(doi)
	if !types.UsableDOI(doi) {
		return "missing doi for permissions"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, permissionsAPIBase+doi, nil)
	if err != nil {
		return fmt.Sprintf("permissions request error (oa.works) for doi %s: %v", doi, err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Sprintf("permissions timeout (oa.works) for doi %s", doi)
		}
		return fmt.Sprintf("permissions request error (oa.works) for doi %s: %v", doi, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusNotFound:
		return fmt.Sprintf("permissions not found (404 oa.works) for doi %s", doi)
	case http.StatusNotImplemented:
		return fmt.Sprintf("permissions not applicable for this document type (501 oa.works) for doi %s", doi)
	default:
		return fmt.Sprintf("http error %d permissions (oa.works) for doi %s", resp.StatusCode, doi)
	}

	var pr permissionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return fmt.Sprintf("permissions json error (oa.works) for doi %s", doi)
	}
	best := pr.BestPermission
	if best == nil {
		return "no permission found (oa.works)"
	}

	if !allowsRepository(best.Locations) {
		return "repository deposit not listed in permissions (oa.works)"
	}

	version := best.Version
	if version == "" {
		version = "unknown version"
	}
	licence := best.Licence
	if licence == "" {
		licence = "unknown licence"
	}
	embargo := embargoText(best.EmbargoMonths)

	switch strings.ToLower(version) {
	case "publishedversion", "acceptedversion":
		return fmt.Sprintf("allowed version (oa.works): %s ; licence: %s ; embargo: %s", version, licence, embargo)
	}
	return fmt.Sprintf("permission info (oa.works): %s ; %s ; %s", version, licence, embargo)
}

// allowsRepository reports whether any allowed location mentions a
// repository. Locations arrive as free-form values, so each one is
// stringified before the check.
func allowsRepository(locations []any) bool {
	for _, loc := range locations {
		if strings.Contains(strings.ToLower(fmt.Sprint(loc)), "repository") {
			return true
		}
	}
	return false
}

func embargoText(months *int) string {
	switch {
	case months == nil:
		return "not specified"
	case *months == 0:
		return "none"
	default:
		return fmt.Sprintf("%d months", *months)
	}
}
