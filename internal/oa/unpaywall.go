// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oa queries the open-access signal services: Unpaywall for OA
// status and best locations, oa.works for deposit permissions, and
// Crossref for author lists. Transport failures never escape as errors
// from the per-record entry points; they become sentinel values so one
// record's failure stays local to that record.
package oa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/meshintel/labhal/pkg/types"
)

// unpaywallAPIBase is the Unpaywall endpoint. Declared as a var so tests
// can substitute an httptest server.
var unpaywallAPIBase = "https://api.unpaywall.org/v2/"

// Client holds shared HTTP settings for the OA services.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// Email identifies the caller to Unpaywall (required by the API).
	Email string
}

// unpaywallResponse is the subset of the Unpaywall payload we read.
type unpaywallResponse struct {
	IsOA           bool   `json:"is_oa"`
	OAStatus       string `json:"oa_status"`
	Publisher      string `json:"publisher"`
	Message        string `json:"message"`
	BestOALocation *struct {
		HostType string `json:"host_type"`
		License  string `json:"license"`
		URLPDF   string `json:"url_for_pdf"`
		URL      string `json:"url"`
	} `json:"best_oa_location"`
}

// Unpaywall queries the OA status for one DOI. It always returns a
// usable OpenAccess value; failures are encoded in the Status field.
func (c *Client) Unpaywall(ctx context.Context, doi string) types.OpenAccess {
	doi = strings.TrimSpace(doi)
	if !types.UsableDOI(doi) {
		return types.OpenAccess{Status: types.OAStatusNoDOI, QueriedDOI: doi}
	}

	reqURL := unpaywallAPIBase + doi + "?" + url.Values{"email": {c.Email}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.OpenAccess{Status: fmt.Sprintf("unpaywall request error: %v", err), QueriedDOI: doi}
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if isTimeout(err) {
			return types.OpenAccess{Status: types.OAStatusTimeout, QueriedDOI: doi}
		}
		return types.OpenAccess{Status: fmt.Sprintf("unpaywall request error: %v", err), QueriedDOI: doi}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return types.OpenAccess{Status: types.OAStatusMissing, QueriedDOI: doi}
	case resp.StatusCode != http.StatusOK:
		return types.OpenAccess{Status: fmt.Sprintf("unpaywall http error (%d)", resp.StatusCode), QueriedDOI: doi}
	}

	var ur unpaywallResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return types.OpenAccess{Status: "unpaywall json error", QueriedDOI: doi}
	}
	if strings.Contains(strings.ToLower(ur.Message), "isn't in unpaywall") {
		return types.OpenAccess{Status: types.OAStatusMissing, QueriedDOI: doi}
	}

	oa := types.OpenAccess{
		Status:     types.OAStatusClosed,
		OAStatus:   ur.OAStatus,
		Publisher:  ur.Publisher,
		QueriedDOI: doi,
	}
	if ur.IsOA {
		oa.Status = types.OAStatusOpen
	}

	if loc := ur.BestOALocation; loc != nil {
		best := loc.URLPDF
		if best == "" {
			best = loc.URL
		}
		switch loc.HostType {
		case "publisher":
			oa.PublisherLicense = loc.License
			oa.PublisherLink = best
		case "repository":
			oa.RepositoryLink = best
		}
	}
	return oa
}

// isTimeout reports whether the transport error was a timeout rather
// than some other failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
