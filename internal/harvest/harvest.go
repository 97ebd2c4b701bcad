// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest pulls publication lists from the bibliographic data
// sources: Scopus, OpenAlex, and PubMed. Each source maps its raw
// payload to types.PublicationRecord at the boundary so the rest of the
// pipeline never sees source-specific field names.
package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/meshintel/labhal/pkg/types"
)

// Source is one harvestable bibliographic database.
type Source interface {
	// Name identifies the source in merged records and progress output.
	Name() types.SourceName

	// Fetch retrieves every publication matching the source's query, up
	// to the configured maximum. Progress and per-page warnings go to w.
	Fetch(ctx context.Context, w io.Writer) ([]types.PublicationRecord, error)
}

// FetchAll runs every source in order, printing per-source status and
// continuing after individual source failures. A source that fails
// mid-page still contributes the records it fetched before the failure.
func FetchAll(ctx context.Context, sources []Source, w io.Writer) []types.PublicationRecord {
	var all []types.PublicationRecord
	for _, src := range sources {
		records, err := src.Fetch(ctx, w)
		if err != nil {
			fmt.Fprintf(w, "warning: %s harvest incomplete: %v\n", src.Name(), err)
		}
		fmt.Fprintf(w, "%s: %d publications\n", src.Name(), len(records))
		all = append(all, records...)
	}
	return all
}

func newGetRequest(ctx context.Context, url, userAgent string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
