// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collection

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/time/rate"

	"github.com/meshintel/labhal/internal/hal"
	"github.com/meshintel/labhal/internal/textnorm"
	"github.com/meshintel/labhal/pkg/types"
)

// Import pages the collection out of the HAL search API and builds the
// index, one entry per alternate-title variant of each notice. Paging
// requests are rate-limited. If a page fetch fails mid-import, the index
// built from the pages already retrieved is returned together with the
// error; callers treat a partial index as "no local match, fall through
// to live query" rather than aborting.
func Import(ctx context.Context, client *hal.Client, cfg types.CollectionConfig, w io.Writer) (*Index, error) {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	total, err := client.CountCollection(ctx, cfg)
	if err != nil {
		fmt.Fprintf(w, "warning: collection count failed: %v\n", err)
	} else {
		fmt.Fprintf(w, "importing %d notices from collection %q (%d-%d)\n",
			total, cfg.Code, cfg.StartYear, cfg.EndYear)
	}

	var entries []types.CollectionEntry
	cursor := "*"
	for {
		if err := limiter.Wait(ctx); err != nil {
			return NewIndex(entries), err
		}

		notices, next, more, err := client.PageCollection(ctx, cfg, cursor)
		if err != nil {
			return NewIndex(entries), fmt.Errorf("collection page at cursor %q: %w", cursor, err)
		}

		for _, n := range notices {
			entries = append(entries, expandTitleVariants(n)...)
		}

		if !more {
			break
		}
		cursor = next
	}

	fmt.Fprintf(w, "indexed %d title variants\n", len(entries))
	return NewIndex(entries), nil
}

// expandTitleVariants turns one notice into one CollectionEntry per
// alternate title, each with its normalized form computed once here.
func expandTitleVariants(n types.Notice) []types.CollectionEntry {
	titles := n.Titles
	if len(titles) == 0 {
		titles = []string{""}
	}
	entries := make([]types.CollectionEntry, 0, len(titles))
	for _, title := range titles {
		entries = append(entries, n.Entry(title, textnorm.Normalize(title)))
	}
	return entries
}
