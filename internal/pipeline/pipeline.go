// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains the reconciliation stages: merge the harvested
// records, match each merged publication against the collection, enrich
// with open-access signals, and derive the recommended action.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/meshintel/labhal/internal/action"
	"github.com/meshintel/labhal/internal/collection"
	"github.com/meshintel/labhal/internal/dedup"
	"github.com/meshintel/labhal/internal/match"
	"github.com/meshintel/labhal/internal/pool"
	"github.com/meshintel/labhal/pkg/types"
)

// OAService supplies the open-access signals. *oa.Client implements it.
type OAService interface {
	Unpaywall(ctx context.Context, doi string) types.OpenAccess
	Permissions(ctx context.Context, doi string) string
	Authors(ctx context.Context, doi string) ([]string, error)
}

// Deps holds the stage collaborators. Live and OA may be nil: a nil
// Live skips the live repository fallback, a nil OA skips enrichment
// (rows then carry empty open-access fields).
type Deps struct {
	Index *collection.Index
	Live  match.LiveRepository
	OA    OAService
	Cfg   types.ReconcileConfig
}

// Run executes the full reconciliation over the harvested records and
// returns one row per merged publication, in merge order. Per-record
// service failures become sentinel values inside the row; only context
// cancellation aborts the run.
func Run(ctx context.Context, records []types.PublicationRecord, deps Deps, w io.Writer) ([]types.Row, error) {
	merged := dedup.Merge(records)
	fmt.Fprintf(w, "merged %d harvested records into %d publications\n", len(records), len(merged))

	var authorFailures atomic.Int64
	rows, err := pool.Map(ctx, deps.Cfg.Workers, merged, func(ctx context.Context, pub types.MergedPublication) (types.Row, error) {
		row := types.Row{MergedPublication: pub}
		row.Verdict = match.Resolve(ctx, pub, deps.Index, deps.Live)

		if deps.OA != nil {
			row.OpenAccess = deps.OA.Unpaywall(ctx, pub.DOI)
			row.Permission = deps.OA.Permissions(ctx, pub.DOI)
			if deps.Cfg.FetchAuthors && pub.HasDOI() {
				authors, err := deps.OA.Authors(ctx, pub.DOI)
				if err != nil {
					authorFailures.Add(1)
				}
				row.Authors = authors
			}
		}

		row.Action = action.Deduce(row.Verdict, pub.HasDOI(), row.OpenAccess, row.Permission)
		return row, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconciling publications: %w", err)
	}

	if n := authorFailures.Load(); n > 0 {
		fmt.Fprintf(w, "warning: author lookup failed for %d publications\n", n)
	}
	fmt.Fprintf(w, "reconciled %d publications\n", len(rows))
	return rows, nil
}
