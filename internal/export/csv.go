// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders reconciliation rows for human and machine
// consumption: a CSV table, per-publication TEI XML for repository
// import, and a ZIP bundling the XML files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/meshintel/labhal/pkg/types"
)

// csvHeader is the column order of the exported table. Stable: scripts
// downstream address columns by name.
var csvHeader = []string{
	"title",
	"doi",
	"sources",
	"source_ids",
	"venue",
	"publication_date",
	"match_status",
	"matched_title",
	"repository_id",
	"deposit_type",
	"repository_uri",
	"oa_status",
	"oa_class",
	"publisher",
	"publisher_license",
	"publisher_link",
	"repository_copy_link",
	"permission",
	"authors",
	"action",
}

// linkTextMax caps the display text of a spreadsheet link formula.
const linkTextMax = 50

// WriteCSV renders the rows as a CSV table. With cfg.LinkFormulas the
// DOI and repository-URI cells become spreadsheet HYPERLINK formulas
// instead of bare values.
func WriteCSV(w io.Writer, rows []types.Row, cfg types.ExportConfig) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range rows {
		doiCell := row.DOI
		uriCell := row.Verdict.MatchedCanonicalURI
		if cfg.LinkFormulas {
			doiCell = linkFormula("https://doi.org/", row.DOI, row.DOI)
			uriCell = linkFormula("", row.Verdict.MatchedCanonicalURI, row.Verdict.MatchedRepositoryID)
		}

		record := []string{
			row.Title,
			doiCell,
			strings.Join(row.Sources, "|"),
			strings.Join(row.SourceIDs, "|"),
			row.VenueTitle,
			row.PublicationDate,
			string(row.Verdict.Status),
			row.Verdict.MatchedTitle,
			row.Verdict.MatchedRepositoryID,
			string(row.Verdict.MatchedDepositType),
			uriCell,
			row.OpenAccess.Status,
			row.OpenAccess.OAStatus,
			row.OpenAccess.Publisher,
			row.OpenAccess.PublisherLicense,
			row.OpenAccess.PublisherLink,
			row.OpenAccess.RepositoryLink,
			row.Permission,
			strings.Join(row.Authors, "; "),
			row.Action,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row for %q: %w", row.Title, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// linkFormula builds a spreadsheet HYPERLINK formula for prefix+url with
// the given display text, truncated to keep cells readable. Empty url or
// text yields an empty cell.
func linkFormula(prefix, url, text string) string {
	url = strings.TrimSpace(url)
	text = strings.ReplaceAll(strings.TrimSpace(text), `"`, `""`)
	if url == "" || text == "" {
		return ""
	}
	// Truncate by runes so a multi-byte character at the boundary is
	// dropped whole rather than split into invalid UTF-8.
	if runes := []rune(text); len(runes) > linkTextMax {
		text = string(runes[:linkTextMax-3]) + "..."
	}
	return fmt.Sprintf(`=HYPERLINK("%s%s";"%s")`, strings.TrimSpace(prefix), url, text)
}
