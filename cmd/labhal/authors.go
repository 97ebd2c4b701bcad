package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/labhal/internal/authors"
	"github.com/meshintel/labhal/internal/pipeline"
)

var authorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "Detect the lab's researchers in reconciled publications",
	Long: `Authors reads a saved reconciliation run (with author lists fetched
via --fetch-authors) and a researcher roster CSV, and reports which
roster members appear on each publication. The roster CSV needs a
"collection" column and a second column holding "given family" names;
only rows matching the run's collection are used.`,
	RunE: runAuthors,
}

func init() {
	authorsCmd.Flags().String("in", "results.yaml", "reconciled results file")
	authorsCmd.Flags().String("roster", "", "researcher roster CSV")
	authorsCmd.Flags().String("out", "authors.csv", "output CSV of detections")

	rootCmd.AddCommand(authorsCmd)
}

func runAuthors(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	rosterPath, _ := cmd.Flags().GetString("roster")
	out, _ := cmd.Flags().GetString("out")

	if rosterPath == "" {
		return fmt.Errorf("provide a researcher roster CSV with --roster")
	}

	rf, err := pipeline.ReadResultsFile(in)
	if err != nil {
		return err
	}

	names, err := readRoster(rosterPath, rf.Run.Collection)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no researchers found for collection %q in %s", rf.Run.Collection, rosterPath)
	}
	roster := authors.NewRoster(names)
	fmt.Printf("matching against %d researchers from %s\n", roster.Len(), rosterPath)

	outFile, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer outFile.Close()

	cw := csv.NewWriter(outFile)
	if err := cw.Write([]string{"title", "doi", "authors", "detected_researchers"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	detections := 0
	for _, row := range rf.Rows {
		detected := roster.Detect(row.Authors)
		if len(detected) > 0 {
			detections++
		}
		record := []string{
			row.Title,
			row.DOI,
			strings.Join(row.Authors, "; "),
			strings.Join(detected, "; "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row for %q: %w", row.Title, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", out, err)
	}

	fmt.Printf("wrote %s: researchers detected on %d of %d publications\n", out, detections, len(rf.Rows))
	return nil
}

// readRoster extracts the researcher names for one collection from the
// roster CSV. The first column must be named "collection"; the second
// column holds the names.
func readRoster(path, collectionCode string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing roster %s: %w", path, err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, fmt.Errorf("roster %s needs a header and at least two columns", path)
	}
	if !strings.EqualFold(strings.TrimSpace(records[0][0]), "collection") {
		return nil, fmt.Errorf("roster %s must have \"collection\" as its first column", path)
	}

	var names []string
	for _, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(rec[0]), collectionCode) {
			continue
		}
		if name := strings.TrimSpace(rec[1]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
