package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/meshintel/labhal/internal/collection"
	"github.com/meshintel/labhal/internal/hal"
	"github.com/meshintel/labhal/internal/match"
	"github.com/meshintel/labhal/internal/oa"
	"github.com/meshintel/labhal/internal/pipeline"
	"github.com/meshintel/labhal/pkg/types"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match harvested records against the HAL collection and enrich them",
	Long: `Reconcile merges the harvested records by DOI, resolves each merged
publication against the collection snapshot (falling back to live HAL
queries), enriches it with Unpaywall and oa.works signals, and derives
the recommended deposit action. Results go to a YAML file the export
step renders.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().String("collection", "", "HAL collection code (e.g. MIP)")
	reconcileCmd.Flags().Int("start-year", 0, "first publication year (inclusive)")
	reconcileCmd.Flags().Int("end-year", 0, "last publication year (inclusive)")
	reconcileCmd.Flags().String("cache-dir", "cache", "snapshot cache directory")
	reconcileCmd.Flags().String("in", "harvest.yaml", "harvested records file")
	reconcileCmd.Flags().String("out", "results.yaml", "output file for reconciled rows")
	reconcileCmd.Flags().Int("workers", 0, "concurrent per-record workers (default 10)")
	reconcileCmd.Flags().Bool("no-live", false, "skip live HAL queries for records missing from the snapshot")
	reconcileCmd.Flags().Bool("no-oa", false, "skip Unpaywall and oa.works enrichment")
	reconcileCmd.Flags().Bool("fetch-authors", false, "fetch author lists from Crossref")
	reconcileCmd.Flags().String("unpaywall-email", "", "email sent to Unpaywall (default: .secrets/unpaywall-email)")
	reconcileCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	code := stringSetting(cmd, "collection", "collection.code")
	startYear := intSetting(cmd, "start-year", "collection.start_year")
	endYear := intSetting(cmd, "end-year", "collection.end_year")
	cacheDir := stringSetting(cmd, "cache-dir", "collection.cache_dir")
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	workers := intSetting(cmd, "workers", "reconcile.workers")
	noLive, _ := cmd.Flags().GetBool("no-live")
	noOA, _ := cmd.Flags().GetBool("no-oa")
	fetchAuthors := boolSetting(cmd, "fetch-authors", "reconcile.fetch_authors")
	unpaywallEmail := stringSetting(cmd, "unpaywall-email", "reconcile.unpaywall_email")
	timeout := durationSetting(cmd, "timeout", "reconcile.timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	records, err := readHarvestFile(in)
	if err != nil {
		return err
	}

	collCfg := types.CollectionConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		Code:       code,
		StartYear:  startYear,
		EndYear:    endYear,
		CacheDir:   cacheDir,
	}
	client := &hal.Client{HTTP: &http.Client{Timeout: timeout}, UserAgent: defaultUserAgent}

	index, err := loadOrImportIndex(cmd.Context(), client, collCfg)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Index: index,
		Cfg: types.ReconcileConfig{
			HTTPConfig:     types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
			Workers:        workers,
			UnpaywallEmail: secretDefault("unpaywall-email", unpaywallEmail),
			FetchAuthors:   fetchAuthors,
		},
	}
	if !noLive {
		deps.Live = match.LiveRepository(client)
	}
	if !noOA {
		deps.OA = &oa.Client{
			HTTP:      &http.Client{Timeout: timeout},
			UserAgent: defaultUserAgent,
			Email:     deps.Cfg.UnpaywallEmail,
		}
	}

	rows, err := pipeline.Run(cmd.Context(), records, deps, os.Stdout)
	if err != nil {
		return err
	}

	params := pipeline.RunParams{Collection: code, StartYear: startYear, EndYear: endYear}
	if err := pipeline.WriteResultsFile(out, params, rows); err != nil {
		return err
	}
	fmt.Printf("wrote %d reconciled rows to %s\n", len(rows), out)
	return nil
}

// readHarvestFile loads the records produced by the harvest subcommand.
func readHarvestFile(path string) ([]types.PublicationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading harvest file: %w", err)
	}
	var records []types.PublicationRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing harvest file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("harvest file %s contains no records", path)
	}
	return records, nil
}

// loadOrImportIndex uses the cached snapshot when one exists for the
// (collection, year range) key, importing and caching otherwise.
func loadOrImportIndex(ctx context.Context, client *hal.Client, cfg types.CollectionConfig) (*collection.Index, error) {
	if cfg.Code == "" {
		fmt.Fprintln(os.Stderr, "warning: no collection code; matching against the whole repository via live queries only")
		return collection.NewIndex(nil), nil
	}

	var cache *collection.Cache
	if cfg.CacheDir != "" {
		c, err := collection.OpenCache(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		cache = c

		index, ok, err := cache.Load(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if ok {
			fmt.Printf("using cached snapshot of %s (%d-%d): %d entries\n",
				cfg.Code, cfg.StartYear, cfg.EndYear, index.Len())
			return index, nil
		}
	}

	index, err := collection.Import(ctx, client, cfg, os.Stdout)
	if err != nil {
		// A failed import still yields the entries fetched before the
		// failure. Matching proceeds against the partial index and falls
		// through to live queries; the incomplete snapshot is not cached.
		fmt.Fprintf(os.Stderr, "warning: importing collection %s incomplete (%d entries): %v\n",
			cfg.Code, index.Len(), err)
		return index, nil
	}
	if cache != nil {
		if err := cache.Save(ctx, cfg, index.Entries()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching snapshot failed: %v\n", err)
		}
	}
	return index, nil
}
