package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/meshintel/labhal/internal/harvest"
	"github.com/meshintel/labhal/pkg/types"
)

const defaultMaxRecords = 2000

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Pull the lab's publications from Scopus, OpenAlex, and PubMed",
	Long: `Harvest queries each configured bibliographic source for the lab's
publications in the given year range and writes the raw records to a
YAML file for the reconcile step. Sources without an identifier or
query are skipped; a source failing mid-harvest keeps its partial
results.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("scopus-id", "", "Scopus affiliation identifier (AF-ID)")
	harvestCmd.Flags().String("openalex-id", "", "OpenAlex institution identifier")
	harvestCmd.Flags().String("pubmed-query", "", "PubMed affiliation query")
	harvestCmd.Flags().Int("start-year", 0, "first publication year (inclusive)")
	harvestCmd.Flags().Int("end-year", 0, "last publication year (inclusive)")
	harvestCmd.Flags().Int("max-records", 0, "per-source record cap (default 2000)")
	harvestCmd.Flags().String("scopus-api-key", "", "Scopus API key (default: .secrets/scopus-api-key)")
	harvestCmd.Flags().String("pubmed-api-key", "", "NCBI API key (default: .secrets/pubmed-api-key)")
	harvestCmd.Flags().String("openalex-email", "", "mailto for OpenAlex polite pool (default: .secrets/openalex-email)")
	harvestCmd.Flags().String("out", "harvest.yaml", "output file for harvested records")
	harvestCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	scopusID := stringSetting(cmd, "scopus-id", "harvest.scopus_id")
	openAlexID := stringSetting(cmd, "openalex-id", "harvest.openalex_id")
	pubmedQuery := stringSetting(cmd, "pubmed-query", "harvest.pubmed_query")
	startYear := intSetting(cmd, "start-year", "collection.start_year")
	endYear := intSetting(cmd, "end-year", "collection.end_year")
	maxRecords := intSetting(cmd, "max-records", "harvest.max_records")
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	scopusKey, _ := cmd.Flags().GetString("scopus-api-key")
	pubmedKey, _ := cmd.Flags().GetString("pubmed-api-key")
	openAlexEmail, _ := cmd.Flags().GetString("openalex-email")
	out, _ := cmd.Flags().GetString("out")
	timeout := durationSetting(cmd, "timeout", "harvest.timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.HarvestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		MaxRecords:     maxRecords,
		ScopusAPIKey:   secretDefault("scopus-api-key", scopusKey),
		OpenAlexMailto: secretDefault("openalex-email", openAlexEmail),
		PubMedAPIKey:   secretDefault("pubmed-api-key", pubmedKey),
		RequestDelay:   100 * time.Millisecond,
	}
	client := &http.Client{Timeout: cfg.Timeout}

	var sources []harvest.Source
	if scopusID != "" {
		if cfg.ScopusAPIKey == "" {
			fmt.Fprintln(os.Stderr, "warning: scopus-id given but no Scopus API key configured; skipping Scopus")
		} else {
			sources = append(sources, &harvest.Scopus{
				HTTP:  client,
				Query: harvest.ScopusAffiliationQuery(scopusID, startYear, endYear),
				Cfg:   cfg,
			})
		}
	}
	if openAlexID != "" {
		sources = append(sources, &harvest.OpenAlex{
			HTTP:   client,
			Filter: harvest.OpenAlexInstitutionFilter(openAlexID, startYear, endYear),
			Cfg:    cfg,
		})
	}
	if pubmedQuery != "" {
		sources = append(sources, &harvest.PubMed{
			HTTP:  client,
			Query: harvest.PubMedDateQuery(pubmedQuery, startYear, endYear),
			Cfg:   cfg,
		})
	}
	if len(sources) == 0 {
		return fmt.Errorf("configure at least one source (--scopus-id, --openalex-id, or --pubmed-query)")
	}

	records := harvest.FetchAll(cmd.Context(), sources, os.Stdout)
	if len(records) == 0 {
		return fmt.Errorf("no publications retrieved from any source")
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling harvested records: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("wrote %d records to %s\n", len(records), out)
	return nil
}
