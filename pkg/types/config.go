package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "labhal/0.1 (mailto:ops@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HarvestConfig holds settings for the harvest stage, which pulls raw
// records from the bibliographic source APIs.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRecords caps the number of records fetched per source (default 2000).
	MaxRecords int `json:"max_records" yaml:"max_records"`

	// ScopusAPIKey authenticates Scopus queries (required for Scopus).
	ScopusAPIKey string `json:"scopus_api_key,omitempty" yaml:"scopus_api_key,omitempty"`

	// OpenAlexMailto is sent as the mailto parameter for polite pool access.
	OpenAlexMailto string `json:"openalex_mailto,omitempty" yaml:"openalex_mailto,omitempty"`

	// PubMedAPIKey raises the NCBI eutils rate limit (optional).
	PubMedAPIKey string `json:"pubmed_api_key,omitempty" yaml:"pubmed_api_key,omitempty"`

	// RequestDelay is the pause between consecutive paged requests to
	// one source (default 100ms; PubMed per-article fetches use it too).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// CollectionConfig holds settings for importing the repository
// collection snapshot.
type CollectionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Code is the repository collection code (e.g. "MIP"). Empty means
	// the whole repository, which is slow and rarely wanted.
	Code string `json:"code" yaml:"code"`

	// StartYear and EndYear bound the publication-year filter.
	StartYear int `json:"start_year" yaml:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year"`

	// PageSize is the rows-per-page for cursor paging (default 1000).
	PageSize int `json:"page_size" yaml:"page_size"`

	// RequestsPerSecond limits paged import requests (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// CacheDir is the directory holding the snapshot cache database.
	// Empty disables caching.
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
}

// ReconcileConfig holds settings for matching and enrichment.
type ReconcileConfig struct {
	HTTPConfig `yaml:",inline"`

	// Workers is the bounded pool size for per-record network work
	// (default 10).
	Workers int `json:"workers" yaml:"workers"`

	// UnpaywallEmail identifies the caller to the Unpaywall API
	// (required for enrichment).
	UnpaywallEmail string `json:"unpaywall_email,omitempty" yaml:"unpaywall_email,omitempty"`

	// FetchAuthors enables the Crossref author lookup per DOI.
	FetchAuthors bool `json:"fetch_authors" yaml:"fetch_authors"`
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// OutputDir is the directory for CSV, XML, and ZIP output.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// LinkFormulas embeds spreadsheet HYPERLINK formulas for repository
	// and DOI links in the CSV instead of bare URLs.
	LinkFormulas bool `json:"link_formulas" yaml:"link_formulas"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Harvest    HarvestConfig    `json:"harvest" yaml:"harvest"`
	Collection CollectionConfig `json:"collection" yaml:"collection"`
	Reconcile  ReconcileConfig  `json:"reconcile" yaml:"reconcile"`
	Export     ExportConfig     `json:"export" yaml:"export"`
}
