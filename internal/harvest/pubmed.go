// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meshintel/labhal/internal/httputil"
	"github.com/meshintel/labhal/pkg/types"
)

// PubMed E-utilities endpoints. Declared as vars so tests can
// substitute httptest servers.
var (
	pubmedESearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedESummaryBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// pubmedBatchSize is the number of PMIDs summarized per esummary call.
const pubmedBatchSize = 100

// PubMed harvests publications from NCBI E-utilities: esearch resolves
// the query to PMIDs, esummary fills in the record fields in batches.
type PubMed struct {
	HTTP  *http.Client
	Query string
	Cfg   types.HarvestConfig
}

// PubMedDateQuery restricts an affiliation query to an inclusive
// publication-year range.
func PubMedDateQuery(query string, startYear, endYear int) string {
	return fmt.Sprintf("(%s) AND (%d/01/01[Date - Publication] : %d/12/31[Date - Publication])",
		query, startYear, endYear)
}

type esearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	SortPubDate     string `json:"sortpubdate"`
	PubDate         string `json:"pubdate"`
	ArticleIDs      []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
}

func (p *PubMed) Name() types.SourceName { return types.SourcePubMed }

// Fetch resolves the query to PMIDs then summarizes them in batches,
// pausing between E-utilities calls to respect NCBI's rate guidance. A
// failed batch is skipped with a warning rather than aborting the rest.
func (p *PubMed) Fetch(ctx context.Context, w io.Writer) ([]types.PublicationRecord, error) {
	pmids, err := p.search(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("pubmed search: %w", err)
	}
	if len(pmids) == 0 {
		return nil, nil
	}

	var records []types.PublicationRecord
	for start := 0; start < len(pmids); start += pubmedBatchSize {
		if start > 0 {
			p.pause(ctx)
		}
		end := min(start+pubmedBatchSize, len(pmids))
		batch, err := p.summarize(ctx, pmids[start:end], w)
		if err != nil {
			fmt.Fprintf(w, "warning: pubmed summary batch starting at pmid %s failed: %v\n", pmids[start], err)
			continue
		}
		records = append(records, batch...)
	}
	return records, nil
}

func (p *PubMed) search(ctx context.Context, w io.Writer) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {p.Query},
		"retmax":  {strconv.Itoa(p.Cfg.MaxRecords)},
		"retmode": {"json"},
	}
	if p.Cfg.PubMedAPIKey != "" {
		params.Set("api_key", p.Cfg.PubMedAPIKey)
	}

	var er esearchResponse
	if err := p.getJSON(ctx, pubmedESearchBase+"?"+params.Encode(), &er, w); err != nil {
		return nil, err
	}
	return er.Result.IDList, nil
}

func (p *PubMed) summarize(ctx context.Context, pmids []string, w io.Writer) ([]types.PublicationRecord, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"json"},
	}
	if p.Cfg.PubMedAPIKey != "" {
		params.Set("api_key", p.Cfg.PubMedAPIKey)
	}

	var er esummaryResponse
	if err := p.getJSON(ctx, pubmedESummaryBase+"?"+params.Encode(), &er, w); err != nil {
		return nil, err
	}

	// Iterate the requested order, not the map order, so output is
	// reproducible.
	var records []types.PublicationRecord
	for _, pmid := range pmids {
		raw, ok := er.Result[pmid]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		records = append(records, p.record(pmid, doc))
	}
	return records, nil
}

func (p *PubMed) record(pmid string, doc esummaryDoc) types.PublicationRecord {
	doi := ""
	for _, id := range doc.ArticleIDs {
		if strings.EqualFold(id.IDType, "doi") {
			doi = id.Value
			break
		}
	}
	date := doc.SortPubDate
	if date == "" {
		date = doc.PubDate
	}
	return types.PublicationRecord{
		Title:           doc.Title,
		DOI:             types.CleanDOI(doi),
		Source:          types.SourcePubMed,
		SourceID:        pmid,
		VenueTitle:      doc.FullJournalName,
		PublicationDate: date,
	}
}

func (p *PubMed) getJSON(ctx context.Context, reqURL string, out any, w io.Writer) error {
	req, err := newGetRequest(ctx, reqURL, p.Cfg.UserAgent)
	if err != nil {
		return err
	}

	resp, err := httputil.DoWithRetry(ctx, p.HTTP, req, 0, w)
	if err != nil {
		return fmt.Errorf("pubmed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pubmed returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding pubmed response: %w", err)
	}
	return nil
}

func (p *PubMed) pause(ctx context.Context) {
	if p.Cfg.RequestDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(p.Cfg.RequestDelay):
	}
}
