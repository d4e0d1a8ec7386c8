package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultDeFiURL is the De.Fi public GraphQL endpoint.
const DefaultDeFiURL = "https://public-api.de.fi/graphql"

const rektsQuery = `query($p: Int!, $s: Int!) {
  rekts(pageNumber: $p, pageSize: $s) {
    projectName
    date
    fundsLost
    fundsReturned
    chaindIds
    category
    issueType
    description
  }
}`

// Rekt is one exploit incident from the De.Fi rekts database.
type Rekt struct {
	ProjectName   string `json:"projectName"`
	Date          string `json:"date"`
	FundsLost     string `json:"fundsLost"`
	FundsReturned string `json:"fundsReturned"`
	ChainIDs      []int  `json:"chaindIds"`
	Category      string `json:"category"`
	IssueType     string `json:"issueType"`
	Description   string `json:"description"`
}

// DeFiClient pages through the rekts database.
type DeFiClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
	// Delay between pages; the public API throttles aggressively.
	RateLimitDelay time.Duration
}

func NewDeFiClient(apiKey string) *DeFiClient {
	return &DeFiClient{
		APIKey:         apiKey,
		BaseURL:        DefaultDeFiURL,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
		PageSize:       50,
		RateLimitDelay: 700 * time.Millisecond,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]int `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Rekts []Rekt `json:"rekts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ErrRateLimited marks a 429 so callers can back off and resume.
var ErrRateLimited = fmt.Errorf("rate limited by api")

// FetchPage returns one page of incidents. An empty slice means the end of
// the dataset.
func (c *DeFiClient) FetchPage(ctx context.Context, page int) ([]Rekt, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("no de.fi api key provided")
	}

	payload, err := json.Marshal(graphqlRequest{
		Query:     rektsQuery,
		Variables: map[string]int{"p": page, "s": c.PageSize},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("unauthorized: check the de.fi api key")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("http %d from de.fi api", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope graphqlResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	return envelope.Data.Rekts, nil
}

// Checkpoint lets an interrupted export resume from the last finished page.
type Checkpoint struct {
	NextPage int    `json:"next_page"`
	Fetched  []Rekt `json:"fetched"`
}

func LoadCheckpoint(path string) (Checkpoint, error) {
	cp := Checkpoint{NextPage: 1}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cp, nil
	}
	if err != nil {
		return cp, err
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{NextPage: 1}, fmt.Errorf("corrupt checkpoint %s: %w", path, err)
	}
	if cp.NextPage < 1 {
		cp.NextPage = 1
	}
	return cp, nil
}

func SaveCheckpoint(path string, cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExportRekts pages through the whole rekts database into outDir, writing a
// CSV, a JSON dump, and a metadata file. maxPages <= 0 means no page cap.
// Progress is checkpointed after every page so a 429 or Ctrl-C resumes
// where it left off.
func ExportRekts(ctx context.Context, client *DeFiClient, outDir string, maxPages int, logger *log.Logger) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	cpPath := filepath.Join(outDir, "rekts_checkpoint.json")
	cp, err := LoadCheckpoint(cpPath)
	if err != nil {
		return err
	}
	if logger != nil && cp.NextPage > 1 {
		logger.Printf("resuming from page %d (%d incidents so far)", cp.NextPage, len(cp.Fetched))
	}

	complete := false
	for page := cp.NextPage; maxPages <= 0 || page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rekts, err := client.FetchPage(ctx, page)
		if err != nil {
			// Persist before bailing so the next run resumes here.
			cp.NextPage = page
			if saveErr := SaveCheckpoint(cpPath, cp); saveErr != nil {
				return saveErr
			}
			return fmt.Errorf("page %d: %w", page, err)
		}
		if len(rekts) == 0 {
			complete = true
			break
		}

		cp.Fetched = append(cp.Fetched, rekts...)
		cp.NextPage = page + 1
		if err := SaveCheckpoint(cpPath, cp); err != nil {
			return err
		}
		if logger != nil {
			logger.Printf("page %d: %d incidents (%d total)", page, len(rekts), len(cp.Fetched))
		}

		client.RateLimit(ctx)
	}

	if err := writeRektsCSV(filepath.Join(outDir, "rekts.csv"), cp.Fetched); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cp.Fetched, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "rekts.json"), data, 0644); err != nil {
		return err
	}

	meta := struct {
		ExportedAt time.Time `json:"exported_at"`
		Incidents  int       `json:"incidents"`
		Source     string    `json:"source"`
	}{
		ExportedAt: time.Now().UTC(),
		Incidents:  len(cp.Fetched),
		Source:     client.BaseURL,
	}
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "fetch_metadata.json"), metaData, 0644); err != nil {
		return err
	}

	if logger != nil {
		logger.Printf("exported %d incidents to %s", len(cp.Fetched), outDir)
	}
	// A page cap leaves the export unfinished; keep the checkpoint so the
	// next run resumes instead of restarting from page 1.
	if !complete {
		if logger != nil {
			logger.Printf("page cap reached at page %d; checkpoint kept for resume", cp.NextPage-1)
		}
		return nil
	}
	return os.Remove(cpPath)
}

// RateLimit sleeps between pages, honoring context cancellation.
func (c *DeFiClient) RateLimit(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.RateLimitDelay):
	}
}

func writeRektsCSV(path string, rekts []Rekt) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"project_name", "date", "funds_lost", "funds_returned",
		"chain_ids", "category", "issue_type", "description",
	}); err != nil {
		return err
	}
	for _, r := range rekts {
		chains := make([]byte, 0, 16)
		for i, id := range r.ChainIDs {
			if i > 0 {
				chains = append(chains, ';')
			}
			chains = strconv.AppendInt(chains, int64(id), 10)
		}
		if err := w.Write([]string{
			r.ProjectName, r.Date, r.FundsLost, r.FundsReturned,
			string(chains), r.Category, r.IssueType, r.Description,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
