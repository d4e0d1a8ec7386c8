package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// FetchOutcome records one contract fetch for the manifest.
type FetchOutcome struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Chain       Chain  `json:"chain"`
	Path        string `json:"path,omitempty"`
	ExplorerURL string `json:"explorer_url"`
	Compiler    string `json:"compiler,omitempty"`
	Error       string `json:"error,omitempty"`
}

// FetchAll downloads every entry's verified source into
// <datasetDir>/<category>/<filename> and writes a fetch manifest. A failed
// contract is recorded and skipped; the batch continues.
func FetchAll(ctx context.Context, client *EtherscanClient, entries []Entry, datasetDir string, logger *log.Logger) ([]FetchOutcome, error) {
	outcomes := make([]FetchOutcome, 0, len(entries))

	for i, e := range entries {
		if logger != nil {
			logger.Printf("[%d/%d] fetching %s (%s)", i+1, len(entries), e.Name, e.Address)
		}

		outcome := FetchOutcome{
			Name:        e.Name,
			Address:     e.Address,
			Chain:       e.Chain,
			ExplorerURL: ExplorerURL(e.Address, e.Chain),
		}

		src, err := client.FetchSource(ctx, e.Address, e.Chain)
		if err != nil {
			outcome.Error = err.Error()
			if logger != nil {
				logger.Printf("  failed: %v", err)
			}
			outcomes = append(outcomes, outcome)
			if ctx.Err() != nil {
				return outcomes, ctx.Err()
			}
			client.RateLimit(ctx)
			continue
		}

		path := filepath.Join(datasetDir, filepath.FromSlash(e.Category), e.Filename)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return outcomes, err
		}
		if err := os.WriteFile(path, []byte(src.SourceCode), 0644); err != nil {
			return outcomes, err
		}

		outcome.Path = path
		outcome.Compiler = src.CompilerVersion
		outcomes = append(outcomes, outcome)
		if logger != nil {
			logger.Printf("  saved %s (compiler %s)", path, src.CompilerVersion)
		}

		client.RateLimit(ctx)
	}

	manifest := struct {
		FetchedAt time.Time      `json:"fetched_at"`
		Contracts []FetchOutcome `json:"contracts"`
	}{
		FetchedAt: time.Now().UTC(),
		Contracts: outcomes,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return outcomes, err
	}
	if err := os.MkdirAll(datasetDir, 0755); err != nil {
		return outcomes, err
	}
	manifestPath := filepath.Join(datasetDir, "fetch_manifest.json")
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return outcomes, fmt.Errorf("write manifest: %w", err)
	}
	return outcomes, nil
}
