package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultEtherscanURL is the unified v2 endpoint covering all chains.
const DefaultEtherscanURL = "https://api.etherscan.io/v2/api"

// EtherscanClient fetches verified contract sources via the unified v2 API,
// where a chainid parameter selects the network under a single API key.
type EtherscanClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	// Delay between calls; explorers allow roughly 5 req/s.
	RateLimitDelay time.Duration
}

func NewEtherscanClient(apiKey string) *EtherscanClient {
	return &EtherscanClient{
		APIKey:         apiKey,
		BaseURL:        DefaultEtherscanURL,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
		RateLimitDelay: 300 * time.Millisecond,
	}
}

// SourceResult is the verified source payload for one contract.
type SourceResult struct {
	ContractName    string `json:"ContractName"`
	SourceCode      string `json:"SourceCode"`
	CompilerVersion string `json:"CompilerVersion"`
}

type etherscanResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Result  []json.RawMessage `json:"result"`
}

// ValidAddress reports whether addr looks like a hex contract address.
func ValidAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

// FetchSource downloads the verified source for one contract. Multi-file
// Standard JSON sources are flattened to the main contract file.
func (c *EtherscanClient) FetchSource(ctx context.Context, address string, chain Chain) (*SourceResult, error) {
	chainID, ok := ChainIDs[chain]
	if !ok {
		return nil, fmt.Errorf("no chain id configured for %s", chain)
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("no etherscan api key provided")
	}
	if !ValidAddress(address) {
		return nil, fmt.Errorf("invalid contract address: %s", address)
	}

	params := url.Values{
		"chainid": {chainID},
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {address},
		"apikey":  {c.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d from explorer", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope etherscanResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid explorer response: %w", err)
	}
	if envelope.Status != "1" {
		return nil, fmt.Errorf("api error: %s", envelope.Message)
	}
	if len(envelope.Result) == 0 {
		return nil, fmt.Errorf("empty result from explorer")
	}

	var result SourceResult
	if err := json.Unmarshal(envelope.Result[0], &result); err != nil {
		return nil, fmt.Errorf("invalid source result: %w", err)
	}
	if result.SourceCode == "" {
		return nil, fmt.Errorf("contract not verified on explorer")
	}

	// Multi-file contracts come back as double-brace wrapped Standard JSON.
	if strings.HasPrefix(result.SourceCode, "{{") {
		flattened := extractMainSource(result.SourceCode, result.ContractName)
		if flattened == "" {
			return nil, fmt.Errorf("could not extract main contract from multi-file source")
		}
		result.SourceCode = flattened
	}

	return &result, nil
}

// RateLimit sleeps between calls, honoring context cancellation.
func (c *EtherscanClient) RateLimit(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.RateLimitDelay):
	}
}

// ExplorerURL returns the block explorer page for a contract.
func ExplorerURL(address string, chain Chain) string {
	return ExplorerURLs[chain] + address
}

type multiFileSource struct {
	Sources map[string]struct {
		Content string `json:"content"`
	} `json:"sources"`
}

// extractMainSource pulls the most plausible main file out of a
// double-brace wrapped multi-file source blob. Paths are walked in sorted
// order, name match before the "contract" heuristic, so the same blob
// always yields the same file.
func extractMainSource(sourceCode, contractName string) string {
	trimmed := strings.TrimSpace(sourceCode)
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}

	var parsed multiFileSource
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return ""
	}
	if len(parsed.Sources) == 0 {
		return ""
	}

	paths := make([]string, 0, len(parsed.Sources))
	for path := range parsed.Sources {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	if contractName != "" {
		for _, path := range paths {
			if strings.Contains(path, contractName) {
				return parsed.Sources[path].Content
			}
		}
	}
	for _, path := range paths {
		if strings.Contains(strings.ToLower(path), "contract") {
			return parsed.Sources[path].Content
		}
	}
	return parsed.Sources[paths[0]].Content
}
