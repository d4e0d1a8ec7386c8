package slither

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slitherbench/internal/model"
)

// WriteParsed persists one parsed result as
// <dir>/<contract>_slither_parsed.json.
func WriteParsed(dir string, pr model.ParsedResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(pr, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_parsed.json", pr.Contract, pr.Tool))
	return os.WriteFile(path, data, 0644)
}

// WriteRun persists the invocation record as
// <dir>/<contract>_slither_run.json.
func WriteRun(dir string, rr model.RunResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_run.json", rr.Contract, rr.Tool))
	return os.WriteFile(path, data, 0644)
}

// LoadParsed reads a single parsed result file.
func LoadParsed(path string) (model.ParsedResult, error) {
	var pr model.ParsedResult
	data, err := os.ReadFile(path)
	if err != nil {
		return pr, err
	}
	if err := json.Unmarshal(data, &pr); err != nil {
		return pr, fmt.Errorf("parse %s: %w", path, err)
	}
	return pr, nil
}

// LoadParsedDir reads every *_parsed.json under dir in deterministic order.
func LoadParsedDir(dir string) ([]model.ParsedResult, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_parsed.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	results := make([]model.ParsedResult, 0, len(matches))
	for _, path := range matches {
		pr, err := LoadParsed(path)
		if err != nil {
			return nil, err
		}
		results = append(results, pr)
	}
	return results, nil
}

// ListRaw returns the raw report files under dir, one per contract,
// in deterministic order.
func ListRaw(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_"+Tool+".json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ContractNameFromRaw recovers the contract name from a raw report path.
func ContractNameFromRaw(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".json")
	return strings.TrimSuffix(base, "_"+Tool)
}
