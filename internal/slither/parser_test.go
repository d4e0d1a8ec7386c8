package slither

import (
	"os"
	"path/filepath"
	"testing"

	"slitherbench/internal/model"
)

func TestParse(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "slither_output.json"))
	if err != nil {
		t.Fatal(err)
	}

	analysis := Parse(string(data))

	if !analysis.Success {
		t.Error("expected success true")
	}
	if analysis.TotalFindings != 4 {
		t.Errorf("expected 4 findings, got %d", analysis.TotalFindings)
	}
	if analysis.FindingsBySeverity[model.ImpactHigh] != 1 {
		t.Errorf("expected 1 high finding, got %d", analysis.FindingsBySeverity[model.ImpactHigh])
	}
	if analysis.FindingsBySeverity[model.ImpactInformational] != 2 {
		t.Errorf("expected 2 informational findings, got %d", analysis.FindingsBySeverity[model.ImpactInformational])
	}
	if analysis.FindingsByCheck["reentrancy-eth"] != 1 {
		t.Errorf("expected reentrancy-eth count 1, got %d", analysis.FindingsByCheck["reentrancy-eth"])
	}

	// Findings come out grouped by severity, high first.
	first := analysis.Findings[0]
	if first.Check != "reentrancy-eth" {
		t.Errorf("expected reentrancy-eth first, got %s", first.Check)
	}
	if first.Impact != model.ImpactHigh {
		t.Errorf("expected high impact, got %s", first.Impact)
	}
	if first.FirstMarkdownElement != "bank.sol#L12-L18" {
		t.Errorf("unexpected markdown element: %s", first.FirstMarkdownElement)
	}
	if len(first.Lines) != 7 || first.Lines[0] != 12 {
		t.Errorf("unexpected lines: %v", first.Lines)
	}
}

func TestParse_Empty(t *testing.T) {
	analysis := Parse("")
	if analysis.Success {
		t.Error("expected success false")
	}
	if analysis.TotalFindings != 0 {
		t.Errorf("expected 0 findings, got %d", analysis.TotalFindings)
	}
	if analysis.Metadata.Error == "" {
		t.Error("expected failure reason in metadata")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	analysis := Parse("Traceback (most recent call last): crash")
	if analysis.TotalFindings != 0 {
		t.Errorf("expected 0 findings for malformed input, got %d", analysis.TotalFindings)
	}
	if len(analysis.Findings) != 0 {
		t.Error("expected empty finding list")
	}
	if analysis.Metadata.Error == "" {
		t.Error("expected failure reason in metadata")
	}
}

func TestParse_DeduplicatesRepeatedDetectors(t *testing.T) {
	raw := `{"success": true, "results": {"detectors": [
		{"check": "timestamp", "impact": "Low", "confidence": "Medium", "description": "a", "first_markdown_element": "bank.sol#L5"},
		{"check": "timestamp", "impact": "Low", "confidence": "Medium", "description": "a", "first_markdown_element": "bank.sol#L5"},
		{"check": "timestamp", "impact": "Low", "confidence": "Medium", "description": "b", "first_markdown_element": "bank.sol#L9"}
	]}}`
	analysis := Parse(raw)
	if analysis.TotalFindings != 2 {
		t.Errorf("expected duplicates collapsed to 2 findings, got %d", analysis.TotalFindings)
	}
	if analysis.FindingsByCheck["timestamp"] != 2 {
		t.Errorf("expected check count 2, got %d", analysis.FindingsByCheck["timestamp"])
	}
}

func TestParse_NoDetectors(t *testing.T) {
	analysis := Parse(`{"success": true, "error": null, "results": {}}`)
	if !analysis.Success {
		t.Error("expected success true")
	}
	if analysis.TotalFindings != 0 {
		t.Errorf("expected 0 findings, got %d", analysis.TotalFindings)
	}
}

func TestWriteAndLoadParsed(t *testing.T) {
	dir := t.TempDir()

	pr := model.ParsedResult{
		Contract:      "bank",
		Tool:          Tool,
		ExecutionTime: 1.5,
		Analysis:      Parse(`{"success":true,"results":{"detectors":[{"check":"timestamp","impact":"Low","confidence":"Medium","description":"d"}]}}`),
	}
	if err := WriteParsed(dir, pr); err != nil {
		t.Fatal(err)
	}

	results, err := LoadParsedDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.Contract != "bank" || got.Analysis.TotalFindings != 1 {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestWriteRun(t *testing.T) {
	dir := t.TempDir()
	rr := model.RunResult{
		Contract:      "anubis_ankh",
		Tool:          Tool,
		Success:       false,
		ExecutionTime: 600.0,
		ErrorMessage:  "timed out after 10m0s",
	}
	if err := WriteRun(dir, rr); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "anubis_ankh_slither_run.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("run record not written: %v", err)
	}

	// Run records must not be picked up as raw reports.
	raws, err := ListRaw(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 0 {
		t.Errorf("run record matched raw glob: %v", raws)
	}
}

func TestContractNameFromRaw(t *testing.T) {
	got := ContractNameFromRaw(filepath.Join("raw", "parity_wallet_1_slither.json"))
	if got != "parity_wallet_1" {
		t.Errorf("expected parity_wallet_1, got %s", got)
	}
}
