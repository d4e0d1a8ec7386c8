package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slitherbench/internal/model"
)

func sampleResults() []model.ParsedResult {
	return []model.ParsedResult{
		{
			Contract: "private_bank",
			Tool:     "slither",
			Analysis: model.Analysis{
				Success:       true,
				TotalFindings: 2,
				FindingsBySeverity: map[model.Impact]int{
					model.ImpactHigh: 1,
					model.ImpactLow:  1,
				},
				FindingsByCheck: map[string]int{"reentrancy-eth": 1, "timestamp": 1},
				Findings: []model.Finding{
					{
						Check:                "reentrancy-eth",
						Impact:               model.ImpactHigh,
						Confidence:           "Medium",
						Description:          "Reentrancy in PrivateBank.CashOut() allows draining the balance before state update",
						FirstMarkdownElement: "contracts/private_bank.sol#L20-L30",
					},
					{
						Check:       "timestamp",
						Impact:      model.ImpactLow,
						Confidence:  "Medium",
						Description: "Uses block.timestamp for comparisons",
					},
				},
			},
		},
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, sampleResults()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"SECURITY FINDINGS SUMMARY",
		"Total Contracts Analyzed: 1",
		"Total Findings: 2",
		"CONTRACT: private_bank",
		"SEVERITY: High (1 findings)",
		"Check Type: reentrancy-eth (1 occurrence(s))",
		"File: private_bank.sol#L20-L30",
		"SUMMARY BY CHECK TYPE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}

	// High severity section must come before Low.
	if strings.Index(out, "SEVERITY: High") > strings.Index(out, "SEVERITY: Low") {
		t.Error("expected High section before Low")
	}
}

func TestWriteSummary_WrapsLongDescriptions(t *testing.T) {
	results := sampleResults()
	results[0].Analysis.Findings[0].Description = strings.Repeat("word ", 40)

	var buf bytes.Buffer
	if err := WriteSummary(&buf, results); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if len(line) > 82 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
}

func TestExtract_FilterAndOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "analysis", "private_bank_findings.txt")

	if err := Extract(sampleResults(), "private_bank", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "CONTRACT: private_bank") {
		t.Error("output file missing contract section")
	}

	if err := Extract(sampleResults(), "does_not_exist", out); err == nil {
		t.Error("expected error for unknown contract filter")
	}
}
