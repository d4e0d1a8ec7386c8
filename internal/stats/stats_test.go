package stats

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"slitherbench/internal/groundtruth"
	"slitherbench/internal/model"
)

func parsedResult(contract string, findings ...model.Finding) model.ParsedResult {
	analysis := model.Analysis{
		Success:            true,
		TotalFindings:      len(findings),
		FindingsBySeverity: map[model.Impact]int{},
		FindingsByCheck:    map[string]int{},
		Findings:           findings,
	}
	for _, imp := range model.ImpactOrder {
		analysis.FindingsBySeverity[imp] = 0
	}
	for _, f := range findings {
		analysis.FindingsBySeverity[f.Impact]++
		analysis.FindingsByCheck[f.Check]++
	}
	return model.ParsedResult{Contract: contract, Tool: "slither", Analysis: analysis}
}

func sampleGroundTruth() groundtruth.Set {
	return groundtruth.Set{
		"parity_wallet_1": {
			{Category: "access-control", Checks: []string{"arbitrary-send-eth", "suicidal"}},
		},
		"beautychain": {
			{Category: "arithmetic", Checks: []string{"integer-overflow"}},
		},
		"uniswap_v4_poolmanager": {},
	}
}

func TestCompute_DetectionRate(t *testing.T) {
	results := []model.ParsedResult{
		// Label detected via one of its accepted checks.
		parsedResult("parity_wallet_1",
			model.Finding{Check: "suicidal", Impact: model.ImpactHigh},
			model.Finding{Check: "solc-version", Impact: model.ImpactInformational},
		),
		// Label missed entirely.
		parsedResult("beautychain",
			model.Finding{Check: "timestamp", Impact: model.ImpactLow},
		),
	}

	s := Compute(results, sampleGroundTruth())

	if s.TruePositives != 1 || s.FalseNegatives != 1 {
		t.Errorf("expected TP=1 FN=1, got TP=%d FN=%d", s.TruePositives, s.FalseNegatives)
	}
	if s.DetectionRate != 0.5 {
		t.Errorf("expected detection rate 0.5, got %f", s.DetectionRate)
	}

	// Contracts come back in name order.
	if s.Contracts[0].Contract != "beautychain" || s.Contracts[1].Contract != "parity_wallet_1" {
		t.Errorf("expected sorted contracts, got %s, %s", s.Contracts[0].Contract, s.Contracts[1].Contract)
	}

	missed := s.Contracts[0]
	if missed.TruePositives != 0 || missed.FalseNegatives != 1 {
		t.Errorf("beautychain: expected TP=0 FN=1, got TP=%d FN=%d", missed.TruePositives, missed.FalseNegatives)
	}
	if !reflect.DeepEqual(missed.MissedLabels, []string{"arithmetic"}) {
		t.Errorf("unexpected missed labels: %v", missed.MissedLabels)
	}
}

func TestCompute_UnlabeledContractContributesNothing(t *testing.T) {
	results := []model.ParsedResult{
		parsedResult("not_in_ground_truth",
			model.Finding{Check: "reentrancy-eth", Impact: model.ImpactHigh},
		),
	}

	s := Compute(results, sampleGroundTruth())

	if s.TruePositives != 0 || s.FalseNegatives != 0 || s.FalsePositives != 0 {
		t.Errorf("unlabeled contract must not contribute: TP=%d FN=%d FP=%d",
			s.TruePositives, s.FalseNegatives, s.FalsePositives)
	}
	if s.DetectionRate != 0 {
		t.Errorf("expected rate 0 with empty denominator, got %f", s.DetectionRate)
	}
	if s.LabeledContracts != 0 {
		t.Errorf("expected 0 labeled contracts, got %d", s.LabeledContracts)
	}
	// Distributions still count it.
	if s.TotalFindings != 1 || s.SeverityTotals[model.ImpactHigh] != 1 {
		t.Errorf("expected distributions to include unlabeled contract")
	}
}

func TestCompute_FalsePositives(t *testing.T) {
	results := []model.ParsedResult{
		// Safe contract: every distinct high/medium check is noise.
		parsedResult("uniswap_v4_poolmanager",
			model.Finding{Check: "reentrancy-eth", Impact: model.ImpactHigh},
			model.Finding{Check: "reentrancy-eth", Impact: model.ImpactHigh},
			model.Finding{Check: "divide-before-multiply", Impact: model.ImpactMedium},
			model.Finding{Check: "naming-convention", Impact: model.ImpactInformational},
		),
	}

	s := Compute(results, sampleGroundTruth())

	c := s.Contracts[0]
	if c.FalsePositives != 2 {
		t.Errorf("expected 2 distinct high/medium FP checks, got %d", c.FalsePositives)
	}
	if c.TruePositives != 0 || c.FalseNegatives != 0 {
		t.Errorf("safe contract has no labels: TP=%d FN=%d", c.TruePositives, c.FalseNegatives)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	results := []model.ParsedResult{
		parsedResult("parity_wallet_1", model.Finding{Check: "suicidal", Impact: model.ImpactHigh}),
		parsedResult("beautychain", model.Finding{Check: "timestamp", Impact: model.ImpactLow}),
	}
	gt := sampleGroundTruth()

	first := Compute(results, gt)
	second := Compute(results, gt)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical summaries for identical inputs")
	}
}

func TestWriteCSVs(t *testing.T) {
	dir := t.TempDir()
	results := []model.ParsedResult{
		parsedResult("parity_wallet_1",
			model.Finding{Check: "suicidal", Impact: model.ImpactHigh},
		),
	}
	s := Compute(results, sampleGroundTruth())

	if err := WriteCSVs(dir, s); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"severity_distribution.csv",
		"finding_types.csv",
		"per_contract_summary.csv",
		"detection_rates.csv",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "detection_rates.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header + one contract + overall row.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	last := rows[len(rows)-1]
	if last[0] != "OVERALL" || last[5] != "1.0000" {
		t.Errorf("unexpected overall row: %v", last)
	}
}

func TestTopChecks(t *testing.T) {
	s := Summary{CheckTotals: map[string]int{"a": 1, "b": 3, "c": 3, "d": 2}}
	top := s.TopChecks(3)
	if len(top) != 3 {
		t.Fatalf("expected 3, got %d", len(top))
	}
	if top[0].Check != "b" || top[1].Check != "c" || top[2].Check != "d" {
		t.Errorf("unexpected order: %v", top)
	}
}
