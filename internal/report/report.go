package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"slitherbench/internal/model"
	"slitherbench/internal/stats"
)

// Meta describes one pipeline run.
type Meta struct {
	RunID         string         `json:"run_id"`
	Timestamp     string         `json:"timestamp"`
	Tool          string         `json:"tool"`
	ResultsDir    string         `json:"results_dir"`
	DockerMode    bool           `json:"docker_mode"`
	ScannerErrors []ScannerError `json:"scanner_errors"`
}

// ScannerError records a non-fatal per-contract failure. The batch keeps
// going; the report shows what was skipped and why.
type ScannerError struct {
	Source   string `json:"source"`
	Contract string `json:"contract"`
	Message  string `json:"message"`
}

// Report is the JSON artifact tying a run's metadata to its statistics.
type Report struct {
	Meta    Meta          `json:"meta"`
	Summary stats.Summary `json:"summary"`
}

// Generate writes report.json and report.md into outDir.
func Generate(outDir string, meta Meta, summary stats.Summary) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	rep := Report{Meta: meta, Summary: summary}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "report.json"), data, 0644); err != nil {
		return err
	}

	md := generateMarkdown(meta, summary)
	return os.WriteFile(filepath.Join(outDir, "report.md"), []byte(md), 0644)
}

func generateMarkdown(meta Meta, s stats.Summary) string {
	var sb strings.Builder

	sb.WriteString("# Slitherbench Report\n\n")
	fmt.Fprintf(&sb, "**Run:** `%s`\n", meta.RunID)
	fmt.Fprintf(&sb, "**Timestamp:** %s\n", meta.Timestamp)
	fmt.Fprintf(&sb, "**Tool:** %s\n\n", meta.Tool)

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Contracts analyzed: %d (%d with ground truth)\n", s.TotalContracts, s.LabeledContracts)
	fmt.Fprintf(&sb, "- Total findings: %d (%.1f per contract)\n", s.TotalFindings, s.AverageFindings)
	fmt.Fprintf(&sb, "- Detection rate: %.1f%% (TP %d / FN %d, FP %d)\n\n",
		s.DetectionRate*100, s.TruePositives, s.FalseNegatives, s.FalsePositives)

	sb.WriteString("## Findings by Severity\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("| :--- | :--- |\n")
	for _, imp := range model.ImpactOrder {
		fmt.Fprintf(&sb, "| %s | %d |\n", imp.Title(), s.SeverityTotals[imp])
	}
	sb.WriteString("\n")

	sb.WriteString("## Detection Rates\n\n")
	if len(s.Contracts) == 0 {
		sb.WriteString("_No contracts analyzed._\n")
	} else {
		sb.WriteString("| Contract | Findings | TP | FN | FP | Rate | Missed |\n")
		sb.WriteString("| :--- | :--- | :--- | :--- | :--- | :--- | :--- |\n")
		for _, c := range s.Contracts {
			rate := "n/a"
			if c.Labeled {
				rate = fmt.Sprintf("%.0f%%", c.DetectionRate*100)
			}
			missed := strings.Join(c.MissedLabels, ", ")
			fmt.Fprintf(&sb, "| %s | %d | %d | %d | %d | %s | %s |\n",
				c.Contract, c.TotalFindings, c.TruePositives, c.FalseNegatives, c.FalsePositives, rate, missed)
		}
	}
	sb.WriteString("\n")

	top := s.TopChecks(15)
	if len(top) > 0 {
		sb.WriteString("## Top Finding Types\n\n")
		sb.WriteString("| Check | Count |\n")
		sb.WriteString("| :--- | :--- |\n")
		for _, cc := range top {
			fmt.Fprintf(&sb, "| %s | %d |\n", cc.Check, cc.Count)
		}
		sb.WriteString("\n")
	}

	if len(meta.ScannerErrors) > 0 {
		fmt.Fprintf(&sb, "## Scanner Errors (%d)\n\n", len(meta.ScannerErrors))
		sb.WriteString("| Source | Contract | Message |\n")
		sb.WriteString("|---|---|---|\n")
		for _, e := range meta.ScannerErrors {
			msg := strings.ReplaceAll(e.Message, "|", "\\|")
			msg = strings.ReplaceAll(msg, "\n", " ")
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", e.Source, e.Contract, msg)
		}
	}

	return sb.String()
}
