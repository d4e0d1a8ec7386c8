package slither

import (
	"encoding/json"
	"fmt"
	"strings"

	"slitherbench/internal/model"
)

// Slither JSON report (simplified): everything the pipeline needs lives
// under results.detectors.
type slitherReport struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
	Results struct {
		Detectors []slitherDetector `json:"detectors"`
	} `json:"results"`
}

type slitherDetector struct {
	Check                string `json:"check"`
	Impact               string `json:"impact"`
	Confidence           string `json:"confidence"`
	Description          string `json:"description"`
	FirstMarkdownElement string `json:"first_markdown_element"`
	Elements             []struct {
		SourceMapping struct {
			Lines []int `json:"lines"`
		} `json:"source_mapping"`
	} `json:"elements"`
}

// Parse normalizes raw Slither JSON into an Analysis. Empty or malformed
// input yields a zero-finding Analysis with the reason recorded, never an
// error: a bad report must not sink the batch.
func Parse(rawStdout string) model.Analysis {
	if strings.TrimSpace(rawStdout) == "" {
		return model.EmptyAnalysis("no output from slither")
	}

	var report slitherReport
	if err := json.Unmarshal([]byte(rawStdout), &report); err != nil {
		return model.EmptyAnalysis(fmt.Sprintf("invalid JSON: %v", err))
	}

	analysis := model.Analysis{
		Success:            report.Success,
		FindingsBySeverity: make(map[model.Impact]int, len(model.ImpactOrder)),
		FindingsByCheck:    map[string]int{},
		Findings:           []model.Finding{},
	}
	for _, i := range model.ImpactOrder {
		analysis.FindingsBySeverity[i] = 0
	}
	if report.Error != nil {
		analysis.Metadata.Error = *report.Error
	}

	// Group by impact first so the flattened list comes out in severity
	// order, the way downstream summaries expect it. Duplicate detector
	// entries (same check on the same element) collapse to one finding.
	grouped := make(map[model.Impact][]model.Finding, len(model.ImpactOrder))
	seen := map[string]struct{}{}
	for _, d := range report.Results.Detectors {
		impact, err := model.ParseImpact(d.Impact)
		if err != nil {
			impact = model.ImpactUnknown
		}

		f := model.Finding{
			Check:                d.Check,
			Impact:               impact,
			Confidence:           d.Confidence,
			Description:          strings.TrimSpace(d.Description),
			FirstMarkdownElement: d.FirstMarkdownElement,
		}
		if len(d.Elements) > 0 {
			f.Lines = d.Elements[0].SourceMapping.Lines
		}

		key := dedupeKey(f)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		// Detectors with an unrecognized impact stay out of the severity
		// buckets but still count toward the per-check totals.
		if impact != model.ImpactUnknown {
			grouped[impact] = append(grouped[impact], f)
		}

		check := d.Check
		if check == "" {
			check = "unknown"
		}
		analysis.FindingsByCheck[check]++
	}

	for _, impact := range model.ImpactOrder {
		for _, f := range grouped[impact] {
			analysis.Findings = append(analysis.Findings, f)
			analysis.FindingsBySeverity[impact]++
		}
	}
	analysis.TotalFindings = len(analysis.Findings)

	return analysis
}

func dedupeKey(f model.Finding) string {
	return fmt.Sprintf("%s|%s|%s", f.Check, f.Impact, f.FirstMarkdownElement)
}
