package stats

import (
	"sort"

	"slitherbench/internal/groundtruth"
	"slitherbench/internal/model"
)

// ContractStats is the per-contract slice of the aggregate: finding counts
// plus the ground-truth comparison. Immutable once computed; the whole set
// is regenerated on every run.
type ContractStats struct {
	Contract       string               `json:"contract"`
	TotalFindings  int                  `json:"total_findings"`
	BySeverity     map[model.Impact]int `json:"by_severity"`
	Labeled        bool                 `json:"labeled"`
	TruePositives  int                  `json:"true_positives"`
	FalseNegatives int                  `json:"false_negatives"`
	FalsePositives int                  `json:"false_positives"`
	DetectionRate  float64              `json:"detection_rate"`
	MissedLabels   []string             `json:"missed_labels,omitempty"`
}

// Summary holds the aggregate detection statistics for one pipeline run.
type Summary struct {
	TotalContracts   int                  `json:"total_contracts"`
	LabeledContracts int                  `json:"labeled_contracts"`
	TotalFindings    int                  `json:"total_findings"`
	AverageFindings  float64              `json:"average_findings"`
	SeverityTotals   map[model.Impact]int `json:"severity_totals"`
	CheckTotals      map[string]int       `json:"check_totals"`
	TruePositives    int                  `json:"true_positives"`
	FalseNegatives   int                  `json:"false_negatives"`
	FalsePositives   int                  `json:"false_positives"`
	DetectionRate    float64              `json:"detection_rate"`
	Contracts        []ContractStats      `json:"contracts"`
}

// Compute aggregates parsed results against the ground truth. Deterministic
// for identical inputs: contracts are processed in name order and every
// derived value is a pure function of the inputs.
//
// A ground-truth label counts as detected (true positive) when any reported
// check is in the label's check set; otherwise it is a false negative.
// False positives are distinct high/medium checks reported against a labeled
// contract that no label expects. Contracts absent from the ground truth
// contribute zero to every rate denominator.
func Compute(results []model.ParsedResult, gt groundtruth.Set) Summary {
	sorted := append([]model.ParsedResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Contract < sorted[j].Contract })

	summary := Summary{
		SeverityTotals: map[model.Impact]int{},
		CheckTotals:    map[string]int{},
		Contracts:      make([]ContractStats, 0, len(sorted)),
	}
	for _, imp := range model.ImpactOrder {
		summary.SeverityTotals[imp] = 0
	}

	for _, pr := range sorted {
		cs := computeContract(pr, gt)
		summary.Contracts = append(summary.Contracts, cs)

		summary.TotalContracts++
		summary.TotalFindings += cs.TotalFindings
		for imp, n := range cs.BySeverity {
			summary.SeverityTotals[imp] += n
		}
		for check, n := range pr.Analysis.FindingsByCheck {
			summary.CheckTotals[check] += n
		}

		if cs.Labeled {
			summary.LabeledContracts++
			summary.TruePositives += cs.TruePositives
			summary.FalseNegatives += cs.FalseNegatives
			summary.FalsePositives += cs.FalsePositives
		}
	}

	if summary.TotalContracts > 0 {
		summary.AverageFindings = float64(summary.TotalFindings) / float64(summary.TotalContracts)
	}
	summary.DetectionRate = rate(summary.TruePositives, summary.FalseNegatives)

	return summary
}

func computeContract(pr model.ParsedResult, gt groundtruth.Set) ContractStats {
	cs := ContractStats{
		Contract:      pr.Contract,
		TotalFindings: pr.Analysis.TotalFindings,
		BySeverity:    map[model.Impact]int{},
		Labeled:       gt.Contains(pr.Contract),
	}
	for _, imp := range model.ImpactOrder {
		cs.BySeverity[imp] = pr.Analysis.FindingsBySeverity[imp]
	}

	if !cs.Labeled {
		return cs
	}

	reported := map[string]struct{}{}
	for check := range pr.Analysis.FindingsByCheck {
		reported[check] = struct{}{}
	}

	for _, label := range gt[pr.Contract] {
		detected := false
		for _, check := range label.Checks {
			if _, ok := reported[check]; ok {
				detected = true
				break
			}
		}
		if detected {
			cs.TruePositives++
		} else {
			cs.FalseNegatives++
			cs.MissedLabels = append(cs.MissedLabels, label.Category)
		}
	}
	sort.Strings(cs.MissedLabels)

	expected := gt.ExpectedChecks(pr.Contract)
	seen := map[string]struct{}{}
	for _, f := range pr.Analysis.Findings {
		if f.Impact != model.ImpactHigh && f.Impact != model.ImpactMedium {
			continue
		}
		if _, ok := expected[f.Check]; ok {
			continue
		}
		if _, ok := seen[f.Check]; ok {
			continue
		}
		seen[f.Check] = struct{}{}
		cs.FalsePositives++
	}

	cs.DetectionRate = rate(cs.TruePositives, cs.FalseNegatives)
	return cs
}

// rate is TP/(TP+FN); zero denominator means zero rate, not NaN.
func rate(tp, fn int) float64 {
	if tp+fn == 0 {
		return 0
	}
	return float64(tp) / float64(tp+fn)
}

// TopChecks returns the n most frequent checks, ties broken by name.
func (s Summary) TopChecks(n int) []CheckCount {
	out := make([]CheckCount, 0, len(s.CheckTotals))
	for check, count := range s.CheckTotals {
		out = append(out, CheckCount{Check: check, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Check < out[j].Check
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

type CheckCount struct {
	Check string `json:"check"`
	Count int    `json:"count"`
}
