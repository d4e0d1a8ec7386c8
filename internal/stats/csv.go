package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"slitherbench/internal/model"
)

// WriteCSVs exports the summary as thesis-ready tables under dir:
// severity_distribution.csv, finding_types.csv, per_contract_summary.csv
// and detection_rates.csv.
func WriteCSVs(dir string, s Summary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, "severity_distribution.csv"), severityRows(s)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "finding_types.csv"), checkRows(s)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "per_contract_summary.csv"), contractRows(s)); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, "detection_rates.csv"), detectionRows(s))
}

func severityRows(s Summary) [][]string {
	rows := [][]string{{"Severity", "Count", "Percentage"}}
	for _, imp := range model.ImpactOrder {
		count := s.SeverityTotals[imp]
		rows = append(rows, []string{imp.Title(), fmt.Sprint(count), pct(count, s.TotalFindings)})
	}
	return rows
}

func checkRows(s Summary) [][]string {
	rows := [][]string{{"Check Type", "Count", "Percentage"}}
	for _, cc := range s.TopChecks(0) {
		rows = append(rows, []string{cc.Check, fmt.Sprint(cc.Count), pct(cc.Count, s.TotalFindings)})
	}
	return rows
}

func contractRows(s Summary) [][]string {
	rows := [][]string{{"Contract", "Total", "High", "Medium", "Low", "Informational", "Optimization"}}
	for _, c := range s.Contracts {
		rows = append(rows, []string{
			c.Contract,
			fmt.Sprint(c.TotalFindings),
			fmt.Sprint(c.BySeverity[model.ImpactHigh]),
			fmt.Sprint(c.BySeverity[model.ImpactMedium]),
			fmt.Sprint(c.BySeverity[model.ImpactLow]),
			fmt.Sprint(c.BySeverity[model.ImpactInformational]),
			fmt.Sprint(c.BySeverity[model.ImpactOptimization]),
		})
	}
	return rows
}

func detectionRows(s Summary) [][]string {
	rows := [][]string{{"Contract", "Labeled", "TP", "FN", "FP", "Detection Rate"}}
	for _, c := range s.Contracts {
		rows = append(rows, []string{
			c.Contract,
			fmt.Sprint(c.Labeled),
			fmt.Sprint(c.TruePositives),
			fmt.Sprint(c.FalseNegatives),
			fmt.Sprint(c.FalsePositives),
			fmt.Sprintf("%.4f", c.DetectionRate),
		})
	}
	rows = append(rows, []string{
		"OVERALL",
		fmt.Sprint(s.LabeledContracts),
		fmt.Sprint(s.TruePositives),
		fmt.Sprint(s.FalseNegatives),
		fmt.Sprint(s.FalsePositives),
		fmt.Sprintf("%.4f", s.DetectionRate),
	})
	return rows
}

func pct(count, total int) string {
	if total == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(count)/float64(total)*100)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
