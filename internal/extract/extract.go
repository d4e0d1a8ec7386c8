package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slitherbench/internal/model"
)

const lineWidth = 80
const descWidth = 70

// WriteSummary renders parsed results as an organized text report:
// contract -> severity -> check -> individual findings, followed by
// aggregate tallies. This is the human-readable artifact the analysis
// notebook works from.
func WriteSummary(w io.Writer, results []model.ParsedResult) error {
	sorted := append([]model.ParsedResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Contract < sorted[j].Contract })

	total := 0
	for _, pr := range sorted {
		total += pr.Analysis.TotalFindings
	}

	rule := strings.Repeat("=", lineWidth)
	thin := strings.Repeat("-", lineWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SECURITY FINDINGS SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Contracts Analyzed: %d\n", len(sorted))
	fmt.Fprintf(w, "Total Findings: %d\n\n", total)

	for _, pr := range sorted {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "CONTRACT: %s\n", pr.Contract)
		fmt.Fprintf(w, "Total Findings: %d\n", pr.Analysis.TotalFindings)
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w)

		byImpact := groupByImpact(pr.Analysis.Findings)
		for _, impact := range model.ImpactOrder {
			byCheck := byImpact[impact]
			if len(byCheck) == 0 {
				continue
			}
			count := 0
			for _, fs := range byCheck {
				count += len(fs)
			}

			fmt.Fprintln(w, thin)
			fmt.Fprintf(w, "SEVERITY: %s (%d findings)\n", impact.Title(), count)
			fmt.Fprintln(w, thin)
			fmt.Fprintln(w)

			checks := make([]string, 0, len(byCheck))
			for c := range byCheck {
				checks = append(checks, c)
			}
			sort.Strings(checks)

			for _, check := range checks {
				fs := byCheck[check]
				fmt.Fprintf(w, "  Check Type: %s (%d occurrence(s))\n", check, len(fs))
				for i, f := range fs {
					fmt.Fprintf(w, "\n  [%d] Impact: %s | Confidence: %s\n", i+1, impact.Title(), f.Confidence)
					if ref := shortRef(f.FirstMarkdownElement); ref != "" {
						fmt.Fprintf(w, "      File: %s\n", ref)
					}
					fmt.Fprintln(w, "      Description:")
					writeWrapped(w, f.Description)
				}
				fmt.Fprintln(w)
			}
		}
	}

	writeAggregate(w, sorted, rule)
	return nil
}

// Filter keeps the results whose contract name contains contractFilter.
// An empty filter keeps everything.
func Filter(results []model.ParsedResult, contractFilter string) ([]model.ParsedResult, error) {
	if contractFilter == "" {
		return results, nil
	}
	var filtered []model.ParsedResult
	for _, pr := range results {
		if strings.Contains(pr.Contract, contractFilter) {
			filtered = append(filtered, pr)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no results found for contract %q", contractFilter)
	}
	return filtered, nil
}

// Extract writes the summary for all results, or for one contract, to
// outPath.
func Extract(results []model.ParsedResult, contractFilter, outPath string) error {
	results, err := Filter(results, contractFilter)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteSummary(f, results)
}

func groupByImpact(findings []model.Finding) map[model.Impact]map[string][]model.Finding {
	out := map[model.Impact]map[string][]model.Finding{}
	for _, f := range findings {
		check := f.Check
		if check == "" {
			check = "unknown"
		}
		if out[f.Impact] == nil {
			out[f.Impact] = map[string][]model.Finding{}
		}
		out[f.Impact][check] = append(out[f.Impact][check], f)
	}
	return out
}

func writeAggregate(w io.Writer, results []model.ParsedResult, rule string) {
	sevTotals := map[model.Impact]int{}
	checkTotals := map[string]int{}
	for _, pr := range results {
		for imp, n := range pr.Analysis.FindingsBySeverity {
			sevTotals[imp] += n
		}
		for check, n := range pr.Analysis.FindingsByCheck {
			checkTotals[check] += n
		}
	}

	fmt.Fprintln(w, rule)
	if len(results) > 1 {
		fmt.Fprintln(w, "AGGREGATE SUMMARY BY SEVERITY")
	} else {
		fmt.Fprintln(w, "SUMMARY BY SEVERITY")
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	for _, imp := range model.ImpactOrder {
		if sevTotals[imp] > 0 {
			fmt.Fprintf(w, "  %-15s: %4d findings\n", imp.Title(), sevTotals[imp])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	if len(results) > 1 {
		fmt.Fprintln(w, "AGGREGATE SUMMARY BY CHECK TYPE")
	} else {
		fmt.Fprintln(w, "SUMMARY BY CHECK TYPE")
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	type kv struct {
		check string
		count int
	}
	sorted := make([]kv, 0, len(checkTotals))
	for c, n := range checkTotals {
		sorted = append(sorted, kv{c, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].check < sorted[j].check
	})
	for _, e := range sorted {
		fmt.Fprintf(w, "  %-30s: %4d findings\n", e.check, e.count)
	}
}

// shortRef trims a markdown element reference down to its file name.
func shortRef(ref string) string {
	if ref == "" {
		return ""
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// writeWrapped prints a description indented and wrapped to descWidth.
func writeWrapped(w io.Writer, text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			fmt.Fprintln(w, "        ")
			continue
		}
		words := strings.Fields(line)
		var cur []string
		curLen := 0
		for _, word := range words {
			if curLen+len(word)+1 > descWidth && len(cur) > 0 {
				fmt.Fprintf(w, "        %s\n", strings.Join(cur, " "))
				cur, curLen = nil, 0
			}
			cur = append(cur, word)
			curLen += len(word) + 1
		}
		if len(cur) > 0 {
			fmt.Fprintf(w, "        %s\n", strings.Join(cur, " "))
		}
	}
	fmt.Fprintln(w)
}
