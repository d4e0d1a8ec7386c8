package model

// Finding represents one normalized issue reported by a static-analysis tool.
type Finding struct {
	Check                string `json:"check"`
	Impact               Impact `json:"impact"`
	Confidence           string `json:"confidence"`
	Description          string `json:"description"`
	FirstMarkdownElement string `json:"first_markdown_element,omitempty"`
	Lines                []int  `json:"lines,omitempty"`
}

// Analysis is the parsed view of one raw tool report for one contract.
// A malformed or empty raw report produces a zero-finding Analysis with the
// failure reason in Metadata, never an error.
type Analysis struct {
	Success            bool             `json:"success"`
	TotalFindings      int              `json:"total_findings"`
	FindingsBySeverity map[Impact]int   `json:"findings_by_severity"`
	FindingsByCheck    map[string]int   `json:"findings_by_check"`
	Findings           []Finding        `json:"findings"`
	Metadata           AnalysisMetadata `json:"metadata"`
}

type AnalysisMetadata struct {
	Error string `json:"error,omitempty"`
}

// EmptyAnalysis returns a zero-finding Analysis carrying the failure reason.
func EmptyAnalysis(reason string) Analysis {
	sev := make(map[Impact]int, len(ImpactOrder))
	for _, i := range ImpactOrder {
		sev[i] = 0
	}
	return Analysis{
		Success:            false,
		FindingsBySeverity: sev,
		FindingsByCheck:    map[string]int{},
		Findings:           []Finding{},
		Metadata:           AnalysisMetadata{Error: reason},
	}
}
