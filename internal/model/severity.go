package model

import (
	"fmt"
	"strings"
)

// Impact is Slither's severity scale for a finding.
type Impact string

const (
	ImpactUnknown       Impact = "unknown"
	ImpactOptimization  Impact = "optimization"
	ImpactInformational Impact = "informational"
	ImpactLow           Impact = "low"
	ImpactMedium        Impact = "medium"
	ImpactHigh          Impact = "high"
)

// ImpactOrder is the display order used in summaries and tables.
var ImpactOrder = []Impact{
	ImpactHigh,
	ImpactMedium,
	ImpactLow,
	ImpactInformational,
	ImpactOptimization,
}

// Rank returns an integer rank for comparison (Optimization=1, High=5).
func (i Impact) Rank() int {
	switch i {
	case ImpactOptimization:
		return 1
	case ImpactInformational:
		return 2
	case ImpactLow:
		return 3
	case ImpactMedium:
		return 4
	case ImpactHigh:
		return 5
	default:
		return 0
	}
}

func (i Impact) String() string {
	return string(i)
}

// Title returns the capitalized form Slither uses in its own output.
func (i Impact) Title() string {
	s := string(i)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseImpact parses an impact string case-insensitively.
// Accepts "info" as "informational".
func ParseImpact(s string) (Impact, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ImpactHigh, nil
	case "medium":
		return ImpactMedium, nil
	case "low":
		return ImpactLow, nil
	case "informational", "info":
		return ImpactInformational, nil
	case "optimization":
		return ImpactOptimization, nil
	default:
		return ImpactUnknown, fmt.Errorf("invalid impact: %s", s)
	}
}
