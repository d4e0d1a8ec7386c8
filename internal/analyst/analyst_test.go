package analyst

import (
	"encoding/json"
	"strings"
	"testing"

	"slitherbench/internal/stats"
)

func TestUserPromptEmbedsSummary(t *testing.T) {
	s := stats.Summary{
		TotalContracts: 6,
		TruePositives:  4,
		FalseNegatives: 1,
		DetectionRate:  0.8,
	}
	prompt, err := userPrompt(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, `"true_positives":4`) {
		t.Errorf("prompt missing summary payload:\n%s", prompt)
	}
}

func TestSystemPromptSchema(t *testing.T) {
	p := systemPrompt()
	for _, field := range []string{"headline", "detection_notes", "false_positives", "notable_misses", "recommendations"} {
		if !strings.Contains(p, field) {
			t.Errorf("system prompt missing schema field %q", field)
		}
	}
	if strings.Contains(p, "```") {
		t.Errorf("system prompt must not contain code fences")
	}
}

func TestInterpretationRoundtrip(t *testing.T) {
	raw := `{
		"headline": "Slither caught most labeled bugs.",
		"detection_notes": "4 of 5 labels detected.",
		"false_positives": "2 medium findings on the audited baseline.",
		"notable_misses": ["honeypot hidden revert"],
		"recommendations": ["add more rugpull samples"]
	}`
	var out Interpretation
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatal(err)
	}
	if out.Headline == "" || len(out.NotableMisses) != 1 {
		t.Errorf("unexpected interpretation: %+v", out)
	}
}
