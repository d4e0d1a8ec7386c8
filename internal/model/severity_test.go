package model

import "testing"

func TestParseImpact(t *testing.T) {
	cases := []struct {
		in      string
		want    Impact
		wantErr bool
	}{
		{"high", ImpactHigh, false},
		{"High", ImpactHigh, false},
		{"  MEDIUM ", ImpactMedium, false},
		{"low", ImpactLow, false},
		{"informational", ImpactInformational, false},
		{"info", ImpactInformational, false},
		{"optimization", ImpactOptimization, false},
		{"critical", ImpactUnknown, true},
		{"", ImpactUnknown, true},
	}
	for _, tc := range cases {
		got, err := ParseImpact(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseImpact(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseImpact(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestImpactRankOrdering(t *testing.T) {
	if ImpactHigh.Rank() <= ImpactMedium.Rank() {
		t.Error("high should rank above medium")
	}
	if ImpactMedium.Rank() <= ImpactLow.Rank() {
		t.Error("medium should rank above low")
	}
	if ImpactUnknown.Rank() != 0 {
		t.Errorf("unknown rank = %d, want 0", ImpactUnknown.Rank())
	}

	// ImpactOrder must walk from highest to lowest rank.
	for i := 1; i < len(ImpactOrder); i++ {
		if ImpactOrder[i-1].Rank() <= ImpactOrder[i].Rank() {
			t.Errorf("ImpactOrder not descending at %d: %v", i, ImpactOrder)
		}
	}
}

func TestImpactTitle(t *testing.T) {
	if got := ImpactHigh.Title(); got != "High" {
		t.Errorf("Title() = %q, want High", got)
	}
	if got := ImpactInformational.Title(); got != "Informational" {
		t.Errorf("Title() = %q, want Informational", got)
	}
}
