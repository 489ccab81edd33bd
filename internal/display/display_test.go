package display

import "testing"

func TestKind(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"trigger", "Trigger"},
		{"root_cause", "Root Cause"},
		{"amplifier", "Amplifier"},
		{"contributing_factor", "Contributing Factor"},
		{"symptom", "Symptom"},
		{"red_herring", "Red Herring"},
		{"decoy", "Decoy"},
		{"unknown", "unknown"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Kind(tc.code); got != tc.want {
			t.Errorf("Kind(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestKindWithCode(t *testing.T) {
	if got := KindWithCode("root_cause"); got != "Root Cause (root_cause)" {
		t.Errorf("got %q", got)
	}
	if got := KindWithCode("unknown"); got != "unknown" {
		t.Errorf("got %q", got)
	}
}

func TestConfidence(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"explicit", "Explicit"},
		{"implied", "Implied"},
		{"hedged", "Hedged"},
		{"", "-"},
		{"odd", "odd"},
	}
	for _, tc := range cases {
		if got := Confidence(tc.code); got != tc.want {
			t.Errorf("Confidence(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestAdjustmentSource(t *testing.T) {
	if got := AdjustmentSource("rate_limit_violations"); got != "Rate-Limit Violations" {
		t.Errorf("got %q", got)
	}
	if got := AdjustmentSource("custom"); got != "custom" {
		t.Errorf("got %q", got)
	}
}

func TestDegradedPath(t *testing.T) {
	if got := DegradedPath("empty_report"); got != "Empty report, floor score applied" {
		t.Errorf("got %q", got)
	}
	if got := DegradedPath("other"); got != "other" {
		t.Errorf("got %q", got)
	}
}

func TestCausalChain(t *testing.T) {
	got := CausalChain([]string{"T", "R", "S"})
	want := "T → R → S"
	if got != want {
		t.Errorf("CausalChain = %q, want %q", got, want)
	}
	if got := CausalChain(nil); got != "" {
		t.Errorf("CausalChain(nil) = %q, want empty", got)
	}
}
