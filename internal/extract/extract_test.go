package extract

import (
	"strings"
	"testing"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
)

func testGraph(t *testing.T) *causal.Graph {
	t.Helper()
	g, err := causal.Build(&causal.PatternSpec{
		ID:   "CASCADE-T1",
		Name: "tcp buffer truncation",
		Nodes: []causal.Node{
			{ID: "T", Kind: causal.KindTrigger, Weight: 5,
				Paraphrases: []string{"config rollout", "sysctl change"}},
			{ID: "R", Kind: causal.KindRootCause, Weight: 40, Required: true,
				Paraphrases: []string{"buffer truncation", "tcp_wmem", "send buffer reduced"}},
			{ID: "A", Kind: causal.KindAmplifier, Weight: 20,
				Paraphrases: []string{"idempotency key", "retry dedup disabled"}},
			{ID: "C", Kind: causal.KindContributingFactor, Weight: 25,
				Paraphrases: []string{"hold_for_review", "review queue bypass"}},
			{ID: "S", Kind: causal.KindSymptom, Weight: 10,
				Paraphrases: []string{"negative stock", "inventory went negative"}},
			{ID: "H", Kind: causal.KindRedHerring, Weight: 15,
				Paraphrases: []string{"redis upgrade"}},
		},
		Edges: []causal.Edge{
			{From: "T", To: "R"},
			{From: "R", To: "A", InteractionBonus: 15},
			{From: "R", To: "C"},
			{From: "C", To: "S"},
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func findingFor(fs []Finding, nodeID string) (Finding, bool) {
	for _, f := range fs {
		if f.NodeID == nodeID {
			return f, true
		}
	}
	return Finding{}, false
}

func TestExtract_LiteralMatch(t *testing.T) {
	g := testGraph(t)
	fs := Extract("We found buffer truncation caused negative stock, confirmed.", g, DefaultConfig())

	r, ok := findingFor(fs, "R")
	if !ok {
		t.Fatal("no finding for R")
	}
	if r.Confidence != Explicit {
		t.Errorf("R confidence = %s, want explicit", r.Confidence)
	}
	if !r.AssertedRootCause {
		t.Error("R not flagged as causal assertion")
	}
	if r.Similarity != 1.0 {
		t.Errorf("R similarity = %v, want 1.0", r.Similarity)
	}

	s, ok := findingFor(fs, "S")
	if !ok {
		t.Fatal("no finding for S")
	}
	if s.Confidence != Explicit {
		t.Errorf("S confidence = %s, want explicit", s.Confidence)
	}

	if _, ok := findingFor(fs, "H"); ok {
		t.Error("red herring matched without mention")
	}
}

func TestExtract_Confidence(t *testing.T) {
	g := testGraph(t)
	tests := []struct {
		name   string
		report string
		node   string
		want   Confidence
	}{
		{"hedged", "The tcp_wmem change might be involved.", "R", Hedged},
		{"implied", "Logs suggest the tcp_wmem change is involved.", "R", Implied},
		{"explicit marker", "Confirmed: tcp_wmem was reduced.", "R", Explicit},
		{"plain assertion defaults explicit", "The send buffer reduced throughput.", "R", Explicit},
		{"hedge beats implied", "It likely is tcp_wmem, but unclear whether that matters.", "R", Hedged},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := Extract(tc.report, g, DefaultConfig())
			f, ok := findingFor(fs, tc.node)
			if !ok {
				t.Fatalf("no finding for %s", tc.node)
			}
			if f.Confidence != tc.want {
				t.Errorf("confidence = %s, want %s", f.Confidence, tc.want)
			}
		})
	}
}

func TestExtract_Negation(t *testing.T) {
	g := testGraph(t)
	tests := []struct {
		name   string
		report string
		node   string
	}{
		{"ruled out", "We ruled out the redis upgrade early on.", "H"},
		{"not the cause", "The redis upgrade is not the cause.", "H"},
		{"no evidence", "There is no evidence the idempotency key matters.", "A"},
		{"dismissed after rather than", "It was buffer truncation rather than the redis upgrade.", "H"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := Extract(tc.report, g, DefaultConfig())
			if f, ok := findingFor(fs, tc.node); ok {
				t.Errorf("negated mention produced finding: %+v", f)
			}
		})
	}
}

func TestExtract_AffirmedAfterEarlierDismissal(t *testing.T) {
	g := testGraph(t)
	report := "At first we ruled out the idempotency key. Later we confirmed the idempotency key caused the duplicate webhooks."
	fs := Extract(report, g, DefaultConfig())

	f, ok := findingFor(fs, "A")
	if !ok {
		t.Fatal("affirming sentence after a dismissal produced no finding")
	}
	if f.Start <= strings.Index(report, "Later") {
		t.Errorf("finding anchored at %d, want the second mention", f.Start)
	}
	if f.Confidence != Explicit {
		t.Errorf("confidence = %s, want explicit", f.Confidence)
	}
	if !f.AssertedRootCause {
		t.Error("causal assertion not flagged")
	}
}

func TestExtract_FuzzySkipsDismissedWindow(t *testing.T) {
	g := testGraph(t)
	// Both mentions carry the same one-edit typo, so only the fuzzy pass
	// can match; the first sits in a dismissing sentence.
	report := "We ruled out the idempotancy key. The idempotancy key change made retries unsafe."
	fs := Extract(report, g, DefaultConfig())

	f, ok := findingFor(fs, "A")
	if !ok {
		t.Fatal("affirming fuzzy mention after a dismissal produced no finding")
	}
	if f.Start <= strings.Index(report, "The idempotancy") {
		t.Errorf("finding anchored at %d, want the second mention", f.Start)
	}
}

func TestExtract_NegationScopedToSentence(t *testing.T) {
	g := testGraph(t)
	report := "We ruled out the redis upgrade. The root cause is buffer truncation."
	fs := Extract(report, g, DefaultConfig())

	if _, ok := findingFor(fs, "H"); ok {
		t.Error("negation leaked out of its sentence")
	}
	r, ok := findingFor(fs, "R")
	if !ok {
		t.Fatal("affirmed sentence lost its finding")
	}
	if !r.AssertedRootCause {
		t.Error("R not flagged as causal assertion")
	}
}

func TestExtract_FuzzyMatch(t *testing.T) {
	g := testGraph(t)
	// "idempotancy" is one edit away from the paraphrase token.
	fs := Extract("The idempotancy key handling made retries unsafe.", g, DefaultConfig())
	f, ok := findingFor(fs, "A")
	if !ok {
		t.Fatal("fuzzy match missed a one-edit typo")
	}
	if f.Similarity >= 1.0 || f.Similarity < DefaultConfig().SimilarityThreshold {
		t.Errorf("similarity = %v, want in [τ, 1)", f.Similarity)
	}
}

func TestExtract_FuzzyBelowThreshold(t *testing.T) {
	g := testGraph(t)
	fs := Extract("The database index rebuild finished overnight.", g, DefaultConfig())
	if len(fs) != 0 {
		t.Errorf("unrelated text matched: %+v", fs)
	}
}

func TestExtract_OneFindingPerNode(t *testing.T) {
	g := testGraph(t)
	report := "tcp_wmem was cut. Later we re-checked tcp_wmem and the send buffer reduced size."
	fs := Extract(report, g, DefaultConfig())

	count := 0
	for _, f := range fs {
		if f.NodeID == "R" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("findings for R = %d, want 1", count)
	}
	f, _ := findingFor(fs, "R")
	if f.Paraphrase != "tcp_wmem" || f.Start != 0 {
		t.Errorf("expected first literal hit to win, got %+v", f)
	}
}

func TestExtract_EmptyReport(t *testing.T) {
	g := testGraph(t)
	if fs := Extract("   \n  ", g, DefaultConfig()); fs != nil {
		t.Errorf("blank report produced findings: %+v", fs)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	g := testGraph(t)
	report := "Logs suggest tcp_wmem was reduced, and the hold_for_review queue likely made it worse."
	a := Extract(report, g, DefaultConfig())
	for i := 0; i < 10; i++ {
		b := Extract(report, g, DefaultConfig())
		if len(a) != len(b) {
			t.Fatalf("run %d: %d findings, want %d", i, len(b), len(a))
		}
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("run %d finding %d differs: %+v vs %+v", i, j, b[j], a[j])
			}
		}
	}
}
