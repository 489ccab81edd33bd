package causal

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testSpec returns a valid pattern spec: a four-hop cascade plus one planted
// red herring. Scorable weights sum to 100.
func testSpec() *PatternSpec {
	return &PatternSpec{
		ID:   "CASCADE-T1",
		Name: "buffer truncation cascade",
		Nodes: []Node{
			{ID: "T", Kind: KindTrigger, Description: "seasonal batch sizes exceeded 4MB", Weight: 5,
				Paraphrases: []string{"large batches", "seasonal traffic"}},
			{ID: "R", Kind: KindRootCause, Description: "TCP send-buffer max reduced from 16MB to 4MB", Weight: 40, Required: true,
				Paraphrases: []string{"buffer truncation", "tcp_wmem", "send buffer reduced"}},
			{ID: "A", Kind: KindAmplifier, Description: "idempotency keys switched to timestamps", Weight: 20,
				Paraphrases: []string{"idempotency key", "timestamp-based keys"}},
			{ID: "C", Kind: KindContributingFactor, Description: "orders auto-approve when hold flag missing", Weight: 25,
				Paraphrases: []string{"hold_for_review", "auto-approve"}},
			{ID: "S", Kind: KindSymptom, Description: "negative stock across SKUs", Weight: 10,
				Paraphrases: []string{"negative stock", "negative inventory"}},
			{ID: "H", Kind: KindRedHerring, Description: "Redis upgrade in progress", Weight: 15,
				Paraphrases: []string{"redis upgrade", "redis 7.2"}},
		},
		Edges: []Edge{
			{From: "T", To: "R"},
			{From: "R", To: "A", InteractionBonus: 15},
			{From: "R", To: "C"},
			{From: "C", To: "S"},
		},
	}
}

func mustBuild(t *testing.T) *Graph {
	t.Helper()
	g, err := Build(testSpec())
	if err != nil {
		t.Fatalf("Build valid spec: %v", err)
	}
	return g
}

func TestBuild_Valid(t *testing.T) {
	g := mustBuild(t)

	if g.PatternID() != "CASCADE-T1" {
		t.Errorf("PatternID = %q, want CASCADE-T1", g.PatternID())
	}
	if len(g.Nodes()) != 6 || len(g.Edges()) != 4 {
		t.Errorf("got %d nodes / %d edges, want 6 / 4", len(g.Nodes()), len(g.Edges()))
	}

	n, ok := g.Node("R")
	if !ok {
		t.Fatal("Node(R) not found")
	}
	if n.Kind != KindRootCause || !n.Required {
		t.Errorf("Node(R) = %+v, want required root_cause", n)
	}
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PatternSpec)
		want   string // substring of the error reason
	}{
		{"empty id", func(s *PatternSpec) { s.ID = "" }, "pattern id is empty"},
		{"no nodes", func(s *PatternSpec) { s.Nodes = nil }, "no nodes"},
		{"unknown kind", func(s *PatternSpec) { s.Nodes[1].Kind = "cause" }, "unknown kind"},
		{"duplicate id", func(s *PatternSpec) { s.Nodes[2].ID = "R" }, "duplicate node id"},
		{"zero weight", func(s *PatternSpec) { s.Nodes[4].Weight = 0 }, "non-positive weight"},
		{"weights off max", func(s *PatternSpec) { s.Nodes[4].Weight = 11 }, "sum to"},
		{"edge to missing node", func(s *PatternSpec) {
			s.Edges = append(s.Edges, Edge{From: "R", To: "ZZ"})
		}, "unknown node"},
		{"cycle", func(s *PatternSpec) {
			s.Edges = append(s.Edges, Edge{From: "S", To: "R"})
		}, "cycle"},
		{"orphan scorable node", func(s *PatternSpec) {
			s.Edges = s.Edges[:3] // drop C→S, S becomes unreachable
		}, "not reachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec()
			tt.mutate(spec)
			_, err := Build(spec)
			if err == nil {
				t.Fatal("Build succeeded, want MalformedPatternError")
			}
			var mpe *MalformedPatternError
			if !errors.As(err, &mpe) {
				t.Fatalf("error type %T, want *MalformedPatternError", err)
			}
			if !strings.Contains(mpe.Reason, tt.want) {
				t.Errorf("reason %q does not contain %q", mpe.Reason, tt.want)
			}
		})
	}
}

func TestBuild_PenaltyNodeMayBeOrphan(t *testing.T) {
	// The red herring H has no inbound edges in testSpec; Build must accept it.
	spec := testSpec()
	if _, err := Build(spec); err != nil {
		t.Fatalf("Build with orphan red herring: %v", err)
	}
}

func TestReachableFrom(t *testing.T) {
	g := mustBuild(t)

	tests := []struct {
		name  string
		start string
		want  []string
	}{
		{"from trigger", "T", []string{"A", "C", "R", "S", "T"}},
		{"from root cause", "R", []string{"A", "C", "R", "S"}},
		{"from leaf", "S", []string{"S"}},
		{"unknown id", "ZZ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.ReachableFrom(tt.start)
			var ids []string
			for _, n := range g.Nodes() {
				if got[n.ID] {
					ids = append(ids, n.ID)
				}
			}
			// Nodes() is spec order; sort expectation accordingly.
			if diff := cmp.Diff(sortedCopy(tt.want), sortedCopy(ids)); diff != "" {
				t.Errorf("ReachableFrom(%s) mismatch (-want +got):\n%s", tt.start, diff)
			}
		})
	}
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func TestKind(t *testing.T) {
	if KindDecoy.Valid() != true || Kind("bogus").Valid() != false {
		t.Error("Kind.Valid misclassifies")
	}
	if !KindRedHerring.Penalty() || !KindDecoy.Penalty() || KindSymptom.Penalty() {
		t.Error("Kind.Penalty misclassifies")
	}
}
