package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/grade"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/store"
)

var ts = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func testGraph(t *testing.T) *causal.Graph {
	t.Helper()
	g, err := causal.Build(&causal.PatternSpec{
		ID:   "CASCADE-T1",
		Name: "tcp buffer truncation",
		Nodes: []causal.Node{
			{ID: "T", Kind: causal.KindTrigger, Weight: 10,
				Paraphrases: []string{"sysctl rollout"}},
			{ID: "R", Kind: causal.KindRootCause, Weight: 50, Required: true,
				Paraphrases: []string{"buffer truncation"}},
			{ID: "S", Kind: causal.KindSymptom, Weight: 40,
				Paraphrases: []string{"negative stock"}},
		},
		Edges: []causal.Edge{{From: "T", To: "R"}, {From: "R", To: "S"}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func tasks(t *testing.T) []Task {
	g := testGraph(t)
	return []Task{
		{AgentID: "agent-a", Graph: g, Report: "Confirmed: buffer truncation caused negative stock."},
		{AgentID: "agent-b", Graph: g, Report: "We observed negative stock."},
		{AgentID: "agent-c", Graph: g, Report: "   "},
	}
}

func TestRun_Batch(t *testing.T) {
	mem := store.NewMemStore()
	sum, err := Run(context.Background(), tasks(t), Config{
		Parallel:  2,
		Options:   grade.DefaultOptions(),
		Store:     mem,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.RunID == "" {
		t.Error("missing run id")
	}
	if sum.Graded != 3 || sum.Failed != 0 {
		t.Fatalf("graded=%d failed=%d, want 3/0", sum.Graded, sum.Failed)
	}

	// Results keep task order regardless of completion order.
	if sum.Results[0].AgentID != "agent-a" || sum.Results[2].AgentID != "agent-c" {
		t.Errorf("results out of order: %+v", sum.Results)
	}
	a := sum.Results[0].Result.Breakdown
	if a.FinalScore != 90 {
		t.Errorf("agent-a final = %v, want 90", a.FinalScore)
	}
	if !sum.Results[1].Result.Breakdown.Metadata.CapApplied {
		t.Error("agent-b should be capped, no required node found")
	}
	if !sum.Results[2].Result.Breakdown.Metadata.EmptyReport {
		t.Error("agent-c empty report not annotated")
	}
	if sum.Max != 90 || sum.Min != 0 {
		t.Errorf("min/max = %v/%v, want 0/90", sum.Min, sum.Max)
	}

	recs, err := mem.ListGradesByRun(sum.RunID)
	if err != nil {
		t.Fatalf("ListGradesByRun: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("stored records = %d, want 3", len(recs))
	}
}

func TestRun_Artifacts(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), tasks(t)[:1], Config{
		Options:      grade.DefaultOptions(),
		ArtifactsDir: dir,
		Timestamp:    ts,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"agent-a.json", "agent-a.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
}

func TestRun_TrialFailureDoesNotAbortBatch(t *testing.T) {
	ts3 := tasks(t)
	ts3[1].Graph = nil // nil graph fails that trial only
	sum, err := Run(context.Background(), ts3, Config{
		Options:   grade.DefaultOptions(),
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Graded != 2 || sum.Failed != 1 {
		t.Errorf("graded=%d failed=%d, want 2/1", sum.Graded, sum.Failed)
	}
	if sum.Results[1].Err == nil {
		t.Error("failed trial missing error")
	}
}

func TestRun_NoTasks(t *testing.T) {
	if _, err := Run(context.Background(), nil, Config{Options: grade.DefaultOptions()}); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, tasks(t), Config{Options: grade.DefaultOptions(), Timestamp: ts}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestSummary_Table(t *testing.T) {
	sum, err := Run(context.Background(), tasks(t), Config{
		Options:   grade.DefaultOptions(),
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := sum.Table()
	for _, want := range []string{"agent-a", "CASCADE-T1", "90", "MEAN", "3/3"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	pattern := `
id: CASCADE-T9
name: manifest check
nodes:
  - id: T
    kind: trigger
    weight: 10
    paraphrases: ["config push"]
  - id: R
    kind: root_cause
    weight: 50
    required: true
    paraphrases: ["lock inversion"]
  - id: S
    kind: symptom
    weight: 40
    paraphrases: ["timeout spike"]
edges:
  - from: T
    to: R
  - from: R
    to: S
`
	writeFile(t, dir, "pattern.yaml", pattern)
	writeFile(t, dir, "report-a.md", "Confirmed: lock inversion caused the timeout spike.")
	writeFile(t, dir, "manifest.yaml", `
pattern: pattern.yaml
trials:
  - agent_id: agent-a
    report: report-a.md
`)

	tasks, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(tasks) != 1 || tasks[0].AgentID != "agent-a" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if tasks[0].Graph.PatternID() != "CASCADE-T9" {
		t.Errorf("pattern id = %q", tasks[0].Graph.PatternID())
	}
	if !strings.Contains(tasks[0].Report, "lock inversion") {
		t.Errorf("report not loaded: %q", tasks[0].Report)
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.yaml", "trials: []")
	writeFile(t, dir, "nopattern.yaml", "trials:\n  - agent_id: a\n    report: r.md")

	if _, err := LoadManifest(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}
	if _, err := LoadManifest(filepath.Join(dir, "nopattern.yaml")); err == nil {
		t.Error("missing pattern should error")
	}
	if _, err := LoadManifest(filepath.Join(dir, "empty.yaml")); err == nil {
		t.Error("no trials should error")
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
