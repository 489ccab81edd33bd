// Package harness grades batches of agent trials. Each trial is an
// independent pure computation, so the batch is embarrassingly parallel:
// a bounded worker pool grades trials concurrently with no shared mutable
// state beyond the append-only grade store.
package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/format"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/grade"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/logging"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/score"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/store"
)

// Task is one fully materialized trial: an agent's report and transcript
// against one pattern graph.
type Task struct {
	AgentID    string
	Graph      *causal.Graph
	Report     string
	Transcript []byte
}

// Config controls one batch run.
type Config struct {
	// Parallel caps concurrent grading workers. Values below 1 run serial.
	Parallel int
	// Options is the per-stage policy set shared by every trial in the run.
	Options grade.Options
	// Store receives one record per trial when non-nil.
	Store store.Store
	// ArtifactsDir receives per-trial JSON and markdown files when set.
	ArtifactsDir string
	// Timestamp stamps every rendered artifact in the run.
	Timestamp time.Time
}

// TrialResult pairs one task with its grade or failure.
type TrialResult struct {
	AgentID   string
	PatternID string
	Result    grade.Result
	Err       error
}

// Summary is the batch outcome. Results keep task order regardless of
// completion order.
type Summary struct {
	RunID   string
	Results []TrialResult
	Graded  int
	Failed  int
	Mean    float64
	Min     float64
	Max     float64
}

// Run grades all tasks and returns the summary. Individual trial failures
// are recorded in their TrialResult; only context cancellation aborts the
// batch.
func Run(ctx context.Context, tasks []Task, cfg Config) (*Summary, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("harness: no tasks")
	}
	parallel := cfg.Parallel
	if parallel < 1 {
		parallel = 1
	}
	log := logging.New("harness")

	sum := &Summary{
		RunID:   uuid.NewString(),
		Results: make([]TrialResult, len(tasks)),
	}
	log.Info("batch start", "run_id", sum.RunID, "trials", len(tasks), "workers", parallel)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum.Results[i] = runTrial(task, cfg, sum.RunID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}

	sum.tally()
	log.Info("batch done", "run_id", sum.RunID, "graded", sum.Graded, "failed", sum.Failed, "mean", sum.Mean)
	return sum, nil
}

func runTrial(task Task, cfg Config, runID string) TrialResult {
	tr := TrialResult{AgentID: task.AgentID}
	if task.Graph != nil {
		tr.PatternID = task.Graph.PatternID()
	}

	res, err := grade.Run(grade.Input{
		Graph:      task.Graph,
		Report:     task.Report,
		Transcript: task.Transcript,
		Timestamp:  cfg.Timestamp,
	}, cfg.Options)
	if err != nil {
		tr.Err = fmt.Errorf("trial %s: %w", task.AgentID, err)
		return tr
	}
	tr.Result = res

	if cfg.ArtifactsDir != "" {
		if err := writeArtifacts(cfg.ArtifactsDir, task.AgentID, res); err != nil {
			tr.Err = err
			return tr
		}
	}
	if cfg.Store != nil {
		bd := res.Breakdown
		_, err := cfg.Store.SaveGrade(&store.Record{
			RunID:         runID,
			AgentID:       task.AgentID,
			PatternID:     bd.PatternID,
			PolicyVersion: bd.PolicyVersion,
			FinalScore:    bd.FinalScore,
			OutcomeScore:  bd.OutcomeScore,
			Multiplier:    processMultiplier(bd),
			CapApplied:    bd.Metadata.CapApplied,
			EmptyReport:   bd.Metadata.EmptyReport,
			Document:      res.JSON,
			CreatedAt:     cfg.Timestamp.UTC().Format(time.RFC3339),
		})
		if err != nil {
			tr.Err = fmt.Errorf("trial %s: save grade: %w", task.AgentID, err)
		}
	}
	return tr
}

// processMultiplier pulls the total process multiplier back out of the
// adjustments list.
func processMultiplier(bd score.Breakdown) float64 {
	m := 1.0
	for _, a := range bd.Adjustments {
		if a.Source == "process" && a.Multiplier != 0 {
			m = a.Multiplier
		}
	}
	return m
}

func writeArtifacts(dir, agentID string, res grade.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	jsonPath := filepath.Join(dir, agentID+".json")
	if err := os.WriteFile(jsonPath, res.JSON, 0644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}
	mdPath := filepath.Join(dir, agentID+".md")
	if err := os.WriteFile(mdPath, []byte(res.Markdown), 0644); err != nil {
		return fmt.Errorf("write %s: %w", mdPath, err)
	}
	return nil
}

func (s *Summary) tally() {
	first := true
	var total float64
	for _, r := range s.Results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		score := r.Result.Breakdown.FinalScore
		s.Graded++
		total += score
		if first || score < s.Min {
			s.Min = score
		}
		if first || score > s.Max {
			s.Max = score
		}
		first = false
	}
	if s.Graded > 0 {
		s.Mean = total / float64(s.Graded)
	}
}

// Table renders the batch summary for terminal display.
func (s *Summary) Table() string {
	tb := format.NewTable(format.ASCII)
	tb.Header("Agent", "Pattern", "Score", "Multiplier", "Capped", "Status")
	for _, r := range s.Results {
		if r.Err != nil {
			tb.Row(r.AgentID, r.PatternID, "-", "-", "-", format.Truncate(r.Err.Error(), 40))
			continue
		}
		bd := r.Result.Breakdown
		mult := processMultiplier(bd)
		tb.Row(
			r.AgentID,
			bd.PatternID,
			format.FmtScore(bd.FinalScore),
			format.FmtMultiplier(mult),
			format.BoolMark(bd.Metadata.CapApplied),
			"ok",
		)
	}
	tb.Footer("MEAN", "", format.FmtScore(s.Mean), "", "", fmt.Sprintf("%d/%d", s.Graded, len(s.Results)))
	tb.Columns(format.ColumnConfig{Number: 3, Align: format.AlignRight})
	return tb.String()
}
