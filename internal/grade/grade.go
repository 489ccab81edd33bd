// Package grade runs the full pipeline for one (report, pattern, transcript)
// triple: extract findings, resolve claims, aggregate process metrics,
// score, render. Structural pattern errors are fatal upstream of this
// package; input-quality problems degrade to well-defined defaults so a
// batch over many agents never aborts on one degenerate report.
package grade

import (
	"fmt"
	"strings"
	"time"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/extract"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/logging"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/match"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/process"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/render"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/score"
)

// Options bundles the per-stage policies for one grading run. Runs with
// different options never share state, so concurrent batches can grade
// under different policy versions.
type Options struct {
	Extract extract.Config
	Score   score.Policy
	Process process.Policy
}

// DefaultOptions returns the tuned policy set.
func DefaultOptions() Options {
	return Options{
		Extract: extract.DefaultConfig(),
		Score:   score.DefaultPolicy(),
		Process: process.DefaultPolicy(),
	}
}

// Input is one grading run's fully materialized inputs. Transcript is the
// raw tool-call log and may be empty.
type Input struct {
	Graph      *causal.Graph
	Report     string
	Transcript []byte
	Timestamp  time.Time
}

// Result holds the breakdown plus both rendered artifacts.
type Result struct {
	Breakdown score.Breakdown
	JSON      []byte
	Markdown  string
}

// Run grades one report. An empty report yields the floor score and an
// unparseable transcript yields a neutral process adjustment; both paths
// are annotated in the breakdown metadata rather than returned as errors.
func Run(in Input, opts Options) (Result, error) {
	if in.Graph == nil {
		return Result{}, fmt.Errorf("grade: nil graph")
	}
	log := logging.New("grade")

	adj := process.Neutral()
	if len(in.Transcript) > 0 {
		tr, err := process.ParseTranscript(in.Transcript)
		if err != nil {
			log.Warn("transcript unusable, scoring without process adjustment",
				"pattern", in.Graph.PatternID(), "err", err)
		} else {
			adj = process.Aggregate(tr, opts.Process)
		}
	}

	emptyReport := strings.TrimSpace(in.Report) == ""
	var res match.Resolution
	if !emptyReport {
		findings := extract.Extract(in.Report, in.Graph, opts.Extract)
		res = match.Resolve(findings, in.Graph)
		log.Debug("extraction complete",
			"pattern", in.Graph.PatternID(),
			"findings", len(findings),
			"claims", len(res.Claims),
			"ambiguities", len(res.Ambiguities))
	} else {
		log.Warn("empty report, applying floor score", "pattern", in.Graph.PatternID())
	}

	bd := score.Score(score.Input{
		Report:      in.Report,
		Graph:       in.Graph,
		Resolution:  res,
		Process:     adj,
		EmptyReport: emptyReport,
	}, opts.Score)

	doc, err := render.JSON(bd, in.Timestamp)
	if err != nil {
		return Result{}, fmt.Errorf("grade %s: %w", in.Graph.PatternID(), err)
	}
	return Result{
		Breakdown: bd,
		JSON:      doc,
		Markdown:  render.Markdown(bd, in.Timestamp),
	}, nil
}
