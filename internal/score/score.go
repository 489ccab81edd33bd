// Package score turns resolved claims into a ScoreBreakdown. Every number
// in the breakdown is reproducible from its parts through one formula:
// sum of per-node credits and bonuses, minus deductions, capped when a
// declared required node was not found, clamped to [0, 100], then
// multiplied by the bounded process adjustment. No hidden rounding anywhere.
package score

import (
	"fmt"
	"strings"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/extract"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/match"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/process"
)

// SchemaVersion marks the breakdown wire format for forward compatibility.
const SchemaVersion = "1"

// NodeCredit records how one graph node was scored. Unmatched scorable
// nodes appear with zero credit so the breakdown reads as a full audit of
// the pattern, not just of what the agent found.
type NodeCredit struct {
	NodeID     string             `json:"node_id"`
	Kind       causal.Kind        `json:"kind"`
	Weight     float64            `json:"weight"`
	Matched    bool               `json:"matched"`
	Confidence extract.Confidence `json:"confidence,omitempty"`
	Multiplier float64            `json:"multiplier"`
	Share      float64            `json:"share"` // matcher credit fraction, 1.0 unless split
	Credit     float64            `json:"credit"`
	Evidence   string             `json:"evidence,omitempty"`
}

// Entry is one reasoned amount in the bonuses or deductions list.
type Entry struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

// Adjustment itemizes the process multiplier and its per-source deltas.
type Adjustment struct {
	Source     string  `json:"source"`
	Multiplier float64 `json:"multiplier,omitempty"`
	Delta      float64 `json:"delta,omitempty"`
	Detail     string  `json:"detail,omitempty"`
}

// Metadata carries the degraded-input annotations a reviewer needs to tell
// "agent failed" apart from "pipeline could not parse input".
type Metadata struct {
	EmptyReport       bool              `json:"empty_report,omitempty"`
	TranscriptSkipped bool              `json:"transcript_skipped,omitempty"`
	CapApplied        bool              `json:"cap_applied,omitempty"`
	Ambiguities       []match.Ambiguity `json:"ambiguities,omitempty"`
}

// Breakdown is the immutable result of one grading run. Re-grading builds a
// new Breakdown rather than mutating this one.
type Breakdown struct {
	SchemaVersion string       `json:"schema_version"`
	PatternID     string       `json:"pattern_id"`
	PatternName   string       `json:"pattern_name"`
	PolicyVersion string       `json:"policy_version"`
	PerNodeCredit []NodeCredit `json:"per_node_credit"`
	Bonuses       []Entry      `json:"bonuses,omitempty"`
	Deductions    []Entry      `json:"deductions,omitempty"`
	RawOutcome    float64      `json:"raw_outcome"`
	OutcomeScore  float64      `json:"outcome_score"`
	Adjustments   []Adjustment `json:"adjustments,omitempty"`
	FinalScore    float64      `json:"final_score"`
	Metadata      Metadata     `json:"metadata"`
}

// Input bundles one grading run's materialized inputs.
type Input struct {
	Report      string
	Graph       *causal.Graph
	Resolution  match.Resolution
	Process     process.Adjustment
	EmptyReport bool
}

// Score computes the breakdown for one run. Zero findings is a valid,
// scoreable outcome, never an error.
func Score(in Input, pol Policy) Breakdown {
	bd := Breakdown{
		SchemaVersion: SchemaVersion,
		PatternID:     in.Graph.PatternID(),
		PatternName:   in.Graph.Name(),
		PolicyVersion: pol.Version,
		Metadata: Metadata{
			EmptyReport:       in.EmptyReport,
			TranscriptSkipped: in.Process.Skipped,
			Ambiguities:       in.Resolution.Ambiguities,
		},
	}

	credits := 0.0
	hasRequired := false
	requiredMatched := false
	for _, node := range in.Graph.Nodes() {
		if node.Required {
			hasRequired = true
		}
		nc := NodeCredit{NodeID: node.ID, Kind: node.Kind, Weight: node.Weight}
		claim, matched := in.Resolution.ClaimFor(node.ID)
		if matched {
			nc.Matched = true
			nc.Confidence = claim.Finding.Confidence
			nc.Multiplier = pol.confidenceMultiplier(claim.Finding.Confidence)
			nc.Share = claim.Credit
			nc.Evidence = claim.Finding.RawText
		}

		if node.Kind.Penalty() {
			// Penalty nodes never earn node credit. Being fooled costs the
			// penalty weight; discussing without being fooled earns the
			// ruled-out bonus.
			if matched {
				if claim.Finding.AssertedRootCause {
					bd.Deductions = append(bd.Deductions, Entry{
						Reason: fmt.Sprintf("asserted %s node %s as a cause", node.Kind, node.ID),
						Amount: node.Weight,
					})
				} else {
					bd.Bonuses = append(bd.Bonuses, Entry{
						Reason: fmt.Sprintf("correctly ruled out %s node %s", node.Kind, node.ID),
						Amount: pol.RuledOutBonus,
					})
				}
			}
			bd.PerNodeCredit = append(bd.PerNodeCredit, nc)
			continue
		}

		if matched {
			nc.Credit = node.Weight * nc.Multiplier * nc.Share
			credits += nc.Credit
			if node.Required && claim.Finding.Confidence.AtLeast(extract.Implied) {
				requiredMatched = true
			}
		}
		bd.PerNodeCredit = append(bd.PerNodeCredit, nc)
	}

	bd.Bonuses = append(bd.Bonuses, interactionBonuses(in)...)

	if in.Process.WroteAnything && !in.Process.VerifiedAfterWrite {
		bd.Deductions = append(bd.Deductions, Entry{
			Reason: "no post-fix verification step",
			Amount: pol.NoVerificationDeduction,
		})
	}

	raw := credits
	for _, b := range bd.Bonuses {
		raw += b.Amount
	}
	for _, d := range bd.Deductions {
		raw -= d.Amount
	}
	bd.RawOutcome = raw

	outcome := raw
	if hasRequired && !requiredMatched {
		bd.Metadata.CapApplied = true
		if outcome > pol.CompletenessCeiling {
			outcome = pol.CompletenessCeiling
		}
	}
	if outcome < 0 {
		outcome = 0
	}
	if outcome > causal.ScorableMax {
		outcome = causal.ScorableMax
	}
	bd.OutcomeScore = outcome

	for _, r := range in.Process.Reasons {
		bd.Adjustments = append(bd.Adjustments, Adjustment{
			Source: r.Source,
			Delta:  -r.Penalty,
			Detail: r.Detail,
		})
	}
	bd.Adjustments = append(bd.Adjustments, Adjustment{
		Source:     "process",
		Multiplier: in.Process.Multiplier,
	})
	bd.FinalScore = outcome * in.Process.Multiplier
	return bd
}

// linkingMarkers signal that two findings were stated as interacting
// causes rather than listed side by side.
var linkingMarkers = []string{
	"combined with",
	"together with",
	"interacted with",
	"interaction between",
	"in combination",
	"neither alone",
	"together caused",
	"compounded by",
}

// interactionBonuses walks the graph's edges and awards each configured
// bonus whose endpoints are both matched at implied confidence or better
// and linked by an explicit causal phrase in the report.
func interactionBonuses(in Input) []Entry {
	var entries []Entry
	for _, e := range in.Graph.Edges() {
		if e.InteractionBonus <= 0 {
			continue
		}
		from, okF := in.Resolution.ClaimFor(e.From)
		to, okT := in.Resolution.ClaimFor(e.To)
		if !okF || !okT {
			continue
		}
		if !from.Finding.Confidence.AtLeast(extract.Implied) ||
			!to.Finding.Confidence.AtLeast(extract.Implied) {
			continue
		}
		if !linked(in.Report, from.Finding, to.Finding) {
			continue
		}
		entries = append(entries, Entry{
			Reason: fmt.Sprintf("interaction %s -> %s stated explicitly", e.From, e.To),
			Amount: e.InteractionBonus,
		})
	}
	return entries
}

// linkRadius widens the span window so a linking phrase just before or
// after the two findings still counts.
const linkRadius = 120

// linked reports whether a causal-linking phrase appears in the report
// region spanning both findings.
func linked(report string, a, b extract.Finding) bool {
	lo, hi := a.Start, a.End
	if b.Start < lo {
		lo = b.Start
	}
	if b.End > hi {
		hi = b.End
	}
	lo -= linkRadius
	if lo < 0 {
		lo = 0
	}
	hi += linkRadius
	if hi > len(report) {
		hi = len(report)
	}
	window := strings.ToLower(report[lo:hi])
	for _, m := range linkingMarkers {
		if strings.Contains(window, m) {
			return true
		}
	}
	return false
}
