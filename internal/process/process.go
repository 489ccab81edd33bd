package process

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ToolClass describes how a tool counts in process metrics. Category groups
// tools for the corroboration check; Write marks state-changing actions.
type ToolClass struct {
	Category string `json:"category" yaml:"category"`
	Write    bool   `json:"write" yaml:"write"`
}

// Policy holds the process-scoring knobs. Penalties are multiplier points:
// a penalty of 0.03 takes the adjustment from 1.00 toward 0.97. Every
// penalty source is individually capped and the sum is floored at
// MinMultiplier, so process issues discount but never erase an outcome.
type Policy struct {
	MinMultiplier float64 `json:"min_multiplier" yaml:"min_multiplier"`
	MaxMultiplier float64 `json:"max_multiplier" yaml:"max_multiplier"`

	// Call volume: penalty grows with log2 of the excess over the
	// threshold, capped. Doubling the waste costs one more step.
	CallThreshold   int     `json:"call_threshold" yaml:"call_threshold"`
	CallPenaltyStep float64 `json:"call_penalty_step" yaml:"call_penalty_step"`
	CallPenaltyCap  float64 `json:"call_penalty_cap" yaml:"call_penalty_cap"`

	// Rate limiting: token bucket replayed over the transcript timestamps.
	RateCapacity     int           `json:"rate_capacity" yaml:"rate_capacity"`
	RateRefillPeriod time.Duration `json:"rate_refill_period" yaml:"rate_refill_period"`
	RatePenalty      float64       `json:"rate_penalty" yaml:"rate_penalty"`
	RatePenaltyCap   float64       `json:"rate_penalty_cap" yaml:"rate_penalty_cap"`

	// Redundant queries: exact tool+parameter repeats.
	RedundantPenalty    float64 `json:"redundant_penalty" yaml:"redundant_penalty"`
	RedundantPenaltyCap float64 `json:"redundant_penalty_cap" yaml:"redundant_penalty_cap"`

	// Premature action: a write before corroborating reads from at least
	// two tool categories.
	PrematurePenalty float64 `json:"premature_penalty" yaml:"premature_penalty"`

	// Tools maps tool_name to its class. Unknown tools default to a
	// read in their own category, unless the name carries a write prefix.
	Tools map[string]ToolClass `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// DefaultPolicy returns the tuned process policy.
func DefaultPolicy() Policy {
	return Policy{
		MinMultiplier:       0.80,
		MaxMultiplier:       1.00,
		CallThreshold:       30,
		CallPenaltyStep:     0.01,
		CallPenaltyCap:      0.05,
		RateCapacity:        10,
		RateRefillPeriod:    time.Second,
		RatePenalty:         0.01,
		RatePenaltyCap:      0.05,
		RedundantPenalty:    0.01,
		RedundantPenaltyCap: 0.05,
		PrematurePenalty:    0.05,
	}
}

var writePrefixes = []string{"write", "fix", "apply", "patch", "restart", "set", "update", "delete", "rollback", "exec"}

func (p Policy) classify(tool string) ToolClass {
	if c, ok := p.Tools[tool]; ok {
		return c
	}
	category := tool
	if i := strings.IndexByte(tool, '_'); i > 0 {
		category = tool[:i]
	}
	lower := strings.ToLower(tool)
	for _, pfx := range writePrefixes {
		if strings.HasPrefix(lower, pfx) {
			return ToolClass{Category: category, Write: true}
		}
	}
	return ToolClass{Category: category}
}

// Reason itemizes one penalty source in the adjustment.
type Reason struct {
	Source  string  `json:"source"`
	Penalty float64 `json:"penalty"`
	Detail  string  `json:"detail"`
}

// Adjustment is the aggregator's output: a bounded multiplier plus the
// metrics and reasons behind it. Skipped marks the degraded path where no
// transcript was usable and the multiplier defaults to neutral.
type Adjustment struct {
	Multiplier float64  `json:"multiplier"`
	Reasons    []Reason `json:"reasons,omitempty"`

	ToolCalls           int  `json:"tool_calls"`
	RateLimitViolations int  `json:"rate_limit_violations"`
	RedundantQueries    int  `json:"redundant_queries"`
	PrematureAction     bool `json:"premature_action"`
	VerifiedAfterWrite  bool `json:"verified_after_write"`
	WroteAnything       bool `json:"wrote_anything"`
	Skipped             bool `json:"skipped,omitempty"`
}

// Neutral is the adjustment used when no transcript is available or it
// cannot be parsed. Verification state is unknown, so it is assumed fine.
func Neutral() Adjustment {
	return Adjustment{Multiplier: 1.0, VerifiedAfterWrite: true, Skipped: true}
}

// Aggregate replays the transcript and derives the bounded adjustment.
func Aggregate(tr *Transcript, pol Policy) Adjustment {
	adj := Adjustment{ToolCalls: len(tr.Calls), VerifiedAfterWrite: true}

	adj.RateLimitViolations = countRateViolations(tr.Calls, pol)
	adj.RedundantQueries = countRedundant(tr.Calls)
	adj.PrematureAction, adj.WroteAnything, adj.VerifiedAfterWrite = actionDiscipline(tr.Calls, pol)

	var penalties []Reason
	if excess := adj.ToolCalls - pol.CallThreshold; excess > 0 {
		p := math.Min(pol.CallPenaltyCap, pol.CallPenaltyStep*math.Log2(1+float64(excess)))
		penalties = append(penalties, Reason{
			Source:  "tool_call_volume",
			Penalty: p,
			Detail:  fmt.Sprintf("%d calls, %d over threshold", adj.ToolCalls, excess),
		})
	}
	if adj.RateLimitViolations > 0 {
		p := math.Min(pol.RatePenaltyCap, pol.RatePenalty*float64(adj.RateLimitViolations))
		penalties = append(penalties, Reason{
			Source:  "rate_limit_violations",
			Penalty: p,
			Detail:  fmt.Sprintf("%d calls over the token bucket", adj.RateLimitViolations),
		})
	}
	if adj.RedundantQueries > 0 {
		p := math.Min(pol.RedundantPenaltyCap, pol.RedundantPenalty*float64(adj.RedundantQueries))
		penalties = append(penalties, Reason{
			Source:  "redundant_queries",
			Penalty: p,
			Detail:  fmt.Sprintf("%d exact repeats of an already-answered query", adj.RedundantQueries),
		})
	}
	if adj.PrematureAction {
		penalties = append(penalties, Reason{
			Source:  "premature_action",
			Penalty: pol.PrematurePenalty,
			Detail:  "write action before corroborating reads from two tool categories",
		})
	}

	m := pol.MaxMultiplier
	for _, r := range penalties {
		m -= r.Penalty
	}
	if m < pol.MinMultiplier {
		m = pol.MinMultiplier
	}
	adj.Multiplier = m
	adj.Reasons = penalties
	return adj
}

// countRateViolations replays a token bucket over the call timestamps.
// A call arriving with the bucket empty counts as a violation without
// consuming a token, matching how the evidence servers throttle agents.
func countRateViolations(calls []ToolCall, pol Policy) int {
	if pol.RateCapacity <= 0 || pol.RateRefillPeriod <= 0 || len(calls) == 0 {
		return 0
	}
	tokens := float64(pol.RateCapacity)
	last := calls[0].Timestamp
	violations := 0
	for _, c := range calls {
		elapsed := c.Timestamp.Sub(last)
		tokens += elapsed.Seconds() / pol.RateRefillPeriod.Seconds()
		if tokens > float64(pol.RateCapacity) {
			tokens = float64(pol.RateCapacity)
		}
		last = c.Timestamp
		if tokens < 1 {
			violations++
			continue
		}
		tokens--
	}
	return violations
}

// countRedundant counts calls whose tool and parameters exactly repeat an
// earlier call in the same run.
func countRedundant(calls []ToolCall) int {
	seen := make(map[string]bool, len(calls))
	redundant := 0
	for _, c := range calls {
		key := c.Tool + "\x00" + canonicalParams(c.Params)
		if seen[key] {
			redundant++
			continue
		}
		seen[key] = true
	}
	return redundant
}

// canonicalParams renders parameters with sorted keys so semantically
// identical calls hash identically.
func canonicalParams(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(params[k])
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.String()
}

// actionDiscipline walks the transcript once and reports whether the first
// write happened before reads from two distinct categories, and whether any
// read followed the final write.
func actionDiscipline(calls []ToolCall, pol Policy) (premature, wrote, verified bool) {
	readCategories := make(map[string]bool)
	verified = true
	for _, c := range calls {
		class := pol.classify(c.Tool)
		if class.Write {
			if !wrote && len(readCategories) < 2 {
				premature = true
			}
			wrote = true
			verified = false
			continue
		}
		readCategories[class.Category] = true
		if wrote {
			verified = true
		}
	}
	if !wrote {
		verified = true
	}
	return premature, wrote, verified
}
