// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, markdown reports, logs, and docs.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

import "strings"

// --- Node Kinds ---

var kinds = map[string]string{
	"trigger":             "Trigger",
	"root_cause":          "Root Cause",
	"amplifier":           "Amplifier",
	"contributing_factor": "Contributing Factor",
	"symptom":             "Symptom",
	"red_herring":         "Red Herring",
	"decoy":               "Decoy",
}

// Kind returns the human-readable name for a causal node kind.
// Unknown codes are returned as-is.
func Kind(code string) string {
	if name, ok := kinds[code]; ok {
		return name
	}
	return code
}

// KindWithCode returns "Root Cause (root_cause)" format.
func KindWithCode(code string) string {
	if name, ok := kinds[code]; ok {
		return name + " (" + code + ")"
	}
	return code
}

// --- Confidence Levels ---

var confidences = map[string]string{
	"explicit": "Explicit",
	"implied":  "Implied",
	"hedged":   "Hedged",
}

// Confidence returns the human-readable name for a confidence level.
// Unmatched nodes have no level; "" maps to a dash.
func Confidence(code string) string {
	if code == "" {
		return "-"
	}
	if name, ok := confidences[code]; ok {
		return name
	}
	return code
}

// --- Adjustment Sources ---

var adjustmentSources = map[string]string{
	"tool_call_volume":      "Tool-Call Volume",
	"rate_limit_violations": "Rate-Limit Violations",
	"redundant_queries":     "Redundant Queries",
	"premature_action":      "Premature Action",
	"process":               "Process Multiplier",
}

// AdjustmentSource returns the human-readable name for a process
// adjustment source. "rate_limit_violations" -> "Rate-Limit Violations".
func AdjustmentSource(code string) string {
	if name, ok := adjustmentSources[code]; ok {
		return name
	}
	return code
}

// --- Degraded Input Paths ---

var degradedPaths = map[string]string{
	"empty_report":       "Empty report, floor score applied",
	"transcript_skipped": "Transcript missing or unparseable, neutral process adjustment",
	"cap_applied":        "No required node found, completeness cap applied",
}

// DegradedPath returns the reviewer-facing annotation for a degraded-input
// handling path.
func DegradedPath(code string) string {
	if name, ok := degradedPaths[code]; ok {
		return name
	}
	return code
}

// --- Causal Chains ---

// CausalChain converts a slice of node ids to a readable cascade path,
// joining them with an arrow.
func CausalChain(ids []string) string {
	return strings.Join(ids, " → ")
}
