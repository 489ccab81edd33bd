// Package render turns a ScoreBreakdown into its two published artifacts:
// a structured JSON document and a markdown grading report. Both are pure
// functions of the breakdown plus an explicitly passed timestamp, so the
// same inputs reproduce the same bytes.
package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/display"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/format"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/score"
)

// Document is the machine-readable score artifact.
type Document struct {
	GeneratedAt string          `json:"generated_at"`
	Breakdown   score.Breakdown `json:"breakdown"`
}

// JSON renders the structured score document. The timestamp is normalized
// to UTC so the encoding never depends on the host zone.
func JSON(bd score.Breakdown, ts time.Time) ([]byte, error) {
	doc := Document{
		GeneratedAt: ts.UTC().Format(time.RFC3339),
		Breakdown:   bd,
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode score document: %w", err)
	}
	return append(out, '\n'), nil
}

// Markdown renders the human-readable grading report, suitable for archival
// alongside the agent's own incident report.
func Markdown(bd score.Breakdown, ts time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Grading Report: %s (%s)\n\n", bd.PatternName, bd.PatternID)
	fmt.Fprintf(&b, "Generated: %s · Policy: %s · Schema: %s\n\n",
		ts.UTC().Format(time.RFC3339), bd.PolicyVersion, bd.SchemaVersion)
	fmt.Fprintf(&b, "**Final Score: %s / 100**\n\n", format.FmtScore(bd.FinalScore))

	b.WriteString("## Node Credit\n\n")
	b.WriteString(nodeTable(bd))
	b.WriteString("\n")

	if len(bd.Bonuses) > 0 {
		b.WriteString("\n## Bonuses\n\n")
		b.WriteString(entryTable(bd.Bonuses, 1))
		b.WriteString("\n")
	}
	if len(bd.Deductions) > 0 {
		b.WriteString("\n## Deductions\n\n")
		b.WriteString(entryTable(bd.Deductions, -1))
		b.WriteString("\n")
	}

	b.WriteString("\n## Process Adjustment\n\n")
	b.WriteString(adjustmentSection(bd))

	if notes := notes(bd); len(notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

func nodeTable(bd score.Breakdown) string {
	tb := format.NewTable(format.Markdown)
	tb.Header("Node", "Kind", "Found", "Confidence", "Weight", "Credit", "Evidence")
	total := 0.0
	for _, nc := range bd.PerNodeCredit {
		tb.Row(
			nc.NodeID,
			display.Kind(string(nc.Kind)),
			format.BoolMark(nc.Matched),
			display.Confidence(string(nc.Confidence)),
			format.FmtScore(nc.Weight),
			format.FmtScore(nc.Credit),
			format.Truncate(nc.Evidence, 60),
		)
		total += nc.Credit
	}
	tb.Footer("TOTAL", "", "", "", "", format.FmtScore(total), "")
	return tb.String() + "\n"
}

func entryTable(entries []score.Entry, sign float64) string {
	tb := format.NewTable(format.Markdown)
	tb.Header("Reason", "Points")
	for _, e := range entries {
		tb.Row(e.Reason, format.FmtDelta(sign*e.Amount))
	}
	return tb.String() + "\n"
}

func adjustmentSection(bd score.Breakdown) string {
	var b strings.Builder
	tb := format.NewTable(format.Markdown)
	tb.Header("Source", "Effect", "Detail")
	for _, a := range bd.Adjustments {
		effect := format.FmtDelta(a.Delta)
		if a.Multiplier != 0 {
			effect = format.FmtMultiplier(a.Multiplier)
		}
		tb.Row(display.AdjustmentSource(a.Source), effect, a.Detail)
	}
	b.WriteString(tb.String() + "\n\n")
	fmt.Fprintf(&b, "Outcome %s, adjusted to %s.\n",
		format.FmtScore(bd.OutcomeScore), format.FmtScore(bd.FinalScore))
	return b.String()
}

// notes lists the degraded-input paths taken, so a reviewer can tell
// "agent failed" apart from "pipeline could not parse input".
func notes(bd score.Breakdown) []string {
	var out []string
	if bd.Metadata.EmptyReport {
		out = append(out, display.DegradedPath("empty_report"))
	}
	if bd.Metadata.TranscriptSkipped {
		out = append(out, display.DegradedPath("transcript_skipped"))
	}
	if bd.Metadata.CapApplied {
		out = append(out, display.DegradedPath("cap_applied"))
	}
	for _, amb := range bd.Metadata.Ambiguities {
		out = append(out, fmt.Sprintf("ambiguous span %q split between %s",
			format.Truncate(amb.RawText, 50), strings.Join(amb.NodeIDs, ", ")))
	}
	return out
}
