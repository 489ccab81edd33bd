// Package extract turns an agent's free-text incident report into structured
// findings against a pattern's causal graph. Extraction is a pure function
// over (report, graph, config): paraphrase matching is bounded and
// deterministic. Case-insensitive substring hits are taken first, then fuzzy
// token windows above a similarity threshold, never open-ended semantic
// search, so a score stays auditable down to the exact span that produced it.
package extract

import (
	"strings"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
)

// Confidence classifies how strongly a report commits to a finding,
// derived from hedge/assertion markers around the matched span.
type Confidence string

const (
	// Explicit is a plain or reinforced assertion ("confirmed", "root cause is",
	// or an unhedged declarative claim).
	Explicit Confidence = "explicit"
	// Implied is a soft assertion ("likely", "appears to", "suggests").
	Implied Confidence = "implied"
	// Hedged is a speculative mention ("possibly", "might", "unclear whether").
	Hedged Confidence = "hedged"
)

// rank orders confidence levels for threshold checks.
func (c Confidence) rank() int {
	switch c {
	case Explicit:
		return 3
	case Implied:
		return 2
	case Hedged:
		return 1
	}
	return 0
}

// AtLeast reports whether c is at least as confident as min.
func (c Confidence) AtLeast(min Confidence) bool { return c.rank() >= min.rank() }

// Finding is one claimed fact extracted from a report: a candidate graph
// node, the exact supporting span, and the language strength around it.
// Findings are never mutated after extraction; rescoring re-runs extraction
// from the immutable report text.
type Finding struct {
	NodeID            string     `json:"node_id"`
	RawText           string     `json:"raw_text"` // sentence containing the match
	Paraphrase        string     `json:"paraphrase"`
	ParaphraseRank    int        `json:"paraphrase_rank"` // index in the node's paraphrase set
	Start             int        `json:"start"`           // byte offset of the match in the report
	End               int        `json:"end"`
	Confidence        Confidence `json:"confidence"`
	AssertedRootCause bool       `json:"asserted_root_cause"`
	Similarity        float64    `json:"similarity"` // 1.0 for literal hits
}

// Config holds the extraction knobs. Zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// SimilarityThreshold is τ: the minimum normalized similarity for a
	// fuzzy paraphrase window to count as a match. Tuned so common
	// rewordings match but unrelated text does not.
	SimilarityThreshold float64
}

// DefaultConfig returns the tuned extraction defaults.
func DefaultConfig() Config {
	return Config{SimilarityThreshold: 0.82}
}

// Extract scans report for every node in g and returns at most one Finding
// per node (first literal hit in paraphrase order wins; otherwise the best
// fuzzy window). Negation is scoped to the span: a sentence dismissing the
// node ("we ruled out X") produces no Finding from that span, but a later
// affirming mention still does. A node is suppressed only when every
// matching span is negated. Pure: no side effects, deterministic for fixed
// inputs.
func Extract(report string, g *causal.Graph, cfg Config) []Finding {
	if strings.TrimSpace(report) == "" {
		return nil
	}

	doc := newDocument(report)
	var findings []Finding

	for _, node := range g.Nodes() {
		f, ok := matchNode(doc, node, cfg)
		if !ok {
			continue
		}
		sentence := doc.sentenceAt(f.Start)
		f.RawText = strings.TrimSpace(sentence)
		f.Confidence = classifyConfidence(sentence)
		f.AssertedRootCause = assertsCausal(sentence)
		findings = append(findings, f)
	}
	return findings
}

// matchNode finds the strongest non-negated match for one node. Literal
// substring hits take priority in paraphrase order, scanning past negated
// occurrences; fuzzy matches compete on similarity over non-negated
// windows, earlier paraphrase winning ties.
func matchNode(doc *document, node causal.Node, cfg Config) (Finding, bool) {
	for rank, p := range node.Paraphrases {
		needle := strings.ToLower(strings.TrimSpace(p))
		if needle == "" {
			continue
		}
		for from := 0; from < len(doc.lower); {
			idx := strings.Index(doc.lower[from:], needle)
			if idx < 0 {
				break
			}
			idx += from
			from = idx + len(needle)
			if negated(doc.sentenceAt(idx), p) {
				continue
			}
			return Finding{
				NodeID:         node.ID,
				Paraphrase:     p,
				ParaphraseRank: rank,
				Start:          idx,
				End:            idx + len(needle),
				Similarity:     1.0,
			}, true
		}
	}

	best := Finding{Similarity: 0}
	found := false
	for rank, p := range node.Paraphrases {
		needle := strings.ToLower(strings.TrimSpace(p))
		if needle == "" {
			continue
		}
		affirmed := func(start int) bool { return !negated(doc.sentenceAt(start), p) }
		start, end, sim := doc.bestWindow(needle, cfg.SimilarityThreshold, affirmed)
		if sim < cfg.SimilarityThreshold {
			continue
		}
		if !found || sim > best.Similarity {
			best = Finding{
				NodeID:         node.ID,
				Paraphrase:     p,
				ParaphraseRank: rank,
				Start:          start,
				End:            end,
				Similarity:     sim,
			}
			found = true
		}
	}
	return best, found
}
