// Package match resolves extracted findings into per-node claims. When two
// graph nodes lay claim to overlapping report spans the matcher breaks the
// tie deterministically; ties it cannot break split credit instead of
// guessing, and every split is surfaced as an ambiguity so a reviewer can
// tighten the pattern's paraphrase sets.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/extract"
)

// Claim is a finding with the credit fraction it earned. Credit is 1.0 for
// an uncontested match and 1/n when n nodes tied for the same span.
type Claim struct {
	Finding extract.Finding `json:"finding"`
	Credit  float64         `json:"credit"`
}

// Ambiguity records a span the tie-break could not resolve. It lands in the
// grade metadata, never in stderr noise and never as a hard failure.
type Ambiguity struct {
	NodeIDs []string `json:"node_ids"`
	Start   int      `json:"start"`
	End     int      `json:"end"`
	RawText string   `json:"raw_text"`
	Reason  string   `json:"reason"`
}

// Resolution is the matcher's output: one claim per surviving finding plus
// any split-credit ambiguities.
type Resolution struct {
	Claims      []Claim     `json:"claims"`
	Ambiguities []Ambiguity `json:"ambiguities,omitempty"`
}

// ClaimFor returns the claim for nodeID, if any.
func (r Resolution) ClaimFor(nodeID string) (Claim, bool) {
	for _, c := range r.Claims {
		if c.Finding.NodeID == nodeID {
			return c, true
		}
	}
	return Claim{}, false
}

// Resolve assigns credit to findings. Non-overlapping findings pass through
// at full credit. For each set of findings whose spans overlap, the winner
// is picked by, in order: higher lexical overlap between the node's
// description and the contested span, the required flag, then the closer
// literal match (higher span similarity, earlier paraphrase position). A
// set still tied after all three splits credit equally and records an
// Ambiguity.
func Resolve(findings []extract.Finding, g *causal.Graph) Resolution {
	groups := groupOverlapping(findings)

	var res Resolution
	for _, grp := range groups {
		if len(grp) == 1 {
			res.Claims = append(res.Claims, Claim{Finding: grp[0], Credit: 1.0})
			continue
		}
		winners := tieBreak(grp, g)
		if len(winners) == 1 {
			res.Claims = append(res.Claims, Claim{Finding: winners[0], Credit: 1.0})
			continue
		}
		credit := 1.0 / float64(len(winners))
		ids := make([]string, 0, len(winners))
		for _, f := range winners {
			res.Claims = append(res.Claims, Claim{Finding: f, Credit: credit})
			ids = append(ids, f.NodeID)
		}
		sort.Strings(ids)
		first := winners[0]
		res.Ambiguities = append(res.Ambiguities, Ambiguity{
			NodeIDs: ids,
			Start:   first.Start,
			End:     first.End,
			RawText: first.RawText,
			Reason:  fmt.Sprintf("span claimed by %d nodes with equal description overlap, required status, and paraphrase position", len(winners)),
		})
	}

	sort.Slice(res.Claims, func(i, j int) bool {
		a, b := res.Claims[i].Finding, res.Claims[j].Finding
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.NodeID < b.NodeID
	})
	return res
}

// groupOverlapping sweeps findings by start offset and clusters transitively
// overlapping spans.
func groupOverlapping(findings []extract.Finding) [][]extract.Finding {
	if len(findings) == 0 {
		return nil
	}
	sorted := make([]extract.Finding, len(findings))
	copy(sorted, findings)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].NodeID < sorted[j].NodeID
	})

	var groups [][]extract.Finding
	cur := []extract.Finding{sorted[0]}
	curEnd := sorted[0].End
	for _, f := range sorted[1:] {
		if f.Start < curEnd {
			cur = append(cur, f)
			if f.End > curEnd {
				curEnd = f.End
			}
			continue
		}
		groups = append(groups, cur)
		cur = []extract.Finding{f}
		curEnd = f.End
	}
	groups = append(groups, cur)
	return groups
}

// tieBreak narrows a contested group to the findings that survive each rule
// in turn. It never narrows to zero: a rule that would eliminate everyone is
// skipped.
func tieBreak(grp []extract.Finding, g *causal.Graph) []extract.Finding {
	// Rule 1: highest lexical overlap between the node's description and
	// the contested span.
	best := descOverlap(grp[0], g)
	for _, f := range grp[1:] {
		if o := descOverlap(f, g); o > best {
			best = o
		}
	}
	grp = filter(grp, func(f extract.Finding) bool { return descOverlap(f, g) == best })
	if len(grp) == 1 {
		return grp
	}

	// Rule 2: required nodes outrank optional ones.
	required := filter(grp, func(f extract.Finding) bool {
		n, ok := g.Node(f.NodeID)
		return ok && n.Required
	})
	if len(required) > 0 && len(required) < len(grp) {
		grp = required
	}
	if len(grp) == 1 {
		return grp
	}

	// Rule 3: closer literal match. Span similarity first, then earliest
	// paraphrase position.
	bestSim := grp[0].Similarity
	for _, f := range grp[1:] {
		if f.Similarity > bestSim {
			bestSim = f.Similarity
		}
	}
	grp = filter(grp, func(f extract.Finding) bool { return f.Similarity == bestSim })
	if len(grp) == 1 {
		return grp
	}

	min := grp[0].ParaphraseRank
	for _, f := range grp[1:] {
		if f.ParaphraseRank < min {
			min = f.ParaphraseRank
		}
	}
	return filter(grp, func(f extract.Finding) bool { return f.ParaphraseRank == min })
}

// descOverlap scores how much of a node's description vocabulary appears
// in the finding's supporting sentence. Zero when the node has no
// description, so sparse patterns fall through to the later rules.
func descOverlap(f extract.Finding, g *causal.Graph) float64 {
	n, ok := g.Node(f.NodeID)
	if !ok {
		return 0
	}
	desc := tokenSet(n.Description)
	if len(desc) == 0 {
		return 0
	}
	raw := tokenSet(f.RawText)
	hits := 0
	for t := range desc {
		if raw[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(desc))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	}) {
		set[t] = true
	}
	return set
}

func filter(fs []extract.Finding, keep func(extract.Finding) bool) []extract.Finding {
	out := fs[:0:0]
	for _, f := range fs {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
