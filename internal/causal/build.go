package causal

import (
	"math"
)

// PatternSpec is the structured pattern document handed to grading by the
// injection subsystem. It is plain data; Build turns it into a validated
// Graph.
type PatternSpec struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes       []Node `json:"nodes" yaml:"nodes"`
	Edges       []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Build validates spec and constructs an immutable Graph.
// It fails with *MalformedPatternError when:
//   - a node has an unknown kind, an empty id, a duplicate id, or a
//     non-positive weight;
//   - non-penalty node weights do not sum to ScorableMax;
//   - an edge references a missing node or closes a cycle;
//   - a scorable non-trigger node is not reachable from any trigger.
//
// Penalty nodes (red herrings, decoys) are exempt from the reachability
// requirement: they are deliberately planted outside the true cascade.
func Build(spec *PatternSpec) (*Graph, error) {
	if spec == nil {
		return nil, malformed("", "nil pattern spec")
	}
	if spec.ID == "" {
		return nil, malformed("", "pattern id is empty")
	}
	if len(spec.Nodes) == 0 {
		return nil, malformed(spec.ID, "pattern has no nodes")
	}

	g := &Graph{
		patternID: spec.ID,
		name:      spec.Name,
		nodes:     make([]Node, len(spec.Nodes)),
		byID:      make(map[string]int, len(spec.Nodes)),
		out:       make(map[string][]string),
	}
	copy(g.nodes, spec.Nodes)

	weightSum := 0.0
	triggers := []string{}
	for i, n := range g.nodes {
		if n.ID == "" {
			return nil, malformed(spec.ID, "node %d has empty id", i)
		}
		if _, dup := g.byID[n.ID]; dup {
			return nil, malformed(spec.ID, "duplicate node id %q", n.ID)
		}
		if !n.Kind.Valid() {
			return nil, malformed(spec.ID, "node %q has unknown kind %q", n.ID, n.Kind)
		}
		if n.Weight <= 0 {
			return nil, malformed(spec.ID, "node %q has non-positive weight %g", n.ID, n.Weight)
		}
		g.byID[n.ID] = i
		if !n.Kind.Penalty() {
			weightSum += n.Weight
		}
		if n.Kind == KindTrigger {
			triggers = append(triggers, n.ID)
		}
	}

	if math.Abs(weightSum-ScorableMax) > weightEpsilon {
		return nil, malformed(spec.ID, "scorable node weights sum to %g, want %g", weightSum, ScorableMax)
	}

	g.edges = make([]Edge, len(spec.Edges))
	copy(g.edges, spec.Edges)
	for _, e := range g.edges {
		if _, ok := g.byID[e.From]; !ok {
			return nil, malformed(spec.ID, "edge references unknown node %q", e.From)
		}
		if _, ok := g.byID[e.To]; !ok {
			return nil, malformed(spec.ID, "edge references unknown node %q", e.To)
		}
		g.out[e.From] = append(g.out[e.From], e.To)
	}

	if cyc := findCycle(g); cyc != "" {
		return nil, malformed(spec.ID, "cycle through node %q", cyc)
	}

	// Reachability: every scorable non-trigger node must descend from a trigger.
	reached := make(map[string]bool)
	for _, t := range triggers {
		for id := range g.ReachableFrom(t) {
			reached[id] = true
		}
	}
	for _, n := range g.nodes {
		if n.Kind == KindTrigger || n.Kind.Penalty() {
			continue
		}
		if !reached[n.ID] {
			return nil, malformed(spec.ID, "node %q is not reachable from any trigger", n.ID)
		}
	}

	return g, nil
}

// findCycle returns the id of a node on a cycle, or "" when the edge set is
// acyclic. Iterative DFS with three-color marking.
func findCycle(g *Graph) string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))

	var visit func(id string) string
	visit = func(id string) string {
		color[id] = gray
		for _, next := range g.out[id] {
			switch color[next] {
			case gray:
				return next
			case white:
				if c := visit(next); c != "" {
					return c
				}
			}
		}
		color[id] = black
		return ""
	}

	for _, n := range g.nodes {
		if color[n.ID] == white {
			if c := visit(n.ID); c != "" {
				return c
			}
		}
	}
	return ""
}
