// Package causal models the ground-truth causality of an injected failure
// pattern as a typed DAG. Nodes are facts (root causes, amplifiers, symptoms,
// planted red herrings); edges mean "from enables/produces to". A Graph is
// immutable once built: grading runs share it read-only, and any change to a
// pattern requires rebuilding so that score breakdowns stay reproducible.
package causal

import (
	"fmt"
)

// Kind classifies a node's causal role within a pattern.
type Kind string

const (
	KindTrigger            Kind = "trigger"
	KindRootCause          Kind = "root_cause"
	KindAmplifier          Kind = "amplifier"
	KindContributingFactor Kind = "contributing_factor"
	KindSymptom            Kind = "symptom"
	KindRedHerring         Kind = "red_herring"
	KindDecoy              Kind = "decoy"
)

// Valid reports whether k is a known node kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTrigger, KindRootCause, KindAmplifier, KindContributingFactor,
		KindSymptom, KindRedHerring, KindDecoy:
		return true
	}
	return false
}

// Penalty reports whether k is a planted-distractor kind whose weight is a
// penalty (applied only when a report affirms the node as causal) rather
// than scorable credit.
func (k Kind) Penalty() bool {
	return k == KindRedHerring || k == KindDecoy
}

// ScorableMax is the sum of the weights of all non-penalty nodes in one
// graph
// must reach: the outcome score ceiling before caps, penalties, and
// process adjustments.
const ScorableMax = 100.0

// weightEpsilon tolerates float drift when checking the ScorableMax invariant.
const weightEpsilon = 1e-6

// Node is one fact in the causal model.
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Description string   `json:"description" yaml:"description"`
	Paraphrases []string `json:"paraphrases" yaml:"paraphrases"` // insertion order = tie-break preference
	Weight      float64  `json:"weight" yaml:"weight"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"` // necessary for full credit
}

// Edge is a directed "enables/produces" relation between two nodes.
type Edge struct {
	From             string  `json:"from" yaml:"from"`
	To               string  `json:"to" yaml:"to"`
	InteractionBonus float64 `json:"interaction_bonus,omitempty" yaml:"interaction_bonus,omitempty"`
}

// Graph is the validated, immutable causal model for one pattern instance.
// All accessors are safe for concurrent use.
type Graph struct {
	patternID string
	name      string
	nodes     []Node
	byID      map[string]int // id -> index into nodes
	edges     []Edge
	out       map[string][]string
}

// PatternID returns the id of the pattern this graph was built from.
func (g *Graph) PatternID() string { return g.patternID }

// Name returns the pattern's human-readable name.
func (g *Graph) Name() string { return g.name }

// Nodes returns the graph's nodes in spec order. The returned slice is
// shared; callers must not modify it.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the graph's edges in spec order. The returned slice is
// shared; callers must not modify it.
func (g *Graph) Edges() []Edge { return g.edges }

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// ReachableFrom returns the set of node ids reachable from start by
// following edges forward, including start itself. An unknown start id
// yields an empty set.
func (g *Graph) ReachableFrom(start string) map[string]bool {
	reached := make(map[string]bool)
	if _, ok := g.byID[start]; !ok {
		return reached
	}
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[id] {
			continue
		}
		reached[id] = true
		stack = append(stack, g.out[id]...)
	}
	return reached
}

// MalformedPatternError reports a pattern spec that violates a graph
// invariant (bad kind, cycle, orphan node, weights off the scorable max).
// It is fatal: grading cannot proceed against a malformed pattern.
type MalformedPatternError struct {
	PatternID string
	Reason    string
}

func (e *MalformedPatternError) Error() string {
	if e.PatternID == "" {
		return "malformed pattern: " + e.Reason
	}
	return fmt.Sprintf("malformed pattern %s: %s", e.PatternID, e.Reason)
}

func malformed(patternID, format string, args ...any) error {
	return &MalformedPatternError{PatternID: patternID, Reason: fmt.Sprintf(format, args...)}
}
