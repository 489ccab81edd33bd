package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/display"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/evidence"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/format"
)

var validateFlags struct {
	evidenceMap string
}

var validateCmd = &cobra.Command{
	Use:   "validate <pattern.yaml>",
	Short: "Validate a pattern document and print its graph",
	Long: `Validate parses a pattern document, checks its structural invariants
(acyclicity, weight sum, required root cause, reachability), and prints
the node table. With --evidence it also cross-checks that every evidence
item references a node in the graph.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFlags.evidenceMap, "evidence", "", "Evidence map YAML to cross-check against the pattern")
}

func runValidate(cmd *cobra.Command, args []string) error {
	graph, err := causal.LoadPattern(args[0])
	if err != nil {
		return err
	}

	tb := format.NewTable(format.ASCII)
	tb.Header("Node", "Kind", "Weight", "Required")
	for _, n := range graph.Nodes() {
		tb.Row(n.ID, display.Kind(string(n.Kind)), format.FmtScore(n.Weight), format.BoolMark(n.Required))
	}
	tb.Columns(format.ColumnConfig{Number: 3, Align: format.AlignRight})
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n%s\n%d edges\n",
		graph.PatternID(), graph.Name(), tb.String(), len(graph.Edges()))

	if validateFlags.evidenceMap != "" {
		if err := checkEvidenceMap(graph); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "evidence map ok")
	}
	return nil
}

func checkEvidenceMap(graph *causal.Graph) error {
	m, err := evidence.LoadMap(validateFlags.evidenceMap)
	if err != nil {
		return err
	}
	if m.PatternID != graph.PatternID() {
		return fmt.Errorf("evidence map is for %s, pattern is %s", m.PatternID, graph.PatternID())
	}
	for ch, items := range m.Channels {
		for _, it := range items {
			if it.NodeID == "" {
				continue
			}
			if _, ok := graph.Node(it.NodeID); !ok {
				return fmt.Errorf("evidence %s/%s references unknown node %q", ch, it.ID, it.NodeID)
			}
		}
	}
	return nil
}
