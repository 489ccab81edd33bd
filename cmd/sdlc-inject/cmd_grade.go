package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/grade"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/store"
)

var gradeFlags struct {
	pattern    string
	report     string
	transcript string
	agent      string
	jsonOut    string
	dbPath     string
	save       bool
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade one incident report against a pattern",
	Long: `Grade extracts findings from a free-text incident report, matches them
against the pattern's causal graph, and prints the full score breakdown.
A tool-call transcript, when given, adjusts the outcome score by process
discipline.`,
	RunE: runGrade,
}

func init() {
	f := gradeCmd.Flags()
	f.StringVar(&gradeFlags.pattern, "pattern", "", "Path to pattern YAML (required)")
	f.StringVar(&gradeFlags.report, "report", "", "Path to the agent's incident report (required)")
	f.StringVar(&gradeFlags.transcript, "transcript", "", "Path to the agent's tool-call transcript (JSON or JSONL)")
	f.StringVar(&gradeFlags.agent, "agent", "agent", "Agent ID recorded with the grade")
	f.StringVarP(&gradeFlags.jsonOut, "out", "o", "", "Write the JSON score document to this path")
	f.StringVar(&gradeFlags.dbPath, "db", store.DefaultDBPath, "Grade history DB path")
	f.BoolVar(&gradeFlags.save, "save", false, "Persist the grade to the history DB")
	_ = gradeCmd.MarkFlagRequired("pattern")
	_ = gradeCmd.MarkFlagRequired("report")
}

func runGrade(cmd *cobra.Command, _ []string) error {
	graph, err := causal.LoadPattern(gradeFlags.pattern)
	if err != nil {
		return err
	}
	report, err := os.ReadFile(gradeFlags.report)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	var transcript []byte
	if gradeFlags.transcript != "" {
		transcript, err = os.ReadFile(gradeFlags.transcript)
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}
	}

	now := time.Now().UTC()
	res, err := grade.Run(grade.Input{
		Graph:      graph,
		Report:     string(report),
		Transcript: transcript,
		Timestamp:  now,
	}, grade.DefaultOptions())
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), res.Markdown)

	if gradeFlags.jsonOut != "" {
		if err := os.WriteFile(gradeFlags.jsonOut, res.JSON, 0o644); err != nil {
			return fmt.Errorf("write score document: %w", err)
		}
	}
	if gradeFlags.save {
		return saveGrade(res, now)
	}
	return nil
}

func saveGrade(res grade.Result, now time.Time) error {
	st, err := store.Open(gradeFlags.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	bd := res.Breakdown
	id, err := st.SaveGrade(&store.Record{
		AgentID:       gradeFlags.agent,
		PatternID:     bd.PatternID,
		PolicyVersion: bd.PolicyVersion,
		FinalScore:    bd.FinalScore,
		OutcomeScore:  bd.OutcomeScore,
		Multiplier:    breakdownMultiplier(bd),
		CapApplied:    bd.Metadata.CapApplied,
		EmptyReport:   bd.Metadata.EmptyReport,
		Document:      res.JSON,
		CreatedAt:     now.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("save grade: %w", err)
	}
	fmt.Printf("saved grade %d to %s\n", id, gradeFlags.dbPath)
	return nil
}
