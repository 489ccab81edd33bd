package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/format"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/store"
)

var historyFlags struct {
	dbPath  string
	runID   string
	pattern string
	limit   int
	showID  int64
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived grades",
	Long: `History lists archived grades from the history DB, newest first by
default. Filter by batch run or pattern, or dump one record's full JSON
score document with --id.`,
	RunE: runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.dbPath, "db", store.DefaultDBPath, "Grade history DB path")
	f.StringVar(&historyFlags.runID, "run", "", "Filter by batch run ID")
	f.StringVar(&historyFlags.pattern, "pattern", "", "Filter by pattern ID")
	f.IntVar(&historyFlags.limit, "n", 20, "Max records to list")
	f.Int64Var(&historyFlags.showID, "id", 0, "Print one record's JSON score document and exit")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(historyFlags.dbPath); err != nil {
		return fmt.Errorf("no grade history at %s", historyFlags.dbPath)
	}
	st, err := store.Open(historyFlags.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if historyFlags.showID != 0 {
		rec, err := st.GetGrade(historyFlags.showID)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("grade %d not found", historyFlags.showID)
		}
		_, err = cmd.OutOrStdout().Write(rec.Document)
		return err
	}

	recs, err := listRecords(st)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no grades recorded")
		return nil
	}

	tb := format.NewTable(format.ASCII)
	tb.Header("ID", "Agent", "Pattern", "Score", "Multiplier", "Capped", "Created")
	for _, r := range recs {
		tb.Row(
			r.ID,
			r.AgentID,
			r.PatternID,
			format.FmtScore(r.FinalScore),
			format.FmtMultiplier(r.Multiplier),
			format.BoolMark(r.CapApplied),
			r.CreatedAt,
		)
	}
	tb.Columns(format.ColumnConfig{Number: 4, Align: format.AlignRight})
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
	return nil
}

func listRecords(st store.Store) ([]*store.Record, error) {
	switch {
	case historyFlags.runID != "":
		return st.ListGradesByRun(historyFlags.runID)
	case historyFlags.pattern != "":
		return st.ListGradesByPattern(historyFlags.pattern)
	default:
		return st.ListRecent(historyFlags.limit)
	}
}
