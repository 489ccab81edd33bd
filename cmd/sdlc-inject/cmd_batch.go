package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/grade"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/harness"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/store"
)

var batchFlags struct {
	manifest  string
	parallel  int
	artifacts string
	dbPath    string
	save      bool
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Grade a batch of reports from a run manifest",
	Long: `Batch grades every trial in a manifest in parallel, prints the summary
table, and optionally archives per-trial artifacts and history records.
Individual trial failures are reported in the table without aborting the
rest of the batch.`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.manifest, "manifest", "", "Path to run manifest YAML (required)")
	f.IntVar(&batchFlags.parallel, "parallel", 4, "Number of parallel grading workers")
	f.StringVar(&batchFlags.artifacts, "artifacts", "", "Directory for per-trial JSON and markdown artifacts")
	f.StringVar(&batchFlags.dbPath, "db", store.DefaultDBPath, "Grade history DB path")
	f.BoolVar(&batchFlags.save, "save", false, "Persist every trial's grade to the history DB")
	_ = batchCmd.MarkFlagRequired("manifest")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	tasks, err := harness.LoadManifest(batchFlags.manifest)
	if err != nil {
		return err
	}

	cfg := harness.Config{
		Parallel:     batchFlags.parallel,
		Options:      grade.DefaultOptions(),
		ArtifactsDir: batchFlags.artifacts,
		Timestamp:    time.Now().UTC(),
	}
	if batchFlags.save {
		st, err := store.Open(batchFlags.dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		cfg.Store = st
	}

	sum, err := harness.Run(cmd.Context(), tasks, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s\n%s\n", sum.RunID, sum.Table())
	if sum.Failed > 0 {
		return fmt.Errorf("batch: %d of %d trials failed", sum.Failed, len(sum.Results))
	}
	return nil
}
