// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbo-sop/internal/analyze"
	"github.com/pdiddy/nbo-sop/internal/batch"
	"github.com/pdiddy/nbo-sop/internal/metrics"
	"github.com/pdiddy/nbo-sop/internal/store"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Classify the perturbation table of each report",
	Long: `Analyze reads each NBO report, isolates the second order perturbation
table, and writes a <stem>.otp file listing, for every bond, the
interactions that stabilize it or unbond it. The isolated table is kept
as <stem>.sop unless --keep-block=false.

Without file arguments, every file in --dir matching --pattern is
analyzed. Use --rename-file or --interactive to print
custom atom names, --export for a structured copy of the result, and
--db to index the classified interactions for later queries.`,
	RunE: runAnalyze,
}

func init() {
	addBatchFlags(analyzeCmd)
	analyzeCmd.Flags().String("out-dir", "", "directory for output files (default: next to each report)")
	analyzeCmd.Flags().Int("workers", 1, "reports analyzed concurrently")
	analyzeCmd.Flags().Bool("keep-block", true, "write the isolated table as <stem>.sop")
	analyzeCmd.Flags().String("export", "", "also write <stem>.yaml or <stem>.json: yaml, json")
	analyzeCmd.Flags().String("metrics-file", "", "write Prometheus counters to this textfile")
	analyzeCmd.Flags().Bool("relabel", false, "print custom atom names")
	analyzeCmd.Flags().String("rename-file", "", "YAML map of atom label to name (enables relabeling)")
	analyzeCmd.Flags().Bool("interactive", false, "prompt for atom names per report")
	analyzeCmd.Flags().String("db", "", "index classified interactions into this SQLite database")

	rootCmd.AddCommand(analyzeCmd)
}

// addBatchFlags registers the report discovery flags shared by analyze and
// watch.
func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", ".", "directory holding NBO reports")
	cmd.Flags().String("pattern", batch.DefaultPattern, "glob selecting report files")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runner, closeFn, err := newRunner(cmd, cfg, cmd.Flags().Changed("db"))
	if err != nil {
		return err
	}
	defer closeFn()

	var result batch.Result
	if len(args) > 0 {
		result, err = runner.Run(cmd.Context(), args, cmd.OutOrStdout())
	} else {
		result, err = runner.RunDir(cmd.Context(), cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d report(s) failed", result.Failed)
	}
	return nil
}

// newRunner assembles a batch runner from cfg. When index is true the
// runner also saves every report to the configured database; the returned
// close function releases it.
func newRunner(cmd *cobra.Command, cfg types.Config, index bool) (*batch.Runner, func(), error) {
	names, err := renameProvider(cmd, cfg.Relabel)
	if err != nil {
		return nil, nil, err
	}

	runner := &batch.Runner{
		Config:   cfg.Batch,
		Analyzer: &analyze.Analyzer{Names: names, Log: logger},
		Metrics:  metrics.New(),
		Log:      logger,
	}
	if !index {
		return runner, func() {}, nil
	}

	s, err := store.Open(cfg.Index)
	if err != nil {
		return nil, nil, err
	}
	runner.Index = s
	return runner, func() { s.Close() }, nil
}
