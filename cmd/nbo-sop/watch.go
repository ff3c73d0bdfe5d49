// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/nbo-sop/internal/batch"
	"github.com/pdiddy/nbo-sop/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Analyze reports as they appear in a directory",
	Long: `Watch monitors --dir and analyzes every file matching --pattern
when it is created or rewritten, writing the same outputs as analyze.
Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	addBatchFlags(watchCmd)
	watchCmd.Flags().String("out-dir", "", "directory for output files (default: next to each report)")
	watchCmd.Flags().Bool("keep-block", true, "write the isolated table as <stem>.sop")
	watchCmd.Flags().String("export", "", "also write <stem>.yaml or <stem>.json: yaml, json")
	watchCmd.Flags().String("metrics-file", "", "rewrite Prometheus counters to this textfile after each report")
	watchCmd.Flags().Bool("relabel", false, "print custom atom names")
	watchCmd.Flags().String("rename-file", "", "YAML map of atom label to name (enables relabeling)")
	watchCmd.Flags().String("db", "", "index classified interactions into this SQLite database")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Relabel.Interactive {
		return fmt.Errorf("watch does not support interactive relabeling")
	}

	runner, closeFn, err := newRunner(cmd, cfg, cmd.Flags().Changed("db"))
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for %s\n", cfg.Batch.Dir, cfg.Batch.Pattern)
	return watch.Dir(ctx, cfg.Batch.Dir, cfg.Batch.Pattern,
		watchHandler(runner, cmd.OutOrStdout()), logger.With(zap.String("cmd", "watch")))
}

// watchHandler analyzes one changed report, prints its status line, and
// refreshes the metrics textfile when one is configured.
func watchHandler(runner *batch.Runner, out io.Writer) watch.Handler {
	return func(ctx context.Context, path string) error {
		rep, err := runner.ProcessFile(ctx, path)
		switch {
		case err != nil:
			runner.Metrics.Failed()
			fmt.Fprintf(out, "failed:   %s (%v)\n", path, err)
		case !rep.SectionFound:
			runner.Metrics.Analyzed(rep)
			fmt.Fprintf(out, "analyzed: %s (no perturbation table)\n", path)
		default:
			runner.Metrics.Analyzed(rep)
			fmt.Fprintf(out, "analyzed: %s (%d bonds, %d warnings)\n", path, len(rep.Bonds), len(rep.Warnings))
		}
		if runner.Metrics != nil && runner.Config.MetricsFile != "" {
			return runner.Metrics.WriteTextfile(runner.Config.MetricsFile)
		}
		return nil
	}
}
