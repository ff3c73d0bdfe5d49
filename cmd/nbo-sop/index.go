// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbo-sop/internal/batch"
	"github.com/pdiddy/nbo-sop/internal/store"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the interaction index (store, query, reports)",
	Long: `Index manages a local SQLite database of classified interactions
built from analyzed reports. Use subcommands to index reports, query
interactions across them, or list what has been indexed.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store [files...]",
	Short: "Analyze reports and index their classified interactions",
	Long: `Store analyzes each report exactly as analyze does, writing the same
output files, and saves the classified interactions to the database.
Re-indexing a report replaces its previous rows.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, closeFn, err := newRunner(cmd, cfg, true)
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
		return fmt.Errorf("%d report(s) failed indexing", result.Failed)
	}
	return nil
}

// --- query subcommand ---

var indexQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query indexed interactions by bond, classification, and energy",
	Long: `Query lists indexed interactions, strongest E(2) first. Filters
combine: --bond C1-C2 matches the bond in either atom order, --class
keeps stabilizing or unbonding lines, --min-energy drops weak
interactions, and --report restricts to one report stem.`,
	RunE: runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := queryOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Query(cmd.Context(), opts)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func queryOptsFromFlags(cmd *cobra.Command) (store.QueryOptions, error) {
	var opts store.QueryOptions

	if raw, _ := cmd.Flags().GetString("bond"); raw != "" {
		b, err := types.ParseBond(raw)
		if err != nil {
			return opts, err
		}
		opts.Bond = &b
	}

	class, _ := cmd.Flags().GetString("class")
	switch c := types.Classification(strings.ToLower(class)); c {
	case "":
	case types.Stabilizing, types.Unbonding:
		opts.Classification = c
	default:
		return opts, fmt.Errorf("unknown classification %q: use stabilizing or unbonding", class)
	}

	opts.MinEnergy, _ = cmd.Flags().GetFloat64("min-energy")
	opts.Report, _ = cmd.Flags().GetString("report")
	opts.MaxResults, _ = cmd.Flags().GetInt("limit")
	return opts, nil
}

func formatQueryOutput(w io.Writer, results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-20s  %-10s  %-12s  %-16s  %-16s  %8s\n",
		"Rank", "Report", "Bond", "Class", "Donor", "Acceptor", "E(2)")
	fmt.Fprintln(w, strings.Repeat("-", 98))

	for i, r := range results {
		src := truncate(r.Source, 20)
		fmt.Fprintf(w, "%-4d  %-20s  %-10s  %-12s  %-16s  %-16s  %8.2f\n",
			i+1, src, r.Bond, r.Classification, truncate(r.Donor, 16), truncate(r.Acceptor, 16), r.Energy)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

// --- reports subcommand ---

var indexReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List indexed reports",
	RunE:  runIndexReports,
}

func runIndexReports(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := store.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer s.Close()

	reports, err := s.Reports(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports indexed.")
		return nil
	}
	for _, r := range reports {
		status := fmt.Sprintf("%d atoms, %d bonds, %d interactions", r.Atoms, r.Bonds, r.Interactions)
		if !r.SectionFound {
			status = "no perturbation table"
		}
		fmt.Fprintf(w, "%s  %s (%s)\n", r.AnalyzedAt.Format("2006-01-02 15:04"), r.Source, status)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{indexStoreCmd, indexQueryCmd, indexReportsCmd} {
		c.Flags().String("db", store.DefaultDBPath, "SQLite database path")
	}

	addBatchFlags(indexStoreCmd)
	indexStoreCmd.Flags().String("out-dir", "", "directory for output files (default: next to each report)")
	indexStoreCmd.Flags().Int("workers", 1, "reports analyzed concurrently")
	indexStoreCmd.Flags().Bool("relabel", false, "print custom atom names")
	indexStoreCmd.Flags().String("rename-file", "", "YAML map of atom label to name (enables relabeling)")

	indexQueryCmd.Flags().String("bond", "", "bond to match, e.g. C1-C2")
	indexQueryCmd.Flags().String("class", "", "classification: stabilizing, unbonding")
	indexQueryCmd.Flags().Float64("min-energy", 0, "minimum E(2) in kcal/mol")
	indexQueryCmd.Flags().String("report", "", "report stem to restrict to")
	indexQueryCmd.Flags().Int("limit", 0, "maximum results (default: index.max_results)")
	indexQueryCmd.Flags().Bool("json", false, "output results as JSON")

	indexReportsCmd.Flags().Bool("json", false, "output reports as JSON")

	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexReportsCmd)
	rootCmd.AddCommand(indexCmd)
}
