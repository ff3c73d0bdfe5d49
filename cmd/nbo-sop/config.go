// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nbo-sop/internal/batch"
	"github.com/pdiddy/nbo-sop/internal/relabel"
	"github.com/pdiddy/nbo-sop/internal/store"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

// Config keys and the flag names that override them.
var flagKeys = map[string]string{
	"dir":          "batch.dir",
	"pattern":      "batch.pattern",
	"out-dir":      "batch.out_dir",
	"workers":      "batch.workers",
	"keep-block":   "batch.keep_block",
	"export":       "batch.export",
	"metrics-file": "batch.metrics_file",
	"relabel":      "relabel.enabled",
	"rename-file":  "relabel.rename_file",
	"interactive":  "relabel.interactive",
	"db":           "index.db_path",
	"max-results":  "index.max_results",
}

func init() {
	viper.SetDefault("batch.dir", ".")
	viper.SetDefault("batch.pattern", batch.DefaultPattern)
	viper.SetDefault("batch.workers", 1)
	viper.SetDefault("batch.keep_block", true)
	viper.SetDefault("index.db_path", store.DefaultDBPath)
	viper.SetDefault("index.max_results", 50)
	viper.SetDefault("log_level", "warn")
}

// loadConfig binds the flags cmd defines to their config keys and reads the
// merged configuration. Binding happens per command because several
// commands share flag names.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return types.Config{}, fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}

	cfg := types.Config{
		Batch: types.BatchConfig{
			Dir:         viper.GetString("batch.dir"),
			Pattern:     viper.GetString("batch.pattern"),
			OutDir:      viper.GetString("batch.out_dir"),
			Workers:     viper.GetInt("batch.workers"),
			KeepBlock:   viper.GetBool("batch.keep_block"),
			Export:      types.ExportFormat(strings.ToLower(viper.GetString("batch.export"))),
			MetricsFile: viper.GetString("batch.metrics_file"),
		},
		Relabel: types.RelabelConfig{
			Enabled:     viper.GetBool("relabel.enabled"),
			RenameFile:  viper.GetString("relabel.rename_file"),
			Interactive: viper.GetBool("relabel.interactive"),
		},
		Index: types.IndexConfig{
			DBPath:     viper.GetString("index.db_path"),
			MaxResults: viper.GetInt("index.max_results"),
		},
		LogLevel: viper.GetString("log_level"),
	}

	switch cfg.Batch.Export {
	case types.ExportNone, types.ExportYAML, types.ExportJSON:
	default:
		return cfg, fmt.Errorf("unsupported export format %q: use yaml or json", cfg.Batch.Export)
	}
	return cfg, nil
}

// renameProvider returns the rename source selected by cfg, or nil when
// relabeling is disabled. Naming a rename file turns relabeling on; in
// interactive mode it supplies the defaults. Interactive mode without
// relabel.enabled asks per report first.
func renameProvider(cmd *cobra.Command, cfg types.RelabelConfig) (relabel.Provider, error) {
	if !cfg.Enabled && !cfg.Interactive && cfg.RenameFile == "" {
		return nil, nil
	}

	var fromFile relabel.Map
	if cfg.RenameFile != "" {
		m, err := relabel.LoadFile(cfg.RenameFile)
		if err != nil {
			return nil, err
		}
		fromFile = m
	}

	if cfg.Interactive {
		p := relabel.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		p.Defaults = fromFile
		p.Confirm = !cfg.Enabled
		return p, nil
	}
	return relabel.Static(fromFile), nil
}
