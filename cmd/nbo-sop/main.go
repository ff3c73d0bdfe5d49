// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nbo-sop CLI, which classifies NBO
// second-order perturbation interactions as stabilizing or unbonding for
// every bond of a molecule.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/nbo-sop/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from --log-level before any subcommand runs.
var logger = zap.NewNop()

// rootCmd is the base command for the nbo-sop CLI.
var rootCmd = &cobra.Command{
	Use:   "nbo-sop",
	Short: "Classify NBO second-order perturbation interactions per bond",
	Long: `nbo-sop reads NBO analysis output, isolates the second order
perturbation theory table, derives the bonds of the molecule, and reports
for every bond which donor-acceptor interactions stabilize it and which
weaken (unbond) it.

Use analyze for batches of reports, extract and bonds to inspect a single
report, index to query results across reports, and watch to analyze
reports as they appear.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlag("log_level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
			return err
		}
		l, err := logging.New(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./nbo-sop.yaml or ~/.config/nbo-sop/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nbo-sop")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nbo-sop"))
		}
	}

	viper.SetEnvPrefix("NBO_SOP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
