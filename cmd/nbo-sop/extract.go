// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nbo-sop/internal/registry"
	"github.com/pdiddy/nbo-sop/internal/relabel"
	"github.com/pdiddy/nbo-sop/internal/section"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the second order perturbation table of a report",
	Long: `Extract prints the lines of the second order perturbation theory
section of an NBO report, from the line after the section heading up to
the Natural Bond Orbitals summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var bondsCmd = &cobra.Command{
	Use:   "bonds <file>",
	Short: "Print the atoms and bonds found in a report",
	Long: `Bonds prints the atoms of a report in sorted order followed by its
bonds in the order they first appear as bond donors in the perturbation
table. With --save-names the atom list is written as an identity rename
file ready for editing.`,
	Args: cobra.ExactArgs(1),
	RunE: runBonds,
}

func init() {
	bondsCmd.Flags().String("save-names", "", "write an identity rename file for the atoms")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(bondsCmd)
}

func readBlock(path string) (section.Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return section.Block{}, err
	}
	defer f.Close()
	return section.Extract(f)
}

func runExtract(cmd *cobra.Command, args []string) error {
	block, err := readBlock(args[0])
	if err != nil {
		return err
	}
	if !block.Found() {
		return fmt.Errorf("%s: second order perturbation table not found", args[0])
	}
	_, err = io.WriteString(cmd.OutOrStdout(), block.String())
	return err
}

func runBonds(cmd *cobra.Command, args []string) error {
	block, err := readBlock(args[0])
	if err != nil {
		return err
	}
	reg := registry.Build(block.Lines)
	atoms, bonds := reg.Atoms(), reg.Bonds()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Atoms (%d):\n", len(atoms))
	for _, a := range atoms {
		fmt.Fprintf(out, "  %s\n", a)
	}
	fmt.Fprintf(out, "Bonds (%d):\n", len(bonds))
	for _, b := range bonds {
		fmt.Fprintf(out, "  %s\n", b)
	}

	if path, _ := cmd.Flags().GetString("save-names"); path != "" {
		if err := relabel.SaveFile(path, relabel.Identity(atoms)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	}
	return nil
}
