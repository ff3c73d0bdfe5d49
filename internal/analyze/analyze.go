// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze runs the full per-report pipeline: isolate the
// perturbation table, derive atoms and bonds, and classify every table row
// against every bond in a single pass over the block.
package analyze

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/nbo-sop/internal/classify"
	"github.com/pdiddy/nbo-sop/internal/registry"
	"github.com/pdiddy/nbo-sop/internal/relabel"
	"github.com/pdiddy/nbo-sop/internal/section"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

// WarnNoSection is recorded when a report has no perturbation table.
const WarnNoSection = "second order perturbation table not found"

// Result bundles a report with the block it was derived from.
type Result struct {
	Report types.Report
	Block  section.Block
	Names  relabel.Map
}

// Analyzer reads and analyzes reports. The zero value analyzes without
// relabeling and logs nothing.
type Analyzer struct {
	// Names supplies the rename map per report. Nil means no relabeling.
	Names relabel.Provider

	Log *zap.Logger
}

func (a *Analyzer) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

// Run extracts, registers and classifies the report read from r. source is
// used for diagnostics and for the rename provider.
func (a *Analyzer) Run(source string, r io.Reader) (Result, error) {
	log := a.logger().With(zap.String("report", source))

	block, err := section.Extract(r)
	if err != nil {
		return Result{}, fmt.Errorf("extracting %s: %w", source, err)
	}
	reg := registry.Build(block.Lines)

	var names relabel.Map
	if a.Names != nil {
		names, err = a.Names.RenameMap(source, reg.Atoms())
		if err != nil {
			return Result{}, fmt.Errorf("renaming atoms of %s: %w", source, err)
		}
	}

	report := Classify(block, reg, names)
	report.Source = source
	for _, w := range report.Warnings {
		log.Warn(w)
	}
	log.Debug("report analyzed",
		zap.Int("lines", len(block.Lines)),
		zap.Int("atoms", len(report.Atoms)),
		zap.Int("bonds", len(report.Bonds)))

	return Result{Report: report, Block: block, Names: names}, nil
}

// Classify builds the report for an already extracted block. Each block line
// is parsed once and classified against every bond; per-bond output keeps
// block order and groups keep bond discovery order.
func Classify(block section.Block, reg *registry.Registry, names relabel.Map) types.Report {
	report := types.Report{
		SectionFound: block.Found(),
		Atoms:        reg.Atoms(),
		Bonds:        reg.Bonds(),
	}
	if !report.SectionFound {
		report.Warnings = append(report.Warnings, WarnNoSection)
	}

	report.Groups = make([]types.BondGroup, len(report.Bonds))
	for i, b := range report.Bonds {
		report.Groups[i].Bond = b
	}

	for i, line := range block.Lines {
		ix, status, err := classify.Prepare(line, i+1)
		switch status {
		case classify.Skipped:
			continue
		case classify.Unrecognized:
			report.Warnings = append(report.Warnings, err.Error())
			continue
		}
		for j, b := range report.Bonds {
			if cl, ok := classify.Line(b, ix, names); ok {
				report.Groups[j].Lines = append(report.Groups[j].Lines, cl)
			}
		}
	}
	return report
}
