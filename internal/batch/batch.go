// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch analyzes a set of NBO reports and writes their artifacts.
// Each report is independent: a failure reading or writing one file is
// reported and counted, and the rest of the batch carries on.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/nbo-sop/internal/analyze"
	"github.com/pdiddy/nbo-sop/internal/export"
	"github.com/pdiddy/nbo-sop/internal/metrics"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

const (
	// DefaultPattern matches NBO output files.
	DefaultPattern = "*.nbo"

	// WarnNoReports is printed when discovery finds nothing to do.
	WarnNoReports = "warning: no report files found"
)

// Indexer stores an analyzed report, e.g. in the SQLite result index.
type Indexer interface {
	Save(ctx context.Context, report types.Report) error
}

// Result holds the outcome of a batch run.
type Result struct {
	Analyzed int
	Failed   int

	// Missing counts analyzed reports that had no perturbation table.
	Missing int
}

// Total returns the number of reports processed.
func (r Result) Total() int {
	return r.Analyzed + r.Failed
}

// HasFailures reports whether any report failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Runner processes reports with a shared analyzer and configuration.
type Runner struct {
	Config   types.BatchConfig
	Analyzer *analyze.Analyzer

	// Metrics and Index are optional.
	Metrics *metrics.Recorder
	Index   Indexer

	Log *zap.Logger
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

// Discover lists the regular files in dir whose names match pattern, sorted.
// Files with an output extension are never reports, whatever the pattern.
func Discover(dir, pattern string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading report directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || export.IsArtifact(e.Name()) {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// ProcessFile analyzes one report and writes its artifacts. The returned
// report is valid whenever err is nil.
func (r *Runner) ProcessFile(ctx context.Context, path string) (types.Report, error) {
	for _, out := range r.outputs(path).List() {
		if samePath(out, path) {
			return types.Report{}, fmt.Errorf("output %s would overwrite its own input", out)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return types.Report{}, fmt.Errorf("opening %s: %w", path, err)
	}
	a := r.Analyzer
	if a == nil {
		a = &analyze.Analyzer{Log: r.Log}
	}
	res, err := a.Run(path, f)
	f.Close()
	if err != nil {
		return types.Report{}, err
	}

	paths := r.outputs(path)
	block := &res.Block
	if !r.Config.KeepBlock {
		block = nil
	}
	if err := export.WriteFiles(paths, res.Report, block, res.Names, r.Config.Export); err != nil {
		return types.Report{}, err
	}

	if r.Index != nil {
		if err := r.Index.Save(ctx, res.Report); err != nil {
			return types.Report{}, fmt.Errorf("indexing %s: %w", path, err)
		}
	}
	return res.Report, nil
}

func (r *Runner) outputs(path string) export.Paths {
	p := export.PathsFor(path, r.Config.OutDir, r.Config.Export)
	if !r.Config.KeepBlock {
		p.Block = ""
	}
	return p
}

func pathKey(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func samePath(a, b string) bool {
	return pathKey(a) == pathKey(b)
}

// claim assigns every output path to the first input deriving it. Inputs
// whose outputs would overwrite an input or an earlier input's outputs get
// an error instead.
func (r *Runner) claim(paths []string) map[string]error {
	inputs := make(map[string]bool, len(paths))
	for _, p := range paths {
		inputs[pathKey(p)] = true
	}
	owners := make(map[string]string)
	conflicts := make(map[string]error)
	for _, p := range paths {
		outs := r.outputs(p).List()
		for _, out := range outs {
			k := pathKey(out)
			if inputs[k] {
				conflicts[p] = fmt.Errorf("output %s would overwrite an input report", out)
				break
			}
			if owner, ok := owners[k]; ok {
				conflicts[p] = fmt.Errorf("output %s is already written for %s", out, owner)
				break
			}
		}
		if conflicts[p] != nil {
			continue
		}
		for _, out := range outs {
			owners[pathKey(out)] = p
		}
	}
	return conflicts
}

// Run processes paths with up to Config.Workers reports in flight, writing a
// status line per report and a summary to w. An empty path list prints a
// single warning and is not an error. Only context cancellation is
// returned as an error; per-file failures are counted in the result.
func (r *Runner) Run(ctx context.Context, paths []string, w io.Writer) (Result, error) {
	log := r.logger()
	if len(paths) == 0 {
		fmt.Fprintln(w, WarnNoReports)
		log.Debug("no report files found",
			zap.String("dir", r.Config.Dir), zap.String("pattern", r.Config.Pattern))
		return Result{}, nil
	}

	workers := r.Config.Workers
	if workers <= 0 {
		workers = 1
	}

	var (
		mu        sync.Mutex
		result    Result
		conflicts = r.claim(paths)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := types.Report{}, conflicts[path]
			if err == nil {
				rep, err = r.ProcessFile(gctx, path)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				r.Metrics.Failed()
				fmt.Fprintf(w, "failed:   %s (%v)\n", path, err)
				log.Error("report failed", zap.String("report", path), zap.Error(err))
				return nil
			}
			result.Analyzed++
			r.Metrics.Analyzed(rep)
			if !rep.SectionFound {
				result.Missing++
				fmt.Fprintf(w, "analyzed: %s (no perturbation table)\n", path)
				return nil
			}
			fmt.Fprintf(w, "analyzed: %s (%d bonds, %d warnings)\n", path, len(rep.Bonds), len(rep.Warnings))
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	fmt.Fprintf(w, "\nBatch summary: %d analyzed, %d failed (total: %d)\n",
		result.Analyzed, result.Failed, result.Total())

	if r.Metrics != nil && r.Config.MetricsFile != "" {
		if merr := r.Metrics.WriteTextfile(r.Config.MetricsFile); merr != nil {
			log.Warn("metrics not written", zap.Error(merr))
		}
	}
	return result, err
}

// RunDir discovers reports in Config.Dir and runs them.
func (r *Runner) RunDir(ctx context.Context, w io.Writer) (Result, error) {
	paths, err := Discover(r.Config.Dir, r.Config.Pattern)
	if err != nil {
		return Result{}, err
	}
	return r.Run(ctx, paths, w)
}
