// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/nbo-sop/internal/analyze"
	"github.com/pdiddy/nbo-sop/internal/metrics"
	"github.com/pdiddy/nbo-sop/internal/relabel"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const report = `SECOND ORDER PERTURBATION
 within unit  1
   1. BD ( 1) C 1- C 2        /  41. BD*( 1) C 2- O 3          1.20    1.10    0.032
  12. LP ( 1) O 3             /  40. BD*( 1) C 1- C 2         25.30    0.70    0.120
 NATURAL BOND ORBITALS (Summary):
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.nbo", report)
	writeFile(t, dir, "a.nbo", report)
	writeFile(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.nbo"), 0o755))

	got, err := Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.nbo"), filepath.Join(dir, "b.nbo")}, got)

	got, err = Discover(dir, "*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, got)

	_, err = Discover(dir, "[")
	assert.Error(t, err)

	_, err = Discover(filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
}

func TestRunNoReports(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.WarnLevel)
	r := &Runner{Config: types.BatchConfig{Dir: dir}, Log: zap.New(core)}

	var out bytes.Buffer
	res, err := r.RunDir(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Equal(t, WarnNoReports+"\n", out.String())
	assert.Zero(t, logs.Len(), "the warning is printed once, not logged again")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no artifacts are written")
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mol.nbo", report)
	writeFile(t, dir, "plain.nbo", "no table\n")
	outDir := filepath.Join(dir, "out")

	rec := metrics.New()
	r := &Runner{
		Config: types.BatchConfig{
			Dir:         dir,
			OutDir:      outDir,
			Workers:     2,
			KeepBlock:   true,
			Export:      types.ExportYAML,
			MetricsFile: filepath.Join(dir, "batch.prom"),
		},
		Analyzer: &analyze.Analyzer{Names: relabel.Static{{Element: "O", Index: 3}: "Ow"}},
		Metrics:  rec,
	}

	var out bytes.Buffer
	res, err := r.RunDir(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, Result{Analyzed: 2, Missing: 1}, res)
	assert.False(t, res.HasFailures())
	assert.Contains(t, out.String(), "analyzed: "+filepath.Join(dir, "mol.nbo")+" (1 bonds, 0 warnings)")
	assert.Contains(t, out.String(), "(no perturbation table)")
	assert.Contains(t, out.String(), "Batch summary: 2 analyzed, 0 failed (total: 2)")

	text, err := os.ReadFile(filepath.Join(outDir, "mol.otp"))
	require.NoError(t, err)
	assert.Equal(t,
		"BD1 C1-C2 -> BD1 C2-Ow : 1.20, unbonding for C1-C2\n"+
			"LP Ow -> BD1 C1-C2 : 25.30, unbonding for C1-C2\n\n",
		string(text))

	empty, err := os.ReadFile(filepath.Join(outDir, "plain.otp"))
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, name := range []string{"mol.sop", "mol.yaml", "plain.sop"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(dir, "batch.prom"))
	assert.NoError(t, err)
}

func TestRunIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.nbo", report)
	missing := filepath.Join(dir, "gone.nbo")

	r := &Runner{Config: types.BatchConfig{}}
	var out bytes.Buffer
	res, err := r.Run(context.Background(), []string{missing, good}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Analyzed)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, res.HasFailures())
	assert.Contains(t, out.String(), "failed:   "+missing)

	_, err = os.Stat(filepath.Join(dir, "good.otp"))
	assert.NoError(t, err)
}

type recordingIndex struct {
	sources []string
	err     error
}

func (ri *recordingIndex) Save(_ context.Context, rep types.Report) error {
	if ri.err != nil {
		return ri.err
	}
	ri.sources = append(ri.sources, rep.Source)
	return nil
}

func TestRunIndexes(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mol.nbo", report)

	idx := &recordingIndex{}
	r := &Runner{Index: idx}
	res, err := r.Run(context.Background(), []string{path}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Analyzed)
	assert.Equal(t, []string{path}, idx.sources)

	r.Index = &recordingIndex{err: errors.New("db locked")}
	var out bytes.Buffer
	res, err = r.Run(context.Background(), []string{path}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, out.String(), "db locked")
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mol.nbo", report)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{}
	var out bytes.Buffer
	res, err := r.Run(ctx, []string{path}, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Total())
	assert.True(t, strings.Contains(out.String(), "Batch summary: 0 analyzed"))
}

func TestDiscoverSkipsOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mol.nbo", report)
	for _, name := range []string{"mol.otp", "mol.sop", "mol.yaml", "mol.json"} {
		writeFile(t, dir, name, "")
	}

	got, err := Discover(dir, "mol.*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "mol.nbo")}, got)
}

func TestRunDirRepeatedKeepsOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mol.nbo", report)
	r := &Runner{Config: types.BatchConfig{Dir: dir, Pattern: "mol.*", KeepBlock: true, Workers: 2}}

	res, err := r.RunDir(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, Result{Analyzed: 1}, res)
	first, err := os.ReadFile(filepath.Join(dir, "mol.otp"))
	require.NoError(t, err)
	require.NotEmpty(t, first)

	var out bytes.Buffer
	res, err = r.RunDir(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, Result{Analyzed: 1}, res)
	assert.NotContains(t, out.String(), "mol.otp")
	assert.NotContains(t, out.String(), "mol.sop")

	second, err := os.ReadFile(filepath.Join(dir, "mol.otp"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	block, err := os.ReadFile(filepath.Join(dir, "mol.sop"))
	require.NoError(t, err)
	assert.NotEmpty(t, block)
}

func TestRunRejectsOutputCollisions(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.nbo", report)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0o755))
	b := writeFile(t, dir, filepath.Join("b", "a.nbo"), report)
	outDir := filepath.Join(dir, "out")

	r := &Runner{Config: types.BatchConfig{OutDir: outDir}}
	var out bytes.Buffer
	res, err := r.Run(context.Background(), []string{a, b}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Analyzed)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, out.String(), "failed:   "+b)
	assert.Contains(t, out.String(), "already written for "+a)
}

func TestRunRejectsOutputOverInput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mol.otp", report)

	r := &Runner{}
	var out bytes.Buffer
	res, err := r.Run(context.Background(), []string{path}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, out.String(), "would overwrite an input report")

	_, err = r.ProcessFile(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would overwrite its own input")
}
