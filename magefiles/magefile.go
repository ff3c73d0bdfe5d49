//go:build mage

// Package main contains Mage build targets for nbo-sop developer tooling.
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories a batch run expects.
var projectDirs = []string{
	"reports",
	"output",
}

// Init creates the working directory structure for batch runs.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "nbo-sop"
	cmdPkg  = "./cmd/nbo-sop"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test vets, then runs the test suite with the race detector.
// The sqlite driver needs cgo, which the race detector requires anyway.
func Test() error {
	mg.Deps(Vet)
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "-race", "./...")
}

// Analyze builds the CLI and analyzes every report in reports/ into output/.
func Analyze() error {
	mg.Deps(Build, Init)
	return sh.RunV(filepath.Join(binDir, binName), "analyze",
		"--dir", "reports", "--out-dir", "output", "--metrics-file", filepath.Join("output", "nbo_sop.prom"))
}

// Clean removes build and run artifacts.
func Clean() error {
	for _, dir := range []string{binDir, "output"} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}

// Stats prints non-blank Go lines per source tree, production and tests
// separately, plus how many sample reports sit under testdata.
func Stats() error {
	fmt.Printf("%-10s  %8s  %8s\n", "tree", "prod", "test")
	var prodTotal, testTotal int
	for _, root := range []string{"cmd", "internal", "pkg", "magefiles"} {
		prod, test, err := goLines(root)
		if err != nil {
			return err
		}
		prodTotal += prod
		testTotal += test
		fmt.Printf("%-10s  %8d  %8d\n", root, prod, test)
	}
	fmt.Printf("%-10s  %8d  %8d\n", "total", prodTotal, testTotal)

	fixtures, err := filepath.Glob(filepath.Join("cmd", "*", "testdata", "*.nbo"))
	if err != nil {
		return err
	}
	fmt.Printf("Sample reports: %d\n", len(fixtures))
	return nil
}

// goLines counts non-blank lines of the .go files under root, split into
// production and _test.go files.
func goLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := nonBlankLines(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

func nonBlankLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}
