// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes analyzed reports: the plain-text interaction
// listing, the extracted table block, and structured YAML or JSON documents.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nbo-sop/internal/relabel"
	"github.com/pdiddy/nbo-sop/internal/section"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

const (
	// TextExt is the extension of the classified-interaction listing.
	TextExt = ".otp"
	// BlockExt is the extension of the extracted table block.
	BlockExt = ".sop"
)

// Lines returns the listing: every classified message of each bond group in
// bond order, each group followed by one empty line.
func Lines(r types.Report) []string {
	var out []string
	for _, g := range r.Groups {
		for _, l := range g.Lines {
			out = append(out, l.Message)
		}
		out = append(out, "")
	}
	return out
}

// WriteText writes the listing to w, one newline-terminated line each.
func WriteText(w io.Writer, r types.Report) error {
	bw := bufio.NewWriter(w)
	for _, l := range Lines(r) {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Document is the structured form of a report.
type Document struct {
	Source       string       `json:"source" yaml:"source"`
	SectionFound bool         `json:"section_found" yaml:"section_found"`
	Atoms        []AtomEntry  `json:"atoms" yaml:"atoms"`
	Bonds        []string     `json:"bonds" yaml:"bonds"`
	Groups       []GroupEntry `json:"groups" yaml:"groups"`
	Warnings     []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AtomEntry pairs a raw label with its display name.
type AtomEntry struct {
	Label string `json:"label" yaml:"label"`
	Name  string `json:"name" yaml:"name"`
}

// GroupEntry holds the interactions classified for one bond.
type GroupEntry struct {
	Bond         string      `json:"bond" yaml:"bond"`
	Interactions []LineEntry `json:"interactions" yaml:"interactions"`
}

// LineEntry is one classified interaction.
type LineEntry struct {
	Classification types.Classification `json:"classification" yaml:"classification"`
	Donor          string               `json:"donor" yaml:"donor"`
	Acceptor       string               `json:"acceptor" yaml:"acceptor"`
	Energy         float64              `json:"energy" yaml:"energy"`
	Gap            *float64             `json:"gap,omitempty" yaml:"gap,omitempty"`
	Fock           *float64             `json:"fock,omitempty" yaml:"fock,omitempty"`
	Line           int                  `json:"line" yaml:"line"`
	Message        string               `json:"message" yaml:"message"`
}

// OrbitalString renders an orbital as "LP(1) O4" or "BD*(1) C1-C2" using names.
func OrbitalString(o types.Orbital, names relabel.Map) string {
	atoms := make([]string, len(o.Atoms))
	for i, a := range o.Atoms {
		atoms[i] = names.Label(a)
	}
	return fmt.Sprintf("%s(%s) %s", o.Kind, o.Serial, strings.Join(atoms, "-"))
}

// NewDocument builds the structured form of r with labels rendered by names.
func NewDocument(r types.Report, names relabel.Map) Document {
	doc := Document{
		Source:       r.Source,
		SectionFound: r.SectionFound,
		Atoms:        make([]AtomEntry, len(r.Atoms)),
		Bonds:        make([]string, len(r.Bonds)),
		Groups:       make([]GroupEntry, len(r.Groups)),
		Warnings:     r.Warnings,
	}
	for i, a := range r.Atoms {
		doc.Atoms[i] = AtomEntry{Label: a.String(), Name: names.Label(a)}
	}
	for i, b := range r.Bonds {
		doc.Bonds[i] = names.Bond(b)
	}
	for i, g := range r.Groups {
		entries := make([]LineEntry, len(g.Lines))
		for j, l := range g.Lines {
			ix := l.Interaction
			entries[j] = LineEntry{
				Classification: l.Classification,
				Donor:          OrbitalString(ix.Donor, names),
				Acceptor:       OrbitalString(ix.Acceptor, names),
				Energy:         ix.EnergyValue,
				Gap:            ix.Gap,
				Fock:           ix.Fock,
				Line:           ix.Line,
				Message:        l.Message,
			}
		}
		doc.Groups[i] = GroupEntry{Bond: names.Bond(g.Bond), Interactions: entries}
	}
	return doc
}

// WriteYAML encodes doc as YAML.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// Stem returns the file name of path without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Paths names the artifacts derived from one input report.
type Paths struct {
	Text   string
	Block  string
	Export string
}

// IsArtifact reports whether path has the extension of a file this package
// writes, so it is never read back as a report.
func IsArtifact(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case TextExt, BlockExt, "." + string(types.ExportYAML), "." + string(types.ExportJSON):
		return true
	}
	return false
}

// List returns the paths p will write, skipping the unused ones.
func (p Paths) List() []string {
	var out []string
	for _, s := range []string{p.Text, p.Block, p.Export} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PathsFor places the artifacts of input in outDir, or next to input when
// outDir is empty.
func PathsFor(input, outDir string, format types.ExportFormat) Paths {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Join(dir, Stem(input))
	p := Paths{Text: base + TextExt, Block: base + BlockExt}
	if format != types.ExportNone {
		p.Export = base + "." + string(format)
	}
	return p
}

// WriteFiles writes the listing, and optionally the block and the structured
// export, for one analyzed report.
func WriteFiles(p Paths, r types.Report, block *section.Block, names relabel.Map, format types.ExportFormat) error {
	if err := writeFile(p.Text, func(w io.Writer) error { return WriteText(w, r) }); err != nil {
		return err
	}
	if block != nil {
		if err := writeFile(p.Block, func(w io.Writer) error {
			_, err := io.WriteString(w, block.String())
			return err
		}); err != nil {
			return err
		}
	}
	switch format {
	case types.ExportYAML:
		return writeFile(p.Export, func(w io.Writer) error { return WriteYAML(w, NewDocument(r, names)) })
	case types.ExportJSON:
		return writeFile(p.Export, func(w io.Writer) error { return WriteJSON(w, NewDocument(r, names)) })
	case types.ExportNone:
		return nil
	}
	return fmt.Errorf("unsupported export format %q: use yaml or json", format)
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
