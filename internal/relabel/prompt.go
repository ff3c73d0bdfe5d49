// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relabel

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/nbo-sop/pkg/types"
)

// Provider supplies the rename map for one report.
type Provider interface {
	RenameMap(source string, atoms []types.AtomLabel) (Map, error)
}

// Static returns the same map for every report, e.g. one loaded with
// LoadFile. Entries apply to any atom of the report, including atoms that
// only appear in lone pairs or acceptor orbitals.
type Static Map

// RenameMap implements Provider.
func (s Static) RenameMap(string, []types.AtomLabel) (Map, error) {
	m := make(Map, len(s))
	for a, name := range s {
		m[a] = name
	}
	return m, nil
}

// Prompter asks for a display name for each atom on a line-oriented terminal.
// Calls are serialized so reports analyzed in parallel do not interleave
// their questions.
type Prompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer

	// Defaults pre-fills answers; an empty reply keeps the default.
	Defaults Map

	// Confirm asks once per report whether to rename at all. A "no" leaves
	// that report's atoms unrenamed.
	Confirm bool
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// RenameMap implements Provider.
func (p *Prompter) RenameMap(source string, atoms []types.AtomLabel) (Map, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Confirm {
		q := "Would you like to rename atoms?"
		if source != "" {
			q = fmt.Sprintf("Would you like to rename atoms of %s?", source)
		}
		yes, err := p.ask(q)
		if err != nil || !yes {
			return nil, err
		}
	} else if source != "" {
		fmt.Fprintf(p.out, "Renaming atoms of %s\n", source)
	}
	m := make(Map, len(atoms))
	for i, a := range atoms {
		def := p.Defaults.Label(a)
		fmt.Fprintf(p.out, "%s : ", a)
		line, err := p.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading name for %s: %w", a, err)
		}
		name := capitalize(strings.TrimSpace(line))
		if name == "" {
			name = def
		}
		m[a] = name
		if err == io.EOF {
			fmt.Fprintln(p.out)
			// Input closed: the remaining atoms keep their defaults.
			for _, rest := range atoms[i+1:] {
				m[rest] = p.Defaults.Label(rest)
			}
			break
		}
	}
	return m, nil
}

// capitalize upper-cases the first rune and lower-cases the rest ("cA" -> "Ca").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}

// ask reports whether the user answered yes to question.
func (p *Prompter) ask(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s (Y/N): ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}
