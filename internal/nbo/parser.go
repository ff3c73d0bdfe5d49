// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nbo parses rows of the NBO second-order perturbation table.
//
// A row names a donor orbital, an acceptor orbital and the E(2) energy,
// optionally followed by the E(j)-E(i) and F(i,j) columns:
//
//	12. LP ( 1) O  4          /  39. BD*( 1) C  1- C  2    25.30    0.70    0.120
//
// Rows are tokenized first and then parsed into orbitals, so an unexpected
// shape is reported as an error rather than silently mis-captured.
package nbo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/nbo-sop/pkg/types"
)

// ErrUnrecognized is returned for rows that do not have the donor, acceptor,
// energy shape.
var ErrUnrecognized = errors.New("unrecognized table row")

// Row is one parsed table row.
type Row struct {
	// Index is the donor NBO number ("12") when the row starts with one.
	Index string

	Donor    types.Orbital
	Acceptor types.Orbital

	// Energy is the E(2) column as printed; EnergyValue is its value.
	Energy      string
	EnergyValue float64

	Gap  *float64
	Fock *float64
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (Token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) accept(kind TokenKind) (Token, bool) {
	t, ok := p.peek()
	if !ok || t.Kind != kind {
		return Token{}, false
	}
	p.pos++
	return t, true
}

func (p *parser) expect(kind TokenKind, what string) (Token, error) {
	t, ok := p.peek()
	if !ok {
		return Token{}, fmt.Errorf("%w: expected %s, got end of line", ErrUnrecognized, what)
	}
	if t.Kind != kind {
		return Token{}, fmt.Errorf("%w: expected %s, got %s", ErrUnrecognized, what, t)
	}
	p.pos++
	return t, nil
}

// skipIndex consumes an NBO number such as "12." and returns it without the dot.
func (p *parser) skipIndex() string {
	t, ok := p.peek()
	if !ok || t.Kind != TokenNumber || !strings.HasSuffix(t.Text, ".") {
		return ""
	}
	p.pos++
	return strings.TrimSuffix(t.Text, ".")
}

// orbital parses KIND[*] ( N ) ATOM [- ATOM ...].
func (p *parser) orbital() (types.Orbital, error) {
	var o types.Orbital
	kind, err := p.expect(TokenWord, "orbital kind")
	if err != nil {
		return o, err
	}
	o.Kind = types.OrbitalKind(kind.Text)
	if _, ok := p.accept(TokenStar); ok {
		o.Kind += "*"
	}
	if _, err := p.expect(TokenLParen, "'('"); err != nil {
		return o, err
	}
	serial, err := p.expect(TokenNumber, "orbital serial")
	if err != nil {
		return o, err
	}
	o.Serial = serial.Text
	if _, err := p.expect(TokenRParen, "')'"); err != nil {
		return o, err
	}

	for {
		a, err := p.atom()
		if err != nil {
			return o, err
		}
		o.Atoms = append(o.Atoms, a)
		if _, ok := p.accept(TokenDash); !ok {
			return o, nil
		}
	}
}

func (p *parser) atom() (types.AtomLabel, error) {
	el, err := p.expect(TokenWord, "element")
	if err != nil {
		return types.AtomLabel{}, err
	}
	idx, err := p.expect(TokenNumber, "atom index")
	if err != nil {
		return types.AtomLabel{}, err
	}
	n, err := strconv.Atoi(idx.Text)
	if err != nil {
		return types.AtomLabel{}, fmt.Errorf("%w: atom index %q", ErrUnrecognized, idx.Text)
	}
	return types.AtomLabel{Element: el.Text, Index: n}, nil
}

func (p *parser) float() (string, float64, bool) {
	t, ok := p.accept(TokenNumber)
	if !ok {
		return "", 0, false
	}
	v, err := strconv.ParseFloat(t.Text, 64)
	if err != nil {
		return "", 0, false
	}
	return t.Text, v, true
}

// ParseRow parses a full interaction row.
func ParseRow(line string) (Row, error) {
	p := &parser{toks: Tokenize(line)}
	var row Row

	row.Index = p.skipIndex()
	donor, err := p.orbital()
	if err != nil {
		return row, fmt.Errorf("donor: %w", err)
	}
	row.Donor = donor

	p.accept(TokenSlash)
	p.skipIndex()
	acceptor, err := p.orbital()
	if err != nil {
		return row, fmt.Errorf("acceptor: %w", err)
	}
	row.Acceptor = acceptor

	text, v, ok := p.float()
	if !ok {
		return row, fmt.Errorf("%w: missing E(2) energy", ErrUnrecognized)
	}
	row.Energy, row.EnergyValue = text, v
	if _, gap, ok := p.float(); ok {
		row.Gap = &gap
		if _, fock, ok := p.float(); ok {
			row.Fock = &fock
		}
	}
	if t, ok := p.next(); ok {
		return row, fmt.Errorf("%w: trailing %s", ErrUnrecognized, t)
	}
	return row, nil
}

// ParseHeader parses the leading "N. BD ( k) A- B" part of a row and
// returns the donor bonding orbital. Rows whose first orbital is not a
// two-center BD preceded by an NBO number report ok=false.
func ParseHeader(line string) (types.Orbital, bool) {
	p := &parser{toks: Tokenize(line)}
	if p.skipIndex() == "" {
		return types.Orbital{}, false
	}
	o, err := p.orbital()
	if err != nil || o.Kind != types.OrbitalBond || len(o.Atoms) != 2 {
		return types.Orbital{}, false
	}
	return o, true
}
