// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the nbo-sop pipeline.
package types

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// AtomLabel identifies one atom instance in a molecule by element symbol and
// the positional index NBO assigns to it (e.g. "C" 1, printed as "C1").
type AtomLabel struct {
	// Element is the element symbol as printed in the report (e.g. "C", "Cl").
	Element string `json:"element" yaml:"element"`

	// Index is the one-based atom number.
	Index int `json:"index" yaml:"index"`
}

// String renders the label as element followed by index with no separator.
func (a AtomLabel) String() string {
	return a.Element + strconv.Itoa(a.Index)
}

// ParseAtomLabel parses a rendered label such as "C1" or "Cl12". Surrounding
// whitespace and whitespace between element and index are tolerated.
func ParseAtomLabel(s string) (AtomLabel, error) {
	s = strings.Join(strings.Fields(s), "")
	i := 0
	for i < len(s) && unicode.IsLetter(rune(s[i])) {
		i++
	}
	if i == 0 || i == len(s) {
		return AtomLabel{}, fmt.Errorf("invalid atom label %q", s)
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil || n < 0 {
		return AtomLabel{}, fmt.Errorf("invalid atom label %q: bad index", s)
	}
	return AtomLabel{Element: s[:i], Index: n}, nil
}

// Bond is an unordered pair of two atoms. Two bonds are equal when they hold
// the same atoms regardless of order; A and B keep discovery order for display.
type Bond struct {
	A AtomLabel `json:"a" yaml:"a"`
	B AtomLabel `json:"b" yaml:"b"`
}

// NewBond returns the bond between a and b in the given order.
func NewBond(a, b AtomLabel) Bond {
	return Bond{A: a, B: b}
}

// Has reports whether atom is one of the bond's two members.
func (b Bond) Has(atom AtomLabel) bool {
	return b.A == atom || b.B == atom
}

// Equal reports whether b and o hold the same pair of atoms in either order.
func (b Bond) Equal(o Bond) bool {
	return (b.A == o.A && b.B == o.B) || (b.A == o.B && b.B == o.A)
}

// String renders the bond as "A-B".
func (b Bond) String() string {
	return b.A.String() + "-" + b.B.String()
}

// ParseBond parses "C1-C2" into a Bond.
func ParseBond(s string) (Bond, error) {
	left, right, ok := strings.Cut(s, "-")
	if !ok {
		return Bond{}, fmt.Errorf("invalid bond %q: want A-B", s)
	}
	a, err := ParseAtomLabel(left)
	if err != nil {
		return Bond{}, fmt.Errorf("invalid bond %q: %w", s, err)
	}
	b, err := ParseAtomLabel(right)
	if err != nil {
		return Bond{}, fmt.Errorf("invalid bond %q: %w", s, err)
	}
	if a == b {
		return Bond{}, fmt.Errorf("invalid bond %q: atoms must differ", s)
	}
	return Bond{A: a, B: b}, nil
}
