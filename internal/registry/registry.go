// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry derives the atoms and bonds of a molecule from the
// donor bonding orbitals listed in a perturbation table block.
package registry

import (
	"sort"

	"github.com/pdiddy/nbo-sop/internal/nbo"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

// Registry holds the deduplicated atoms and bonds of one report.
type Registry struct {
	atoms []types.AtomLabel
	seen  map[types.AtomLabel]bool
	bonds []types.Bond
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{seen: make(map[types.AtomLabel]bool)}
}

// Build scans every line and registers each leading "N. BD ( k) A- B" orbital.
func Build(lines []string) *Registry {
	r := New()
	for _, line := range lines {
		if o, ok := nbo.ParseHeader(line); ok {
			r.Add(o.Atoms[0], o.Atoms[1])
		}
	}
	return r
}

// Add registers both atoms and the bond between them. A bond already present
// in either member order is not added again. A self pair is ignored.
func (r *Registry) Add(a, b types.AtomLabel) {
	if a == b {
		return
	}
	for _, x := range []types.AtomLabel{a, b} {
		if !r.seen[x] {
			r.seen[x] = true
			r.atoms = append(r.atoms, x)
		}
	}
	nb := types.NewBond(a, b)
	for _, existing := range r.bonds {
		if existing.Equal(nb) {
			return
		}
	}
	r.bonds = append(r.bonds, nb)
}

// Atoms returns the atoms sorted by rendered label ("C1" < "C10" < "C2").
func (r *Registry) Atoms() []types.AtomLabel {
	out := make([]types.AtomLabel, len(r.atoms))
	copy(out, r.atoms)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Bonds returns the bonds in discovery order.
func (r *Registry) Bonds() []types.Bond {
	out := make([]types.Bond, len(r.bonds))
	copy(out, r.bonds)
	return out
}
