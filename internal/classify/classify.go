// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a donor-acceptor interaction reinforces
// or weakens a given bond.
//
// Lone-pair donors (LP -> BD*) stabilize a bond when the lone-pair atom and
// at least one acceptor atom belong to it, and unbond it when the acceptor
// antibond is the bond itself. Bond donors (BD -> BD*) unbond a bond that is
// exactly the donor or the acceptor orbital, and stabilize it when one donor
// atom and one acceptor atom together make up the bond. The first matching
// rule wins.
package classify

import (
	"fmt"
	"strings"

	"github.com/pdiddy/nbo-sop/internal/nbo"
	"github.com/pdiddy/nbo-sop/internal/relabel"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

// Status reports what Prepare made of a block line.
type Status int

const (
	// Parsed means the line is an interaction the grammars understand.
	Parsed Status = iota
	// Skipped means the line is blank or involves Rydberg or core orbitals.
	Skipped
	// Unrecognized means the line fits neither grammar.
	Unrecognized
)

// Skip reports whether a block line is outside the valence donor/acceptor
// model: blank, or mentioning a Rydberg ("RY") or core ("CR") orbital.
func Skip(line string) bool {
	return strings.TrimSpace(line) == "" ||
		strings.Contains(line, "RY") ||
		strings.Contains(line, "CR")
}

// Prepare filters and parses one block line. lineNo is stored on the
// interaction for diagnostics. The error is set only for Unrecognized.
func Prepare(line string, lineNo int) (types.Interaction, Status, error) {
	if Skip(line) {
		return types.Interaction{}, Skipped, nil
	}
	row, err := nbo.ParseRow(line)
	if err != nil {
		return types.Interaction{}, Unrecognized, fmt.Errorf("line %d %q: %w", lineNo, strings.TrimSpace(line), err)
	}

	ix := types.Interaction{
		Donor:       row.Donor,
		Acceptor:    row.Acceptor,
		Energy:      row.Energy,
		EnergyValue: row.EnergyValue,
		Gap:         row.Gap,
		Fock:        row.Fock,
		Line:        lineNo,
	}
	if row.Acceptor.Kind != types.OrbitalAntibond || len(row.Acceptor.Atoms) != 2 {
		return types.Interaction{}, Unrecognized,
			fmt.Errorf("line %d %q: %w: acceptor %s is not a two-center antibond",
				lineNo, strings.TrimSpace(line), nbo.ErrUnrecognized, row.Acceptor.Kind)
	}
	switch {
	case row.Donor.Kind == types.OrbitalLonePair && len(row.Donor.Atoms) == 1:
		ix.Kind = types.InteractionLonePair
	case row.Donor.Kind == types.OrbitalBond && len(row.Donor.Atoms) == 2:
		ix.Kind = types.InteractionBond
	default:
		return types.Interaction{}, Unrecognized,
			fmt.Errorf("line %d %q: %w: donor %s with %d atoms",
				lineNo, strings.TrimSpace(line), nbo.ErrUnrecognized, row.Donor.Kind, len(row.Donor.Atoms))
	}
	return ix, Parsed, nil
}

// Classify returns the effect of ix on bond. It depends on nothing else.
func Classify(bond types.Bond, ix types.Interaction) types.Classification {
	switch ix.Kind {
	case types.InteractionLonePair:
		return lonePair(bond, ix.Donor.Atoms[0], ix.Acceptor.Atoms[0], ix.Acceptor.Atoms[1])
	case types.InteractionBond:
		return bondDonor(bond,
			ix.Donor.Atoms[0], ix.Donor.Atoms[1],
			ix.Acceptor.Atoms[0], ix.Acceptor.Atoms[1])
	}
	return types.Irrelevant
}

func lonePair(b types.Bond, lp, a1, a2 types.AtomLabel) types.Classification {
	if b.Has(lp) && (b.Has(a1) || b.Has(a2)) {
		return types.Stabilizing
	}
	if b.Has(a1) && b.Has(a2) {
		return types.Unbonding
	}
	return types.Irrelevant
}

// bondDonor compares unordered pairs with Bond.Equal. A pair of two equal
// atoms, as in a donor and acceptor sharing an atom, never equals a bond.
func bondDonor(b types.Bond, d1, d2, a1, a2 types.AtomLabel) types.Classification {
	pair := types.NewBond
	if b.Equal(pair(d1, d2)) || b.Equal(pair(a1, a2)) {
		return types.Unbonding
	}
	for _, p := range []types.Bond{pair(d1, a1), pair(d1, a2), pair(d2, a1), pair(d2, a2)} {
		if b.Equal(p) {
			return types.Stabilizing
		}
	}
	return types.Irrelevant
}

// Format renders a classified interaction, labels passed through names:
//
//	LP O4 -> BD1 C1-C2 : 25.3, unbonding for C1-C2
//	BD1 C1-C2 -> BD1 C2-C3 : 1.20, unbonding for C1-C2
func Format(bond types.Bond, ix types.Interaction, c types.Classification, names relabel.Map) string {
	acc := fmt.Sprintf("BD%s %s-%s", ix.Acceptor.Serial,
		names.Label(ix.Acceptor.Atoms[0]), names.Label(ix.Acceptor.Atoms[1]))

	var donor string
	switch ix.Kind {
	case types.InteractionLonePair:
		donor = "LP " + names.Label(ix.Donor.Atoms[0])
	default:
		donor = fmt.Sprintf("BD%s %s-%s", ix.Donor.Serial,
			names.Label(ix.Donor.Atoms[0]), names.Label(ix.Donor.Atoms[1]))
	}
	return fmt.Sprintf("%s -> %s : %s, %s for %s", donor, acc, ix.Energy, c, names.Bond(bond))
}

// Line classifies ix against bond and formats the result. ok is false for
// irrelevant interactions, which produce no output.
func Line(bond types.Bond, ix types.Interaction, names relabel.Map) (types.ClassifiedLine, bool) {
	c := Classify(bond, ix)
	if c == types.Irrelevant {
		return types.ClassifiedLine{}, false
	}
	return types.ClassifiedLine{
		Bond:           bond,
		Interaction:    ix,
		Classification: c,
		Message:        Format(bond, ix, c, names),
	}, true
}
