// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OrbitalKind is the NBO orbital type label as printed in the report.
type OrbitalKind string

const (
	OrbitalBond           OrbitalKind = "BD"
	OrbitalAntibond       OrbitalKind = "BD*"
	OrbitalLonePair       OrbitalKind = "LP"
	OrbitalLonePairStar   OrbitalKind = "LP*"
	OrbitalCore           OrbitalKind = "CR"
	OrbitalRydberg        OrbitalKind = "RY"
	OrbitalRydbergStar    OrbitalKind = "RY*"
	OrbitalThreeCenter    OrbitalKind = "3C"
	OrbitalThreeCenterAnt OrbitalKind = "3C*"
)

// Orbital is one NBO orbital descriptor such as "BD*( 1) C 1- C 2".
type Orbital struct {
	// Kind is the orbital type (BD, BD*, LP, ...).
	Kind OrbitalKind `json:"kind" yaml:"kind"`

	// Serial is the number printed in parentheses after the kind, as text.
	Serial string `json:"serial" yaml:"serial"`

	// Atoms lists the atoms the orbital is localized on, in printed order.
	Atoms []AtomLabel `json:"atoms" yaml:"atoms"`
}

// Classification is the effect an interaction has on one analyzed bond.
type Classification string

const (
	Stabilizing Classification = "stabilizing"
	Unbonding   Classification = "unbonding"
	Irrelevant  Classification = "irrelevant"
)

// InteractionKind discriminates the row shapes the classifier understands.
type InteractionKind string

const (
	// InteractionLonePair is a lone-pair donor into an antibonding acceptor.
	InteractionLonePair InteractionKind = "lone_pair"

	// InteractionBond is a bonding-orbital donor into an antibonding acceptor.
	InteractionBond InteractionKind = "bond"
)

// Interaction is one parsed row of the second-order perturbation table.
type Interaction struct {
	Kind     InteractionKind `json:"kind" yaml:"kind"`
	Donor    Orbital         `json:"donor" yaml:"donor"`
	Acceptor Orbital         `json:"acceptor" yaml:"acceptor"`

	// Energy is the E(2) column exactly as printed.
	Energy string `json:"energy" yaml:"energy"`

	// EnergyValue is Energy parsed as kcal/mol.
	EnergyValue float64 `json:"energy_value" yaml:"energy_value"`

	// Gap and Fock hold the E(j)-E(i) and F(i,j) columns when the row has them.
	Gap  *float64 `json:"gap,omitempty" yaml:"gap,omitempty"`
	Fock *float64 `json:"fock,omitempty" yaml:"fock,omitempty"`

	// Line is the one-based line number within the extracted block.
	Line int `json:"line" yaml:"line"`
}

// ClassifiedLine is an interaction together with its effect on one bond.
type ClassifiedLine struct {
	Bond           Bond           `json:"bond" yaml:"bond"`
	Interaction    Interaction    `json:"interaction" yaml:"interaction"`
	Classification Classification `json:"classification" yaml:"classification"`

	// Message is the formatted, relabeled output line without a trailing newline.
	Message string `json:"message" yaml:"message"`
}

// BondGroup holds every classified line for one bond, in block order.
type BondGroup struct {
	Bond  Bond             `json:"bond" yaml:"bond"`
	Lines []ClassifiedLine `json:"lines" yaml:"lines"`
}

// Report is the full analysis of one NBO output file.
type Report struct {
	// Source is the path the report was read from, if any.
	Source string `json:"source" yaml:"source"`

	// SectionFound reports whether the perturbation table was located.
	SectionFound bool `json:"section_found" yaml:"section_found"`

	// Atoms is sorted by rendered label.
	Atoms []AtomLabel `json:"atoms" yaml:"atoms"`

	// Bonds is in discovery order.
	Bonds []Bond `json:"bonds" yaml:"bonds"`

	// Groups has one entry per bond, in the order of Bonds.
	Groups []BondGroup `json:"groups" yaml:"groups"`

	// Warnings collects soft failures such as unrecognized table rows.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Counts returns the number of classified lines per classification.
func (r Report) Counts() map[Classification]int {
	counts := make(map[Classification]int)
	for _, g := range r.Groups {
		for _, l := range g.Lines {
			counts[l.Classification]++
		}
	}
	return counts
}
