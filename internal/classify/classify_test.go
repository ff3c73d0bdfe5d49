// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nbo-sop/internal/nbo"
	"github.com/pdiddy/nbo-sop/internal/relabel"
	"github.com/pdiddy/nbo-sop/pkg/types"
)

func mustBond(t *testing.T, s string) types.Bond {
	t.Helper()
	b, err := types.ParseBond(s)
	require.NoError(t, err)
	return b
}

func mustPrepare(t *testing.T, line string) types.Interaction {
	t.Helper()
	ix, status, err := Prepare(line, 1)
	require.NoError(t, err)
	require.Equal(t, Parsed, status)
	return ix
}

const lpLine = "LP ( 1) O 4 180. BD*( 1) C 1- C 2 25.3"

func TestPrepare(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Status
		kind   types.InteractionKind
		hasErr bool
	}{
		{name: "lone pair", line: lpLine, want: Parsed, kind: types.InteractionLonePair},
		{name: "bond donor", line: "  3. BD ( 1) C 1- C 2  /  40. BD*( 1) C 2- C 3   1.20", want: Parsed, kind: types.InteractionBond},
		{name: "blank", line: "   \t", want: Skipped},
		{name: "empty", line: "", want: Skipped},
		{name: "rydberg acceptor", line: "  3. BD ( 1) C 1- C 2  /  90. RY*( 1) C 3   0.90", want: Skipped},
		{name: "core donor", line: "  1. CR ( 1) C 1  /  40. BD*( 1) C 2- C 3   0.60", want: Skipped},
		{name: "noise", line: " from unit  1 to unit  2", want: Unrecognized, hasErr: true},
		{name: "lone pair acceptor", line: "  3. BD ( 1) B 1- H 2  /  44. LP*( 1) B 3   4.10", want: Unrecognized, hasErr: true},
		{name: "antibond donor", line: "  40. BD*( 1) C 1- C 2  /  41. BD*( 1) C 2- C 3   4.10", want: Unrecognized, hasErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, status, err := Prepare(tt.line, 7)
			assert.Equal(t, tt.want, status)
			if tt.hasErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, nbo.ErrUnrecognized)
				assert.Contains(t, err.Error(), "line 7")
				return
			}
			require.NoError(t, err)
			if status == Parsed {
				assert.Equal(t, tt.kind, ix.Kind)
				assert.Equal(t, 7, ix.Line)
			}
		})
	}
}

func TestClassifyLonePair(t *testing.T) {
	tests := []struct {
		name string
		line string
		bond string
		want types.Classification
	}{
		{"acceptor is the bond", lpLine, "C1-C2", types.Unbonding},
		{"acceptor is the bond reversed", lpLine, "C2-C1", types.Unbonding},
		{"donor and one acceptor atom", lpLine, "O4-C1", types.Stabilizing},
		{"donor and second acceptor atom", lpLine, "C2-O4", types.Stabilizing},
		{"donor only", lpLine, "O4-H5", types.Irrelevant},
		{"one acceptor atom only", lpLine, "C1-C3", types.Irrelevant},
		{"unrelated", lpLine, "N7-H8", types.Irrelevant},
		// The donor sits on an atom of the acceptor antibond: both rules hold,
		// the stabilizing rule is checked first.
		{"stabilizing wins over unbonding", "LP ( 1) O 4 / 39. BD*( 1) O 4- C 1 12.0", "O4-C1", types.Stabilizing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := mustPrepare(t, tt.line)
			assert.Equal(t, tt.want, Classify(mustBond(t, tt.bond), ix))
		})
	}
}

func TestClassifyBondDonor(t *testing.T) {
	const line = "  3. BD ( 1) C 1- C 2  /  40. BD*( 1) C 3- O 4   1.20"
	tests := []struct {
		name string
		line string
		bond string
		want types.Classification
	}{
		{"donor is the bond", line, "C1-C2", types.Unbonding},
		{"donor is the bond reversed", line, "C2-C1", types.Unbonding},
		{"acceptor is the bond", line, "O4-C3", types.Unbonding},
		{"cross pair d1 a1", line, "C1-C3", types.Stabilizing},
		{"cross pair d1 a2", line, "O4-C1", types.Stabilizing},
		{"cross pair d2 a1", line, "C2-C3", types.Stabilizing},
		{"cross pair d2 a2", line, "C2-O4", types.Stabilizing},
		{"one atom shared", line, "C1-H9", types.Irrelevant},
		// Donor C1-C2 and acceptor C2-C1: donor equality applies before the
		// cross pair C1-C2.
		{"unbonding wins over cross pair", "  3. BD ( 1) C 1- C 2  /  40. BD*( 1) C 2- C 1   9.10", "C1-C2", types.Unbonding},
		{"acceptor equality with a shared atom", "  3. BD ( 1) C 1- C 2  /  40. BD*( 1) C 2- C 3   1.00", "C2-C3", types.Unbonding},
		{"shared atom cross pair", "  3. BD ( 1) C 1- C 2  /  40. BD*( 1) C 2- C 3   1.00", "C1-C3", types.Stabilizing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := mustPrepare(t, tt.line)
			assert.Equal(t, tt.want, Classify(mustBond(t, tt.bond), ix))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	ix := mustPrepare(t, lpLine)
	bonds := []types.Bond{mustBond(t, "C1-C2"), mustBond(t, "O4-C1"), mustBond(t, "N7-H8")}
	first := make([]types.Classification, len(bonds))
	for i, b := range bonds {
		first[i] = Classify(b, ix)
	}
	for i := len(bonds) - 1; i >= 0; i-- {
		assert.Equal(t, first[i], Classify(bonds[i], ix))
	}
}

func TestFormat(t *testing.T) {
	lp := mustPrepare(t, lpLine)
	bd := mustPrepare(t, "  3. BD ( 2) C 1- C 2  /  40. BD*( 1) C 2- C 3   1.20")

	tests := []struct {
		name  string
		bond  string
		ix    types.Interaction
		names relabel.Map
		want  string
	}{
		{
			name: "lone pair",
			bond: "C1-C2",
			ix:   lp,
			want: "LP O4 -> BD1 C1-C2 : 25.3, unbonding for C1-C2",
		},
		{
			name: "bond donor",
			bond: "C1-C2",
			ix:   bd,
			want: "BD2 C1-C2 -> BD1 C2-C3 : 1.20, unbonding for C1-C2",
		},
		{
			name:  "relabeled",
			bond:  "O4-C1",
			ix:    lp,
			names: relabel.Map{{Element: "O", Index: 4}: "Ow", {Element: "C", Index: 1}: "Ca"},
			want:  "LP Ow -> BD1 Ca-C2 : 25.3, stabilizing for Ow-Ca",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bond := mustBond(t, tt.bond)
			line, ok := Line(bond, tt.ix, tt.names)
			require.True(t, ok)
			assert.Equal(t, tt.want, line.Message)
		})
	}
}

func TestLineIrrelevant(t *testing.T) {
	ix := mustPrepare(t, lpLine)
	_, ok := Line(mustBond(t, "N7-H8"), ix, nil)
	assert.False(t, ok)
}
