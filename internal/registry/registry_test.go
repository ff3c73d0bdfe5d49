// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/nbo-sop/pkg/types"
)

func labels(as []types.AtomLabel) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.String()
	}
	return out
}

func bondStrings(bs []types.Bond) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.String()
	}
	return out
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantAtoms []string
		wantBonds []string
	}{
		{
			name:      "two header lines",
			lines:     []string{"3. BD ( 1) C 1- C 2", "4. BD ( 1) C 2- C 3"},
			wantAtoms: []string{"C1", "C2", "C3"},
			wantBonds: []string{"C1-C2", "C2-C3"},
		},
		{
			name: "reversed and repeated pairs are deduplicated",
			lines: []string{
				"   3. BD ( 1) C 1- C 2   /  40. BD*( 1) C 2- H 8   1.20",
				"   4. BD ( 2) C 1- C 2   /  41. BD*( 1) C 2- H 8   2.20",
				"   5. BD ( 1) C 2- C 1   /  41. BD*( 1) C 2- H 8   2.20",
			},
			wantAtoms: []string{"C1", "C2"},
			wantBonds: []string{"C1-C2"},
		},
		{
			name: "lone pair and antibond-only lines add nothing",
			lines: []string{
				"  12. LP ( 1) O 4   /  39. BD*( 1) C 1- C 2   25.30",
				"  40. BD*( 1) C 2- C 3",
				"",
			},
		},
		{
			name: "atoms sort lexicographically, bonds keep discovery order",
			lines: []string{
				"1. BD ( 1) C 10- O 2",
				"2. BD ( 1) C 2- C 10",
				"3. BD ( 1) C 1- C 2",
			},
			wantAtoms: []string{"C1", "C10", "C2", "O2"},
			wantBonds: []string{"C10-O2", "C2-C10", "C1-C2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Build(tt.lines)
			atoms := labels(r.Atoms())
			bonds := bondStrings(r.Bonds())
			if tt.wantAtoms == nil {
				assert.Empty(t, atoms)
			} else {
				assert.Equal(t, tt.wantAtoms, atoms)
			}
			if tt.wantBonds == nil {
				assert.Empty(t, bonds)
			} else {
				assert.Equal(t, tt.wantBonds, bonds)
			}
		})
	}
}

func TestBondsReturnsCopy(t *testing.T) {
	r := Build([]string{"3. BD ( 1) C 1- C 2"})
	bs := r.Bonds()
	bs[0] = types.Bond{}
	assert.Equal(t, "C1-C2", r.Bonds()[0].String())
}
