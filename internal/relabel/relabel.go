// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relabel maps raw NBO atom labels to display names. Lookups are by
// atom identity (element and index), so renaming "C1" never touches "C10".
package relabel

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nbo-sop/pkg/types"
)

// Map is a rename mapping from atom to display string. A nil or empty Map is
// the identity.
type Map map[types.AtomLabel]string

// Identity returns a Map that sends every atom to its own label.
func Identity(atoms []types.AtomLabel) Map {
	m := make(Map, len(atoms))
	for _, a := range atoms {
		m[a] = a.String()
	}
	return m
}

// Label returns the display name for a, falling back to the raw label.
func (m Map) Label(a types.AtomLabel) string {
	if s, ok := m[a]; ok && s != "" {
		return s
	}
	return a.String()
}

// Bond renders b as "A-B" through the map.
func (m Map) Bond(b types.Bond) string {
	return m.Label(b.A) + "-" + m.Label(b.B)
}

// Keys returns the mapped atoms sorted by rendered label.
func (m Map) Keys() []types.AtomLabel {
	keys := make([]types.AtomLabel, 0, len(m))
	for a := range m {
		keys = append(keys, a)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Parse builds a Map from rendered labels.
func Parse(raw map[string]string) (Map, error) {
	m := make(Map, len(raw))
	for k, v := range raw {
		a, err := types.ParseAtomLabel(k)
		if err != nil {
			return nil, fmt.Errorf("rename key: %w", err)
		}
		m[a] = v
	}
	return m, nil
}

// LoadFile reads a YAML document of "label: display" pairs, e.g.
//
//	C1: Ca
//	O4: Ob
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rename file %s: %w", path, err)
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing rename file %s: %w", path, err)
	}
	return Parse(raw)
}

// SaveFile writes m as YAML, keys in label order.
func SaveFile(path string, m Map) error {
	var node yaml.Node
	node.Kind = yaml.MappingNode
	for _, a := range m.Keys() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: a.String()},
			&yaml.Node{Kind: yaml.ScalarNode, Value: m[a]},
		)
	}
	data, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("marshaling rename map: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
