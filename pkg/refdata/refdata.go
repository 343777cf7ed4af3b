// Package refdata provides the read-only province/district/commune reference
// tree and the cascading selector used by the shipping form. The tree is
// loaded once from a static JSON document and never mutated afterwards.
package refdata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Ward is the leaf level of the reference tree. The upstream document calls
// the level "wards"; the selector exposes it as the commune level.
type Ward struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// District is the middle level of the reference tree.
type District struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Wards []Ward `json:"wards"`
}

// Province is the top level of the reference tree.
type Province struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Districts []District `json:"districts"`
}

// Tree is the full three-level reference document.
type Tree struct {
	Provinces []Province `json:"provinces"`
}

// Load decodes a reference document from r.
func Load(r io.Reader) (*Tree, error) {
	var tree Tree
	dec := json.NewDecoder(r)
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode reference data: %w", err)
	}
	return &tree, nil
}

// LoadFile reads and decodes a reference document from disk.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference data: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// FindProvince returns the province with the given code.
func (t *Tree) FindProvince(code string) (Province, bool) {
	for _, p := range t.Provinces {
		if p.Code == code {
			return p, true
		}
	}
	return Province{}, false
}

// matchName implements the per-level text filter: case-insensitive substring
// match on name. An empty query matches everything.
func matchName(name, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}
