// Package assets implements the archive-path-keyed binary blob
// registry, and the deterministic rename/collision-handling pass that
// runs over the resource manifest on unpack and its inverse on pack.
package assets

import (
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/paconv/paconv/internal/pathcodec"
)

// Entry is one binary asset tracked by AssetTable.
type Entry struct {
	NormalizedPath string
	DisplayName    string
	Data           []byte
	Fingerprint    uint64
}

// Table maps normalized archive path to blob bytes plus a display name.
type Table struct {
	entries map[string]*Entry
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Put registers or replaces an asset at path (normalized internally).
// Fingerprint is the asset's content hash, used downstream to spot
// byte-identical duplicates without comparing full payloads.
func (t *Table) Put(path string, data []byte, displayName string) {
	np := pathcodec.Normalize(path)
	t.entries[np] = &Entry{
		NormalizedPath: np,
		DisplayName:    displayName,
		Data:           data,
		Fingerprint:    xxhash.Sum64(data),
	}
}

// Get returns the asset at path (normalized internally), if any.
func (t *Table) Get(path string) (*Entry, bool) {
	e, ok := t.entries[pathcodec.Normalize(path)]
	return e, ok
}

// Delete removes the asset at path, if present.
func (t *Table) Delete(path string) {
	delete(t.entries, pathcodec.Normalize(path))
}

// Len reports how many assets are tracked.
func (t *Table) Len() int {
	return len(t.entries)
}

// SortedPaths returns every normalized path, sorted, for deterministic
// iteration in writers and tests.
func (t *Table) SortedPaths() []string {
	paths := make([]string, 0, len(t.entries))
	for p := range t.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// All returns a shallow copy of the path->entry mapping.
func (t *Table) All() map[string]*Entry {
	out := make(map[string]*Entry, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}
