//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sql

import (
	"fmt"
	"sort"

	"github.com/rss3p/mpcsql/circuit"
)

// Manifest is the compiled query's input manifest (spec.md §4.F):
// the ordered list of (table, row, column, bit) references a node
// must resolve against its local share table before it can evaluate
// the circuit, one entry per Input wire. It is derived from, not
// stored alongside, circuit.Circuit.Inputs: Manifest exists so the
// share-distribution layer (package share) can iterate the input set
// in a fixed order without importing circuit's map representation.
type Manifest struct {
	Entries []ManifestEntry
}

// ManifestEntry binds one Input wire to the share cell it draws from.
type ManifestEntry struct {
	Wire circuit.Wire
	Ref  circuit.InputRef
}

// BuildManifest derives the manifest of c, with entries sorted by
// wire id so that two nodes given the same circuit always iterate the
// manifest in the same order.
func BuildManifest(c *circuit.Circuit) *Manifest {
	entries := make([]ManifestEntry, 0, len(c.Inputs))
	for w, ref := range c.Inputs {
		entries = append(entries, ManifestEntry{Wire: w, Ref: ref})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Wire < entries[j].Wire })
	return &Manifest{Entries: entries}
}

func (m *Manifest) String() string {
	return fmt.Sprintf("manifest(%d entries)", len(m.Entries))
}

// TableIDs returns the distinct table ids the manifest draws from, in
// ascending order.
func (m *Manifest) TableIDs() []uint64 {
	seen := make(map[uint64]bool)
	for _, e := range m.Entries {
		seen[e.Ref.TableID] = true
	}
	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
