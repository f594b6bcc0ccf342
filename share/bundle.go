//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package share implements the data-owner side of spec.md §4.G: table
// flattening, RSS splitting into per-party bundles, and the
// SendTableShares delivery RPC that a computing node serves.
package share

import (
	"fmt"

	"github.com/rss3p/mpcsql/rss"
	"github.com/rss3p/mpcsql/schema"
)

// Bundle is the party-bundle of spec.md §4.G step 3: one party's two
// of the three share components for every cell of a table, plus the
// schema needed to interpret bit offsets.
type Bundle struct {
	PartyID int
	Schema  schema.Schema
	// Cells[r][c] is column c's per-bit Pair view of row r, LSB
	// first, for this party.
	Cells [][]rss.Word
}

// Lookup returns the Pair this bundle holds for (row, column, bit),
// the lookup cmd/node's gatherInputs performs for every
// circuit.InputRef of a query.
func (b *Bundle) Lookup(row, column, bit int) (rss.Pair, error) {
	if row < 0 || row >= len(b.Cells) {
		return rss.Pair{}, fmt.Errorf("share: row %d out of range (0..%d)", row, len(b.Cells)-1)
	}
	cols := b.Cells[row]
	if column < 0 || column >= len(cols) {
		return rss.Pair{}, fmt.Errorf("share: column %d out of range (0..%d)", column, len(cols)-1)
	}
	word := cols[column]
	if bit < 0 || bit >= len(word) {
		return rss.Pair{}, fmt.Errorf("share: bit %d out of range for column %d (width %d)",
			bit, column, len(word))
	}
	return word[bit], nil
}
