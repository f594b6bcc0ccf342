//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"fmt"
	"io"

	"github.com/rss3p/mpcsql/rss"
	"github.com/rss3p/mpcsql/schema"
)

// Owner is one data owner, identified the way DataOwnerInfo names it
// on the wire (spec.md §6).
type Owner struct {
	OwnerID   string
	OwnerName string
}

// FlattenRow packs one row's typed cell values into the canonical
// row-major/column-major/LSB-first bitstring spec.md §4.G step 1
// requires, using s to size each column. values must have one entry
// per column, each holding that column's value (Boolean 0/1,
// UnsignedInt its magnitude); String/Float columns are not supported
// by this helper — a caller with such data packs its own bits.
func FlattenRow(s schema.Schema, values []uint64) ([]bool, error) {
	if len(values) != len(s.Columns) {
		return nil, fmt.Errorf("share: row has %d values, schema has %d columns",
			len(values), len(s.Columns))
	}
	bits := make([]bool, s.RowBits())
	offset := 0
	for c, col := range s.Columns {
		width := col.Type.BitWidth()
		v := values[c]
		for k := 0; k < width; k++ {
			bits[offset+k] = (v>>uint(k))&1 != 0
		}
		offset += width
	}
	return bits, nil
}

// Split implements spec.md §4.G steps 1-3: rows is the table already
// flattened to one canonical bitstring per row (FlattenRow builds
// one); Split draws fresh RSS shares of every bit and returns the
// three party bundles.
func (o Owner) Split(s schema.Schema, rows [][]bool, rng io.Reader) ([3]*Bundle, error) {
	if err := s.Validate(); err != nil {
		return [3]*Bundle{}, fmt.Errorf("share: %w", err)
	}
	if len(rows) != s.RowCount {
		return [3]*Bundle{}, fmt.Errorf("share: got %d rows, schema declares %d", len(rows), s.RowCount)
	}

	var bundles [3]*Bundle
	for p := 0; p < 3; p++ {
		bundles[p] = &Bundle{
			PartyID: p,
			Schema:  s,
			Cells:   make([][]rss.Word, len(rows)),
		}
	}

	for r, row := range rows {
		if len(row) != s.RowBits() {
			return [3]*Bundle{}, fmt.Errorf("share: row %d has %d bits, schema row width is %d",
				r, len(row), s.RowBits())
		}
		for p := range bundles {
			bundles[p].Cells[r] = make([]rss.Word, len(s.Columns))
		}

		offset := 0
		for c, col := range s.Columns {
			width := col.Type.BitWidth()
			cellBits := row[offset : offset+width]
			offset += width

			words, err := rss.ShareWord(cellBits, rng)
			if err != nil {
				return [3]*Bundle{}, fmt.Errorf("share: row %d column %q: %w", r, col.Name, err)
			}
			for p := range bundles {
				bundles[p].Cells[r][c] = words[p]
			}
		}
	}

	return bundles, nil
}
