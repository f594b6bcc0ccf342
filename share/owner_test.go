//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rss3p/mpcsql/rss"
	"github.com/rss3p/mpcsql/schema"
)

func testSchema() schema.Schema {
	return schema.Schema{
		TableName: "employees",
		TableID:   7,
		RowCount:  3,
		Columns: []schema.Column{
			{Name: "dept", Type: schema.UnsignedInt(2)},
			{Name: "salary", Type: schema.UnsignedInt(6)},
		},
	}
}

func TestOwnerSplitReconstructsOriginalValues(t *testing.T) {
	s := testSchema()
	values := [][]uint64{
		{1, 42},
		{0, 9},
		{3, 63},
	}
	rows := make([][]bool, len(values))
	for i, v := range values {
		bits, err := FlattenRow(s, v)
		require.NoError(t, err)
		rows[i] = bits
	}

	owner := Owner{OwnerID: "o1", OwnerName: "Acme"}
	bundles, err := owner.Split(s, rows, rand.Reader)
	require.NoError(t, err)

	for r := range rows {
		for c, col := range s.Columns {
			width := col.Type.BitWidth()
			var got uint64
			for k := 0; k < width; k++ {
				p0, err := bundles[0].Lookup(r, c, k)
				require.NoError(t, err)
				p1, err := bundles[1].Lookup(r, c, k)
				require.NoError(t, err)
				bit, err := rss.ReconstructPairs(0, p0, 1, p1)
				require.NoError(t, err)
				if bit {
					got |= 1 << uint(k)
				}
			}
			assert.Equal(t, values[r][c], got, "row %d col %d", r, c)
		}
	}
}

func TestOwnerSplitRejectsWrongRowCount(t *testing.T) {
	s := testSchema()
	owner := Owner{OwnerID: "o1"}
	_, err := owner.Split(s, [][]bool{{}}, rand.Reader)
	assert.Error(t, err)
}

func TestFlattenRowRejectsWrongColumnCount(t *testing.T) {
	s := testSchema()
	_, err := FlattenRow(s, []uint64{1})
	assert.Error(t, err)
}
