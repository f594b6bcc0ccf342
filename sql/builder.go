//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sql

import (
	"fmt"

	"github.com/rss3p/mpcsql/circuit"
	"github.com/rss3p/mpcsql/errs"
	"github.com/rss3p/mpcsql/schema"
)

// Builder lowers a logical Plan to a boolean circuit.Circuit, one
// gate at a time. Input wires are allocated only for the columns the
// plan references, one column at a time (the filter column, then the
// aggregated column), each column's wires ordered by row and LSB first
// within a row; columns the plan does not reference get no wires, and
// a column that is both filtered and aggregated is allocated twice.
// Two builders given the same
// plan and schema always allocate identical wire ids in identical
// order: the builder never ranges over a map to decide gate order.
type Builder struct {
	tableID  uint64
	schema   schema.Schema
	nextWire circuit.Wire
	gates    []circuit.Gate
	inputs   map[circuit.Wire]circuit.InputRef
}

// Build compiles plan, which must scan the table identified by
// tableID, into a circuit. The returned circuit has already passed
// circuit.Circuit.Validate.
func Build(plan Plan, tableID uint64) (*circuit.Circuit, error) {
	agg, ok := plan.(*Aggregate)
	if !ok {
		return nil, fmt.Errorf("sql: %w: plan root is not an Aggregate", errs.ErrUnsupportedSQL)
	}

	var filter *Filter
	scanPlan := agg.Input
	if f, ok := scanPlan.(*Filter); ok {
		filter = f
		scanPlan = f.Input
	}
	scan, ok := scanPlan.(*Scan)
	if !ok {
		return nil, fmt.Errorf("sql: %w: plan is not Scan or Filter(Scan)", errs.ErrUnsupportedSQL)
	}

	b := &Builder{
		tableID: tableID,
		schema:  scan.Schema,
		inputs:  make(map[circuit.Wire]circuit.InputRef),
	}

	var matchBits []circuit.Wire
	if filter != nil {
		m, err := b.buildFilter(filter)
		if err != nil {
			return nil, err
		}
		matchBits = m
	}

	output, err := b.buildAggregate(agg, matchBits)
	if err != nil {
		return nil, err
	}

	c := &circuit.Circuit{
		NumWires: int(b.nextWire),
		Gates:    b.gates,
		Inputs:   b.inputs,
		Outputs:  []circuit.Wire{output},
	}
	for _, g := range c.Gates {
		c.Stats[g.Op]++
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// allocateColumn allocates fresh Input wires for every row of column,
// LSB first, row-major (spec.md §4.F.3). Row r's bits occupy
// result[r][0:width], result[r][0] the least significant.
func (b *Builder) allocateColumn(column string) ([][]circuit.Wire, schema.Column, error) {
	idx := b.schema.ColumnIndex(column)
	if idx < 0 {
		return nil, schema.Column{}, fmt.Errorf("sql: %w: table %q has no column %q",
			errs.ErrSchemaMismatch, b.schema.TableName, column)
	}
	col := b.schema.Columns[idx]
	if col.Type.Type == schema.TFloat {
		return nil, schema.Column{}, fmt.Errorf("sql: %w: column %q is a float column",
			errs.ErrUnsupportedColumnType, column)
	}

	width := col.Type.BitWidth()
	rows := make([][]circuit.Wire, b.schema.RowCount)
	for r := 0; r < b.schema.RowCount; r++ {
		bits := make([]circuit.Wire, width)
		for k := 0; k < width; k++ {
			w := b.nextWire
			b.nextWire++
			b.gates = append(b.gates, circuit.Gate{Op: circuit.Input, Output: w})
			b.inputs[w] = circuit.InputRef{
				TableID: b.tableID,
				Row:     r,
				Column:  idx,
				Bit:     k,
			}
			bits[k] = w
		}
		rows[r] = bits
	}
	return rows, col, nil
}

func (b *Builder) newGate(op circuit.Operation, in0, in1 circuit.Wire) circuit.Wire {
	w := b.nextWire
	b.nextWire++
	b.gates = append(b.gates, circuit.Gate{Op: op, Input0: in0, Input1: in1, Output: w})
	return w
}

func (b *Builder) not(in circuit.Wire) circuit.Wire {
	return b.newGate(circuit.Not, in, 0)
}

func (b *Builder) xor(a, c circuit.Wire) circuit.Wire {
	return b.newGate(circuit.Xor, a, c)
}

func (b *Builder) and(a, c circuit.Wire) circuit.Wire {
	return b.newGate(circuit.And, a, c)
}

func (b *Builder) xnor(a, c circuit.Wire) circuit.Wire {
	return b.not(b.xor(a, c))
}

// tree reduces wires pairwise, left to right, with combine, until a
// single wire remains. The reduction order depends only on the input
// order, never on map iteration.
func tree(wires []circuit.Wire, combine func(a, c circuit.Wire) circuit.Wire) circuit.Wire {
	if len(wires) == 0 {
		panic("sql: tree: empty input")
	}
	for len(wires) > 1 {
		next := make([]circuit.Wire, 0, (len(wires)+1)/2)
		for i := 0; i < len(wires); i += 2 {
			if i+1 < len(wires) {
				next = append(next, combine(wires[i], wires[i+1]))
			} else {
				next = append(next, wires[i])
			}
		}
		wires = next
	}
	return wires[0]
}

// buildFilter lowers a WHERE clause to one match bit per row: for Eq,
// the AND-tree of per-bit XNOR comparisons against the literal; for
// NotEq, its complement (spec.md §4.F.4).
func (b *Builder) buildFilter(f *Filter) ([]circuit.Wire, error) {
	rows, col, err := b.allocateColumn(f.Column)
	if err != nil {
		return nil, err
	}
	width := col.Type.BitWidth()

	matches := make([]circuit.Wire, b.schema.RowCount)
	for r, bits := range rows {
		bitMatches := make([]circuit.Wire, width)
		for k := 0; k < width; k++ {
			litBit := (f.Literal >> uint(k)) & 1
			if litBit != 0 {
				bitMatches[k] = bits[k]
			} else {
				bitMatches[k] = b.not(bits[k])
			}
		}
		match := tree(bitMatches, b.and)
		if f.Op == NotEq {
			match = b.not(match)
		}
		matches[r] = match
	}
	return matches, nil
}

// buildAggregate lowers the Aggregate root. Parity XORs every bit of
// the selected column across every row, AND-gated by that row's match
// bit when the plan has a filter; Sum and Avg require ripple-carry
// addition, not yet wired into the builder (sql/ripplecarry.go keeps
// the adder network available and tested on its own).
func (b *Builder) buildAggregate(agg *Aggregate, matchBits []circuit.Wire) (circuit.Wire, error) {
	switch agg.Agg {
	case Parity:
		return b.buildParity(agg.Column, matchBits)
	case Sum, Avg:
		return 0, fmt.Errorf("sql: %w: %s", errs.ErrUnsupportedAggregate, agg.Agg)
	default:
		return 0, fmt.Errorf("sql: %w: unknown aggregate %d", errs.ErrUnsupportedAggregate, agg.Agg)
	}
}

func (b *Builder) buildParity(column string, matchBits []circuit.Wire) (circuit.Wire, error) {
	rows, _, err := b.allocateColumn(column)
	if err != nil {
		return 0, err
	}

	var terms []circuit.Wire
	for r, bits := range rows {
		for _, bit := range bits {
			term := bit
			if matchBits != nil {
				term = b.and(bit, matchBits[r])
			}
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return 0, fmt.Errorf("sql: %w: table %q has no rows", errs.ErrSchemaMismatch, b.schema.TableName)
	}

	result := tree(terms, b.xor)
	b.gates = append(b.gates, circuit.Gate{Op: circuit.Output, Input0: result})
	return result, nil
}
