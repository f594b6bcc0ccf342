//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sql

import (
	"fmt"

	"github.com/rss3p/mpcsql/errs"
	"github.com/rss3p/mpcsql/schema"
)

// Plan is a node of the three-level logical plan of spec.md §4.F.2:
// a Scan leaf, an optional Filter wrapping it, and an Aggregate root.
type Plan interface {
	String() string
}

// Scan reads every row of a table. It is always the leaf of a plan.
type Scan struct {
	Schema schema.Schema
}

func (s *Scan) String() string {
	return fmt.Sprintf("Scan(%s)", s.Schema.TableName)
}

// Filter keeps only the rows for which Column Op Literal holds. It
// wraps a Scan.
type Filter struct {
	Input   Plan
	Column  string
	Op      FilterOp
	Literal int64
}

func (f *Filter) String() string {
	return fmt.Sprintf("Filter(%s, %s %s %d)", f.Input, f.Column, f.Op, f.Literal)
}

// Aggregate reduces the (optionally filtered) rows of Column to a
// single value. It is always the root of a plan.
type Aggregate struct {
	Input  Plan
	Column string
	Agg    AggKind
}

func (a *Aggregate) String() string {
	return fmt.Sprintf("Aggregate(%s, %s(%s))", a.Input, a.Agg, a.Column)
}

// Lower turns a parsed Query into a logical plan against the given
// schema, checking that every referenced column exists (spec.md
// §4.F.2: "lowering fails fast, before any circuit is built, if a
// referenced column is absent from the schema").
func Lower(q *Query, s schema.Schema) (Plan, error) {
	if s.TableName != q.Table {
		return nil, fmt.Errorf("sql: %w: query names table %q, schema is %q",
			errs.ErrSchemaMismatch, q.Table, s.TableName)
	}
	if s.ColumnIndex(q.Column) < 0 {
		return nil, fmt.Errorf("sql: %w: table %q has no column %q",
			errs.ErrSchemaMismatch, s.TableName, q.Column)
	}

	var plan Plan = &Scan{Schema: s}

	if q.Filter != nil {
		if s.ColumnIndex(q.Filter.Column) < 0 {
			return nil, fmt.Errorf("sql: %w: table %q has no column %q",
				errs.ErrSchemaMismatch, s.TableName, q.Filter.Column)
		}
		plan = &Filter{
			Input:   plan,
			Column:  q.Filter.Column,
			Op:      q.Filter.Op,
			Literal: q.Filter.Literal,
		}
	}

	return &Aggregate{
		Input:  plan,
		Column: q.Column,
		Agg:    q.Agg,
	}, nil
}
