//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowerBuildsFilterAggregateChain(t *testing.T) {
	q, err := ParseQuery("SELECT PARITY(salary) FROM employees WHERE dept = 1")
	require.NoError(t, err)

	plan, err := Lower(q, employeesSchema())
	require.NoError(t, err)

	agg, ok := plan.(*Aggregate)
	require.True(t, ok)
	assert.Equal(t, Parity, agg.Agg)
	assert.Equal(t, "salary", agg.Column)

	filter, ok := agg.Input.(*Filter)
	require.True(t, ok)
	assert.Equal(t, "dept", filter.Column)
	assert.Equal(t, Eq, filter.Op)
	assert.Equal(t, int64(1), filter.Literal)

	_, ok = filter.Input.(*Scan)
	assert.True(t, ok)
}

func TestLowerWithoutFilterSkipsFilterNode(t *testing.T) {
	q, err := ParseQuery("SELECT PARITY(salary) FROM employees")
	require.NoError(t, err)

	plan, err := Lower(q, employeesSchema())
	require.NoError(t, err)

	agg, ok := plan.(*Aggregate)
	require.True(t, ok)
	_, ok = agg.Input.(*Scan)
	assert.True(t, ok)
}

func TestLowerRejectsWrongTable(t *testing.T) {
	q, err := ParseQuery("SELECT PARITY(salary) FROM other")
	require.NoError(t, err)
	_, err = Lower(q, employeesSchema())
	assert.Error(t, err)
}

func TestLowerRejectsUnknownFilterColumn(t *testing.T) {
	q, err := ParseQuery("SELECT PARITY(salary) FROM employees WHERE bogus = 1")
	require.NoError(t, err)
	_, err = Lower(q, employeesSchema())
	assert.Error(t, err)
}
