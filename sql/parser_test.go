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

func TestParseQueryWithFilter(t *testing.T) {
	q, err := ParseQuery("SELECT PARITY(salary) FROM employees WHERE dept = 1")
	require.NoError(t, err)
	assert.Equal(t, Parity, q.Agg)
	assert.Equal(t, "salary", q.Column)
	assert.Equal(t, "employees", q.Table)
	require.NotNil(t, q.Filter)
	assert.Equal(t, "dept", q.Filter.Column)
	assert.Equal(t, Eq, q.Filter.Op)
	assert.Equal(t, int64(1), q.Filter.Literal)
}

func TestParseQueryWithoutFilter(t *testing.T) {
	q, err := ParseQuery("SELECT SUM(amount) FROM orders")
	require.NoError(t, err)
	assert.Equal(t, Sum, q.Agg)
	assert.Nil(t, q.Filter)
}

func TestParseQueryNotEq(t *testing.T) {
	q, err := ParseQuery("SELECT PARITY(x) FROM t WHERE y != 0")
	require.NoError(t, err)
	assert.Equal(t, NotEq, q.Filter.Op)
}

func TestParseQueryRejectsUnknownAggregate(t *testing.T) {
	_, err := ParseQuery("SELECT MAX(x) FROM t")
	assert.Error(t, err)
}

func TestParseQueryRejectsJoin(t *testing.T) {
	_, err := ParseQuery("SELECT SUM(x) FROM t JOIN u")
	assert.Error(t, err)
}

func TestParseQueryRejectsTrailingGarbage(t *testing.T) {
	_, err := ParseQuery("SELECT SUM(x) FROM t WHERE y = 1 GARBAGE")
	assert.Error(t, err)
}

func TestParseQueryRejectsMissingFrom(t *testing.T) {
	_, err := ParseQuery("SELECT SUM(x) t")
	assert.Error(t, err)
}
