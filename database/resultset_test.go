package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultSetIteration(t *testing.T) {
	rs := NewResultSet("COLUMN1", "COLUMN2").
		AddRow(1, "ABC").
		AddRow(2, nil)

	cols, err := rs.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"COLUMN1", "COLUMN2"}, cols)
	assert.Equal(t, 2, rs.Len())

	var (
		n int64
		s string
	)
	require.True(t, rs.Next())
	require.NoError(t, rs.Scan(&n, &s))
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "ABC", s)

	require.True(t, rs.Next())
	require.NoError(t, rs.Scan(&n, &s))
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "", s, "NULL scans to the zero value")

	assert.False(t, rs.Next())
	assert.NoError(t, rs.Err())
}

func TestResultSetScanAny(t *testing.T) {
	rs := NewResultSet("a").AddRow("x")
	require.True(t, rs.Next())

	var v any
	require.NoError(t, rs.Scan(&v))
	assert.Equal(t, "x", v)
}

func TestResultSetErrors(t *testing.T) {
	rs := NewResultSet("a", "b").AddRow(1, 2)

	var a, b int
	assert.ErrorIs(t, rs.Scan(&a, &b), ErrNoRow)

	require.True(t, rs.Next())
	assert.ErrorIs(t, rs.Scan(&a), ErrColumnCount)

	var m map[string]int
	assert.Error(t, rs.Scan(&a, &m))

	require.NoError(t, rs.Close())
	assert.False(t, rs.Next())
	assert.ErrorIs(t, rs.Scan(&a, &b), ErrRowsClosed)

	rs.Reset()
	assert.True(t, rs.Next())
}
