package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/objquery/dialect"
)

func sampleColumns() *ColumnMap {
	return NewColumnMap().Set("COLUMN1", 1).Set("COLUMN2", "ABC")
}

func TestUpdateBuilderInsert(t *testing.T) {
	cmd, err := NewUpdate("TableName").Set(sampleColumns()).Build(Insert)
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO TableName (COLUMN1,COLUMN2) VALUES (@__param_0,@__param_1)", cmd.Text)
	assert.Equal(t, []any{1, "ABC"}, cmd.Values())
}

func TestUpdateBuilderUpdateWithWhere(t *testing.T) {
	cmd, err := NewUpdate("TableName").
		Set(sampleColumns()).
		Where("COLUMN3=? AND COLUMN4=?", 2, "DEF").
		Build(Update)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE TableName SET COLUMN1=@__param_0,COLUMN2=@__param_1 WHERE COLUMN3=@__param_2 AND COLUMN4=@__param_3", cmd.Text)
	assert.Equal(t, []any{1, "ABC", 2, "DEF"}, cmd.Values())
}

func TestUpdateBuilderWhereSlice(t *testing.T) {
	cmd, err := NewUpdate("TableName").
		Set(sampleColumns()).
		Where("COLUMN3=? AND COLUMN4=?", []any{2, "DEF"}).
		Build(Update)
	require.NoError(t, err)
	assert.Equal(t, []any{1, "ABC", 2, "DEF"}, cmd.Values())
}

func TestUpdateBuilderUpdateWithoutWhere(t *testing.T) {
	for _, b := range []UpdateBuilder{
		NewUpdate("TableName").Set(sampleColumns()),
		NewUpdate("TableName").Set(sampleColumns()).Where(""),
	} {
		cmd, err := b.Build(Update)
		require.NoError(t, err)
		assert.Equal(t, "UPDATE TableName SET COLUMN1=@__param_0,COLUMN2=@__param_1", cmd.Text)
		assert.Equal(t, []any{1, "ABC"}, cmd.Values())
	}
}

func TestUpdateBuilderEmptyWhereWithParams(t *testing.T) {
	_, err := NewUpdate("TableName").Set(sampleColumns()).Where("", 99).Build(Update)
	assert.ErrorIs(t, err, ErrParamCount)

	_, _, err = NewUpdate("TableName").Set(sampleColumns()).Where("", []any{1, 2}).Statement(Update)
	assert.ErrorIs(t, err, ErrParamCount)
}

func TestUpdateBuilderWhereWithoutParams(t *testing.T) {
	cmd, err := NewUpdate("t").Set(NewColumnMap().Set("a", 1)).Where("id=5").Build(Update)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET a=@__param_0 WHERE id=5", cmd.Text)
}

func TestUpdateBuilderInvalidMode(t *testing.T) {
	_, err := NewUpdate("t").Set(sampleColumns()).Build(Mode(7))
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, _, err = NewUpdate("t").Statement(Mode(-1))
	assert.ErrorIs(t, err, ErrInvalidMode, "mode is checked before columns")
}

func TestUpdateBuilderNoColumns(t *testing.T) {
	_, err := NewUpdate("t").Build(Insert)
	assert.ErrorIs(t, err, ErrNoColumns)

	_, err = NewUpdate("t").Set(NewColumnMap()).Build(Update)
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestUpdateBuilderColumnValuesNotFlattened(t *testing.T) {
	cols := NewColumnMap().Set("tags", []string{"a", "b"})
	cmd, err := NewUpdate("t").Set(cols).Build(Insert)
	require.NoError(t, err)
	assert.Equal(t, []any{[]string{"a", "b"}}, cmd.Values())
}

func TestUpdateBuilderCopiesColumns(t *testing.T) {
	cols := sampleColumns()
	b := NewUpdate("t").Set(cols)
	cols.Set("COLUMN3", true)

	stmt, params, err := b.Statement(Insert)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO t (COLUMN1,COLUMN2) VALUES (?,?)", stmt)
	assert.Equal(t, []any{1, "ABC"}, params)
}

func TestUpdateBuilderDialect(t *testing.T) {
	cmd, err := NewUpdate("t").
		Set(sampleColumns()).
		Where("id=?", 4).
		WithDialect(dialect.NewPostgresDialect()).
		Build(Update)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET COLUMN1=$1,COLUMN2=$2 WHERE id=$3", cmd.Text)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "INSERT", Insert.String())
	assert.Equal(t, "UPDATE", Update.String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
}

func TestColumnMap(t *testing.T) {
	m := NewColumnMap().Set("b", 1).Set("a", 2).Set("c", 3)
	m.Set("b", 10)

	assert.Equal(t, []string{"b", "a", "c"}, m.Columns())
	assert.Equal(t, []any{10, 2, 3}, m.Values())

	m.Delete("a")
	m.Delete("missing")
	assert.Equal(t, []string{"b", "c"}, m.Columns())
	assert.Equal(t, 2, m.Len())

	v, ok := m.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	var nilMap *ColumnMap
	assert.Zero(t, nilMap.Len())
	assert.Nil(t, nilMap.Columns())
	assert.Zero(t, nilMap.Clone().Len())

	var zero ColumnMap
	zero.Set("x", 1)
	assert.Equal(t, []string{"x"}, zero.Columns())
}
