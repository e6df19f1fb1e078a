package schema

import (
	"fmt"
	"reflect"
)

// TableNamer lets a mapped type name its table explicitly.
type TableNamer interface {
	TableName() string
}

// EntityMeta describes how a struct type maps to a table.
type EntityMeta struct {
	Type               reflect.Type
	Name               string
	TableName          string
	HasCustomTableName bool

	Fields      []*FieldMeta          // declared order
	FieldMap    map[string]*FieldMeta // Go field name -> field
	ColumnMap   map[string]*FieldMeta // column name -> field
	PrimaryKeys []*FieldMeta          // declared order
}

// FieldMeta describes one mapped field.
type FieldMeta struct {
	Name      string
	Column    string
	Type      reflect.Type
	Index     []int
	Tag       *ParsedTag
	Primary   bool
	Auto      bool
	Generator IDGenerator
}

// Columns returns the column names in declared order.
func (m *EntityMeta) Columns() []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Field looks a field up by column name.
func (m *EntityMeta) Field(column string) (*FieldMeta, bool) {
	f, ok := m.ColumnMap[column]
	return f, ok
}

// Value returns the field's current value in the struct value v.
func (f *FieldMeta) Value(v reflect.Value) any {
	return v.FieldByIndex(f.Index).Interface()
}

// IsZero reports whether the field holds its zero value in v.
func (f *FieldMeta) IsZero(v reflect.Value) bool {
	return v.FieldByIndex(f.Index).IsZero()
}

// Set assigns src to the field in the addressable struct value v,
// converting where a lossless conversion exists. A nil src stores the
// zero value.
func (f *FieldMeta) Set(v reflect.Value, src any) error {
	if err := Assign(v.FieldByIndex(f.Index), src); err != nil {
		return fmt.Errorf("field %s (column %s): %w", f.Name, f.Column, err)
	}
	return nil
}
