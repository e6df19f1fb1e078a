package mapper

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/Konsultn-Engineering/objquery/database"
	"github.com/Konsultn-Engineering/objquery/query"
	"github.com/Konsultn-Engineering/objquery/schema"
)

// ExtractParams returns the column values of obj for every field not
// tagged auto, in declared order.
func (m *Mapper) ExtractParams(obj any) (*query.ColumnMap, error) {
	v, err := value(obj)
	if err != nil {
		return nil, err
	}
	meta, err := m.schema.Introspect(v.Type())
	if err != nil {
		return nil, err
	}
	return extractParams(meta, v), nil
}

func extractParams(meta *schema.EntityMeta, v reflect.Value) *query.ColumnMap {
	cols := query.NewColumnMap()
	for _, f := range meta.Fields {
		if f.Auto {
			continue
		}
		cols.Set(f.Column, f.Value(v))
	}
	return cols
}

// PrimaryKeyWhere returns "C1=? AND C2=?" over the primary-key fields of
// obj in declared order, and their values. A type without primary-key
// fields yields an empty clause and no params.
func (m *Mapper) PrimaryKeyWhere(obj any) (string, []any, error) {
	v, err := value(obj)
	if err != nil {
		return "", nil, err
	}
	meta, err := m.schema.Introspect(v.Type())
	if err != nil {
		return "", nil, err
	}
	where, params := primaryKeyWhere(meta, v)
	return where, params, nil
}

func primaryKeyWhere(meta *schema.EntityMeta, v reflect.Value) (string, []any) {
	var sb strings.Builder
	params := make([]any, 0, len(meta.PrimaryKeys))
	for _, f := range meta.PrimaryKeys {
		if sb.Len() > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(f.Column)
		sb.WriteByte('=')
		sb.WriteByte(query.Marker)
		params = append(params, f.Value(v))
	}
	return sb.String(), params
}

// keyWhere is PrimaryKeyWhere for operations that must be filtered by key.
func (m *Mapper) keyWhere(obj any) (string, []any, error) {
	v, err := value(obj)
	if err != nil {
		return "", nil, err
	}
	meta, err := m.schema.Introspect(v.Type())
	if err != nil {
		return "", nil, err
	}
	return m.keyWhereOf(meta, v)
}

func (m *Mapper) keyWhereOf(meta *schema.EntityMeta, v reflect.Value) (string, []any, error) {
	if len(meta.PrimaryKeys) == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, meta.Name)
	}
	for _, f := range meta.PrimaryKeys {
		if f.IsZero(v) {
			m.logger.Warn().
				Str("table", meta.TableName).
				Str("column", f.Column).
				Msg("mapper: primary key holds its zero value")
		}
	}
	where, params := primaryKeyWhere(meta, v)
	return where, params, nil
}

// Insert writes obj as a new row. obj must be a pointer: zero-valued
// fields tagged with a generator are filled before the INSERT, and a single
// auto-generated integer primary key is set from the driver's last insert
// id where the driver reports one.
func (m *Mapper) Insert(ctx context.Context, obj any) error {
	v, meta, err := m.target(obj)
	if err != nil {
		return err
	}
	if err := fillGenerated(meta, v); err != nil {
		return err
	}
	return m.insert(ctx, meta, v)
}

func (m *Mapper) insert(ctx context.Context, meta *schema.EntityMeta, v reflect.Value) error {
	cmd, err := query.NewUpdate(meta.TableName).
		Set(extractParams(meta, v)).
		WithDialect(m.dialect).
		Build(query.Insert)
	if err != nil {
		return err
	}
	m.logCommand(cmd)

	res, err := cmd.ExecContext(ctx, m.db)
	if err != nil {
		return fmt.Errorf("mapper: insert %s: %w", meta.TableName, err)
	}
	m.setInsertID(meta, v, res)
	return nil
}

func (m *Mapper) setInsertID(meta *schema.EntityMeta, v reflect.Value, res database.Result) {
	if len(meta.PrimaryKeys) != 1 {
		return
	}
	pk := meta.PrimaryKeys[0]
	if !pk.Auto || !pk.IsZero(v) {
		return
	}
	switch pk.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		m.logger.Debug().Err(err).Str("table", meta.TableName).Msg("mapper: no last insert id")
		return
	}
	if err := pk.Set(v, id); err != nil {
		m.logger.Warn().Err(err).Str("table", meta.TableName).Msg("mapper: cannot store last insert id")
	}
}

func fillGenerated(meta *schema.EntityMeta, v reflect.Value) error {
	for _, f := range meta.Fields {
		if f.Generator == nil || !f.IsZero(v) {
			continue
		}
		id, err := f.Generator.Generate()
		if err != nil {
			return fmt.Errorf("mapper: generate %s: %w", f.Name, err)
		}
		if err := f.Set(v, id); err != nil {
			return err
		}
	}
	return nil
}

// Save updates the row keyed by obj's primary key, or inserts obj when no
// such row exists.
func (m *Mapper) Save(ctx context.Context, obj any) error {
	v, meta, err := m.target(obj)
	if err != nil {
		return err
	}
	where, params, err := m.keyWhereOf(meta, v)
	if err != nil {
		return err
	}

	found, err := m.exists(ctx, meta, where, params)
	if err != nil {
		return err
	}
	if !found {
		if err := fillGenerated(meta, v); err != nil {
			return err
		}
		return m.insert(ctx, meta, v)
	}

	cmd, err := query.NewUpdate(meta.TableName).
		Set(extractParams(meta, v)).
		Where(where, params...).
		WithDialect(m.dialect).
		Build(query.Update)
	if err != nil {
		return err
	}
	m.logCommand(cmd)

	if _, err := cmd.ExecContext(ctx, m.db); err != nil {
		return fmt.Errorf("mapper: update %s: %w", meta.TableName, err)
	}
	return nil
}

// SaveAll saves every element of objs, a slice of struct pointers, in
// order. It stops at the first failure.
func (m *Mapper) SaveAll(ctx context.Context, objs any) error {
	rv := reflect.ValueOf(objs)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("mapper: SaveAll needs a slice, got %T", objs)
	}
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Struct && elem.CanAddr() {
			elem = elem.Addr()
		}
		if err := m.Save(ctx, elem.Interface()); err != nil {
			return fmt.Errorf("mapper: save element %d: %w", i, err)
		}
	}
	return nil
}

// Delete removes the row keyed by obj's primary key.
func (m *Mapper) Delete(ctx context.Context, obj any) error {
	v, err := value(obj)
	if err != nil {
		return err
	}
	meta, err := m.schema.Introspect(v.Type())
	if err != nil {
		return err
	}
	where, params, err := m.keyWhereOf(meta, v)
	if err != nil {
		return err
	}

	cmd, err := m.build(query.New("DELETE FROM "+meta.TableName+" WHERE "+where, params...))
	if err != nil {
		return err
	}
	if _, err := cmd.ExecContext(ctx, m.db); err != nil {
		return fmt.Errorf("mapper: delete %s: %w", meta.TableName, err)
	}
	return nil
}

// target resolves obj, which must be a non-nil pointer to a struct.
func (m *Mapper) target(obj any) (reflect.Value, *schema.EntityMeta, error) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr {
		return reflect.Value{}, nil, fmt.Errorf("%w: %T is not a pointer", schema.ErrInvalidModel, obj)
	}
	v, err := value(obj)
	if err != nil {
		return reflect.Value{}, nil, err
	}
	meta, err := m.schema.Introspect(v.Type())
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return v, meta, nil
}
