package mapper

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"github.com/Konsultn-Engineering/objquery/database"
	"github.com/Konsultn-Engineering/objquery/query"
	"github.com/Konsultn-Engineering/objquery/schema"
)

// Materialize reads every row of rows into a new T, preserving row order.
// Each result column is stored in the field mapped to it, NULL becoming the
// field's zero value; columns with no field are ignored and fields with no
// column keep their zero value. rows is closed before Materialize returns.
func Materialize[T any](m *Mapper, rows database.Rows) (result []*T, err error) {
	defer func() {
		err = multierr.Append(err, rows.Close())
		if err != nil {
			result = nil
		}
	}()

	meta, err := m.schema.Introspect(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	fields := make([]*schema.FieldMeta, len(cols))
	for i, col := range cols {
		fields[i], _ = meta.Field(col)
	}

	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	result = make([]*T, 0)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		item := new(T)
		v := reflect.ValueOf(item).Elem()
		for i, f := range fields {
			if f == nil {
				continue
			}
			if err := f.Set(v, values[i]); err != nil {
				return nil, fmt.Errorf("row %d: %w", len(result), err)
			}
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Find selects every row of T's table filtered by where, which is appended
// verbatim after the table name and may hold WHERE, ORDER BY or similar
// clauses with '?' markers bound to params.
//
//	customers, err := mapper.Find[Customer](ctx, m, "WHERE NAME LIKE ? ORDER BY ID", "A%")
func Find[T any](ctx context.Context, m *Mapper, where string, params ...any) ([]*T, error) {
	meta, err := m.schema.Introspect(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}

	cmd, err := m.build(query.New(selectFrom(meta, where), params...))
	if err != nil {
		return nil, err
	}
	rows, err := cmd.QueryContext(ctx, m.db)
	if err != nil {
		return nil, fmt.Errorf("mapper: select %s: %w", meta.TableName, err)
	}
	return Materialize[T](m, rows)
}

// Load reads the row whose primary key equals the primary-key fields of
// key. It returns ErrNotFound when there is no such row.
func Load[T any](ctx context.Context, m *Mapper, key *T) (*T, error) {
	if key == nil {
		return nil, ErrNilObject
	}
	where, params, err := m.keyWhere(key)
	if err != nil {
		return nil, err
	}
	found, err := Find[T](ctx, m, "WHERE "+where, params...)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found[0], nil
}

// exists reports whether a row of meta's table matches where.
func (m *Mapper) exists(ctx context.Context, meta *schema.EntityMeta, where string, params []any) (found bool, err error) {
	cmd, err := m.build(query.New(selectFrom(meta, "WHERE "+where), params...))
	if err != nil {
		return false, err
	}
	rows, err := cmd.QueryContext(ctx, m.db)
	if err != nil {
		return false, fmt.Errorf("mapper: select %s: %w", meta.TableName, err)
	}
	defer func() { err = multierr.Append(err, rows.Close()) }()

	found = rows.Next()
	return found, rows.Err()
}

func selectFrom(meta *schema.EntityMeta, where string) string {
	stmt := "SELECT * FROM " + meta.TableName
	if where != "" {
		stmt += " " + where
	}
	return stmt
}
