// Package mapper maps struct values to table rows: it materializes result
// rows into new instances and writes instances back with INSERT, UPDATE and
// DELETE statements keyed by their primary-key fields.
//
// Table and column names come from the schema package: a type's table is
// its name unless it implements schema.TableNamer, and a field's column is
// its name unless a db tag names one.
//
//	type Customer struct {
//		ID   int64  `db:"ID;primary;auto"`
//		Name string `db:"NAME"`
//	}
//
//	m := mapper.New(database.NewSqlDatabase(db))
//	c, err := mapper.Load(ctx, m, &Customer{ID: 7})
package mapper

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/Konsultn-Engineering/objquery/database"
	"github.com/Konsultn-Engineering/objquery/dialect"
	"github.com/Konsultn-Engineering/objquery/query"
	"github.com/Konsultn-Engineering/objquery/schema"
)

var (
	// ErrNotFound is returned by Load when no row matches the key.
	ErrNotFound = errors.New("mapper: object not found")
	// ErrNoPrimaryKey is returned by operations keyed on the primary key
	// when the type declares no primary field.
	ErrNoPrimaryKey = errors.New("mapper: type has no primary key")
	// ErrNilObject is returned when a nil pointer is passed as an object.
	ErrNilObject = errors.New("mapper: nil object")
)

// Mapper binds a database to schema metadata. It holds no per-call state
// and is safe for concurrent use when its database is.
type Mapper struct {
	db      database.Database
	schema  *schema.Context
	dialect dialect.Dialect
	logger  zerolog.Logger
}

type Option func(*Mapper)

// WithDialect renders statements for d instead of the named default.
func WithDialect(d dialect.Dialect) Option {
	return func(m *Mapper) { m.dialect = d }
}

// WithSchema introspects types with ctx instead of schema.Default().
func WithSchema(ctx *schema.Context) Option {
	return func(m *Mapper) { m.schema = ctx }
}

// WithLogger sets the logger statements and warnings are written to.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Mapper) { m.logger = logger }
}

// New returns a mapper executing on db.
func New(db database.Database, opts ...Option) *Mapper {
	m := &Mapper{
		db:      db,
		schema:  schema.Default(),
		dialect: dialect.Default(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Database returns the database the mapper executes on.
func (m *Mapper) Database() database.Database { return m.db }

// Dialect returns the dialect statements are rendered for.
func (m *Mapper) Dialect() dialect.Dialect { return m.dialect }

// Schema returns the metadata context.
func (m *Mapper) Schema() *schema.Context { return m.schema }

// TableName returns the table obj (a struct, pointer or reflect.Type) maps to.
func (m *Mapper) TableName(obj any) (string, error) {
	meta, err := m.meta(obj)
	if err != nil {
		return "", err
	}
	return meta.TableName, nil
}

// ColumnName returns the column the named Go field of obj maps to. ok is
// false for unknown and skipped fields.
func (m *Mapper) ColumnName(obj any, field string) (column string, ok bool, err error) {
	meta, err := m.meta(obj)
	if err != nil {
		return "", false, err
	}
	f, ok := meta.FieldMap[field]
	if !ok {
		return "", false, nil
	}
	return f.Column, true, nil
}

func (m *Mapper) meta(obj any) (*schema.EntityMeta, error) {
	if t, ok := obj.(reflect.Type); ok {
		return m.schema.Introspect(t)
	}
	return m.schema.IntrospectValue(obj)
}

// value returns the struct value obj points to, or obj itself.
func value(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, ErrNilObject
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: got %T", schema.ErrInvalidModel, obj)
	}
	return v, nil
}

func (m *Mapper) build(b query.Builder) (*query.Command, error) {
	cmd, err := b.WithDialect(m.dialect).Build()
	if err != nil {
		return nil, err
	}
	m.logCommand(cmd)
	return cmd, nil
}

func (m *Mapper) logCommand(cmd *query.Command) {
	m.logger.Debug().
		Str("sql", cmd.Text).
		Int("params", len(cmd.Params)).
		Msg("mapper: statement")
}
