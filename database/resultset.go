package database

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNoRow       = errors.New("database: Scan called without a current row")
	ErrRowsClosed  = errors.New("database: rows are closed")
	ErrColumnCount = errors.New("database: column count mismatch")
)

// ResultSet is an in-memory table that satisfies Rows. It lets callers
// materialize objects from data that did not come from a live connection.
type ResultSet struct {
	columns []string
	rows    [][]any
	cur     int
	closed  bool
}

// NewResultSet creates a result set with the given column names.
func NewResultSet(columns ...string) *ResultSet {
	return &ResultSet{columns: columns, cur: -1}
}

// AddRow appends a row. Values are matched to columns by position.
func (r *ResultSet) AddRow(values ...any) *ResultSet {
	r.rows = append(r.rows, values)
	return r
}

// Len returns the number of rows.
func (r *ResultSet) Len() int { return len(r.rows) }

// Reset rewinds the cursor so the set can be iterated again.
func (r *ResultSet) Reset() {
	r.cur = -1
	r.closed = false
}

func (r *ResultSet) Next() bool {
	if r.closed || r.cur+1 >= len(r.rows) {
		return false
	}
	r.cur++
	return true
}

func (r *ResultSet) Columns() ([]string, error) {
	if r.closed {
		return nil, ErrRowsClosed
	}
	return r.columns, nil
}

// Scan copies the current row into dest. A nil value zeroes the target.
func (r *ResultSet) Scan(dest ...any) error {
	if r.closed {
		return ErrRowsClosed
	}
	if r.cur < 0 || r.cur >= len(r.rows) {
		return ErrNoRow
	}
	row := r.rows[r.cur]
	if len(dest) != len(row) {
		return fmt.Errorf("%w: %d destinations for %d values", ErrColumnCount, len(dest), len(row))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("column %q: %w", r.columns[i], err)
		}
	}
	return nil
}

func (r *ResultSet) Err() error { return nil }

func (r *ResultSet) Close() error {
	r.closed = true
	return nil
}

func assign(dest, src any) error {
	if p, ok := dest.(*any); ok {
		*p = src
		return nil
	}

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dest)
	}
	target := dv.Elem()
	if src == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}

	sv := reflect.ValueOf(src)
	switch {
	case target.Kind() == reflect.String && sv.Kind() != reflect.String && !isBytes(sv.Type()):
		// reflect would turn an integer into a rune here
		target.SetString(fmt.Sprint(src))
	case sv.Type().AssignableTo(target.Type()):
		target.Set(sv)
	case sv.Type().ConvertibleTo(target.Type()):
		target.Set(sv.Convert(target.Type()))
	default:
		return fmt.Errorf("cannot scan %T into %s", src, target.Type())
	}
	return nil
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

var _ Rows = (*ResultSet)(nil)
