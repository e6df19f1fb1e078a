package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/objquery/dialect"
)

// Mode selects the statement an UpdateBuilder produces.
type Mode int

const (
	Insert Mode = iota
	Update
)

var (
	// ErrInvalidMode is returned by UpdateBuilder.Build for a mode other
	// than Insert or Update.
	ErrInvalidMode = errors.New("query: invalid statement mode")
	// ErrNoColumns is returned when the column map is empty.
	ErrNoColumns = errors.New("query: no columns to write")
)

func (m Mode) String() string {
	switch m {
	case Insert:
		return "INSERT"
	case Update:
		return "UPDATE"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// UpdateBuilder synthesizes INSERT and UPDATE statements for one table.
// Like Builder it is a value; each method returns a modified copy.
type UpdateBuilder struct {
	table       string
	columns     *ColumnMap
	where       string
	whereParams []any
	dialect     dialect.Dialect
}

// NewUpdate returns a builder writing to table.
func NewUpdate(table string) UpdateBuilder {
	return UpdateBuilder{table: table}
}

// Set returns a copy of u writing the columns of cols. The map is copied,
// so later changes to cols do not affect the builder.
func (u UpdateBuilder) Set(cols *ColumnMap) UpdateBuilder {
	u.columns = cols.Clone()
	return u
}

// Where returns a copy of u filtered by template. Its params are flattened
// as by Builder.Add and bound after the column values. An empty template
// means no filter: the UPDATE then touches every row, and params must be
// empty.
func (u UpdateBuilder) Where(template string, params ...any) UpdateBuilder {
	u.where = template
	u.whereParams = New("", params...).params
	return u
}

// WithDialect returns a copy of u that renders bind variables for d.
func (u UpdateBuilder) WithDialect(d dialect.Dialect) UpdateBuilder {
	u.dialect = d
	return u
}

// Statement returns the statement template, still holding '?' markers,
// and the parameters in binding order.
func (u UpdateBuilder) Statement(mode Mode) (string, []any, error) {
	if mode != Insert && mode != Update {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
	if u.columns.Len() == 0 {
		return "", nil, fmt.Errorf("%w: %s %s", ErrNoColumns, mode, u.table)
	}

	cols := u.columns.Columns()
	params := u.columns.Values()

	var sb strings.Builder
	if mode == Insert {
		sb.WriteString("INSERT INTO ")
		sb.WriteString(u.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(cols, ","))
		sb.WriteString(") VALUES (")
		for i := range cols {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte(Marker)
		}
		sb.WriteByte(')')
		return sb.String(), params, nil
	}

	sb.WriteString("UPDATE ")
	sb.WriteString(u.table)
	sb.WriteString(" SET ")
	for i, col := range cols {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(col)
		sb.WriteByte('=')
		sb.WriteByte(Marker)
	}
	if u.where == "" && len(u.whereParams) > 0 {
		return "", nil, fmt.Errorf("%w: 0 markers, %d parameters in empty WHERE", ErrParamCount, len(u.whereParams))
	}
	if u.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(u.where)
		params = append(params, u.whereParams...)
	}
	return sb.String(), params, nil
}

// Build produces the command for mode. Column values are bound as single
// values, never flattened, so array-typed columns survive intact.
func (u UpdateBuilder) Build(mode Mode) (*Command, error) {
	stmt, params, err := u.Statement(mode)
	if err != nil {
		return nil, err
	}
	return Builder{template: stmt, params: params, dialect: u.dialect}.Build()
}
