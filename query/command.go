package query

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Konsultn-Engineering/objquery/database"
	"github.com/Konsultn-Engineering/objquery/dialect"
)

// Param is one bound parameter of a Command.
type Param struct {
	Name  string
	Value any
}

// Command is a rewritten statement with its parameters, ready to execute.
type Command struct {
	Text   string
	Params []Param

	template string
	dialect  dialect.Dialect
}

// Dialect returns the dialect the command text was rendered for.
func (c *Command) Dialect() dialect.Dialect { return c.dialect }

// Values returns the parameter values in binding order.
func (c *Command) Values() []any {
	values := make([]any, len(c.Params))
	for i, p := range c.Params {
		values[i] = p.Value
	}
	return values
}

// Args returns the driver arguments: sql.NamedArg values for named
// dialects, plain values otherwise.
func (c *Command) Args() []any {
	if c.dialect == nil || !c.dialect.Named() {
		return c.Values()
	}
	args := make([]any, len(c.Params))
	for i, p := range c.Params {
		args[i] = sql.Named(p.Name, p.Value)
	}
	return args
}

// ExecContext runs the command on db.
func (c *Command) ExecContext(ctx context.Context, db database.Database) (database.Result, error) {
	return db.ExecContext(ctx, c.Text, c.Args()...)
}

// QueryContext runs the command on db and returns its rows.
func (c *Command) QueryContext(ctx context.Context, db database.Database) (database.Rows, error) {
	return db.QueryContext(ctx, c.Text, c.Args()...)
}

// String renders the statement with parameter values inlined. The result
// is meant for logs and must never be executed.
func (c *Command) String() string {
	if c.dialect == nil || c.template == "" {
		return c.Text
	}
	var sb strings.Builder
	ordinal := 0
	for i := 0; i < len(c.template); i++ {
		ch := c.template[i]
		if ch != Marker || ordinal >= len(c.Params) {
			sb.WriteByte(ch)
			continue
		}
		sb.WriteString(c.dialect.RenderValue(c.Params[ordinal].Value))
		ordinal++
	}
	return sb.String()
}
