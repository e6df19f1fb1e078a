package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMixedArgs is returned when named and positional arguments are combined
// in a single pgx call.
var ErrMixedArgs = errors.New("database: cannot mix named and positional arguments")

// PgxDatabase implements Database for pgxpool.Pool.
//
// Arguments passed as sql.NamedArg are forwarded as pgx.NamedArgs, so
// statements can reference them as @name.
type PgxDatabase struct {
	pool *pgxpool.Pool
}

// NewPgxDatabase creates a new PgxDatabase.
func NewPgxDatabase(pool *pgxpool.Pool) *PgxDatabase {
	return &PgxDatabase{pool: pool}
}

// QueryContext executes a query with a context.
func (p *PgxDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	args, err := pgxArgs(args)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &PgxRows{rows: rows}, nil
}

// ExecContext executes a query without returning rows.
func (p *PgxDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	args, err := pgxArgs(args)
	if err != nil {
		return nil, err
	}
	cmdTag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &PgxResult{cmdTag: cmdTag}, nil
}

// PingContext verifies the connection to the database is alive.
func (p *PgxDatabase) PingContext(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool.
func (p *PgxDatabase) Close() error {
	p.pool.Close()
	return nil
}

// pgxArgs folds sql.NamedArg values into a single pgx.NamedArgs.
func pgxArgs(args []any) ([]any, error) {
	var named pgx.NamedArgs
	for _, a := range args {
		if na, ok := a.(sql.NamedArg); ok {
			if named == nil {
				named = make(pgx.NamedArgs, len(args))
			}
			named[na.Name] = na.Value
		}
	}
	if named == nil {
		return args, nil
	}
	if len(named) != len(args) {
		return nil, fmt.Errorf("%w: %d named of %d", ErrMixedArgs, len(named), len(args))
	}
	return []any{named}, nil
}

// PgxRows implements Rows for pgx.Rows.
type PgxRows struct {
	rows              pgx.Rows
	fieldDescriptions []pgconn.FieldDescription
}

// Next prepares the next result row for reading.
func (p *PgxRows) Next() bool { return p.rows.Next() }

// Scan copies the columns from the current row into the provided destinations.
func (p *PgxRows) Scan(dest ...any) error { return p.rows.Scan(dest...) }

// Err returns the error, if any, encountered during iteration.
func (p *PgxRows) Err() error { return p.rows.Err() }

// Close closes the rows iterator.
func (p *PgxRows) Close() error { p.rows.Close(); return nil }

// Columns returns the column names.
func (p *PgxRows) Columns() ([]string, error) {
	if p.fieldDescriptions == nil {
		p.fieldDescriptions = p.rows.FieldDescriptions()
	}
	columns := make([]string, len(p.fieldDescriptions))
	for i, fd := range p.fieldDescriptions {
		columns[i] = fd.Name
	}
	return columns, nil
}

// PgxResult implements Result for pgxpool command tags.
type PgxResult struct {
	cmdTag pgconn.CommandTag
}

// LastInsertId is not supported in PostgreSQL with pgxpool.
func (r *PgxResult) LastInsertId() (int64, error) {
	return 0, fmt.Errorf("LastInsertId not supported in PostgreSQL")
}

// RowsAffected returns the number of rows affected by the command.
func (r *PgxResult) RowsAffected() (int64, error) {
	return r.cmdTag.RowsAffected(), nil
}

// Assert that PgxDatabase implements the Database interface.
var _ Database = (*PgxDatabase)(nil)
