package database

import (
	"context"
	"database/sql"

	"go.uber.org/multierr"
)

// SqlDatabase implements Database for *sql.DB.
type SqlDatabase struct {
	db    *sql.DB
	stmts *StatementCache
}

// SqlOption configures a SqlDatabase.
type SqlOption func(*SqlDatabase)

// WithStatementCache prepares each distinct statement text once and
// reuses it, keeping at most the cache's capacity prepared.
func WithStatementCache(cache *StatementCache) SqlOption {
	return func(s *SqlDatabase) { s.stmts = cache }
}

// NewSqlDatabase creates a new SqlDatabase.
func NewSqlDatabase(db *sql.DB, opts ...SqlOption) *SqlDatabase {
	s := &SqlDatabase{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryContext executes a query with a context.
func (s *SqlDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if s.stmts == nil {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return rows, nil
	}

	stmt, release, err := s.stmts.Acquire(ctx, s.db, query)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecContext executes a query without returning rows.
func (s *SqlDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	if s.stmts == nil {
		return s.db.ExecContext(ctx, query, args...)
	}

	stmt, release, err := s.stmts.Acquire(ctx, s.db, query)
	if err != nil {
		return nil, err
	}
	defer release()

	return stmt.ExecContext(ctx, args...)
}

// PingContext verifies the connection to the database is alive.
func (s *SqlDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases cached statements and closes the database.
func (s *SqlDatabase) Close() error {
	var err error
	if s.stmts != nil {
		err = s.stmts.Close()
	}
	return multierr.Append(err, s.db.Close())
}

// DB exposes the wrapped handle, e.g. for pool tuning.
func (s *SqlDatabase) DB() *sql.DB { return s.db }

// Assert that SqlDatabase implements the Database interface.
var _ Database = (*SqlDatabase)(nil)
