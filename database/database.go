// Package database abstracts the connection a command is executed on.
// Implementations exist for database/sql and for a pgx connection pool.
package database

import (
	"context"
)

type Database interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// Result is satisfied by database/sql.Result.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}
