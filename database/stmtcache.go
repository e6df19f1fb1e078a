package database

import (
	"context"
	"database/sql"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"
)

// StatementCache keeps prepared statements keyed by their text. A
// statement evicted while in use is closed when its last user releases it.
type StatementCache struct {
	mu    sync.Mutex // guards cache and entry reference counts; held across prepares
	cache *lru.Cache[string, *cachedStmt]
}

type cachedStmt struct {
	stmt    *sql.Stmt
	refs    int
	evicted bool
	closed  bool
}

// retire marks the entry evicted and closes it once unreferenced.
func (e *cachedStmt) retire() error {
	e.evicted = true
	if e.refs > 0 || e.closed {
		return nil
	}
	e.closed = true
	return e.stmt.Close()
}

// NewStatementCache returns a cache holding at most size statements.
func NewStatementCache(size int) (*StatementCache, error) {
	cache, err := lru.NewWithEvict(size, func(_ string, e *cachedStmt) {
		_ = e.retire()
	})
	if err != nil {
		return nil, err
	}
	return &StatementCache{cache: cache}, nil
}

// Acquire returns the statement for query, preparing it on db when absent.
// The statement stays open until release is called, even if it is evicted
// in the meantime; release must be called exactly once.
func (s *StatementCache) Acquire(ctx context.Context, db *sql.DB, query string) (stmt *sql.Stmt, release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache.Get(query)
	if !ok {
		prepared, err := db.PrepareContext(ctx, query)
		if err != nil {
			return nil, nil, err
		}
		e = &cachedStmt{stmt: prepared}
		s.cache.Add(query, e)
	}
	e.refs++

	return e.stmt, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		e.refs--
		if e.evicted {
			_ = e.retire()
		}
	}, nil
}

// Len returns the number of cached statements.
func (s *StatementCache) Len() int { return s.cache.Len() }

// Close drops every cached statement, closing those not in use.
func (s *StatementCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for _, query := range s.cache.Keys() {
		if e, ok := s.cache.Peek(query); ok {
			err = multierr.Append(err, e.retire())
		}
	}
	s.cache.Purge()
	return err
}
