package connector

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Konsultn-Engineering/objquery/database"
	"github.com/Konsultn-Engineering/objquery/dialect"
)

// ErrUnknownDriver is returned for a driver name no provider is registered
// under.
var ErrUnknownDriver = errors.New("connector: unknown driver")

// Provider opens connections for one database driver.
type Provider interface {
	// Dialect is the dialect commands for this driver are rendered with.
	Dialect() dialect.Dialect
	// DSN renders the driver connection string for config.
	DSN(config Config) (string, error)
	// Open connects and returns the database with a stats source. It does
	// not retry; Connect does.
	Open(ctx context.Context, config Config) (database.Database, func() ConnectionStats, error)
}

var registry = struct {
	sync.RWMutex
	providers map[string]Provider
}{providers: make(map[string]Provider)}

func init() {
	Register("postgres", postgresProvider{})
	Register("pgx", postgresProvider{})
	Register("mysql", mysqlProvider{dialect: dialect.NewMySQLDialect()})
	Register("tidb", mysqlProvider{dialect: dialect.NewTiDBDialect()})
	Register("sqlite3", sqliteProvider{})
	Register("sqlite", sqliteProvider{})
}

// Register makes provider available under name, replacing any previous one.
func Register(name string, provider Provider) {
	registry.Lock()
	defer registry.Unlock()
	registry.providers[name] = provider
}

// Lookup returns the provider registered under name.
func Lookup(name string) (Provider, bool) {
	registry.RLock()
	defer registry.RUnlock()
	p, ok := registry.providers[name]
	return p, ok
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.providers))
	for name := range registry.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
