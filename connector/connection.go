package connector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/Konsultn-Engineering/objquery/database"
	"github.com/Konsultn-Engineering/objquery/dialect"
	"github.com/Konsultn-Engineering/objquery/mapper"
)

// ConnectionStats represents database connection pool statistics.
type ConnectionStats struct {
	OpenConnections int
	InUse           int
	Idle            int
}

// Connection is an open database together with the dialect its commands
// are rendered in.
type Connection struct {
	driver  string
	db      database.Database
	dialect dialect.Dialect
	stats   func() ConnectionStats
	logger  zerolog.Logger
}

type Option func(*options)

type options struct {
	logger  zerolog.Logger
	dialect dialect.Dialect
}

// WithLogger sets the logger for retries and the mappers the connection
// creates.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDialect overrides the provider's dialect.
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// Connect opens the database described by cfg, retrying per cfg.Retry.
// Each attempt is bounded by cfg.ConnectTimeout when it is set.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*Connection, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	provider, ok := Lookup(cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}

	type opened struct {
		db    database.Database
		stats func() ConnectionStats
	}
	attempt := func(ctx context.Context) (opened, error) {
		if cfg.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
			defer cancel()
		}
		db, stats, err := provider.Open(ctx, cfg)
		return opened{db: db, stats: stats}, err
	}

	conn, err := retryConnect(ctx, cfg.Retry, o.logger, attempt)
	if err != nil {
		return nil, fmt.Errorf("connector: connect %s: %w", cfg.Driver, err)
	}

	d := o.dialect
	if d == nil {
		d = provider.Dialect()
	}
	o.logger.Debug().
		Str("driver", cfg.Driver).
		Str("dialect", d.Name()).
		Msg("connector: connected")

	return &Connection{
		driver:  cfg.Driver,
		db:      conn.db,
		dialect: d,
		stats:   conn.stats,
		logger:  o.logger,
	}, nil
}

// Driver returns the configured driver name.
func (c *Connection) Driver() string { return c.driver }

// Database returns the database commands are executed on.
func (c *Connection) Database() database.Database { return c.db }

// Dialect returns the dialect for this connection.
func (c *Connection) Dialect() dialect.Dialect { return c.dialect }

// Mapper returns an object mapper on this connection using its dialect
// and logger. opts are applied after those defaults.
func (c *Connection) Mapper(opts ...mapper.Option) *mapper.Mapper {
	base := []mapper.Option{mapper.WithDialect(c.dialect), mapper.WithLogger(c.logger)}
	return mapper.New(c.db, append(base, opts...)...)
}

// Health pings the database.
func (c *Connection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Stats returns connection pool statistics.
func (c *Connection) Stats() ConnectionStats {
	if c.stats == nil {
		return ConnectionStats{}
	}
	return c.stats()
}

// Close closes the database.
func (c *Connection) Close() error {
	return c.db.Close()
}

// CloseAll closes every connection, combining their errors.
func CloseAll(conns ...*Connection) error {
	var err error
	for _, c := range conns {
		if c != nil {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
