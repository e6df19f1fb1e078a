package connector

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Konsultn-Engineering/objquery/database"
	"github.com/Konsultn-Engineering/objquery/dialect"
)

// postgresProvider connects through a pgx pool. Commands keep the named
// dialect: pgx binds @__param_N tokens from pgx.NamedArgs.
type postgresProvider struct{}

func (postgresProvider) Dialect() dialect.Dialect {
	return dialect.NewNamedDialect()
}

func (postgresProvider) DSN(cfg Config) (string, error) {
	b := NewDSNBuilder("postgres").
		Auth(cfg.Username, cfg.Password).
		Host(cfg.Host, cfg.Port).
		Database(cfg.Database).
		Param("sslmode", cfg.SSLMode).
		Params(cfg.Params)
	if cfg.ConnectTimeout > 0 {
		b.Param("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	return b.Build(), nil
}

// poolConfig parses the DSN and applies the pool settings.
func (p postgresProvider) poolConfig(cfg Config) (*pgxpool.Config, error) {
	dsn, err := p.DSN(cfg)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("connector: parse postgres dsn: %w", err)
	}
	if cfg.Pool.MaxOpen > 0 {
		poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		poolCfg.MinConns = int32(min(cfg.Pool.MaxIdle, int(poolCfg.MaxConns)))
	}
	if cfg.Pool.MaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	}
	if cfg.Pool.MaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	}
	return poolCfg, nil
}

func (p postgresProvider) Open(ctx context.Context, cfg Config) (database.Database, func() ConnectionStats, error) {
	poolCfg, err := p.poolConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	stats := func() ConnectionStats {
		s := pool.Stat()
		return ConnectionStats{
			OpenConnections: int(s.TotalConns()),
			InUse:           int(s.AcquiredConns()),
			Idle:            int(s.IdleConns()),
		}
	}
	return database.NewPgxDatabase(pool), stats, nil
}
