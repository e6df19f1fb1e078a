package connector

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Konsultn-Engineering/objquery/database"
	"github.com/Konsultn-Engineering/objquery/dialect"
)

// mysqlProvider serves MySQL and TiDB through go-sql-driver/mysql.
type mysqlProvider struct {
	dialect dialect.Dialect
}

func (p mysqlProvider) Dialect() dialect.Dialect { return p.dialect }

func (mysqlProvider) DSN(cfg Config) (string, error) {
	if cfg.Host == "" {
		return "", fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout
	if cfg.SSLMode != "" {
		mc.TLSConfig = mysqlTLS(cfg.SSLMode)
	}
	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN(), nil
}

// mysqlTLS maps libpq-style ssl modes onto the driver's tls parameter.
func mysqlTLS(sslMode string) string {
	switch sslMode {
	case "disable":
		return "false"
	case "prefer", "allow":
		return "preferred"
	case "require":
		return "skip-verify"
	case "verify-ca", "verify-full":
		return "true"
	default:
		return sslMode
	}
}

func (p mysqlProvider) Open(ctx context.Context, cfg Config) (database.Database, func() ConnectionStats, error) {
	dsn, err := p.DSN(cfg)
	if err != nil {
		return nil, nil, err
	}
	return openSQL(ctx, "mysql", dsn, cfg.Pool)
}

// sqliteProvider serves SQLite files through mattn/go-sqlite3. The named
// dialect applies: SQLite binds @name parameters.
type sqliteProvider struct{}

func (sqliteProvider) Dialect() dialect.Dialect { return dialect.NewNamedDialect() }

func (sqliteProvider) DSN(cfg Config) (string, error) {
	if cfg.Path == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidConfig)
	}
	if len(cfg.Params) == 0 {
		return cfg.Path, nil
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	return "file:" + cfg.Path + "?" + q.Encode(), nil
}

func (p sqliteProvider) Open(ctx context.Context, cfg Config) (database.Database, func() ConnectionStats, error) {
	dsn, err := p.DSN(cfg)
	if err != nil {
		return nil, nil, err
	}
	pool := cfg.Pool
	if cfg.Path == ":memory:" {
		// Every connection to :memory: opens a separate database.
		pool.MaxOpen = 1
		pool.MaxLifetime = 0
		pool.MaxIdleTime = 0
	}
	return openSQL(ctx, "sqlite3", dsn, pool)
}

func openSQL(ctx context.Context, driver, dsn string, pool PoolConfig) (database.Database, func() ConnectionStats, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	if pool.MaxOpen > 0 {
		db.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		db.SetMaxIdleConns(pool.MaxIdle)
	}
	if pool.MaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.MaxLifetime)
	}
	if pool.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.MaxIdleTime)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	var opts []database.SqlOption
	if pool.StatementCache > 0 {
		cache, err := database.NewStatementCache(pool.StatementCache)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		opts = append(opts, database.WithStatementCache(cache))
	}

	stats := func() ConnectionStats {
		s := db.Stats()
		return ConnectionStats{
			OpenConnections: s.OpenConnections,
			InUse:           s.InUse,
			Idle:            s.Idle,
		}
	}
	return database.NewSqlDatabase(db, opts...), stats, nil
}
