package connector

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNBuilder(t *testing.T) {
	tests := []struct {
		name string
		b    *DSNBuilder
		want string
	}{
		{
			"full",
			NewDSNBuilder("postgres").Auth("u", "p@ss").Host("db", 5432).Database("app").
				Param("sslmode", "disable").Params(map[string]string{"application_name": "x", "empty": ""}),
			"postgres://u:p%40ss@db:5432/app?application_name=x&sslmode=disable",
		},
		{
			"no port no password",
			NewDSNBuilder("postgres").Auth("u", "").Host("db", 0).Database("app"),
			"postgres://u@db/app",
		},
		{
			"host only",
			NewDSNBuilder("postgres").Host("db", 5432),
			"postgres://db:5432",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.b.Validate())
			assert.Equal(t, tt.want, tt.b.Build())
		})
	}
}

func TestDSNBuilder_Validate(t *testing.T) {
	assert.ErrorIs(t, NewDSNBuilder("postgres").Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, NewDSNBuilder("postgres").Host("db", 99999).Validate(), ErrInvalidConfig)
}

func TestPostgresProvider_DSN(t *testing.T) {
	cfg := Config{
		Driver:         "postgres",
		Host:           "db",
		Port:           5432,
		Database:       "app",
		Username:       "u",
		Password:       "p",
		SSLMode:        "disable",
		ConnectTimeout: 5 * time.Second,
	}
	dsn, err := postgresProvider{}.DSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/app?connect_timeout=5&sslmode=disable", dsn)

	_, err = postgresProvider{}.DSN(Config{Driver: "postgres"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPostgresProvider_PoolConfig(t *testing.T) {
	cfg := Config{
		Driver: "postgres",
		Host:   "db",
		Port:   5432,
		Pool:   PoolConfig{MaxOpen: 20, MaxIdle: 5, MaxLifetime: time.Hour, MaxIdleTime: time.Minute},
	}
	poolCfg, err := postgresProvider{}.poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(20), poolCfg.MaxConns)
	assert.Equal(t, int32(5), poolCfg.MinConns)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
	assert.Equal(t, time.Minute, poolCfg.MaxConnIdleTime)
	assert.Equal(t, "db", poolCfg.ConnConfig.Host)
	assert.Equal(t, uint16(5432), poolCfg.ConnConfig.Port)
}

func TestMySQLProvider_DSN(t *testing.T) {
	cfg := Config{
		Driver:         "mysql",
		Host:           "db",
		Database:       "app",
		Username:       "u",
		Password:       "p",
		SSLMode:        "disable",
		ConnectTimeout: 3 * time.Second,
		Params:         map[string]string{"autocommit": "1"},
	}
	dsn, err := mysqlProvider{}.DSN(cfg)
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "u", parsed.User)
	assert.Equal(t, "p", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "app", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, 3*time.Second, parsed.Timeout)
	assert.Equal(t, "false", parsed.TLSConfig)
	assert.Equal(t, "1", parsed.Params["autocommit"])

	_, err = mysqlProvider{}.DSN(Config{Driver: "mysql"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSQLiteProvider_DSN(t *testing.T) {
	dsn, err := sqliteProvider{}.DSN(Config{Path: "app.db"})
	require.NoError(t, err)
	assert.Equal(t, "app.db", dsn)

	dsn, err = sqliteProvider{}.DSN(Config{Path: "app.db", Params: map[string]string{"_foreign_keys": "on", "cache": "shared"}})
	require.NoError(t, err)
	assert.Equal(t, "file:app.db?_foreign_keys=on&cache=shared", dsn)

	_, err = sqliteProvider{}.DSN(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
