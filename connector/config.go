package connector

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("connector: invalid configuration")

// Config represents database connection configuration.
type Config struct {
	Driver         string            `json:"driver" yaml:"driver" koanf:"driver"`
	Host           string            `json:"host" yaml:"host" koanf:"host"`
	Port           int               `json:"port" yaml:"port" koanf:"port"`
	Database       string            `json:"database" yaml:"database" koanf:"database"`
	Username       string            `json:"username" yaml:"username" koanf:"username"`
	Password       string            `json:"password" yaml:"password" koanf:"password"`
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode" koanf:"ssl_mode"`
	Path           string            `json:"path" yaml:"path" koanf:"path"`
	Params         map[string]string `json:"params" yaml:"params" koanf:"params"`
	Pool           PoolConfig        `json:"pool" yaml:"pool" koanf:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout" koanf:"connect_timeout"`
	Retry          RetryConfig       `json:"retry" yaml:"retry" koanf:"retry"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open" koanf:"max_open"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle" koanf:"max_idle"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime" koanf:"max_lifetime"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time" koanf:"max_idle_time"`
	// StatementCache is the number of prepared statements kept per
	// database/sql connection pool; zero disables caching.
	StatementCache int `json:"statement_cache" yaml:"statement_cache" koanf:"statement_cache"`
}

// RetryConfig defines connection retry behavior. MaxRetries of zero
// means a single attempt.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries" koanf:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay" koanf:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay" koanf:"max_delay"`
	Backoff    float64       `json:"backoff" yaml:"backoff" koanf:"backoff"`
}

// DefaultConfig returns the configuration used when nothing overrides it:
// an in-memory SQLite database.
func DefaultConfig() Config {
	return Config{
		Driver: "sqlite3",
		Path:   ":memory:",
		Pool: PoolConfig{
			MaxOpen:     10,
			MaxIdle:     2,
			MaxLifetime: time.Hour,
			MaxIdleTime: 30 * time.Minute,
		},
		ConnectTimeout: 10 * time.Second,
		Retry: RetryConfig{
			BaseDelay: time.Second,
			MaxDelay:  30 * time.Second,
			Backoff:   2,
		},
	}
}

// Validate checks the fields the configured driver needs.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("%w: driver is required", ErrInvalidConfig)
	}
	if _, ok := Lookup(c.Driver); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDriver, c.Driver)
	}
	if isFileDriver(c.Driver) {
		if c.Path == "" {
			return fmt.Errorf("%w: path is required for %s", ErrInvalidConfig, c.Driver)
		}
	} else {
		if c.Host == "" {
			return fmt.Errorf("%w: host is required", ErrInvalidConfig)
		}
		if c.Port < 0 || c.Port > 65535 {
			return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
		}
	}
	if c.Pool.MaxOpen < 0 || c.Pool.MaxIdle < 0 || c.Pool.StatementCache < 0 {
		return fmt.Errorf("%w: pool sizes must not be negative", ErrInvalidConfig)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	return nil
}

func isFileDriver(driver string) bool {
	return driver == "sqlite3" || driver == "sqlite"
}
