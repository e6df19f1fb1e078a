package connector

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes the environment variables LoadConfig reads.
const EnvPrefix = "OBJQUERY_"

// LoadConfig loads configuration with layered sources:
//  1. Defaults from DefaultConfig
//  2. The YAML file at path, when path is not empty
//  3. OBJQUERY_* environment variables
//
// OBJQUERY_POOL_MAX_OPEN sets pool.max_open, OBJQUERY_PARAMS_<NAME> sets
// the driver parameter <name>.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envSections lists the nested sections; keys inside them keep their
// underscores (OBJQUERY_POOL_MAX_OPEN -> pool.max_open).
var envSections = []string{"pool", "retry", "params"}

// envTransformFunc maps OBJQUERY_SSL_MODE to ssl_mode and
// OBJQUERY_RETRY_MAX_RETRIES to retry.max_retries.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, section := range envSections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok && rest != "" {
			return section + "." + rest
		}
	}
	return key
}
