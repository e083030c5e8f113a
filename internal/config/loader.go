package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if BETSUP_CONFIG is set
//  3. env (prefix BETSUP_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("BETSUP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: BETSUP_ADDR, BETSUP_SHARD_COUNT, ...
	// Map env keys like BETSUP_SHARD_COUNT -> shard_count (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("BETSUP_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "betsup_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ShardCount <= 0:
		return fmt.Errorf("%w: shard_count must be positive", ErrInvalidConfig)
	case c.RecomputeTimeoutMS <= 0:
		return fmt.Errorf("%w: recompute_timeout_ms must be positive", ErrInvalidConfig)
	case c.RecomputeRetries < 0:
		return fmt.Errorf("%w: recompute_retries must not be negative", ErrInvalidConfig)
	case c.KafkaEnabled && len(c.KafkaBrokers) == 0:
		return fmt.Errorf("%w: kafka_brokers must not be empty when kafka is enabled", ErrInvalidConfig)
	case c.RedisEnabled && c.RedisAddr == "":
		return fmt.Errorf("%w: redis_addr must not be empty when redis is enabled", ErrInvalidConfig)
	}
	return nil
}
