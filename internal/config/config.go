// Package config defines service configuration structures and loading hooks.
package config

import "context"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ShardCount configures the number of shards in the series store.
	ShardCount int `koanf:"shard_count"`

	// DedupeSize sets the size of the resolution deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxStandingsLimit caps GET /series/{id}/standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// RecomputeTimeoutMS is the soft deadline for one recompute pass.
	RecomputeTimeoutMS int `koanf:"recompute_timeout_ms"`

	// RecomputeRetries bounds automatic re-runs after a timed-out pass.
	RecomputeRetries int `koanf:"recompute_retries"`

	// RedisEnabled turns the standings cache mirror on.
	RedisEnabled bool `koanf:"redis_enabled"`

	// RedisAddr is the Redis server address for the standings mirror.
	RedisAddr string `koanf:"redis_addr"`

	// RedisTTLSeconds is how long mirrored standings stay readable
	// without a fresh publish.
	RedisTTLSeconds int `koanf:"redis_ttl_seconds"`

	// KafkaEnabled turns the resolution feed consumer on.
	KafkaEnabled bool `koanf:"kafka_enabled"`

	// KafkaBrokers lists the broker addresses of the resolution feed.
	KafkaBrokers []string `koanf:"kafka_brokers"`

	// KafkaTopic is the topic carrying bet resolutions.
	KafkaTopic string `koanf:"kafka_topic"`

	// KafkaGroupID is the consumer group id.
	KafkaGroupID string `koanf:"kafka_group_id"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		ShardCount:         8,
		DedupeSize:         50_000,
		MaxStandingsLimit:  1000,
		RecomputeTimeoutMS: 5000,
		RecomputeRetries:   2,
		RedisAddr:          "localhost:6379",
		RedisTTLSeconds:    300,
		KafkaBrokers:       []string{"localhost:9092"},
		KafkaTopic:         "bet_resolutions",
		KafkaGroupID:       "betsup-engine",
	}
}
