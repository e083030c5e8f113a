// Package cache mirrors published standings generations into Redis so
// read-heavy presentation layers can serve them without touching the
// engine. The in-process store stays authoritative; the mirror is a
// best-effort copy.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
	"github.com/jkc55555/betsup-engine/pkg/logger"
)

// Default mirror configuration constants.
const (
	defaultAddr = "localhost:6379"
	defaultTTL  = 5 * time.Minute
)

// StandingsMirror writes each generation to one Redis key per series.
type StandingsMirror struct {
	client *redis.Client
	ttl    time.Duration
	addr   string
	logger logger.Logger
}

// Option applies a configuration option to the StandingsMirror.
type Option func(*StandingsMirror)

// WithAddr sets the Redis server address.
func WithAddr(addr string) Option {
	return func(m *StandingsMirror) {
		if addr != "" {
			m.addr = addr
		}
	}
}

// WithTTL sets how long a mirrored generation stays readable. The TTL only
// matters when the engine stops publishing; every publish resets it.
func WithTTL(ttl time.Duration) Option {
	return func(m *StandingsMirror) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClient sets a pre-built Redis client, e.g. a miniredis-backed one in
// tests. It takes precedence over WithAddr.
func WithClient(c *redis.Client) Option {
	return func(m *StandingsMirror) {
		m.client = c
	}
}

// WithLogger sets a custom logger for the mirror.
func WithLogger(l logger.Logger) Option {
	return func(m *StandingsMirror) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a standings mirror with configuration options.
func New(opts ...Option) *StandingsMirror {
	m := &StandingsMirror{
		addr:   defaultAddr,
		ttl:    defaultTTL,
		logger: logger.Get().Named("cache"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.client == nil {
		m.client = redis.NewClient(&redis.Options{Addr: m.addr})
	}
	return m
}

// Ping verifies the Redis connection.
func (m *StandingsMirror) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (m *StandingsMirror) Close() error {
	return m.client.Close()
}

func standingsKey(seriesID string) string {
	return "series:" + seriesID + ":standings"
}

// PublishStandings writes the generation as JSON under the series key.
func (m *StandingsMirror) PublishStandings(ctx context.Context, seriesID string, gen *model.Generation) error {
	payload, err := json.Marshal(gen)
	if err != nil {
		return fmt.Errorf("marshal generation: %w", err)
	}
	if err := m.client.Set(ctx, standingsKey(seriesID), payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", standingsKey(seriesID), err)
	}
	m.logger.Debug(ctx, "mirrored standings",
		logger.String("series", seriesID),
		logger.Uint64("generation", gen.Number),
	)
	return nil
}

// Standings reads a mirrored generation back. Returns redis.Nil (wrapped)
// if the series has no mirrored standings.
func (m *StandingsMirror) Standings(ctx context.Context, seriesID string) (*model.Generation, error) {
	payload, err := m.client.Get(ctx, standingsKey(seriesID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", standingsKey(seriesID), err)
	}
	var gen model.Generation
	if err := json.Unmarshal(payload, &gen); err != nil {
		return nil, fmt.Errorf("unmarshal generation: %w", err)
	}
	// Rebuild through the constructor so the by-id index exists.
	return model.NewGeneration(gen.Number, gen.ComputedAt, gen.Snapshots), nil
}
