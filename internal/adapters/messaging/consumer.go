// Package messaging consumes bet resolutions from Kafka and feeds them to
// the standings service. Delivery is at-least-once; the service deduplicates
// by resolution id, so redelivered messages collapse to one application.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	service "github.com/jkc55555/betsup-engine/internal/app"
	"github.com/jkc55555/betsup-engine/pkg/logger"
)

// Default consumer configuration constants.
const (
	defaultTopic   = "bet_resolutions"
	defaultGroupID = "betsup-engine"

	minFetchBytes  = 1e3  // 1KB
	maxFetchBytes  = 10e6 // 10MB
	commitInterval = time.Second
)

// Resolver applies resolutions to a series. Implemented by the app service.
type Resolver interface {
	ResolveBet(ctx context.Context, seriesID string, res service.Resolution) error
}

// resolutionMessage is the wire form of one resolution event.
type resolutionMessage struct {
	SeriesID     string    `json:"series_id"`
	BetID        string    `json:"bet_id"`
	WinningSide  string    `json:"winning_side"`
	Void         bool      `json:"void"`
	ResolutionID string    `json:"resolution_id"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

func (m resolutionMessage) validate() error {
	if m.SeriesID == "" {
		return errors.New("missing series_id")
	}
	if m.BetID == "" {
		return errors.New("missing bet_id")
	}
	if !m.Void && m.WinningSide == "" {
		return errors.New("missing winning_side on non-void resolution")
	}
	return nil
}

// ResolutionConsumer reads resolution events from a Kafka topic.
type ResolutionConsumer struct {
	reader   *kafka.Reader
	resolver Resolver
	logger   logger.Logger

	brokers []string
	topic   string
	groupID string
}

// Option applies a configuration option to the ResolutionConsumer.
type Option func(*ResolutionConsumer)

// WithTopic sets the topic to consume resolutions from.
func WithTopic(topic string) Option {
	return func(c *ResolutionConsumer) {
		if topic != "" {
			c.topic = topic
		}
	}
}

// WithGroupID sets the consumer group id.
func WithGroupID(id string) Option {
	return func(c *ResolutionConsumer) {
		if id != "" {
			c.groupID = id
		}
	}
}

// WithLogger sets a custom logger for the consumer.
func WithLogger(l logger.Logger) Option {
	return func(c *ResolutionConsumer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewResolutionConsumer creates a consumer reading from the given brokers.
func NewResolutionConsumer(brokers []string, resolver Resolver, opts ...Option) *ResolutionConsumer {
	c := &ResolutionConsumer{
		resolver: resolver,
		logger:   logger.Get().Named("messaging"),
		brokers:  brokers,
		topic:    defaultTopic,
		groupID:  defaultGroupID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.brokers,
		Topic:          c.topic,
		GroupID:        c.groupID,
		MinBytes:       minFetchBytes,
		MaxBytes:       maxFetchBytes,
		CommitInterval: commitInterval,
	})
	return c
}

// Run consumes until the context is cancelled. Messages that fail to apply
// are not committed, so the broker redelivers them.
func (c *ResolutionConsumer) Run(ctx context.Context) error {
	c.logger.Info(ctx, "consuming bet resolutions",
		logger.String("topic", c.topic),
		logger.String("group", c.groupID),
	)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.logger.Info(context.Background(), "resolution consumer stopping")
				return c.reader.Close()
			}
			c.logger.Error(ctx, "fetch failed", logger.Error(err))
			continue
		}

		if err := c.apply(ctx, msg); err != nil {
			c.logger.Error(ctx, "resolution not applied",
				logger.Int64("offset", msg.Offset),
				logger.String("key", string(msg.Key)),
				logger.Error(err),
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error(ctx, "commit failed", logger.Error(err))
		}
	}
}

func (c *ResolutionConsumer) apply(ctx context.Context, msg kafka.Message) error {
	res, err := decodeResolution(msg.Value)
	if err != nil {
		return err
	}
	return c.resolver.ResolveBet(ctx, res.SeriesID, service.Resolution{
		ID:          res.ResolutionID,
		BetID:       res.BetID,
		WinningSide: res.WinningSide,
		Void:        res.Void,
	})
}

func decodeResolution(value []byte) (resolutionMessage, error) {
	var m resolutionMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return resolutionMessage{}, fmt.Errorf("unmarshal resolution: %w", err)
	}
	if err := m.validate(); err != nil {
		return resolutionMessage{}, fmt.Errorf("invalid resolution: %w", err)
	}
	return m, nil
}

// Close closes the underlying Kafka reader.
func (c *ResolutionConsumer) Close() error {
	return c.reader.Close()
}
