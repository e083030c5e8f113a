package engine

import (
	"time"

	"github.com/jkc55555/betsup-engine/internal/domain/achievement"
	"github.com/jkc55555/betsup-engine/internal/domain/scoring"
	"github.com/jkc55555/betsup-engine/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTimeout sets the soft deadline for one recompute pass.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRetries bounds the automatic re-runs after a timed-out pass.
func WithRetries(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.retries = n
		}
	}
}

// WithRetryBackoff sets the delay between automatic retries.
func WithRetryBackoff(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.backoff = d
		}
	}
}

// WithPolicy sets a custom scoring policy.
func WithPolicy(p *scoring.Policy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithEvaluator sets a custom achievement evaluator.
func WithEvaluator(ev *achievement.Evaluator) Option {
	return func(e *Engine) {
		if ev != nil {
			e.evaluator = ev
		}
	}
}

// WithPublisher mirrors each published generation to an external consumer.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
