// Package scoring computes per-pick point values for every supported
// scoring method. All computations are pure: the only cross-participant
// input (the field correctness ratio used by percentage_based) is supplied
// by the caller.
package scoring

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

// Default difficulty multipliers, applied only to otherwise-positive results.
var defaultMultipliers = map[model.Difficulty]decimal.Decimal{
	model.DifficultyEasy:   decimal.NewFromInt(1),
	model.DifficultyMedium: decimal.RequireFromString("1.25"),
	model.DifficultyHard:   decimal.RequireFromString("1.5"),
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithDifficultyMultipliers overrides the multiplier table. Non-positive
// multipliers are ignored.
func WithDifficultyMultipliers(multipliers map[model.Difficulty]decimal.Decimal) Option {
	return func(p *Policy) {
		for d, m := range multipliers {
			if m.IsPositive() {
				p.multipliers[d] = m
			}
		}
	}
}

// Result is the outcome of scoring a single judged pick.
type Result struct {
	Points decimal.Decimal
	// Eliminated is set for elimination_style when the pick was incorrect.
	// The participant's subsequent picks score zero regardless of
	// correctness; enforcing that terminality is the coordinator's job.
	Eliminated bool
}

// Policy converts judged picks into points.
type Policy struct {
	multipliers map[model.Difficulty]decimal.Decimal
}

// NewPolicy creates a scoring policy with configuration options.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		multipliers: make(map[model.Difficulty]decimal.Decimal, len(defaultMultipliers)),
	}
	for d, m := range defaultMultipliers {
		p.multipliers[d] = m
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PointsFor computes the points a judged pick earns. correct is the pick's
// correctness against the bet's winning side. fieldCorrectRatio is the
// fraction of the field that picked this bet correctly; it is consulted
// only by percentage_based and must be in [0, 1].
func (p *Policy) PointsFor(
	cfg model.ScoringConfig,
	bet model.Bet,
	pick model.Pick,
	correct bool,
	fieldCorrectRatio decimal.Decimal,
) (Result, error) {
	if cfg.BasePoints.IsNegative() {
		return Result{}, fmt.Errorf("%w: base points %s is negative", ErrInvalidConfig, cfg.BasePoints)
	}

	var points decimal.Decimal
	switch cfg.Method {
	case model.MethodPointsPerCorrect:
		if correct {
			points = cfg.BasePoints
		}

	case model.MethodWeighted:
		weight := decimal.NewFromInt(1) // unset weight defaults to 1
		if bet.Weight.Valid {
			if !bet.Weight.Decimal.IsPositive() {
				return Result{}, fmt.Errorf("%w: bet %s weight %s must be positive", ErrInvalidConfig, bet.ID, bet.Weight.Decimal)
			}
			weight = bet.Weight.Decimal
		}
		if correct {
			points = cfg.BasePoints.Mul(weight)
		}

	case model.MethodConfidence:
		if pick.Confidence < cfg.ConfidenceRange.Min || pick.Confidence > cfg.ConfidenceRange.Max {
			return Result{}, fmt.Errorf("%w: confidence %d outside [%d, %d]",
				ErrInvalidPick, pick.Confidence, cfg.ConfidenceRange.Min, cfg.ConfidenceRange.Max)
		}
		if correct {
			points = decimal.NewFromInt(int64(pick.Confidence))
		}

	case model.MethodElimination:
		if !correct {
			return Result{Eliminated: true}, nil
		}
		points = cfg.BasePoints

	case model.MethodPercentage:
		if fieldCorrectRatio.IsNegative() || fieldCorrectRatio.GreaterThan(decimal.NewFromInt(1)) {
			return Result{}, fmt.Errorf("%w: field correctness ratio %s outside [0, 1]", ErrInvalidConfig, fieldCorrectRatio)
		}
		if correct {
			points = cfg.BasePoints.Mul(decimal.NewFromInt(1).Sub(fieldCorrectRatio))
		}

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMethod, cfg.Method)
	}

	if cfg.DifficultyMultiplier && points.IsPositive() {
		if m, ok := p.multipliers[bet.Difficulty]; ok {
			points = points.Mul(m)
		}
	}

	return Result{Points: points}, nil
}

// ValidateConfidences checks the confidence permutation invariant for one
// participant: every confidence value must fall inside the configured range
// and no two picks may share a value.
func ValidateConfidences(cfg model.ScoringConfig, picks map[string]model.Pick) error {
	if cfg.Method != model.MethodConfidence {
		return nil
	}
	values := make([]int, 0, len(picks))
	for _, pick := range picks {
		values = append(values, pick.Confidence)
	}
	sort.Ints(values)
	for i, v := range values {
		if v < cfg.ConfidenceRange.Min || v > cfg.ConfidenceRange.Max {
			return fmt.Errorf("%w: confidence %d outside [%d, %d]",
				ErrInvalidPick, v, cfg.ConfidenceRange.Min, cfg.ConfidenceRange.Max)
		}
		if i > 0 && values[i-1] == v {
			return fmt.Errorf("%w: confidence %d assigned more than once", ErrInvalidPick, v)
		}
	}
	return nil
}

// ValidateConfig rejects configurations no method can score.
func ValidateConfig(cfg model.ScoringConfig) error {
	switch cfg.Method {
	case model.MethodPointsPerCorrect, model.MethodWeighted, model.MethodElimination, model.MethodPercentage:
	case model.MethodConfidence:
		if cfg.ConfidenceRange.Min > cfg.ConfidenceRange.Max {
			return fmt.Errorf("%w: confidence range [%d, %d] is inverted",
				ErrInvalidConfig, cfg.ConfidenceRange.Min, cfg.ConfidenceRange.Max)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, cfg.Method)
	}
	if cfg.BasePoints.IsNegative() {
		return fmt.Errorf("%w: base points %s is negative", ErrInvalidConfig, cfg.BasePoints)
	}
	if cfg.PerfectWeekBonus.IsNegative() || cfg.StreakBonus.IsNegative() {
		return fmt.Errorf("%w: bonuses must not be negative", ErrInvalidConfig)
	}
	return nil
}
