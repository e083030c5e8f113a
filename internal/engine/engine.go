// Package engine coordinates series recomputes: it serializes concurrent
// triggers per series, rebuilds the full snapshot set through the scoring,
// streak, ranking and achievement components, and publishes each complete
// generation atomically. A failed pass leaves the previous generation
// untouched.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jkc55555/betsup-engine/internal/adapters/repository"
	"github.com/jkc55555/betsup-engine/internal/domain/achievement"
	"github.com/jkc55555/betsup-engine/internal/domain/model"
	"github.com/jkc55555/betsup-engine/internal/domain/ranking"
	"github.com/jkc55555/betsup-engine/internal/domain/scoring"
	"github.com/jkc55555/betsup-engine/internal/domain/streak"
	"github.com/jkc55555/betsup-engine/pkg/logger"
	"github.com/jkc55555/betsup-engine/pkg/metrics"
)

// Default coordinator configuration constants.
const (
	defaultTimeout      = 5 * time.Second
	defaultRetries      = 2
	defaultRetryBackoff = 50 * time.Millisecond
	streakBonusRunLen   = 3 // correct run length from which the per-bet streak bonus applies
)

// Publisher mirrors a published generation to an external standings
// consumer (e.g. a cache read by the presentation layer).
type Publisher interface {
	PublishStandings(ctx context.Context, seriesID string, gen *model.Generation) error
}

// Engine is the per-series recompute coordinator.
type Engine struct {
	store     repository.Store
	policy    *scoring.Policy
	evaluator *achievement.Evaluator
	publisher Publisher
	logger    logger.Logger

	timeout time.Duration
	retries int
	backoff time.Duration

	mu     sync.Mutex
	states map[string]*seriesState
}

// seriesState tracks the per-series recompute slot. At most one pass runs
// at a time; triggers arriving mid-pass are coalesced into a single
// follow-up pass instead of queueing one pass per trigger.
type seriesState struct {
	mu      sync.Mutex
	running bool
	pending bool
}

// New creates an engine with configuration options.
func New(store repository.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		policy:    scoring.NewPolicy(),
		evaluator: achievement.NewEvaluator(),
		logger:    logger.Get().Named("engine"),
		timeout:   defaultTimeout,
		retries:   defaultRetries,
		backoff:   defaultRetryBackoff,
		states:    make(map[string]*seriesState),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Trigger requests a recompute of the series. If a pass is already running
// the trigger is folded into one follow-up pass and Trigger returns nil;
// otherwise the pass runs on the caller's goroutine and its error is
// returned. Triggers for different series never contend.
func (e *Engine) Trigger(ctx context.Context, seriesID string) error {
	st := e.stateFor(seriesID)

	st.mu.Lock()
	if st.running {
		st.pending = true
		st.mu.Unlock()
		metrics.RecordTriggerCoalesced()
		return nil
	}
	st.running = true
	st.mu.Unlock()

	err := e.runWithRetries(ctx, seriesID)

	for {
		st.mu.Lock()
		if !st.pending {
			st.running = false
			st.mu.Unlock()
			return err
		}
		st.pending = false
		st.mu.Unlock()

		// Follow-up pass for triggers coalesced while we were running.
		// Its callers have already returned, so failures surface through
		// metrics and the log rather than a return value.
		if ferr := e.runWithRetries(ctx, seriesID); ferr != nil {
			metrics.RecordRecomputeFailure()
			e.logger.Error(ctx, "coalesced recompute pass failed",
				logger.String("series", seriesID),
				logger.Error(ferr),
			)
		}
	}
}

func (e *Engine) stateFor(seriesID string) *seriesState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[seriesID]
	if !ok {
		st = &seriesState{}
		e.states[seriesID] = st
	}
	return st
}

func (e *Engine) runWithRetries(ctx context.Context, seriesID string) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = e.runPass(ctx, seriesID)
		if err == nil || !errors.Is(err, ErrRecomputeTimeout) {
			return err
		}
		metrics.RecordRecomputeTimeout()
		if attempt >= e.retries {
			break
		}
		metrics.RecordRecomputeRetry()
		select {
		case <-ctx.Done():
			return err
		case <-time.After(e.backoff):
		}
	}
	metrics.RecordRecomputeRetriesExhausted()
	e.logger.Error(ctx, "recompute kept timing out; giving up",
		logger.String("series", seriesID),
		logger.Int("retries", e.retries),
	)
	return err
}

// runPass executes one all-or-nothing recompute. Any error leaves the
// previously published generation as the authoritative one.
func (e *Engine) runPass(ctx context.Context, seriesID string) error {
	start := time.Now()
	pctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	series, err := e.store.Series(pctx, seriesID)
	if err != nil {
		return err
	}
	if series.Closed() {
		return fmt.Errorf("%w: series %s is %s", ErrSeriesClosed, seriesID, series.Status)
	}

	prevRanks := make(map[string]int)
	var prevNumber uint64
	switch prev, err := e.store.Generation(pctx, seriesID); {
	case err == nil:
		prevRanks = prev.Ranks()
		prevNumber = prev.Number
	case errors.Is(err, repository.ErrNoGeneration):
		// first pass for this series
	default:
		return err
	}

	snapshots, err := e.computeSnapshots(pctx, series)
	if err != nil {
		metrics.RecordRecomputeFailure()
		return err
	}

	ranked := ranking.Assign(snapshots, prevRanks)
	for i := range ranked {
		ranked[i].Achievements = e.evaluator.Evaluate(ranked[i], series)
	}

	gen := model.NewGeneration(prevNumber+1, time.Now().UTC(), ranked)
	if err := e.store.PublishGeneration(pctx, seriesID, gen); err != nil {
		metrics.RecordRecomputeFailure()
		return err
	}

	metrics.RecordRecomputePass()
	metrics.RecordRecomputeDuration(float64(time.Since(start).Milliseconds()))
	e.logger.Debug(ctx, "published generation",
		logger.String("series", seriesID),
		logger.Uint64("generation", gen.Number),
		logger.Int("participants", len(ranked)),
	)

	e.mirror(ctx, seriesID, gen)
	return nil
}

// mirror pushes the generation to the external standings consumer. The
// authoritative generation is already swapped; mirror failures degrade the
// cache, not the engine, so they surface as metrics and log noise only.
func (e *Engine) mirror(ctx context.Context, seriesID string, gen *model.Generation) {
	if e.publisher == nil {
		return
	}
	start := time.Now()
	if err := e.publisher.PublishStandings(ctx, seriesID, gen); err != nil {
		metrics.RecordMirrorPublishError()
		e.logger.Warn(ctx, "standings mirror publish failed",
			logger.String("series", seriesID),
			logger.Uint64("generation", gen.Number),
			logger.Error(err),
		)
		return
	}
	metrics.RecordPublishLatency(float64(time.Since(start).Milliseconds()))
}

// computeSnapshots rebuilds every participant's standing from scratch.
func (e *Engine) computeSnapshots(ctx context.Context, series *model.Series) ([]model.Snapshot, error) {
	bets := series.BetsInOrder()
	ratios, err := fieldCorrectRatios(series, bets)
	if err != nil {
		return nil, err
	}

	resolvedCount := series.ResolvedBetCount()
	snapshots := make([]model.Snapshot, 0, len(series.Participants))
	for i := range series.Participants {
		if err := passContextErr(ctx); err != nil {
			return nil, err
		}
		snap, err := e.computeOne(series, &series.Participants[i], bets, ratios, resolvedCount)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func (e *Engine) computeOne(
	series *model.Series,
	p *model.Participant,
	bets []model.Bet,
	ratios map[string]decimal.Decimal,
	resolvedCount int,
) (model.Snapshot, error) {
	cfg := series.Scoring
	if err := scoring.ValidateConfidences(cfg, p.Picks); err != nil {
		return model.Snapshot{}, fmt.Errorf("participant %s: %w", p.ID, err)
	}

	var (
		score      decimal.Decimal
		correct    int
		judged     int
		eliminated bool
		run        int // trailing correct run while walking, for the streak bonus
		outcomes   = make([]streak.Outcome, 0, len(bets))
	)

	for _, bet := range bets {
		if bet.Status == model.BetCancelled {
			// Cancelled bets score nothing and break no streak.
			if _, picked := p.Picks[bet.ID]; picked {
				outcomes = append(outcomes, streak.Skipped)
			}
			continue
		}
		if bet.Status != model.BetResolved {
			continue
		}
		pick, picked := p.Picks[bet.ID]
		if !picked {
			continue
		}

		isCorrect := pick.Side == bet.WinningSide
		judged++
		if isCorrect {
			correct++
			outcomes = append(outcomes, streak.Correct)
		} else {
			outcomes = append(outcomes, streak.Incorrect)
		}

		if eliminated {
			// Terminal: the score is frozen, later picks contribute nothing.
			continue
		}

		res, err := e.policy.PointsFor(cfg, bet, pick, isCorrect, ratios[bet.ID])
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("participant %s bet %s: %w", p.ID, bet.ID, err)
		}
		if res.Eliminated {
			eliminated = true
			run = 0
			continue
		}
		score = score.Add(res.Points)

		if isCorrect {
			run++
			if run >= streakBonusRunLen && cfg.StreakBonus.IsPositive() {
				score = score.Add(cfg.StreakBonus)
			}
		} else {
			run = 0
		}
	}

	if cfg.PerfectWeekBonus.IsPositive() &&
		!eliminated &&
		resolvedCount > 0 &&
		judged == resolvedCount &&
		correct == judged {
		score = score.Add(cfg.PerfectWeekBonus)
	}

	streaks := streak.Compute(outcomes)
	return model.Snapshot{
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		JoinedAt:      p.JoinedAt,
		Score:         score,
		CorrectCount:  correct,
		JudgedCount:   judged,
		CurrentStreak: streaks.Current,
		LongestStreak: streaks.Longest,
		Eliminated:    eliminated,
	}, nil
}

// fieldCorrectRatios computes, per resolved bet, the fraction of the field
// that picked it correctly. Only percentage_based consumes it; computing it
// here once per pass keeps the scoring policy free of cross-participant
// inputs.
func fieldCorrectRatios(series *model.Series, bets []model.Bet) (map[string]decimal.Decimal, error) {
	ratios := make(map[string]decimal.Decimal)
	if series.Scoring.Method != model.MethodPercentage {
		return ratios, nil
	}
	for _, bet := range bets {
		if bet.Status != model.BetResolved {
			continue
		}
		total, correct := 0, 0
		for i := range series.Participants {
			pick, ok := series.Participants[i].Picks[bet.ID]
			if !ok {
				continue
			}
			total++
			if pick.Side == bet.WinningSide {
				correct++
			}
		}
		if total == 0 {
			ratios[bet.ID] = decimal.Zero
			continue
		}
		ratios[bet.ID] = decimal.NewFromInt(int64(correct)).Div(decimal.NewFromInt(int64(total)))
	}
	return ratios, nil
}

func passContextErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrRecomputeTimeout, ctx.Err())
		}
		return fmt.Errorf("%w: %v", ErrPassAborted, ctx.Err())
	default:
		return nil
	}
}
