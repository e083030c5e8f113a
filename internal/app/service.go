// Package service provides the core business service that implements
// the dependencies required by the HTTP API: series administration, pick
// intake, resolution intake and standings reads, with every state change
// funnelled through the recompute engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jkc55555/betsup-engine/internal/adapters/repository"
	"github.com/jkc55555/betsup-engine/internal/domain/dedupe"
	"github.com/jkc55555/betsup-engine/internal/domain/model"
	"github.com/jkc55555/betsup-engine/internal/domain/scoring"
	"github.com/jkc55555/betsup-engine/internal/engine"
	"github.com/jkc55555/betsup-engine/pkg/logger"
	"github.com/jkc55555/betsup-engine/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultShardCount        = 8
	defaultDedupeSize        = 50_000
	defaultMaxStandingsLimit = 1000
	defaultRecomputeTimeout  = 5 * time.Second
	defaultRecomputeRetries  = 2
)

// Resolution is an authoritative outcome for one bet. ID deduplicates
// redelivered resolutions; an empty ID gets a generated one and is applied
// unconditionally.
type Resolution struct {
	ID          string `json:"resolution_id"`
	BetID       string `json:"bet_id"`
	WinningSide string `json:"winning_side"`
	Void        bool   `json:"void"`
}

// Service implements the API dependencies for the standings system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	engine  *engine.Engine

	// Configuration
	shardCount        int
	dedupeSize        int
	maxStandingsLimit int
	recomputeTimeout  time.Duration
	recomputeRetries  int
	publisher         engine.Publisher

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithShardCount sets the number of store shards.
func WithShardCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithDedupeSize sets the size of the resolution deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxStandingsLimit caps the page size of standings reads.
func WithMaxStandingsLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxStandingsLimit = n
		}
	}
}

// WithRecomputeTimeout sets the soft deadline for one recompute pass.
func WithRecomputeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.recomputeTimeout = d
		}
	}
}

// WithRecomputeRetries bounds automatic re-runs after a timed-out pass.
func WithRecomputeRetries(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.recomputeRetries = n
		}
	}
}

// WithStandingsPublisher mirrors each published generation to an external
// consumer such as the Redis cache.
func WithStandingsPublisher(p engine.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		shardCount:        defaultShardCount,
		dedupeSize:        defaultDedupeSize,
		maxStandingsLimit: defaultMaxStandingsLimit,
		recomputeTimeout:  defaultRecomputeTimeout,
		recomputeRetries:  defaultRecomputeRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.store = repository.NewMemStore(repository.WithShardCount(s.shardCount))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	engineOpts := []engine.Option{
		engine.WithTimeout(s.recomputeTimeout),
		engine.WithRetries(s.recomputeRetries),
		engine.WithLogger(s.logger.Named("engine")),
	}
	if s.publisher != nil {
		engineOpts = append(engineOpts, engine.WithPublisher(s.publisher))
	}
	s.engine = engine.New(s.store, engineOpts...)

	s.started = true
	s.logger.Info(ctx, "standings service started",
		logger.Int("shards", s.shardCount),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("recomputeTimeout", s.recomputeTimeout),
	)
	return nil
}

// Stop shuts the service down. In-flight recomputes finish on their
// callers' goroutines; there is nothing else to drain.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "standings service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// CreateSeries validates and registers a new series. Empty series and bet
// ids get generated ones; the (possibly updated) id is returned.
func (s *Service) CreateSeries(ctx context.Context, series *model.Series) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if err := scoring.ValidateConfig(series.Scoring); err != nil {
		return "", err
	}
	if err := validateBets(series.Bets); err != nil {
		return "", err
	}

	if series.ID == "" {
		series.ID = uuid.NewString()
	}
	series.Status = model.SeriesOpen
	for i := range series.Bets {
		if series.Bets[i].ID == "" {
			series.Bets[i].ID = uuid.NewString()
		}
		if series.Bets[i].Status == "" {
			series.Bets[i].Status = model.BetPending
		}
	}

	if err := s.store.CreateSeries(ctx, series); err != nil {
		return "", err
	}
	metrics.UpdateSeriesTracked(s.store.SeriesCount(ctx))
	s.logger.Info(ctx, "series created",
		logger.String("series", series.ID),
		logger.String("method", string(series.Scoring.Method)),
		logger.Int("bets", len(series.Bets)),
	)
	return series.ID, nil
}

func validateBets(bets []model.Bet) error {
	ids := make(map[string]struct{}, len(bets))
	orders := make(map[int]struct{}, len(bets))
	for _, b := range bets {
		if len(b.Sides) < 2 {
			return fmt.Errorf("%w: bet %q needs at least two sides", scoring.ErrInvalidConfig, b.Label)
		}
		if b.Weight.Valid && !b.Weight.Decimal.IsPositive() {
			return fmt.Errorf("%w: bet %q weight %s must be positive", scoring.ErrInvalidConfig, b.Label, b.Weight.Decimal)
		}
		if b.ID != "" {
			if _, dup := ids[b.ID]; dup {
				return fmt.Errorf("%w: duplicate bet id %q", scoring.ErrInvalidConfig, b.ID)
			}
			ids[b.ID] = struct{}{}
		}
		if _, dup := orders[b.Order]; dup {
			return fmt.Errorf("%w: duplicate bet order %d", scoring.ErrInvalidConfig, b.Order)
		}
		orders[b.Order] = struct{}{}
	}
	return nil
}

// Join adds a participant to an open series.
func (s *Service) Join(ctx context.Context, seriesID, participantID, displayName string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if participantID == "" {
		participantID = uuid.NewString()
	}
	err := s.store.UpdateSeries(ctx, seriesID, func(series *model.Series) error {
		if series.Closed() {
			return fmt.Errorf("%w: series %s is %s", engine.ErrSeriesClosed, seriesID, series.Status)
		}
		if _, exists := series.Participant(participantID); exists {
			return repository.ErrParticipantExists
		}
		series.Participants = append(series.Participants, model.Participant{
			ID:          participantID,
			DisplayName: displayName,
			JoinedAt:    time.Now().UTC(),
			Picks:       make(map[string]model.Pick),
		})
		return nil
	})
	if err != nil {
		return err
	}
	metrics.UpdateParticipantsTracked(s.store.ParticipantCount(ctx))
	return s.triggerRecompute(ctx, seriesID)
}

// SubmitPick records or replaces a participant's pick on an unresolved bet.
func (s *Service) SubmitPick(ctx context.Context, seriesID, participantID string, pick model.Pick) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.store.UpdateSeries(ctx, seriesID, func(series *model.Series) error {
		if series.Closed() {
			return fmt.Errorf("%w: series %s is %s", engine.ErrSeriesClosed, seriesID, series.Status)
		}
		p, ok := series.Participant(participantID)
		if !ok {
			return repository.ErrParticipantNotFound
		}
		bet, ok := series.Bet(pick.BetID)
		if !ok {
			return repository.ErrBetNotFound
		}
		if bet.Status == model.BetResolved || bet.Status == model.BetCancelled {
			return fmt.Errorf("%w: bet %s is %s", ErrPickLocked, bet.ID, bet.Status)
		}
		if !bet.HasSide(pick.Side) {
			return fmt.Errorf("%w: bet %s has no side %q", ErrInvalidSelection, bet.ID, pick.Side)
		}

		// Validate the confidence layout with the new pick in place.
		next := make(map[string]model.Pick, len(p.Picks)+1)
		for id, existing := range p.Picks {
			next[id] = existing
		}
		pick.PickedAt = time.Now().UTC()
		next[pick.BetID] = pick
		if err := scoring.ValidateConfidences(series.Scoring, next); err != nil {
			return err
		}

		p.Picks[pick.BetID] = pick
		return nil
	})
	if err != nil {
		metrics.RecordPickRejected()
		return err
	}
	metrics.RecordPickSubmitted()
	return s.triggerRecompute(ctx, seriesID)
}

// ResolveBet applies an authoritative outcome to a bet. Redelivered
// resolutions (same Resolution.ID) are dropped without a recompute.
func (s *Service) ResolveBet(ctx context.Context, seriesID string, res Resolution) error {
	if err := s.ready(); err != nil {
		return err
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if s.deduper.SeenAndRecord(ctx, res.ID) {
		metrics.RecordResolutionDuplicate()
		s.logger.Debug(ctx, "duplicate resolution dropped",
			logger.String("series", seriesID),
			logger.String("resolution", res.ID),
		)
		return nil
	}

	err := s.store.UpdateSeries(ctx, seriesID, func(series *model.Series) error {
		if series.Closed() {
			return fmt.Errorf("%w: series %s is %s", engine.ErrSeriesClosed, seriesID, series.Status)
		}
		for i := range series.Bets {
			if series.Bets[i].ID != res.BetID {
				continue
			}
			if res.Void {
				series.Bets[i].Status = model.BetCancelled
				series.Bets[i].WinningSide = ""
				return nil
			}
			if !series.Bets[i].HasSide(res.WinningSide) {
				return fmt.Errorf("%w: bet %s has no side %q", ErrInvalidSelection, res.BetID, res.WinningSide)
			}
			series.Bets[i].Status = model.BetResolved
			series.Bets[i].WinningSide = res.WinningSide
			return nil
		}
		return repository.ErrBetNotFound
	})
	if err != nil {
		// Let the feed retry the same resolution id after a failure.
		s.deduper.Unrecord(ctx, res.ID)
		return err
	}

	metrics.RecordResolutionApplied()
	s.logger.Info(ctx, "resolution applied",
		logger.String("series", seriesID),
		logger.String("bet", res.BetID),
		logger.String("winner", res.WinningSide),
		logger.Bool("void", res.Void),
	)
	return s.triggerRecompute(ctx, seriesID)
}

// CloseSeries runs a final recompute and marks the series completed.
// Further picks, resolutions and recomputes are rejected afterwards.
func (s *Service) CloseSeries(ctx context.Context, seriesID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.engine.Trigger(ctx, seriesID); err != nil {
		return err
	}
	return s.store.UpdateSeries(ctx, seriesID, func(series *model.Series) error {
		if series.Closed() {
			return fmt.Errorf("%w: series %s is %s", engine.ErrSeriesClosed, seriesID, series.Status)
		}
		series.Status = model.SeriesCompleted
		return nil
	})
}

// Standings returns the top entries of the latest published generation.
// A limit of zero means all entries, capped at the configured maximum.
// A series with no published generation yet has empty standings.
func (s *Service) Standings(ctx context.Context, seriesID string, limit int) ([]model.Snapshot, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if _, err := s.store.Series(ctx, seriesID); err != nil {
		return nil, err
	}
	gen, err := s.store.Generation(ctx, seriesID)
	if errors.Is(err, repository.ErrNoGeneration) {
		return []model.Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > s.maxStandingsLimit {
		limit = s.maxStandingsLimit
	}
	if limit > len(gen.Snapshots) {
		limit = len(gen.Snapshots)
	}
	out := make([]model.Snapshot, limit)
	copy(out, gen.Snapshots[:limit])
	return out, nil
}

// ParticipantStanding returns one participant's snapshot from the latest
// published generation.
func (s *Service) ParticipantStanding(ctx context.Context, seriesID, participantID string) (model.Snapshot, error) {
	if err := s.ready(); err != nil {
		return model.Snapshot{}, err
	}
	if _, err := s.store.Series(ctx, seriesID); err != nil {
		return model.Snapshot{}, err
	}
	gen, err := s.store.Generation(ctx, seriesID)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap, ok := gen.Snapshot(participantID)
	if !ok {
		return model.Snapshot{}, repository.ErrParticipantNotFound
	}
	return snap, nil
}

// Recompute forces a recompute pass for one series.
func (s *Service) Recompute(ctx context.Context, seriesID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.engine.Trigger(ctx, seriesID)
}

func (s *Service) triggerRecompute(ctx context.Context, seriesID string) error {
	if err := s.engine.Trigger(ctx, seriesID); err != nil {
		s.logger.Error(ctx, "recompute failed",
			logger.String("series", seriesID),
			logger.Error(err),
		)
		return err
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"shardCount": s.shardCount,
		"dedupeSize": s.dedupeSize,
	}
	if s.started {
		ctx := context.Background()
		seriesCount := s.store.SeriesCount(ctx)
		participantCount := s.store.ParticipantCount(ctx)

		stats["seriesCount"] = seriesCount
		stats["participantCount"] = participantCount
		stats["resolutionsTracked"] = s.deduper.Size()

		metrics.UpdateSeriesTracked(seriesCount)
		metrics.UpdateParticipantsTracked(participantCount)
	}
	return stats
}
