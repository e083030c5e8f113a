package repository

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

const defaultShardCount = 8

// MemStore is an in-memory Store sharded by series id. Each shard guards
// its series with one RWMutex; the published generation is an immutable
// value replaced wholesale under that lock, so a read returns either the
// old complete generation or the new one, never a mix.
type MemStore struct {
	shardCount int
	shards     []*shard
}

type shard struct {
	mu     sync.RWMutex
	series map[string]*record
}

type record struct {
	def *model.Series
	gen *model.Generation
}

// NewMemStore creates an in-memory store with configuration options.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{series: make(map[string]*record)}
	}
	return s
}

func (s *MemStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[int(h.Sum32())%s.shardCount]
}

// CreateSeries registers a new series definition.
func (s *MemStore) CreateSeries(_ context.Context, series *model.Series) error {
	sh := s.shardFor(series.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.series[series.ID]; ok {
		return ErrSeriesExists
	}
	sh.series[series.ID] = &record{def: series.Clone()}
	return nil
}

// Series returns a deep copy of the series definition.
func (s *MemStore) Series(_ context.Context, id string) (*model.Series, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.series[id]
	if !ok {
		return nil, ErrSeriesNotFound
	}
	return rec.def.Clone(), nil
}

// UpdateSeries applies fn to the series definition under the shard lock.
func (s *MemStore) UpdateSeries(_ context.Context, id string, fn func(*model.Series) error) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.series[id]
	if !ok {
		return ErrSeriesNotFound
	}
	// Mutate a clone and swap it in only on success, so a failed update
	// leaves the stored definition untouched.
	next := rec.def.Clone()
	if err := fn(next); err != nil {
		return err
	}
	rec.def = next
	return nil
}

// PublishGeneration swaps in a complete new generation.
func (s *MemStore) PublishGeneration(_ context.Context, id string, gen *model.Generation) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.series[id]
	if !ok {
		return ErrSeriesNotFound
	}
	rec.gen = gen
	return nil
}

// Generation returns the authoritative generation.
func (s *MemStore) Generation(_ context.Context, id string) (*model.Generation, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.series[id]
	if !ok {
		return nil, ErrSeriesNotFound
	}
	if rec.gen == nil {
		return nil, ErrNoGeneration
	}
	return rec.gen, nil
}

// SeriesCount returns the number of registered series.
func (s *MemStore) SeriesCount(_ context.Context) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.series)
		sh.mu.RUnlock()
	}
	return n
}

// ParticipantCount returns the number of participants across all series.
func (s *MemStore) ParticipantCount(_ context.Context) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.series {
			n += len(rec.def.Participants)
		}
		sh.mu.RUnlock()
	}
	return n
}
