// Package repository defines the series store interface and errors.
package repository

import (
	"context"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

// Store provides access to series definitions and their published snapshot
// generations. The store exclusively owns the authoritative generation per
// series; everything else operates on copies.
type Store interface {
	// CreateSeries registers a new series. Returns ErrSeriesExists if the
	// id is taken.
	CreateSeries(ctx context.Context, s *model.Series) error

	// Series returns a deep copy of the series definition, so callers
	// observe one consistent view regardless of concurrent mutation.
	// Returns ErrSeriesNotFound if the id is unknown.
	Series(ctx context.Context, id string) (*model.Series, error)

	// UpdateSeries applies fn to the series under the shard lock. If fn
	// returns an error the mutation is discarded.
	UpdateSeries(ctx context.Context, id string, fn func(*model.Series) error) error

	// PublishGeneration swaps the authoritative generation for a series by
	// whole-value replacement. Readers never observe a partial set.
	PublishGeneration(ctx context.Context, id string, gen *model.Generation) error

	// Generation returns the authoritative generation for a series, or
	// ErrNoGeneration if none has been published yet.
	Generation(ctx context.Context, id string) (*model.Generation, error)

	// SeriesCount returns the number of registered series.
	SeriesCount(ctx context.Context) int

	// ParticipantCount returns the number of participants across all series.
	ParticipantCount(ctx context.Context) int
}
