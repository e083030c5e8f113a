package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/jkc55555/betsup-engine/internal/adapters/repository"
	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

func testSeries(id string) *model.Series {
	return &model.Series{
		ID:     id,
		Name:   "test series",
		Status: model.SeriesOpen,
		Scoring: model.ScoringConfig{
			Method:     model.MethodPointsPerCorrect,
			BasePoints: decimal.NewFromInt(1),
		},
		Bets: []model.Bet{
			{ID: "b1", Sides: []string{"home", "away"}, Status: model.BetActive, Order: 0},
		},
	}
}

func TestMemStoreSeries(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(repository.WithShardCount(4))

		Convey("When a series is created", func() {
			So(store.CreateSeries(ctx, testSeries("s1")), ShouldBeNil)

			Convey("Then it can be read back", func() {
				got, err := store.Series(ctx, "s1")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, "s1")
				So(store.SeriesCount(ctx), ShouldEqual, 1)
			})

			Convey("And creating the same id again fails", func() {
				So(errors.Is(store.CreateSeries(ctx, testSeries("s1")), repository.ErrSeriesExists), ShouldBeTrue)
			})

			Convey("And reads return independent copies", func() {
				a, _ := store.Series(ctx, "s1")
				a.Bets[0].Status = model.BetResolved
				b, _ := store.Series(ctx, "s1")
				So(b.Bets[0].Status, ShouldEqual, model.BetActive)
			})
		})

		Convey("When an unknown series is read", func() {
			_, err := store.Series(ctx, "missing")

			Convey("Then it fails with a not-found error", func() {
				So(errors.Is(err, repository.ErrSeriesNotFound), ShouldBeTrue)
			})
		})

		Convey("When an update callback fails", func() {
			So(store.CreateSeries(ctx, testSeries("s2")), ShouldBeNil)
			err := store.UpdateSeries(ctx, "s2", func(s *model.Series) error {
				s.Status = model.SeriesCompleted
				return errors.New("boom")
			})

			Convey("Then the mutation is discarded", func() {
				So(err, ShouldNotBeNil)
				got, _ := store.Series(ctx, "s2")
				So(got.Status, ShouldEqual, model.SeriesOpen)
			})
		})
	})
}

func TestMemStoreGenerations(t *testing.T) {
	Convey("Given a store with one series", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.CreateSeries(ctx, testSeries("s1")), ShouldBeNil)

		Convey("When no generation has been published", func() {
			_, err := store.Generation(ctx, "s1")

			Convey("Then reads report the absence explicitly", func() {
				So(errors.Is(err, repository.ErrNoGeneration), ShouldBeTrue)
			})
		})

		Convey("When a generation is published", func() {
			gen := model.NewGeneration(1, time.Now(), []model.Snapshot{
				{ParticipantID: "p1", Rank: 1, FieldSize: 1},
			})
			So(store.PublishGeneration(ctx, "s1", gen), ShouldBeNil)

			Convey("Then readers see the complete set", func() {
				got, err := store.Generation(ctx, "s1")
				So(err, ShouldBeNil)
				So(got.Number, ShouldEqual, 1)
				snap, ok := got.Snapshot("p1")
				So(ok, ShouldBeTrue)
				So(snap.Rank, ShouldEqual, 1)
			})
		})

		Convey("When generations are swapped under concurrent readers", func() {
			var wg sync.WaitGroup
			for i := 1; i <= 50; i++ {
				gen := model.NewGeneration(uint64(i), time.Now(), []model.Snapshot{
					{ParticipantID: "p1", Rank: 1, FieldSize: i},
				})
				So(store.PublishGeneration(ctx, "s1", gen), ShouldBeNil)
			}
			errs := make(chan error, 8)
			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						gen, err := store.Generation(ctx, "s1")
						if err != nil {
							errs <- err
							return
						}
						// Every observed generation must be internally
						// consistent: the index always matches the slice.
						if _, ok := gen.Snapshot("p1"); !ok {
							errs <- fmt.Errorf("generation %d missing participant", gen.Number)
							return
						}
					}
				}()
			}
			wg.Wait()
			close(errs)

			Convey("Then no reader ever observes a partial generation", func() {
				So(<-errs, ShouldBeNil)
			})
		})
	})
}
