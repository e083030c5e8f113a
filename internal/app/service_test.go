package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/jkc55555/betsup-engine/internal/adapters/repository"
	service "github.com/jkc55555/betsup-engine/internal/app"
	"github.com/jkc55555/betsup-engine/internal/domain/model"
	"github.com/jkc55555/betsup-engine/internal/domain/scoring"
	"github.com/jkc55555/betsup-engine/internal/engine"
)

func newSeries() *model.Series {
	return &model.Series{
		Name: "friday night picks",
		Scoring: model.ScoringConfig{
			Method:     model.MethodPointsPerCorrect,
			BasePoints: decimal.NewFromInt(1),
		},
		Bets: []model.Bet{
			{Label: "opener", Sides: []string{"home", "away"}, Order: 0},
			{Label: "nightcap", Sides: []string{"home", "away"}, Order: 1},
		},
	}
}

func startedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestSeriesLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := startedService(t)

		Convey("When a valid series is created", func() {
			id, err := svc.CreateSeries(ctx, newSeries())

			Convey("Then it gets an id and default bet states", func() {
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)
			})

			Convey("And its standings start empty", func() {
				standings, err := svc.Standings(ctx, id, 0)
				So(err, ShouldBeNil)
				So(standings, ShouldBeEmpty)
			})
		})

		Convey("When the scoring method is unknown", func() {
			bad := newSeries()
			bad.Scoring.Method = "coin_flip"
			_, err := svc.CreateSeries(ctx, bad)

			Convey("Then creation is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a bet carries an explicit zero weight", func() {
			bad := newSeries()
			bad.Scoring.Method = model.MethodWeighted
			bad.Bets[0].Weight = decimal.NewNullDecimal(decimal.Zero)
			_, err := svc.CreateSeries(ctx, bad)

			Convey("Then creation is rejected instead of defaulting the weight", func() {
				So(errors.Is(err, scoring.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When two bets share an order", func() {
			bad := newSeries()
			bad.Bets[1].Order = bad.Bets[0].Order
			_, err := svc.CreateSeries(ctx, bad)

			Convey("Then creation is rejected as invalid config", func() {
				So(errors.Is(err, scoring.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When a closed series receives further input", func() {
			id, err := svc.CreateSeries(ctx, newSeries())
			So(err, ShouldBeNil)
			So(svc.Join(ctx, id, "ada", "Ada"), ShouldBeNil)
			So(svc.CloseSeries(ctx, id), ShouldBeNil)

			Convey("Then joins, picks and resolutions are rejected", func() {
				So(errors.Is(svc.Join(ctx, id, "ben", "Ben"), engine.ErrSeriesClosed), ShouldBeTrue)
				err := svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "whatever", Side: "home"})
				So(errors.Is(err, engine.ErrSeriesClosed), ShouldBeTrue)
				err = svc.ResolveBet(ctx, id, service.Resolution{BetID: "whatever", WinningSide: "home"})
				So(errors.Is(err, engine.ErrSeriesClosed), ShouldBeTrue)
			})

			Convey("And closing again is rejected", func() {
				So(errors.Is(svc.CloseSeries(ctx, id), engine.ErrSeriesClosed), ShouldBeTrue)
			})

			Convey("But standings stay readable", func() {
				standings, err := svc.Standings(ctx, id, 0)
				So(err, ShouldBeNil)
				So(len(standings), ShouldEqual, 1)
			})
		})
	})
}

func TestPickIntake(t *testing.T) {
	ctx := context.Background()

	Convey("Given a series with one joined participant", t, func() {
		svc := startedService(t)
		def := newSeries()
		def.Bets[0].ID = "b1"
		def.Bets[1].ID = "b2"
		id, err := svc.CreateSeries(ctx, def)
		So(err, ShouldBeNil)
		So(svc.Join(ctx, id, "ada", "Ada"), ShouldBeNil)

		Convey("When a pick names an unknown bet", func() {
			err := svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "nope", Side: "home"})
			So(errors.Is(err, repository.ErrBetNotFound), ShouldBeTrue)
		})

		Convey("When a pick names a side the bet does not offer", func() {
			err := svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b1", Side: "draw"})
			So(errors.Is(err, service.ErrInvalidSelection), ShouldBeTrue)
		})

		Convey("When an unknown participant picks", func() {
			err := svc.SubmitPick(ctx, id, "ghost", model.Pick{BetID: "b1", Side: "home"})
			So(errors.Is(err, repository.ErrParticipantNotFound), ShouldBeTrue)
		})

		Convey("When the bet already resolved", func() {
			So(svc.ResolveBet(ctx, id, service.Resolution{ID: "r1", BetID: "b1", WinningSide: "home"}), ShouldBeNil)
			err := svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b1", Side: "home"})

			Convey("Then the pick is locked", func() {
				So(errors.Is(err, service.ErrPickLocked), ShouldBeTrue)
			})
		})

		Convey("When a valid pick is re-submitted with a new side", func() {
			So(svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b1", Side: "home"}), ShouldBeNil)
			So(svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b1", Side: "away"}), ShouldBeNil)
			So(svc.ResolveBet(ctx, id, service.Resolution{ID: "r1", BetID: "b1", WinningSide: "away"}), ShouldBeNil)

			Convey("Then the replacement is what gets judged", func() {
				snap, err := svc.ParticipantStanding(ctx, id, "ada")
				So(err, ShouldBeNil)
				So(snap.CorrectCount, ShouldEqual, 1)
			})
		})
	})
}

func TestConfidenceIntake(t *testing.T) {
	ctx := context.Background()

	Convey("Given a confidence_points series", t, func() {
		svc := startedService(t)
		def := newSeries()
		def.Scoring.Method = model.MethodConfidence
		def.Scoring.ConfidenceRange = model.ConfidenceRange{Min: 1, Max: 2}
		def.Bets[0].ID = "b1"
		def.Bets[1].ID = "b2"
		id, err := svc.CreateSeries(ctx, def)
		So(err, ShouldBeNil)
		So(svc.Join(ctx, id, "ada", "Ada"), ShouldBeNil)
		So(svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b1", Side: "home", Confidence: 2}), ShouldBeNil)

		Convey("When a second pick reuses a confidence value", func() {
			err := svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b2", Side: "home", Confidence: 2})

			Convey("Then it is rejected and the first pick stands", func() {
				So(errors.Is(err, scoring.ErrInvalidPick), ShouldBeTrue)
			})
		})

		Convey("When a pick falls outside the configured range", func() {
			err := svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b2", Side: "home", Confidence: 9})
			So(errors.Is(err, scoring.ErrInvalidPick), ShouldBeTrue)
		})

		Convey("When the remaining confidence value is used", func() {
			So(svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b2", Side: "home", Confidence: 1}), ShouldBeNil)
		})
	})
}

func TestResolutionIntake(t *testing.T) {
	ctx := context.Background()

	Convey("Given a series with picks in place", t, func() {
		svc := startedService(t)
		def := newSeries()
		def.Bets[0].ID = "b1"
		def.Bets[1].ID = "b2"
		id, err := svc.CreateSeries(ctx, def)
		So(err, ShouldBeNil)
		So(svc.Join(ctx, id, "ada", "Ada"), ShouldBeNil)
		So(svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b1", Side: "home"}), ShouldBeNil)
		So(svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b2", Side: "home"}), ShouldBeNil)

		Convey("When the same resolution id is delivered twice", func() {
			res := service.Resolution{ID: "r1", BetID: "b1", WinningSide: "home"}
			So(svc.ResolveBet(ctx, id, res), ShouldBeNil)
			So(svc.ResolveBet(ctx, id, res), ShouldBeNil)

			Convey("Then it is applied once", func() {
				snap, err := svc.ParticipantStanding(ctx, id, "ada")
				So(err, ShouldBeNil)
				So(snap.Score.String(), ShouldEqual, "1")
				So(snap.JudgedCount, ShouldEqual, 1)
			})
		})

		Convey("When a resolution is voided", func() {
			So(svc.ResolveBet(ctx, id, service.Resolution{ID: "r2", BetID: "b2", Void: true}), ShouldBeNil)

			Convey("Then the bet is cancelled and never judged", func() {
				snap, err := svc.ParticipantStanding(ctx, id, "ada")
				So(err, ShouldBeNil)
				So(snap.JudgedCount, ShouldEqual, 0)
			})
		})

		Convey("When a resolution names an unknown bet", func() {
			err := svc.ResolveBet(ctx, id, service.Resolution{ID: "r3", BetID: "nope", WinningSide: "home"})
			So(errors.Is(err, repository.ErrBetNotFound), ShouldBeTrue)

			Convey("Then its id can be retried after the failure", func() {
				So(svc.ResolveBet(ctx, id, service.Resolution{ID: "r3", BetID: "b1", WinningSide: "home"}), ShouldBeNil)
			})
		})
	})
}

func TestStandingsReads(t *testing.T) {
	ctx := context.Background()

	Convey("Given a resolved series with three participants", t, func() {
		svc := startedService(t, service.WithMaxStandingsLimit(2))
		def := newSeries()
		def.Bets[0].ID = "b1"
		def.Bets[1].ID = "b2"
		id, err := svc.CreateSeries(ctx, def)
		So(err, ShouldBeNil)
		for _, p := range []string{"ada", "ben", "cyd"} {
			So(svc.Join(ctx, id, p, p), ShouldBeNil)
		}
		So(svc.SubmitPick(ctx, id, "ada", model.Pick{BetID: "b1", Side: "home"}), ShouldBeNil)
		So(svc.SubmitPick(ctx, id, "ben", model.Pick{BetID: "b1", Side: "away"}), ShouldBeNil)
		So(svc.ResolveBet(ctx, id, service.Resolution{ID: "r1", BetID: "b1", WinningSide: "home"}), ShouldBeNil)

		Convey("When standings are read with a small limit", func() {
			top, err := svc.Standings(ctx, id, 1)
			So(err, ShouldBeNil)

			Convey("Then only the leader is returned", func() {
				So(len(top), ShouldEqual, 1)
				So(top[0].ParticipantID, ShouldEqual, "ada")
				So(top[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When the limit exceeds the configured maximum", func() {
			top, err := svc.Standings(ctx, id, 50)
			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 2)
		})

		Convey("When an unknown series is read", func() {
			_, err := svc.Standings(ctx, "nope", 0)
			So(errors.Is(err, repository.ErrSeriesNotFound), ShouldBeTrue)
		})

		Convey("When an unknown participant is read", func() {
			_, err := svc.ParticipantStanding(ctx, id, "ghost")
			So(errors.Is(err, repository.ErrParticipantNotFound), ShouldBeTrue)
		})

		Convey("When stats are gathered", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["seriesCount"], ShouldEqual, 1)
			So(stats["participantCount"], ShouldEqual, 3)
		})
	})
}
