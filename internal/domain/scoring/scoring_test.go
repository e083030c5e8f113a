package scoring_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
	"github.com/jkc55555/betsup-engine/internal/domain/scoring"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func weight(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func TestPointsPerCorrect(t *testing.T) {
	Convey("Given a points_per_correct config with base points 1", t, func() {
		policy := scoring.NewPolicy()
		cfg := model.ScoringConfig{Method: model.MethodPointsPerCorrect, BasePoints: dec("1")}
		bet := model.Bet{ID: "b1", Sides: []string{"home", "away"}}

		Convey("When the pick is correct", func() {
			res, err := policy.PointsFor(cfg, bet, model.Pick{BetID: "b1", Side: "home"}, true, decimal.Zero)

			Convey("Then it earns the base points", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "1")
				So(res.Eliminated, ShouldBeFalse)
			})
		})

		Convey("When the pick is incorrect", func() {
			res, err := policy.PointsFor(cfg, bet, model.Pick{BetID: "b1", Side: "away"}, false, decimal.Zero)

			Convey("Then it earns nothing", func() {
				So(err, ShouldBeNil)
				So(res.Points.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When base points are negative", func() {
			bad := model.ScoringConfig{Method: model.MethodPointsPerCorrect, BasePoints: dec("-1")}
			_, err := policy.PointsFor(bad, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then it fails with an invalid config error", func() {
				So(errors.Is(err, scoring.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestWeightedScoring(t *testing.T) {
	Convey("Given a weighted_scoring config with base points 1", t, func() {
		policy := scoring.NewPolicy()
		cfg := model.ScoringConfig{Method: model.MethodWeighted, BasePoints: dec("1")}

		Convey("When a correct pick lands on a weight-3 bet", func() {
			bet := model.Bet{ID: "b3", Weight: weight("3")}
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then it earns base times weight", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "3")
			})
		})

		Convey("When the bet weight is unset", func() {
			res, err := policy.PointsFor(cfg, model.Bet{ID: "b0"}, model.Pick{}, true, decimal.Zero)

			Convey("Then the weight defaults to 1", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "1")
			})
		})

		Convey("When the bet weight is negative", func() {
			bet := model.Bet{ID: "bneg", Weight: weight("-2")}
			_, err := policy.PointsFor(cfg, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then it fails with an invalid config error", func() {
				So(errors.Is(err, scoring.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the bet weight is explicitly zero", func() {
			bet := model.Bet{ID: "bzero", Weight: weight("0")}
			_, err := policy.PointsFor(cfg, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then it fails with an invalid config error instead of defaulting", func() {
				So(errors.Is(err, scoring.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestConfidencePoints(t *testing.T) {
	Convey("Given a confidence_points config with range [1, 5]", t, func() {
		policy := scoring.NewPolicy()
		cfg := model.ScoringConfig{
			Method:          model.MethodConfidence,
			BasePoints:      dec("1"),
			ConfidenceRange: model.ConfidenceRange{Min: 1, Max: 5},
		}
		bet := model.Bet{ID: "b1"}

		Convey("When a correct pick carries confidence 4", func() {
			res, err := policy.PointsFor(cfg, bet, model.Pick{Confidence: 4}, true, decimal.Zero)

			Convey("Then it earns the confidence value", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "4")
			})
		})

		Convey("When confidence is out of range", func() {
			_, err := policy.PointsFor(cfg, bet, model.Pick{Confidence: 6}, true, decimal.Zero)

			Convey("Then it fails with an invalid pick error", func() {
				So(errors.Is(err, scoring.ErrInvalidPick), ShouldBeTrue)
			})
		})

		Convey("When two picks share a confidence value", func() {
			picks := map[string]model.Pick{
				"b1": {BetID: "b1", Confidence: 3},
				"b2": {BetID: "b2", Confidence: 3},
			}
			err := scoring.ValidateConfidences(cfg, picks)

			Convey("Then the permutation check fails with an invalid pick error", func() {
				So(errors.Is(err, scoring.ErrInvalidPick), ShouldBeTrue)
			})
		})

		Convey("When confidences form a valid permutation", func() {
			picks := map[string]model.Pick{
				"b1": {BetID: "b1", Confidence: 2},
				"b2": {BetID: "b2", Confidence: 5},
				"b3": {BetID: "b3", Confidence: 1},
			}

			Convey("Then the permutation check passes", func() {
				So(scoring.ValidateConfidences(cfg, picks), ShouldBeNil)
			})
		})
	})
}

func TestEliminationStyle(t *testing.T) {
	Convey("Given an elimination_style config with base points 2", t, func() {
		policy := scoring.NewPolicy()
		cfg := model.ScoringConfig{Method: model.MethodElimination, BasePoints: dec("2")}
		bet := model.Bet{ID: "b1"}

		Convey("When the pick is correct", func() {
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then it earns base points and survives", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "2")
				So(res.Eliminated, ShouldBeFalse)
			})
		})

		Convey("When the pick is incorrect", func() {
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, false, decimal.Zero)

			Convey("Then it earns nothing and is marked eliminated", func() {
				So(err, ShouldBeNil)
				So(res.Points.IsZero(), ShouldBeTrue)
				So(res.Eliminated, ShouldBeTrue)
			})
		})
	})
}

func TestPercentageBased(t *testing.T) {
	Convey("Given a percentage_based config with base points 10", t, func() {
		policy := scoring.NewPolicy()
		cfg := model.ScoringConfig{Method: model.MethodPercentage, BasePoints: dec("10")}
		bet := model.Bet{ID: "b1"}

		Convey("When 75% of the field picked correctly", func() {
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, true, dec("0.75"))

			Convey("Then a correct pick earns the contrarian share", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "2.5")
			})
		})

		Convey("When nobody else picked the bet", func() {
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then a correct pick earns full base points", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "10")
			})
		})

		Convey("When the supplied ratio is out of range", func() {
			_, err := policy.PointsFor(cfg, bet, model.Pick{}, true, dec("1.5"))

			Convey("Then it fails with an invalid config error", func() {
				So(errors.Is(err, scoring.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the pick is incorrect", func() {
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, false, dec("0.25"))

			Convey("Then it earns nothing", func() {
				So(err, ShouldBeNil)
				So(res.Points.IsZero(), ShouldBeTrue)
			})
		})
	})
}

func TestDifficultyMultiplier(t *testing.T) {
	Convey("Given a config with the difficulty multiplier enabled", t, func() {
		policy := scoring.NewPolicy()
		cfg := model.ScoringConfig{
			Method:               model.MethodPointsPerCorrect,
			BasePoints:           dec("4"),
			DifficultyMultiplier: true,
		}

		Convey("When a correct pick lands on a hard bet", func() {
			bet := model.Bet{ID: "b1", Difficulty: model.DifficultyHard}
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then the 1.5x multiplier applies", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "6")
			})
		})

		Convey("When a correct pick lands on a medium bet", func() {
			bet := model.Bet{ID: "b1", Difficulty: model.DifficultyMedium}
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then the 1.25x multiplier applies", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "5")
			})
		})

		Convey("When the pick is incorrect on a hard bet", func() {
			bet := model.Bet{ID: "b1", Difficulty: model.DifficultyHard}
			res, err := policy.PointsFor(cfg, bet, model.Pick{}, false, decimal.Zero)

			Convey("Then the multiplier never applies to a zero result", func() {
				So(err, ShouldBeNil)
				So(res.Points.IsZero(), ShouldBeTrue)
			})
		})

		Convey("When custom multipliers are configured", func() {
			custom := scoring.NewPolicy(scoring.WithDifficultyMultipliers(
				map[model.Difficulty]decimal.Decimal{model.DifficultyHard: dec("2")},
			))
			bet := model.Bet{ID: "b1", Difficulty: model.DifficultyHard}
			res, err := custom.PointsFor(cfg, bet, model.Pick{}, true, decimal.Zero)

			Convey("Then the override applies", func() {
				So(err, ShouldBeNil)
				So(res.Points.String(), ShouldEqual, "8")
			})
		})
	})
}

func TestValidateConfig(t *testing.T) {
	Convey("Given scoring configurations", t, func() {
		Convey("When the method is unknown", func() {
			err := scoring.ValidateConfig(model.ScoringConfig{Method: "coin_flip"})

			Convey("Then it fails with an unknown method error", func() {
				So(errors.Is(err, scoring.ErrUnknownMethod), ShouldBeTrue)
			})
		})

		Convey("When a confidence range is inverted", func() {
			err := scoring.ValidateConfig(model.ScoringConfig{
				Method:          model.MethodConfidence,
				ConfidenceRange: model.ConfidenceRange{Min: 5, Max: 1},
			})

			Convey("Then it fails with an invalid config error", func() {
				So(errors.Is(err, scoring.ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the config is well-formed", func() {
			err := scoring.ValidateConfig(model.ScoringConfig{
				Method:     model.MethodWeighted,
				BasePoints: dec("1"),
			})

			Convey("Then it passes", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
