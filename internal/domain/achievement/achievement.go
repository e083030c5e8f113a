// Package achievement evaluates badge predicates over computed participant
// snapshots. The badge set is closed and tagged: every id is bound to a
// pure, total predicate, and predicates never depend on one another. A
// predicate whose required data is not modelled returns false instead of
// failing the pass. Unlocks are re-derived every generation, never sticky.
package achievement

import (
	"sort"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

// ID names a badge.
type ID string

// The built-in badge set.
const (
	FrontRunner    ID = "front_runner"
	PerfectWeek    ID = "perfect_week"
	HotStreak      ID = "hot_streak"
	OnFire         ID = "on_fire"
	Sharpshooter   ID = "sharpshooter"
	ComebackKid    ID = "comeback_kid"
	Survivor       ID = "survivor"
	UnderdogHunter ID = "underdog_hunter"
)

// Thresholds for the built-in predicates.
const (
	hotStreakLength      = 3
	onFireLength         = 5
	sharpshooterMinPicks = 5
	comebackTopRank      = 3
)

// Predicate decides whether a snapshot has earned a badge. Predicates run
// after ranks are finalised for the generation, so rank-dependent ones may
// rely on Rank and PreviousRank being populated.
type Predicate func(snap model.Snapshot, series *model.Series) bool

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithBadge registers or replaces a badge predicate.
func WithBadge(id ID, pred Predicate) Option {
	return func(e *Evaluator) {
		if id != "" && pred != nil {
			e.registry[id] = pred
		}
	}
}

// Evaluator holds the badge registry.
type Evaluator struct {
	registry map[ID]Predicate
}

// NewEvaluator creates an evaluator with the built-in badge set plus any
// options.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{registry: builtins()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the sorted ids of every badge the snapshot unlocks.
// Evaluation order across badges is irrelevant; sorting keeps the output
// deterministic for snapshot comparison.
func (e *Evaluator) Evaluate(snap model.Snapshot, series *model.Series) []string {
	unlocked := make([]string, 0, len(e.registry))
	for id, pred := range e.registry {
		if pred(snap, series) {
			unlocked = append(unlocked, string(id))
		}
	}
	sort.Strings(unlocked)
	return unlocked
}

func builtins() map[ID]Predicate {
	return map[ID]Predicate{
		FrontRunner: func(snap model.Snapshot, _ *model.Series) bool {
			return snap.Rank == 1
		},
		PerfectWeek: func(snap model.Snapshot, series *model.Series) bool {
			resolved := series.ResolvedBetCount()
			return resolved > 0 &&
				!snap.Eliminated &&
				snap.JudgedCount == resolved &&
				snap.CorrectCount == snap.JudgedCount
		},
		HotStreak: func(snap model.Snapshot, _ *model.Series) bool {
			return snap.CurrentStreak >= hotStreakLength
		},
		OnFire: func(snap model.Snapshot, _ *model.Series) bool {
			return snap.LongestStreak >= onFireLength
		},
		Sharpshooter: func(snap model.Snapshot, _ *model.Series) bool {
			if snap.JudgedCount < sharpshooterMinPicks {
				return false
			}
			// correct/judged >= 4/5 without leaving integer arithmetic
			return snap.CorrectCount*5 >= snap.JudgedCount*4
		},
		ComebackKid: func(snap model.Snapshot, _ *model.Series) bool {
			if snap.PreviousRank == 0 || snap.FieldSize == 0 {
				return false
			}
			bottomThird := snap.FieldSize - snap.FieldSize/3
			return snap.PreviousRank > bottomThird && snap.Rank <= comebackTopRank
		},
		Survivor: func(snap model.Snapshot, series *model.Series) bool {
			return series.Scoring.Method == model.MethodElimination &&
				!snap.Eliminated &&
				snap.JudgedCount > 0
		},
		UnderdogHunter: func(_ model.Snapshot, _ *model.Series) bool {
			// Upset odds per bet are not recorded, so this can never fire.
			return false
		},
	}
}
