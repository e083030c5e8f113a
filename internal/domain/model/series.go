// Package model contains domain models passed between layers.
package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Method selects how a series converts picks into points.
type Method string

// Supported scoring methods.
const (
	MethodPointsPerCorrect Method = "points_per_correct"
	MethodWeighted         Method = "weighted_scoring"
	MethodConfidence       Method = "confidence_points"
	MethodElimination      Method = "elimination_style"
	MethodPercentage       Method = "percentage_based"
)

// BetStatus tracks a bet through its lifecycle.
type BetStatus string

// Bet lifecycle states.
const (
	BetPending   BetStatus = "pending"
	BetActive    BetStatus = "active"
	BetResolved  BetStatus = "resolved"
	BetCancelled BetStatus = "cancelled"
)

// SeriesStatus tracks a series through its lifecycle.
type SeriesStatus string

// Series lifecycle states. Completed and Cancelled are terminal; no
// further recomputes are accepted for them.
const (
	SeriesOpen      SeriesStatus = "open"
	SeriesCompleted SeriesStatus = "completed"
	SeriesCancelled SeriesStatus = "cancelled"
)

// Difficulty classifies a bet for the optional multiplier.
type Difficulty string

// Bet difficulty tiers.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ConfidenceRange bounds the confidence values a participant may assign
// under the confidence_points method. Each value in [Min, Max] may be used
// at most once per participant.
type ConfidenceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ScoringConfig describes how a series scores picks.
type ScoringConfig struct {
	Method               Method          `json:"method"`
	BasePoints           decimal.Decimal `json:"base_points"`
	PerfectWeekBonus     decimal.Decimal `json:"perfect_week_bonus"`
	StreakBonus          decimal.Decimal `json:"streak_bonus"`
	DifficultyMultiplier bool            `json:"difficulty_multiplier"`
	ConfidenceRange      ConfidenceRange `json:"confidence_range"`
}

// Bet is a single resolvable proposition within a series.
// Order is the canonical judging sequence and must be unique per series.
type Bet struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Sides       []string        `json:"sides"`
	Weight      decimal.NullDecimal `json:"weight"` // null/absent means unset (defaults to 1)
	Difficulty  Difficulty      `json:"difficulty"`
	Status      BetStatus       `json:"status"`
	WinningSide string          `json:"winning_side"`
	Order       int             `json:"order"`
}

// HasSide reports whether side is one of the bet's sides.
func (b Bet) HasSide(side string) bool {
	for _, s := range b.Sides {
		if s == side {
			return true
		}
	}
	return false
}

// Series is a set of resolvable bets scored and ranked together.
type Series struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       SeriesStatus  `json:"status"`
	Scoring      ScoringConfig `json:"scoring"`
	Bets         []Bet         `json:"bets"`
	Participants []Participant `json:"participants"`
}

// Closed reports whether the series no longer accepts triggers.
func (s *Series) Closed() bool {
	return s.Status == SeriesCompleted || s.Status == SeriesCancelled
}

// BetsInOrder returns the bets sorted by their judging order.
func (s *Series) BetsInOrder() []Bet {
	out := make([]Bet, len(s.Bets))
	copy(out, s.Bets)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Bet returns the bet with the given id, or false if unknown.
func (s *Series) Bet(id string) (Bet, bool) {
	for _, b := range s.Bets {
		if b.ID == id {
			return b, true
		}
	}
	return Bet{}, false
}

// Participant returns the participant with the given id, or false if unknown.
func (s *Series) Participant(id string) (*Participant, bool) {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i], true
		}
	}
	return nil, false
}

// ResolvedBetCount counts bets that resolved normally. Cancelled bets are
// excluded: they score nothing and break nothing.
func (s *Series) ResolvedBetCount() int {
	n := 0
	for _, b := range s.Bets {
		if b.Status == BetResolved {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the series. The engine works on clones so a
// recompute pass observes one consistent definition even while picks and
// resolutions keep arriving.
func (s *Series) Clone() *Series {
	out := &Series{
		ID:      s.ID,
		Name:    s.Name,
		Status:  s.Status,
		Scoring: s.Scoring,
	}
	out.Bets = make([]Bet, len(s.Bets))
	for i, b := range s.Bets {
		out.Bets[i] = b
		out.Bets[i].Sides = append([]string(nil), b.Sides...)
	}
	out.Participants = make([]Participant, len(s.Participants))
	for i, p := range s.Participants {
		out.Participants[i] = p
		out.Participants[i].Picks = make(map[string]Pick, len(p.Picks))
		for id, pick := range p.Picks {
			out.Participants[i].Picks[id] = pick
		}
	}
	return out
}
