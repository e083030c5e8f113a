package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pick is a participant's selection for one bet. Confidence is only
// meaningful under the confidence_points method.
type Pick struct {
	BetID      string    `json:"bet_id"`
	Side       string    `json:"side"`
	Confidence int       `json:"confidence,omitempty"`
	PickedAt   time.Time `json:"picked_at"`
}

// Participant is one entrant in a series. JoinedAt is the final ranking
// tie-break key and is unique per series.
type Participant struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	JoinedAt    time.Time       `json:"joined_at"`
	Picks       map[string]Pick `json:"picks"` // keyed by bet id
}

// Snapshot is the fully-recomputed standing for one participant in one
// generation. Snapshots are built wholesale each pass and never mutated.
type Snapshot struct {
	ParticipantID string          `json:"participant_id"`
	DisplayName   string          `json:"display_name"`
	JoinedAt      time.Time       `json:"joined_at"`
	Score         decimal.Decimal `json:"score"`
	CorrectCount  int             `json:"correct_count"`
	JudgedCount   int             `json:"judged_count"`
	CurrentStreak int             `json:"current_streak"` // signed: >0 correct run, <0 incorrect run
	LongestStreak int             `json:"longest_streak"` // longest correct run only
	Rank          int             `json:"rank"`
	PreviousRank  int             `json:"previous_rank,omitempty"` // 0 = no prior generation entry
	FieldSize     int             `json:"field_size"`
	Eliminated    bool            `json:"eliminated,omitempty"`
	Achievements  []string        `json:"achievements"`
}

// Generation is one complete published snapshot set for a series. The
// authoritative generation is replaced by whole-value swap; readers always
// see a fully consistent set.
type Generation struct {
	Number     uint64              `json:"number"`
	ComputedAt time.Time           `json:"computed_at"`
	Snapshots  []Snapshot          `json:"snapshots"` // ordered by rank
	byID       map[string]Snapshot `json:"-"`
}

// NewGeneration builds a generation from rank-ordered snapshots.
func NewGeneration(number uint64, computedAt time.Time, snapshots []Snapshot) *Generation {
	byID := make(map[string]Snapshot, len(snapshots))
	for _, s := range snapshots {
		byID[s.ParticipantID] = s
	}
	return &Generation{
		Number:     number,
		ComputedAt: computedAt,
		Snapshots:  snapshots,
		byID:       byID,
	}
}

// Snapshot returns the snapshot for a participant id, or false if the
// participant is not part of this generation.
func (g *Generation) Snapshot(participantID string) (Snapshot, bool) {
	s, ok := g.byID[participantID]
	return s, ok
}

// Ranks returns participant id -> rank for the whole generation.
func (g *Generation) Ranks() map[string]int {
	out := make(map[string]int, len(g.Snapshots))
	for _, s := range g.Snapshots {
		out[s.ParticipantID] = s.Rank
	}
	return out
}
