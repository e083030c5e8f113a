// Package ranking total-orders participant snapshots and assigns ranks.
package ranking

import (
	"sort"

	"github.com/jkc55555/betsup-engine/internal/domain/model"
)

// Assign sorts snapshots by score descending, correct-pick count descending,
// then join time ascending, and fills Rank, PreviousRank and FieldSize.
// Ties are broken, never shared: equal standings still receive distinct
// sequential ranks, and join time is unique so the order is total.
//
// previousRanks maps participant id to the prior generation's rank; a
// participant absent from it is new this generation and keeps
// PreviousRank 0.
func Assign(snapshots []model.Snapshot, previousRanks map[string]int) []model.Snapshot {
	out := make([]model.Snapshot, len(snapshots))
	copy(out, snapshots)

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Score.Cmp(out[j].Score); c != 0 {
			return c > 0
		}
		if out[i].CorrectCount != out[j].CorrectCount {
			return out[i].CorrectCount > out[j].CorrectCount
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})

	for i := range out {
		out[i].Rank = i + 1
		out[i].FieldSize = len(out)
		out[i].PreviousRank = previousRanks[out[i].ParticipantID]
	}
	return out
}
