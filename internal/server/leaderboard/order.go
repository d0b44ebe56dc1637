package leaderboard

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/lookboard/internal/server/models"
)

// TieBreak orders entries with equal scores.
type TieBreak string

const (
	// TieBreakEarliest ranks the older entry first.
	TieBreakEarliest TieBreak = "earliest"
	// TieBreakLatest ranks the newer entry first.
	TieBreakLatest TieBreak = "latest"
)

func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case "", TieBreakEarliest:
		return TieBreakEarliest, nil
	case TieBreakLatest:
		return TieBreakLatest, nil
	}
	return "", fmt.Errorf("unknown tie-break %q", s)
}

// Rank sorts entries in place by score descending. Equal scores are ordered
// by CreatedAt and then by sheet row, both following tb.
func Rank(entries []models.Entry, tb TieBreak) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		older := a.CreatedAt.Before(b.CreatedAt) ||
			(a.CreatedAt.Equal(b.CreatedAt) && a.Row < b.Row)
		if !a.CreatedAt.Equal(b.CreatedAt) || a.Row != b.Row {
			if tb == TieBreakLatest {
				return !older
			}
			return older
		}
		return false
	})
}
