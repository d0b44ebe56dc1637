package leaderboard

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/lookboard/internal/logging"
	"github.com/dmitrijs2005/lookboard/internal/server/blobs"
	"github.com/dmitrijs2005/lookboard/internal/server/models"
	"github.com/dmitrijs2005/lookboard/internal/server/sheets"
)

const testSheet = "ranking"

type fixture struct {
	opener *sheets.MemoryOpener
	sheet  *sheets.MemorySheet
	store  *blobs.MemoryStore
	blobs  *blobs.Manager
	repo   *SheetRepository
}

func newFixture(t *testing.T, tb TieBreak) *fixture {
	t.Helper()
	opener := sheets.NewMemoryOpener()
	store := blobs.NewMemoryStore("https://cdn.example/img")
	mgr := blobs.NewManager(store, "fashion_ranking", logging.Discard())
	repo := NewSheetRepository(opener, testSheet, mgr, tb, logging.Discard())

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return &fixture{opener: opener, sheet: opener.Sheet(testSheet), store: store, blobs: mgr, repo: repo}
}

func identities(entries []models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Identity
	}
	return out
}

func scores(entries []models.Entry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Score
	}
	return out
}
