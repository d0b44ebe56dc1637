package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/dmitrijs2005/lookboard/internal/cryptox"
	"github.com/dmitrijs2005/lookboard/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHash(t *testing.T, secret string) string {
	t.Helper()
	h, err := cryptox.HashSecret(secret)
	require.NoError(t, err)
	return h
}

func TestSheetRepository_AddWritesHeaderAndRow(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()

	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "Alice", Score: 10.5, SecretHash: "h", ImageRef: "u"}))

	rows, err := f.sheet.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"Alice", "10.5", "2025-01-01T00:01:00Z", "h", "u"}, rows[1])

	all := f.repo.GetAll(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].Row)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC), all[0].CreatedAt)
	assert.Equal(t, "u", all[0].ImageRef)
}

func TestSheetRepository_UpgradesLegacyHeader(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	require.NoError(t, f.sheet.AppendRow(ctx, []string{"name", "score", "date", "delete_pass"}))
	require.NoError(t, f.sheet.AppendRow(ctx, []string{"old", "70", "2024-05-01", "pw1"}))

	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "new", Score: 80, SecretHash: "h", ImageRef: "u"}))

	rows, err := f.sheet.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score", "date", "delete_pass", "image_ref"}, rows[0])
	assert.Equal(t, []string{"old", "70", "2024-05-01", "pw1"}, rows[1])
	assert.Equal(t, "u", rows[2][4])

	top := f.repo.GetTop(ctx, 10)
	assert.Equal(t, []string{"new", "old"}, identities(top))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), top[1].CreatedAt)

	ok, err := f.repo.Delete(ctx, "old", "pw1")
	require.NoError(t, err)
	assert.True(t, ok, "legacy plain-text secret still authorizes")
}

func TestSheetRepository_ReorderedHeaderAndBlankHeader(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	require.NoError(t, f.sheet.AppendRow(ctx, []string{"Score", "image_url", "Name"}))
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "x", Score: 1, SecretHash: "h"}))

	rows, err := f.sheet.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Score", "image_url", "Name", "date", "secret"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "x", rows[1][2])
	assert.Equal(t, "h", rows[1][4])

	g := newFixture(t, TieBreakEarliest)
	require.NoError(t, g.sheet.AppendRow(ctx, []string{"", ""}))
	require.NoError(t, g.repo.Add(ctx, models.Entry{Identity: "y", Score: 2, SecretHash: "h"}))
	rows, err = g.sheet.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, Header, rows[0])
	assert.Len(t, rows, 2)
}

func TestSheetRepository_DropsUnparsableScores(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	for _, row := range [][]string{
		Header,
		{"good", "12", "2025-01-01", "h", ""},
		{"bad", "twelve", "2025-01-01", "h", ""},
		{"empty", "", "2025-01-01", "h", ""},
		{"nan", "NaN", "2025-01-01", "h", ""},
		{"short"},
		{"nodate", "3", "yesterday", "h"},
	} {
		require.NoError(t, f.sheet.AppendRow(ctx, row))
	}

	all := f.repo.GetAll(ctx)
	assert.Equal(t, []string{"good", "nodate"}, identities(all))
	assert.True(t, all[1].CreatedAt.IsZero())
	assert.Equal(t, 7, all[1].Row)
}

func TestSheetRepository_ReadFailures(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()

	f.sheet.ReadErr = errors.New("503")
	assert.Empty(t, f.repo.GetAll(ctx))
	assert.NotNil(t, f.repo.GetAll(ctx))
	assert.Empty(t, f.repo.GetTop(ctx, 10))
	_, err := f.repo.List(ctx)
	assert.ErrorIs(t, err, common.ErrRemote)

	f.opener.OpenErr = errors.New("bad credentials")
	_, err = f.repo.List(ctx)
	assert.ErrorIs(t, err, common.ErrAuth)
	err = f.repo.Add(ctx, models.Entry{Identity: "a", Score: 1})
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestSheetRepository_AppendFailure(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	require.NoError(t, f.sheet.AppendRow(ctx, Header))
	f.sheet.AppendErr = errors.New("quota")

	err := f.repo.Add(ctx, models.Entry{Identity: "a", Score: 1})
	assert.ErrorIs(t, err, common.ErrRemote)
}

func TestSheetRepository_GetTop(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	for _, e := range []models.Entry{
		{Identity: "a", Score: 5},
		{Identity: "b", Score: 50},
		{Identity: "c", Score: 20},
		{Identity: "d", Score: 50},
	} {
		require.NoError(t, f.repo.Add(ctx, e))
	}

	assert.Equal(t, []string{"b", "d", "c"}, identities(f.repo.GetTop(ctx, 3)))
	assert.Len(t, f.repo.GetTop(ctx, 10), 4)
	assert.Empty(t, f.repo.GetTop(ctx, 0))
	assert.Empty(t, f.repo.GetTop(ctx, -1))

	f.repo.tieBreak = TieBreakLatest
	assert.Equal(t, []string{"d", "b"}, identities(f.repo.GetTop(ctx, 2)))
}

func TestSheetRepository_DeleteRemovesRowAndBlob(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()

	u, err := f.blobs.Upload(ctx, []byte("img"))
	require.NoError(t, err)
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "Bob", Score: 50, SecretHash: mustHash(t, "s1"), ImageRef: u}))
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "Eve", Score: 40, SecretHash: mustHash(t, "s2")}))

	ok, err := f.repo.Delete(ctx, "Bob", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, f.store.Len())

	ok, err = f.repo.Delete(ctx, " Bob ", "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Eve"}, identities(f.repo.GetAll(ctx)))
	assert.Equal(t, 0, f.store.Len())

	ok, err = f.repo.Delete(ctx, "Bob", "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSheetRepository_DeletePrefersMostRecent(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	hash := mustHash(t, "pw")
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "dup", Score: 1, SecretHash: hash}))
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "other", Score: 2, SecretHash: hash}))
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "dup", Score: 3, SecretHash: hash}))

	ok, err := f.repo.Delete(ctx, "dup", "pw")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, scores(f.repo.GetAll(ctx)))
}

func TestSheetRepository_DeleteKeepsRowRemovalWhenBlobFails(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	u, err := f.blobs.Upload(ctx, []byte("img"))
	require.NoError(t, err)
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "Bob", Score: 50, SecretHash: mustHash(t, "s1"), ImageRef: u}))

	f.store.DestroyErr = errors.New("cdn down")
	ok, err := f.repo.Delete(ctx, "Bob", "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.repo.GetAll(ctx))
}

func TestSheetRepository_DeleteRowFailure(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	u, err := f.blobs.Upload(ctx, []byte("img"))
	require.NoError(t, err)
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "Bob", Score: 50, SecretHash: mustHash(t, "s1"), ImageRef: u}))

	f.sheet.DeleteErr = errors.New("conflict")
	ok, err := f.repo.Delete(ctx, "Bob", "s1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, common.ErrRemote)
	assert.Equal(t, 1, f.store.Len(), "image stays with its row")
}

func TestSheetRepository_Evict(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "a", Score: 1, SecretHash: "h1"}))
	require.NoError(t, f.repo.Add(ctx, models.Entry{Identity: "a", Score: 2, SecretHash: "h2"}))

	ok, err := f.repo.Evict(ctx, models.Entry{Identity: "a", Score: 1, SecretHash: "h1"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{2}, scores(f.repo.GetAll(ctx)))

	ok, err = f.repo.Evict(ctx, models.Entry{Identity: "a", Score: 1, SecretHash: "h1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSheetRepository_RowsIncludeUnscored(t *testing.T) {
	f := newFixture(t, TieBreakEarliest)
	ctx := context.Background()
	for _, row := range [][]string{
		Header,
		{"good", "12", "2025-01-01", "h", ""},
		{"bad", "twelve", "2025-01-01", "h", ""},
	} {
		require.NoError(t, f.sheet.AppendRow(ctx, row))
	}

	rows, err := f.repo.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "bad"}, identities(rows))
	assert.Equal(t, []float64{12, UnscoredRank}, scores(rows))
	assert.Equal(t, []string{"good"}, identities(f.repo.GetAll(ctx)))

	ok, err := f.repo.Evict(ctx, rows[1])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, f.sheet.Len())
	assert.Equal(t, []string{"good"}, identities(f.repo.GetAll(ctx)))
}
