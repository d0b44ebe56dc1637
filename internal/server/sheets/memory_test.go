package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySheet_Contract(t *testing.T) {
	runSheetContract(t, NewMemoryOpener())
}

func TestMemoryOpener_OpenErr(t *testing.T) {
	o := NewMemoryOpener()
	o.OpenErr = errors.New("credentials missing")

	_, err := o.Open(context.Background(), "board")
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestMemoryOpener_SheetIgnoresOpenErr(t *testing.T) {
	o := NewMemoryOpener()
	ctx := context.Background()
	require.NoError(t, o.Sheet("ranking").AppendRow(ctx, []string{"a"}))

	o.OpenErr = errors.New("credentials missing")
	var s *MemorySheet
	require.NotPanics(t, func() { s = o.Sheet("ranking") })
	assert.Equal(t, 1, s.Len())

	o.OpenErr = nil
	opened, err := o.Open(ctx, "ranking")
	require.NoError(t, err)
	assert.Same(t, s, opened)
}

func TestMemorySheet_FailureHooks(t *testing.T) {
	o := NewMemoryOpener()
	s := o.Sheet("board")
	ctx := context.Background()
	boom := errors.New("boom")

	s.ReadErr = boom
	_, err := s.ReadAll(ctx)
	assert.ErrorIs(t, err, boom)

	s.AppendErr = boom
	assert.ErrorIs(t, s.AppendRow(ctx, []string{"x"}), boom)

	s.DeleteErr = boom
	assert.ErrorIs(t, s.DeleteRow(ctx, 1), boom)
}

func TestMemorySheet_ReadAllReturnsCopies(t *testing.T) {
	s := NewMemoryOpener().Sheet("board")
	ctx := context.Background()
	require.NoError(t, s.AppendRow(ctx, []string{"a"}))

	rows, err := s.ReadAll(ctx)
	require.NoError(t, err)
	rows[0][0] = "mutated"

	again, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0][0])
	assert.Equal(t, 1, s.Len())
}
