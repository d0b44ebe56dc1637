// Package sheets provides the ordered tabular store the leaderboard is kept
// in. A sheet is a list of string rows; the first row is the header and
// rows are addressed by 1-based position.
package sheets

import (
	"context"
)

// Opener hands out sheet handles by name.
type Opener interface {
	// Open returns a handle to the named sheet. A failure to obtain a
	// working handle is reported as common.ErrAuth.
	Open(ctx context.Context, name string) (Sheet, error)
}

// Sheet is an ordered, append-only list of rows with positional delete.
type Sheet interface {
	// ReadAll returns every row, header first. An empty sheet yields no rows.
	ReadAll(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
	// DeleteRow removes the row at the 1-based index (header is 1).
	// An index outside the sheet returns common.ErrorNotFound.
	DeleteRow(ctx context.Context, index int) error
	// UpdateHeaderCell sets the 1-based column of the header row, padding
	// the header with empty cells when col is beyond its end.
	UpdateHeaderCell(ctx context.Context, col int, value string) error
}

func setCell(row []string, col int, value string) []string {
	for len(row) < col {
		row = append(row, "")
	}
	row[col-1] = value
	return row
}

func cloneRow(row []string) []string {
	return append([]string(nil), row...)
}
