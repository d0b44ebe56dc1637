package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/lookboard/internal/common"
)

// MemoryOpener keeps sheets in process memory. It stands in for a remote
// store in tests and single-node development.
type MemoryOpener struct {
	mu     sync.Mutex
	sheets map[string]*MemorySheet

	// OpenErr, when set, is returned by Open.
	OpenErr error
}

func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{sheets: map[string]*MemorySheet{}}
}

func (o *MemoryOpener) Open(_ context.Context, name string) (Sheet, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.OpenErr != nil {
		return nil, fmt.Errorf("open sheet %q: %w: %w", name, common.ErrAuth, o.OpenErr)
	}
	return o.sheet(name), nil
}

// Sheet returns the named sheet, creating it if needed, for direct
// inspection in tests. OpenErr does not apply.
func (o *MemoryOpener) Sheet(name string) *MemorySheet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sheet(name)
}

func (o *MemoryOpener) sheet(name string) *MemorySheet {
	s, ok := o.sheets[name]
	if !ok {
		s = &MemorySheet{}
		o.sheets[name] = s
	}
	return s
}

// MemorySheet is a concurrency-safe in-memory Sheet.
type MemorySheet struct {
	mu   sync.Mutex
	rows [][]string

	// Fail hooks let tests inject remote failures per operation.
	ReadErr   error
	AppendErr error
	DeleteErr error
}

func (s *MemorySheet) ReadAll(_ context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = cloneRow(r)
	}
	return out, nil
}

func (s *MemorySheet) AppendRow(_ context.Context, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.rows = append(s.rows, cloneRow(row))
	return nil
}

func (s *MemorySheet) DeleteRow(_ context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if index < 1 || index > len(s.rows) {
		return fmt.Errorf("row %d: %w", index, common.ErrorNotFound)
	}
	s.rows = append(s.rows[:index-1], s.rows[index:]...)
	return nil
}

func (s *MemorySheet) UpdateHeaderCell(_ context.Context, col int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 1 {
		return fmt.Errorf("column %d: %w", col, common.ErrorNotFound)
	}
	if len(s.rows) == 0 {
		s.rows = append(s.rows, nil)
	}
	s.rows[0] = setCell(s.rows[0], col, value)
	return nil
}

// Len returns the number of rows including the header.
func (s *MemorySheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
