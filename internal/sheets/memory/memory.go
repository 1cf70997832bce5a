package memory

import (
	"context"
	"fmt"
	"sync"

	"daybook/internal/core"
	"daybook/internal/sheets"
)

// Store is an in-process sheet used when no spreadsheet is configured.
type Store struct {
	mu     sync.Mutex
	rows   [][]any
	byDate map[string]int
}

var _ sheets.DayWriter = (*Store)(nil)

func New() *Store {
	return &Store{byDate: map[string]int{}}
}

// WriteDay replaces the row for the entry's date or appends one.
func (s *Store) WriteDay(_ context.Context, e core.LedgerEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.Date.String()
	if i, ok := s.byDate[key]; ok {
		s.rows[i] = sheets.Row(e)
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	s.rows = append(s.rows, sheets.Row(e))
	s.byDate[key] = len(s.rows) - 1
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Row returns a copy of the row for date.
func (s *Store) Row(date core.Date) ([]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byDate[date.String()]
	if !ok {
		return nil, false
	}
	return append([]any(nil), s.rows[i]...), true
}

// Len returns the number of mirrored days.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
