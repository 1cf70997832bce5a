// Package memory is an in-process ledger.Store used by the memory backend and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"daybook/internal/core"
	"daybook/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	entries map[string]core.LedgerEntry
}

var _ ledger.Store = (*Store)(nil)

// New returns a store seeded with the given entries. Later duplicates win.
func New(seed ...core.LedgerEntry) *Store {
	s := &Store{entries: make(map[string]core.LedgerEntry, len(seed))}
	for _, e := range seed {
		s.entries[e.Date.String()] = e
	}
	return s
}

func (s *Store) Exists(_ context.Context, date core.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[date.String()]
	return ok, nil
}

func (s *Store) Get(_ context.Context, date core.Date) (core.LedgerEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[date.String()]
	return e, ok, nil
}

// Upsert stores the entry, replacing any entry with the same date.
func (s *Store) Upsert(_ context.Context, e core.LedgerEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Date.String()] = e
	return nil
}

func (s *Store) GetRange(_ context.Context, start, end core.Date) ([]core.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.LedgerEntry, 0)
	for _, e := range s.entries {
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) UpdateEditableFields(_ context.Context, date core.Date, income, expenditure core.Money, notes string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := date.String()
	e, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	e.ExpectedIncome = income
	e.ExpectedExpenditure = expenditure
	e.CustomNotes = notes
	s.entries[key] = e
	return 1, nil
}

// Len returns the number of stored days.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
