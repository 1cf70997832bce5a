package services

import (
	"context"
	"errors"
	"sync"

	"daybook/internal/core"
	"daybook/internal/ledger"
	"daybook/internal/ledger/memory"
)

// countingStore wraps the memory store and counts writes.
type countingStore struct {
	*memory.Store
	mu      sync.Mutex
	upserts int
	updates int
}

func newCountingStore(seed ...core.LedgerEntry) *countingStore {
	return &countingStore{Store: memory.New(seed...)}
}

func (s *countingStore) Upsert(ctx context.Context, e core.LedgerEntry) error {
	s.mu.Lock()
	s.upserts++
	s.mu.Unlock()
	return s.Store.Upsert(ctx, e)
}

func (s *countingStore) UpdateEditableFields(ctx context.Context, d core.Date, in, out core.Money, notes string) (int64, error) {
	s.mu.Lock()
	s.updates++
	s.mu.Unlock()
	return s.Store.UpdateEditableFields(ctx, d, in, out, notes)
}

func (s *countingStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts + s.updates
}

var errDisk = errors.New("disk I/O error")

// flakyStore fails upserts after a number of successful ones.
type flakyStore struct {
	*memory.Store
	okUpserts int
}

func (s *flakyStore) Upsert(ctx context.Context, e core.LedgerEntry) error {
	if s.okUpserts <= 0 {
		return ledger.NewStorageError("upsert", errDisk)
	}
	s.okUpserts--
	return s.Store.Upsert(ctx, e)
}

// brokenReadStore fails every range read.
type brokenReadStore struct {
	*memory.Store
}

func (s *brokenReadStore) GetRange(context.Context, core.Date, core.Date) ([]core.LedgerEntry, error) {
	return nil, ledger.NewStorageError("range", errDisk)
}

// lostUpdateStore reports zero rows on update, as if the day vanished.
type lostUpdateStore struct {
	*memory.Store
}

func (s *lostUpdateStore) UpdateEditableFields(context.Context, core.Date, core.Money, core.Money, string) (int64, error) {
	return 0, nil
}

type recordingPublisher struct {
	mu    sync.Mutex
	dates []string
	err   error
}

func (p *recordingPublisher) PublishDayUpdated(_ context.Context, d core.Date) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dates = append(p.dates, d.String())
	return p.err
}

func day(s string) core.Date { return core.MustParseDate(s) }

func entryOf(date string, income, expenditure int64) core.LedgerEntry {
	e := core.BlankEntry(day(date))
	e.ExpectedIncome = core.NewMoney(income)
	e.ExpectedExpenditure = core.NewMoney(expenditure)
	return e
}
