package services

import (
	"context"
	"errors"
	"fmt"

	"daybook/internal/core"
	"daybook/internal/ledger"
)

// MaxRangeDays bounds range reads requested by clients.
const MaxRangeDays = 366

var ErrRangeTooLarge = fmt.Errorf("date range exceeds %d days", MaxRangeDays)

// DayPublisher announces saved days to other processes.
type DayPublisher interface {
	PublishDayUpdated(ctx context.Context, date core.Date) error
}

// LedgerService orchestrates provisioning, edits and summaries over one store.
// Every step is awaited: a save finishes provisioning and the update before
// anything reads the day again.
type LedgerService struct {
	store       ledger.Store
	provisioner *Provisioner
	aggregator  *Aggregator
	calendar    *Calendar
	publisher   DayPublisher
}

// NewLedgerService wires the core components around store. publisher may be nil.
func NewLedgerService(store ledger.Store, window int, publisher DayPublisher) *LedgerService {
	p := NewProvisioner(store, window)
	return &LedgerService{
		store:       store,
		provisioner: p,
		aggregator:  NewAggregator(store, p),
		calendar:    NewCalendar(store, p),
		publisher:   publisher,
	}
}

// Provisioner exposes the underlying provisioner.
func (s *LedgerService) Provisioner() *Provisioner {
	return s.provisioner
}

// Bootstrap pre-populates the ledger from today, as done on first launch.
func (s *LedgerService) Bootstrap(ctx context.Context, today core.Date) error {
	created, err := s.provisioner.Provision(ctx, today)
	if err != nil {
		return fmt.Errorf("bootstrap ledger: %w", err)
	}
	logger(ctx).InfoContext(ctx, "Ledger bootstrapped",
		"from", today.String(),
		"window", s.provisioner.Window(),
		"created", created)
	return nil
}

// Day provisions date and returns its entry.
func (s *LedgerService) Day(ctx context.Context, date core.Date) (core.LedgerEntry, error) {
	if _, err := s.provisioner.Provision(ctx, date); err != nil {
		return core.LedgerEntry{}, fmt.Errorf("provision day: %w", err)
	}
	e, ok, err := s.store.Get(ctx, date)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("get day: %w", err)
	}
	if !ok {
		return core.LedgerEntry{}, fmt.Errorf("get day %s: %w", date, ledger.ErrEntryNotProvisioned)
	}
	return e, nil
}

// Range provisions and returns [from, to].
func (s *LedgerService) Range(ctx context.Context, from, to core.Date) ([]core.LedgerEntry, error) {
	if to.Before(from) {
		return []core.LedgerEntry{}, nil
	}
	if int(to.Sub(from.Time).Hours()/24) >= MaxRangeDays {
		return nil, ErrRangeTooLarge
	}
	if _, err := s.provisioner.ProvisionRange(ctx, from, to); err != nil {
		return nil, fmt.Errorf("provision range: %w", err)
	}
	entries, err := s.store.GetRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("get range: %w", err)
	}
	return entries, nil
}

// SaveDay rewrites the editable fields of date. The held fund is left alone.
// It returns ledger.ErrEntryNotProvisioned if the update touched no row.
func (s *LedgerService) SaveDay(ctx context.Context, date core.Date, edit core.DayEdit) (core.LedgerEntry, error) {
	if err := edit.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}
	if _, err := s.provisioner.Provision(ctx, date); err != nil {
		return core.LedgerEntry{}, fmt.Errorf("provision before save: %w", err)
	}

	n, err := s.store.UpdateEditableFields(ctx, date, edit.Income, edit.Expenditure, edit.Notes)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("save day: %w", err)
	}
	if n == 0 {
		logger(ctx).WarnContext(ctx, "No rows updated for provisioned day", "date", date.String())
		return core.LedgerEntry{}, fmt.Errorf("save day %s: %w", date, ledger.ErrEntryNotProvisioned)
	}

	logger(ctx).InfoContext(ctx, "Day saved",
		"date", date.String(),
		"income", edit.Income.String(),
		"expenditure", edit.Expenditure.String())

	if err := s.publish(ctx, date); err != nil {
		// The day is saved locally; mirroring catches up on the next resync
		logger(ctx).ErrorContext(ctx, "Failed to publish day update", "date", date.String(), "error", err)
	}

	e, ok, err := s.store.Get(ctx, date)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("reload day: %w", err)
	}
	if !ok {
		return core.LedgerEntry{}, fmt.Errorf("reload day %s: %w", date, ledger.ErrEntryNotProvisioned)
	}
	return e, nil
}

// Summary computes the overview for anchor and period.
func (s *LedgerService) Summary(ctx context.Context, anchor core.Date, period core.TimePeriod) (core.BalanceSummary, error) {
	return s.aggregator.Summarize(ctx, anchor, period)
}

// Month returns the calendar view of a month.
func (s *LedgerService) Month(ctx context.Context, year, month int) (core.MonthView, error) {
	return s.calendar.Month(ctx, year, month)
}

func (s *LedgerService) publish(ctx context.Context, date core.Date) error {
	if s.publisher == nil {
		logger(ctx).DebugContext(ctx, "No publisher configured, skipping day update message")
		return nil
	}
	return s.publisher.PublishDayUpdated(ctx, date)
}

// IsNotProvisioned reports whether err signals a save against a missing day.
func IsNotProvisioned(err error) bool {
	return errors.Is(err, ledger.ErrEntryNotProvisioned)
}
