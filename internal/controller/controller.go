// Package controller holds the client-facing view state: the selected date,
// period and screen, and the last summary published for them.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"daybook/internal/core"
	"daybook/internal/log"
)

// Ledger is the subset of the ledger service the controller drives.
type Ledger interface {
	Summary(ctx context.Context, anchor core.Date, period core.TimePeriod) (core.BalanceSummary, error)
	SaveDay(ctx context.Context, date core.Date, edit core.DayEdit) (core.LedgerEntry, error)
}

// Clock returns the current time.
type Clock func() time.Time

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Date    core.Date            `json:"date"`
	Period  core.TimePeriod      `json:"period"`
	Screen  Screen               `json:"screen"`
	Summary *core.BalanceSummary `json:"summary,omitempty"`
}

// Controller owns the view state. Summaries are only published when they
// still match the current selection, so a slow refresh for an old date never
// overwrites a newer one.
type Controller struct {
	ledger Ledger

	mu      sync.Mutex
	date    core.Date
	period  core.TimePeriod
	screen  Screen
	summary *core.BalanceSummary
}

type Option func(*Controller)

// WithClock overrides the clock used to pick the initial date.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.date = core.DateOf(clock())
	}
}

// New returns a controller on today, the day period and the main screen.
func New(ledger Ledger, opts ...Option) *Controller {
	c := &Controller{
		ledger: ledger,
		date:   core.Today(),
		period: core.PeriodDay,
		screen: ScreenMain,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectDate changes the selected date and refreshes the summary.
func (c *Controller) SelectDate(ctx context.Context, date core.Date) (Snapshot, error) {
	if err := date.Validate(); err != nil {
		return c.Snapshot(), err
	}
	c.mu.Lock()
	c.date = date
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// SelectPeriod changes the selected period and refreshes the summary.
func (c *Controller) SelectPeriod(ctx context.Context, period core.TimePeriod) (Snapshot, error) {
	if !period.IsValid() {
		return c.Snapshot(), fmt.Errorf("invalid time period %q", period)
	}
	c.mu.Lock()
	c.period = period
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// NavigateTo switches screens. It does not touch the ledger.
func (c *Controller) NavigateTo(screen Screen) (Snapshot, error) {
	if !screen.IsValid() {
		return c.Snapshot(), fmt.Errorf("unknown screen %d", int(screen))
	}
	c.mu.Lock()
	c.screen = screen
	c.mu.Unlock()
	return c.Snapshot(), nil
}

// Refresh recomputes the summary for the current selection. On failure the
// previously published summary stays in place.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	date, period := c.date, c.period
	c.mu.Unlock()

	sum, err := c.ledger.Summary(ctx, date, period)
	if err != nil {
		logger(ctx).ErrorContext(ctx, "Failed to refresh summary",
			"date", date.String(),
			"period", period.String(),
			"error", err)
		return c.Snapshot(), err
	}

	c.mu.Lock()
	if c.date.Equal(date) && c.period == period {
		c.summary = &sum
	} else {
		logger(ctx).DebugContext(ctx, "Discarding stale summary", "date", date.String(), "period", period.String())
	}
	c.mu.Unlock()
	return c.Snapshot(), nil
}

// Save writes the editable fields of the selected date and then refreshes.
// Amount text that is not a number is saved as zero.
func (c *Controller) Save(ctx context.Context, incomeText, expenditureText, notes string) (Snapshot, error) {
	c.mu.Lock()
	date := c.date
	c.mu.Unlock()

	if _, err := c.ledger.SaveDay(ctx, date, core.NewDayEdit(incomeText, expenditureText, notes)); err != nil {
		logger(ctx).ErrorContext(ctx, "Failed to save day", "date", date.String(), "error", err)
		return c.Snapshot(), err
	}
	return c.Refresh(ctx)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{Date: c.date, Period: c.period, Screen: c.screen}
	if c.summary != nil {
		sum := *c.summary
		sum.Entries = append([]core.LedgerEntry(nil), c.summary.Entries...)
		s.Summary = &sum
	}
	return s
}

// HasNetDeficit reports whether date is in the published summary with a
// negative net income.
func (c *Controller) HasNetDeficit(date core.Date) bool {
	e, ok := c.published(date)
	return ok && e.NetIncome().IsNegative()
}

// HasNetSurplus reports whether date is in the published summary with a
// positive net income.
func (c *Controller) HasNetSurplus(date core.Date) bool {
	e, ok := c.published(date)
	return ok && e.NetIncome().IsPositive()
}

func (c *Controller) published(date core.Date) (core.LedgerEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return core.LedgerEntry{}, false
	}
	for _, e := range c.summary.Entries {
		if e.Date.Equal(date) {
			return e, true
		}
	}
	return core.LedgerEntry{}, false
}

func logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentController)
}
