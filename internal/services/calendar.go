package services

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/core"
	"daybook/internal/ledger"
)

// Calendar builds month views for the calendar screen.
type Calendar struct {
	store       ledger.Store
	provisioner *Provisioner
}

func NewCalendar(store ledger.Store, provisioner *Provisioner) *Calendar {
	return &Calendar{store: store, provisioner: provisioner}
}

// Month provisions the month and classifies every day by its net income.
func (c *Calendar) Month(ctx context.Context, year, month int) (core.MonthView, error) {
	if month < 1 || month > 12 {
		return core.MonthView{}, fmt.Errorf("invalid month %d", month)
	}
	if year < core.MinDate.Year() || year > core.MaxDate.Year() {
		return core.MonthView{}, fmt.Errorf("%w: year %d", core.ErrInvalidDate, year)
	}
	if _, err := c.provisioner.ProvisionMonth(ctx, year, month); err != nil {
		return core.MonthView{}, fmt.Errorf("provision month: %w", err)
	}

	first := core.NewDate(year, month, 1)
	last := core.NewDate(year, month, core.DaysIn(year, month))
	entries, err := c.store.GetRange(ctx, first, last)
	if err != nil {
		return core.MonthView{}, fmt.Errorf("read month: %w", err)
	}

	view := core.MonthView{
		Year:          year,
		Month:         month,
		LeadingBlanks: leadingBlanks(first),
		Days:          make([]core.CalendarDay, 0, len(entries)),
		Income:        core.Zero,
		Expenditure:   core.Zero,
	}
	for _, e := range entries {
		view.Days = append(view.Days, core.CalendarDay{Entry: e, Status: core.StatusOf(e)})
		view.Income = view.Income.Add(e.ExpectedIncome)
		view.Expenditure = view.Expenditure.Add(e.ExpectedExpenditure)
	}
	return view, nil
}

// leadingBlanks is the Sunday-first column of the first day of the month.
func leadingBlanks(first core.Date) int {
	return int(first.Weekday() - time.Sunday)
}
