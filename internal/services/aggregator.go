package services

import (
	"context"
	"fmt"

	"daybook/internal/core"
	"daybook/internal/ledger"
)

// Aggregator derives the overview figures for an anchor date and period.
//
// Income and expenditure are summed over the whole period window. Held
// funding is the previous day's net income; a previous day with no entry
// counts as zero. The stored held fund column is never consulted.
type Aggregator struct {
	store       ledger.Store
	provisioner *Provisioner
}

func NewAggregator(store ledger.Store, provisioner *Provisioner) *Aggregator {
	return &Aggregator{store: store, provisioner: provisioner}
}

// Summarize provisions the anchor, then reads the window and the previous day.
func (a *Aggregator) Summarize(ctx context.Context, anchor core.Date, period core.TimePeriod) (core.BalanceSummary, error) {
	if !period.IsValid() {
		return core.BalanceSummary{}, fmt.Errorf("summarize: invalid period %q", period)
	}
	if _, err := a.provisioner.Provision(ctx, anchor); err != nil {
		return core.BalanceSummary{}, fmt.Errorf("provision anchor: %w", err)
	}

	entries, err := a.store.GetRange(ctx, anchor, period.End(anchor))
	if err != nil {
		return core.BalanceSummary{}, fmt.Errorf("read period window: %w", err)
	}

	held, err := a.heldFunding(ctx, anchor)
	if err != nil {
		return core.BalanceSummary{}, err
	}

	summary := core.BalanceSummary{
		Anchor:                 anchor,
		Period:                 period,
		NetExpectedIncome:      core.Zero,
		NetExpectedExpenditure: core.Zero,
		CurrentlyHeldFunding:   held,
		Entries:                entries,
	}
	for _, e := range entries {
		summary.NetExpectedIncome = summary.NetExpectedIncome.Add(e.ExpectedIncome)
		summary.NetExpectedExpenditure = summary.NetExpectedExpenditure.Add(e.ExpectedExpenditure)
	}
	summary.ExpectedHeldFundAfter = summary.NetExpectedIncome.
		Sub(summary.NetExpectedExpenditure).
		Add(summary.CurrentlyHeldFunding)

	return summary, nil
}

// heldFunding returns the net income of the day before anchor, zero if absent.
func (a *Aggregator) heldFunding(ctx context.Context, anchor core.Date) (core.Money, error) {
	if !anchor.After(core.MinDate) {
		return core.Zero, nil
	}
	prev, ok, err := a.store.Get(ctx, anchor.AddDays(-1))
	if err != nil {
		return core.Zero, fmt.Errorf("read previous day: %w", err)
	}
	if !ok {
		return core.Zero, nil
	}
	return prev.NetIncome(), nil
}
