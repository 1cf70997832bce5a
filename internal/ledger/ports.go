// Package ledger defines the storage port for daily ledger entries.
package ledger

import (
	"context"

	"daybook/internal/core"
)

// Store persists one entry per calendar date.
type Store interface {
	// Exists reports whether an entry for date is present.
	Exists(ctx context.Context, date core.Date) (bool, error)

	// Get returns the entry for date and whether it was found.
	Get(ctx context.Context, date core.Date) (core.LedgerEntry, bool, error)

	// Upsert inserts the entry or replaces the one sharing its date.
	Upsert(ctx context.Context, e core.LedgerEntry) error

	// GetRange returns entries with start <= date <= end ordered by date.
	// No match is an empty slice, not an error.
	GetRange(ctx context.Context, start, end core.Date) ([]core.LedgerEntry, error)

	// UpdateEditableFields rewrites income, expenditure and notes for date,
	// leaving the held fund untouched. It returns the rows affected.
	UpdateEditableFields(ctx context.Context, date core.Date, income, expenditure core.Money, notes string) (int64, error)
}
