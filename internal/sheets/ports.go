package sheets

import (
	"context"

	"daybook/internal/core"
)

// Ports for outbound adapters.
type (
	// DayWriter mirrors one ledger day as a spreadsheet row, replacing the
	// row already holding that date or appending a new one.
	DayWriter interface {
		WriteDay(ctx context.Context, e core.LedgerEntry) (rowRef string, err error)
	}
)

// Header is the first row of the mirror sheet.
var Header = []any{"Date", "Income", "Expenditure", "Net", "Notes"}

// Row formats an entry in Header column order. Amounts are plain decimal
// strings so USER_ENTERED input keeps them numeric.
func Row(e core.LedgerEntry) []any {
	return []any{
		e.Date.String(),
		e.ExpectedIncome.String(),
		e.ExpectedExpenditure.String(),
		e.NetIncome().String(),
		e.CustomNotes,
	}
}
