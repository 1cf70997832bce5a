package core

// BalanceSummary is what the overview screen shows for an anchor date and period.
type BalanceSummary struct {
	Anchor                 Date          `json:"anchor"`
	Period                 TimePeriod    `json:"period"`
	NetExpectedIncome      Money         `json:"netExpectedIncome"`
	NetExpectedExpenditure Money         `json:"netExpectedExpenditure"`
	CurrentlyHeldFunding   Money         `json:"currentlyHeldFunding"`
	ExpectedHeldFundAfter  Money         `json:"expectedHeldFundAfter"`
	Entries                []LedgerEntry `json:"entries"`
}

// DayStatus classifies a day by the sign of its net income.
type DayStatus string

const (
	StatusSurplus DayStatus = "surplus"
	StatusDeficit DayStatus = "deficit"
	StatusEven    DayStatus = "even"
)

// StatusOf returns the status for an entry's net income.
func StatusOf(e LedgerEntry) DayStatus {
	net := e.NetIncome()
	switch {
	case net.IsPositive():
		return StatusSurplus
	case net.IsNegative():
		return StatusDeficit
	default:
		return StatusEven
	}
}

// CalendarDay is one cell of a month view.
type CalendarDay struct {
	Entry  LedgerEntry `json:"entry"`
	Status DayStatus   `json:"status"`
}

// MonthView is the data behind a month calendar. LeadingBlanks is the number
// of empty cells before the first of the month in a Sunday-first grid.
type MonthView struct {
	Year          int           `json:"year"`
	Month         int           `json:"month"`
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []CalendarDay `json:"days"`
	Income        Money         `json:"income"`
	Expenditure   Money         `json:"expenditure"`
}
