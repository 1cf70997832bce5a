package core

import (
	"fmt"
	"strings"
)

// TimePeriod selects the window a summary covers.
type TimePeriod string

const (
	PeriodDay   TimePeriod = "day"
	PeriodWeek  TimePeriod = "week"
	PeriodMonth TimePeriod = "month"
)

// ParseTimePeriod accepts day, week or month in any case.
func ParseTimePeriod(s string) (TimePeriod, error) {
	p := TimePeriod(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid time period %q: must be day, week or month", s)
	}
	return p, nil
}

func (p TimePeriod) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer
func (p TimePeriod) String() string {
	return string(p)
}

// End returns the last day (inclusive) of the window starting at anchor.
//
//	day:   anchor
//	week:  anchor + 7 days
//	month: anchor + 1 month (clamped to month end)
//
// Both bounds are inclusive, so a week covers eight days.
func (p TimePeriod) End(anchor Date) Date {
	switch p {
	case PeriodWeek:
		return anchor.AddDays(7)
	case PeriodMonth:
		return anchor.AddMonthsClamped(1)
	default:
		return anchor
	}
}

// Length returns the number of days in the window starting at anchor.
func (p TimePeriod) Length(anchor Date) int {
	return int(p.End(anchor).Sub(anchor.Time).Hours()/24) + 1
}
