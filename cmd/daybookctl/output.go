package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"

	"daybook/internal/core"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// colorEnabled reports whether w is a terminal that should get ANSI colors.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func paint(s string, status core.DayStatus, color bool) string {
	if !color {
		return s
	}
	switch status {
	case core.StatusSurplus:
		return ansiGreen + s + ansiReset
	case core.StatusDeficit:
		return ansiRed + s + ansiReset
	default:
		return s
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEntries(w io.Writer, entries []core.LedgerEntry, color bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tIncome\tExpenditure\tNet\t")
	for _, e := range entries {
		net := paint(e.NetIncome().String(), core.StatusOf(e), color)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t %s\n",
			e.Date, e.ExpectedIncome, e.ExpectedExpenditure, net, firstLine(e.CustomNotes))
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s core.BalanceSummary) error {
	end := s.Period.End(s.Anchor)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\t%s (%s to %s)\n", s.Period, s.Anchor, end)
	fmt.Fprintf(tw, "Net expected income\t%s\n", s.NetExpectedIncome)
	fmt.Fprintf(tw, "Net expected expenditure\t%s\n", s.NetExpectedExpenditure)
	fmt.Fprintf(tw, "Currently held funding\t%s\n", s.CurrentlyHeldFunding)
	fmt.Fprintf(tw, "Expected held fund after\t%s\n", s.ExpectedHeldFundAfter)
	return tw.Flush()
}

// printCalendar draws a Sunday-first grid. Each day is marked + for a
// surplus and - for a deficit.
func printCalendar(w io.Writer, v core.MonthView, color bool) error {
	var b strings.Builder
	title := fmt.Sprintf("%s %d", time.Month(v.Month), v.Year)
	fmt.Fprintf(&b, "%*s\n", (27+len(title))/2, title)
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")

	col := v.LeadingBlanks
	b.WriteString(strings.Repeat("    ", col))
	for _, d := range v.Days {
		mark := " "
		switch d.Status {
		case core.StatusSurplus:
			mark = "+"
		case core.StatusDeficit:
			mark = "-"
		}
		cell := fmt.Sprintf("%2d%s", d.Entry.Date.Day(), mark)
		b.WriteString(" " + paint(cell, d.Status, color))
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Income %s  Expenditure %s\n", v.Income, v.Expenditure)

	_, err := io.WriteString(w, b.String())
	return err
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
