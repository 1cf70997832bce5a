package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"daybook/internal/core"
)

var summaryPeriod string

var summaryCmd = &cobra.Command{
	Use:   "summary [DATE]",
	Short: "Print the balance overview anchored at DATE (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		anchor := core.Today()
		if len(args) == 1 {
			var err error
			if anchor, err = core.ParseDate(args[0]); err != nil {
				return err
			}
		}
		period, err := core.ParseTimePeriod(summaryPeriod)
		if err != nil {
			return err
		}
		sum, err := ledgerSvc.Summary(cmd.Context(), anchor, period)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), sum)
		}
		return printSummary(cmd.OutOrStdout(), sum)
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM]",
	Short: "Print a month grid marking surplus and deficit days",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		today := core.Today()
		year, month := today.Year(), today.Month()
		if len(args) == 1 {
			var err error
			if year, month, err = parseYearMonthArg(args[0]); err != nil {
				return err
			}
		}
		view, err := ledgerSvc.Month(cmd.Context(), year, month)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), view)
		}
		return printCalendar(cmd.OutOrStdout(), view, colorEnabled(cmd.OutOrStdout()))
	},
}

func parseYearMonthArg(s string) (year, month int, err error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	if year, err = strconv.Atoi(y); err != nil || year < core.MinDate.Year() || year > core.MaxDate.Year() {
		return 0, 0, fmt.Errorf("invalid year in %q", s)
	}
	if month, err = strconv.Atoi(m); err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in %q", s)
	}
	return year, month, nil
}

func init() {
	rootCmd.AddCommand(summaryCmd, calendarCmd)

	summaryCmd.Flags().StringVarP(&summaryPeriod, "period", "p", string(core.PeriodDay), "Summary window: day, week or month.")
}
