package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"daybook/internal/core"
)

var provisionThrough string

var provisionCmd = &cobra.Command{
	Use:   "provision DATE",
	Short: "Create blank entries for the provisioning window starting at DATE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := core.ParseDate(args[0])
		if err != nil {
			return err
		}
		p := ledgerSvc.Provisioner()

		var created int
		if provisionThrough != "" {
			to, err := core.ParseDate(provisionThrough)
			if err != nil {
				return err
			}
			created, err = p.ProvisionRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}
		} else if created, err = p.Provision(cmd.Context(), from); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d days created (window %d)\n", created, p.Window())
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show FROM [TO]",
	Short: "Print the entries from FROM through TO (default FROM)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := core.ParseDate(args[0])
		if err != nil {
			return err
		}
		to := from
		if len(args) == 2 {
			if to, err = core.ParseDate(args[1]); err != nil {
				return err
			}
		}
		entries, err := ledgerSvc.Range(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), entries)
		}
		return printEntries(cmd.OutOrStdout(), entries, colorEnabled(cmd.OutOrStdout()))
	},
}

var (
	setIncome      string
	setExpenditure string
	setNotes       string
)

var setCmd = &cobra.Command{
	Use:   "set DATE",
	Short: "Overwrite the income, expenditure and notes of DATE",
	Long: `Overwrite the editable fields of a day. Fields that are not given are
saved as blank, and amounts that are not numbers are saved as zero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := core.ParseDate(args[0])
		if err != nil {
			return err
		}
		e, err := ledgerSvc.SaveDay(cmd.Context(), date, core.NewDayEdit(setIncome, setExpenditure, setNotes))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), e)
		}
		return printEntries(cmd.OutOrStdout(), []core.LedgerEntry{e}, colorEnabled(cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(provisionCmd, showCmd, setCmd)

	provisionCmd.Flags().StringVar(&provisionThrough, "through", "", "Provision every day through this date instead of one window.")

	setCmd.Flags().StringVar(&setIncome, "income", "", "Expected income.")
	setCmd.Flags().StringVar(&setExpenditure, "expenditure", "", "Expected expenditure.")
	setCmd.Flags().StringVar(&setNotes, "notes", "", "Free-form notes, at most 2000 characters.")
}
