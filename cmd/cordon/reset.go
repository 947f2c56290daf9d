package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cordon/internal/cli"
	"github.com/Veraticus/cordon/internal/model"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the records and counters of a day or of the whole week",
		Long: `Reset removes detail records together with their counters.

'reset day' leaves the other days and the pending queue untouched.
'reset all' starts a new week: every day and the pending queue are cleared.`,
	}

	cmd.AddCommand(resetDayCmd())
	cmd.AddCommand(resetAllCmd())

	return cmd
}

func resetDayCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "day <day>",
		Short: "Clear one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDayFlag(args[0])
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			out := cmd.OutOrStdout()
			n := len(ws.ledger.Records(day))
			if n == 0 && ws.ledger.Counters().Total(day) == 0 {
				printLine(out, cli.FormatInfo(fmt.Sprintf("%s is already empty.", day)))
				return nil
			}

			if !force {
				ok, err := cli.NewConfirmer(cmd.InOrStdin(), out).
					Confirm(cmd.Context(), fmt.Sprintf("Delete %d records of %s?", n, day))
				if err != nil {
					return err
				}
				if !ok {
					printLine(out, "Reset canceled.")
					return nil
				}
			}

			if err := ws.ledger.ResetDay(day); err != nil {
				return err
			}
			if err := ws.ledger.Flush(cmd.Context()); err != nil {
				return err
			}

			printLine(out, cli.FormatSuccess(fmt.Sprintf("%s cleared.", day)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func resetAllCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Clear every day and the pending queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			out := cmd.OutOrStdout()
			if !force {
				total := 0
				for _, day := range model.Days {
					total += len(ws.ledger.Records(day))
				}
				question := fmt.Sprintf("Delete %d records and %d pending labels for the whole week?",
					total, ws.ledger.Pending().Len())

				ok, err := cli.NewConfirmer(cmd.InOrStdin(), out).Confirm(cmd.Context(), question)
				if err != nil {
					return err
				}
				if !ok {
					printLine(out, "Reset canceled.")
					return nil
				}
			}

			ws.ledger.ResetAll()
			if err := ws.ledger.Flush(cmd.Context()); err != nil {
				return err
			}

			printLine(out, cli.FormatSuccess("Week cleared. Ready for a new one."))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
