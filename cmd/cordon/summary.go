package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cordon/internal/cli"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the weekly counters per day and zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			out := cmd.OutOrStdout()
			summary := ws.reporter().BuildSummary(ws.ledger.Counters().All())

			printLine(out, cli.FormatTitle("Resumen semanal"))
			printLine(out, cli.RenderSummary(summary))

			if n := ws.ledger.Pending().Len(); n > 0 {
				printLine(out, cli.FormatInfo(fmt.Sprintf("%d labels pending manual classification.", n)))
			}
			return nil
		},
	}
}
