package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cordon/internal/cli"
	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/ledger"
)

func pendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Review labels waiting for manual classification",
	}

	cmd.AddCommand(pendingListCmd())
	cmd.AddCommand(pendingResolveCmd())

	return cmd
}

func pendingListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending labels whose image still exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			out := cmd.OutOrStdout()
			queue := ws.ledger.Pending()

			exists := ledger.FileExists
			if all {
				exists = nil
			}
			sources := queue.List(exists)

			if len(sources) == 0 {
				printLine(out, cli.FormatSuccess("No pending labels."))
			} else {
				printLine(out, cli.FormatTitle(fmt.Sprintf("Pending labels (%d)", len(sources))))
				for _, source := range sources {
					printf(out, "  %s %s\n", cli.PendingIcon, source)
				}
			}

			if hidden := queue.Len() - len(sources); hidden > 0 {
				printLine(out, cli.FormatInfo(fmt.Sprintf("%d more pending entries point at missing files (show them with --all).", hidden)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include entries whose image is gone")

	return cmd
}

func pendingResolveCmd() *cobra.Command {
	var day, zone, locality, address string

	cmd := &cobra.Command{
		Use:     "resolve <source>",
		Short:   "Classify a pending label by hand",
		Example: `  cordon pending resolve fotos/img_0042.jpg --zone "Primer cordón" --locality MORON --day martes`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			d, err := parseDayFlag(day)
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.ledger.Resolve(d, source, zone, locality, address); err != nil {
				switch {
				case errors.Is(err, common.ErrInvalidZone):
					return zoneError(ws.dir, err)
				case errors.Is(err, common.ErrNotPending):
					return common.NewUserError("only queued labels can be resolved; see 'cordon pending list'", err)
				default:
					return err
				}
			}

			if err := ws.ledger.Flush(cmd.Context()); err != nil {
				return err
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s → %s (%s)", source, zone, d)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "day bucket (Lunes..Viernes, default today)")
	cmd.Flags().StringVar(&zone, "zone", "", "zone name as listed by 'cordon zones'")
	cmd.Flags().StringVar(&locality, "locality", "", "locality printed on the label")
	cmd.Flags().StringVar(&address, "address", "", "delivery address")
	_ = cmd.MarkFlagRequired("zone")

	return cmd
}
