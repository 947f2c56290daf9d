package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cordon/internal/cli"
	"github.com/Veraticus/cordon/internal/config"
	"github.com/Veraticus/cordon/internal/storage"
)

func migrateCmd() *cobra.Command {
	var reconcile bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade stored data to the current layout",
		Long: `Migrate applies pending database migrations (sqlite backend), fills in the
zone and timestamp of records written by older releases, and reports days
whose counters disagree with their detail records.

With --reconcile those counters are rebuilt from the records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if backend, path := config.StoragePath(nil); backend == storage.BackendSQLite {
				store, err := storage.NewSQLiteStorage(path)
				if err != nil {
					return err
				}
				applied, err := store.Migrate(ctx)
				if closeErr := store.Close(); closeErr != nil {
					slog.Warn("Failed to close database", "error", closeErr)
				}
				if err != nil {
					return err
				}
				printLine(out, cli.FormatInfo(fmt.Sprintf("Database schema: %d migrations applied (version %d).", applied, storage.ExpectedSchemaVersion)))
			}

			ws, err := openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			if ws.ledger.Migrated() {
				printLine(out, cli.FormatSuccess("Legacy records upgraded."))
			} else {
				printLine(out, cli.FormatSuccess("Records already up to date."))
			}

			drift := ws.ledger.Drift()
			if len(drift) == 0 {
				return nil
			}

			for _, d := range drift {
				printLine(out, cli.FormatWarning(fmt.Sprintf("%s counters %v disagree with records %v", d.Day, d.Counted, d.Recorded)))
			}
			if !reconcile {
				printLine(out, cli.FormatInfo("Run 'cordon migrate --reconcile' to rebuild these counters from the records."))
				return nil
			}

			days := ws.ledger.Reconcile()
			if err := ws.ledger.Flush(ctx); err != nil {
				return err
			}
			printLine(out, cli.FormatSuccess(fmt.Sprintf("Rebuilt counters of %d days.", len(days))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reconcile, "reconcile", false, "rebuild drifted counters from the detail records")

	return cmd
}
