package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cordon/internal/cli"
	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/config"
	"github.com/Veraticus/cordon/internal/ledger"
	"github.com/Veraticus/cordon/internal/storage"
)

var documentNames = []string{ledger.CountersDocument, ledger.DetailsDocument, ledger.PendingDocument}

func historyCmd() *cobra.Command {
	var (
		limit int
		full  bool
	)

	cmd := &cobra.Command{
		Use:   "history <document>",
		Short: "Show previous versions of a stored document (sqlite backend)",
		Long: fmt.Sprintf(`History lists the versions a document had before each overwrite, newest
first. Documents: %s, %s, %s.`, ledger.CountersDocument, ledger.DetailsDocument, ledger.PendingDocument),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !slices.Contains(documentNames, name) {
				return common.NewUserError(fmt.Sprintf("unknown document %q", name), common.ErrInvalidConfig)
			}

			backend, path := config.StoragePath(nil)
			if backend != storage.BackendSQLite {
				return common.NewUserError("history needs storage.backend: sqlite", common.ErrInvalidConfig)
			}

			store, err := storage.NewSQLiteStorage(path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := store.Migrate(cmd.Context()); err != nil {
				return err
			}

			entries, err := store.History(cmd.Context(), name, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				printLine(out, cli.FormatInfo(fmt.Sprintf("%s has never been overwritten.", name)))
				return nil
			}

			for _, e := range entries {
				printf(out, "%s #%d  %s  %d bytes\n", cli.ChartIcon, e.ID, e.ReplacedAt.Format("2006-01-02 15:04:05"), len(e.Body))
				if full {
					printLine(out, e.Body)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of versions to show")
	cmd.Flags().BoolVar(&full, "full", false, "print each stored body")

	return cmd
}
