package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/config"
	"github.com/Veraticus/cordon/internal/ledger"
	"github.com/Veraticus/cordon/internal/model"
	"github.com/Veraticus/cordon/internal/report"
	"github.com/Veraticus/cordon/internal/service"
	"github.com/Veraticus/cordon/internal/storage"
)

// workspace is the opened state every data command works on.
type workspace struct {
	store  service.DocumentStore
	ledger *ledger.Ledger
	dir    *model.Directory
}

// openWorkspace loads the zone directory, opens the configured store and
// loads the ledger from it.
func openWorkspace(ctx context.Context) (*workspace, error) {
	dir, err := config.LoadDirectory(nil)
	if err != nil {
		return nil, err
	}

	backend, path := config.StoragePath(nil)
	store, err := storage.Open(ctx, backend, path)
	if err != nil {
		return nil, err
	}

	l, err := ledger.Open(ctx, store, dir, ledger.Options{Logger: slog.Default()})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	slog.Debug("Opened workspace", "backend", backend, "path", path)
	return &workspace{store: store, ledger: l, dir: dir}, nil
}

func (w *workspace) Close() {
	if err := w.store.Close(); err != nil {
		slog.Warn("Failed to close store", "error", err)
	}
}

func (w *workspace) reporter() *report.Reporter {
	return report.NewReporter(w.dir, report.Options{Client: viper.GetString(config.KeyExportClient)})
}

// parseDayFlag resolves a --day value; empty means today.
func parseDayFlag(value string) (model.Day, error) {
	var (
		day model.Day
		err error
	)
	if value == "" {
		day, err = model.Today(time.Now())
	} else {
		day, err = model.ParseDay(value)
	}
	if err != nil {
		return 0, common.NewUserError("pick a day with --day (Lunes..Viernes)", err)
	}
	return day, nil
}

// zoneError explains an invalid zone with the list of valid ones.
func zoneError(dir *model.Directory, err error) error {
	return common.NewUserError(fmt.Sprintf("valid zones are: %s", strings.Join(dir.Names(), ", ")), err)
}

func printf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func printLine(w io.Writer, args ...any) {
	if _, err := fmt.Fprintln(w, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}
