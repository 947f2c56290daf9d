package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cordon/internal/cli"
	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/config"
	"github.com/Veraticus/cordon/internal/export"
	"github.com/Veraticus/cordon/internal/service"
	"github.com/Veraticus/cordon/internal/sheets"
)

// Export formats.
const (
	formatXLSX     = "xlsx"
	formatMarkdown = "md"
	formatSheets   = "sheets"
)

type exportOptions struct {
	format string
	out    string
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the weekly summary or the grouped delivery detail",
	}

	cmd.AddCommand(exportSubCmd("summary", "Export the per-day counters and totals", "resumen_semanal", runExportSummary))
	cmd.AddCommand(exportSubCmd("detail", "Export delivery rows grouped by day, zone and address", "detalle_entregas", runExportDetail))

	return cmd
}

type exportFunc func(ctx context.Context, ws *workspace, w service.ReportWriter) error

func exportSubCmd(use, short, defaultName string, run exportFunc) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			writer, target, closeWriter, err := newReportWriter(cmd.Context(), opts, defaultName, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			err = run(cmd.Context(), ws, writer)
			if closeErr := closeWriter(); err == nil {
				err = closeErr
			}
			if errors.Is(err, common.ErrNoRows) {
				printLine(cmd.ErrOrStderr(), cli.FormatWarning("No data to export."))
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to export %s: %w", use, err)
			}

			if target != "" {
				printLine(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Exported %s to %s", use, target)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatXLSX, "output format (xlsx, md, sheets)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default "+defaultName+".<format>; md prints to stdout)")

	return cmd
}

func runExportSummary(ctx context.Context, ws *workspace, w service.ReportWriter) error {
	summary := ws.reporter().BuildSummary(ws.ledger.Counters().All())
	return w.WriteSummary(ctx, summary)
}

func runExportDetail(ctx context.Context, ws *workspace, w service.ReportWriter) error {
	rep := ws.reporter()
	rows := rep.NumberRows(rep.BuildGroupedRows(ws.ledger.Snapshot()))
	slog.Debug("Built detail rows", "rows", len(rows))
	return w.WriteDetail(ctx, rows)
}

// newReportWriter returns the sink for opts, a description of where the
// report goes and a function releasing it.
func newReportWriter(ctx context.Context, opts exportOptions, defaultName string, stdout io.Writer) (service.ReportWriter, string, func() error, error) {
	noop := func() error { return nil }

	switch opts.format {
	case formatXLSX:
		path := opts.out
		if path == "" {
			path = defaultName + ".xlsx"
		}
		path = config.ExpandPath(path)
		return export.NewXLSXWriter(path), path, noop, nil

	case formatMarkdown:
		if opts.out == "" {
			return export.NewMarkdownWriter(stdout), "", noop, nil
		}
		path := config.ExpandPath(opts.out)
		f, err := os.Create(path)
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to create %s: %w", path, err)
		}
		return export.NewMarkdownWriter(f), path, f.Close, nil

	case formatSheets:
		cfg, err := config.LoadSheetsConfig(nil)
		if err != nil {
			return nil, "", nil, common.NewUserError("configure sheets.* credentials to export to Google Sheets", err)
		}
		w, err := sheets.NewWriter(ctx, *cfg, slog.Default())
		if err != nil {
			return nil, "", nil, err
		}
		return w, "Google Sheets", noop, nil

	default:
		return nil, "", nil, common.NewUserError(
			fmt.Sprintf("unknown format %q (use %s, %s or %s)", opts.format, formatXLSX, formatMarkdown, formatSheets),
			common.ErrInvalidConfig)
	}
}
