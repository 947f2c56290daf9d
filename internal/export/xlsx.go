// Package export renders report rows as xlsx workbooks and markdown documents.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/model"
)

// Sheet names.
const (
	SummarySheet = "Resumen"
	DetailSheet  = "Detalle"
)

// DetailHeaders are the columns of the grouped detail export.
var DetailHeaders = []string{
	"Fecha", "Día", "Cliente", "Remito", "Guía Agente",
	"Cordón", "Localidad", "Domicilio", "Cantidad", "Importe",
}

// SummaryHeaders returns the summary columns for zones.
func SummaryHeaders(zones []string) []string {
	headers := make([]string, 0, len(zones)+3)
	headers = append(headers, "Día")
	headers = append(headers, zones...)
	return append(headers, "Paquetes Día", "Total $ Día")
}

// XLSXWriter writes each report to a workbook at Path.
type XLSXWriter struct {
	Path string
}

// NewXLSXWriter creates a writer targeting path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{Path: path}
}

// WriteSummary writes one row per day with the count of every zone.
func (w *XLSXWriter) WriteSummary(ctx context.Context, summary *model.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("%w: nil summary", common.ErrNoRows)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := SummaryHeaders(summary.Zones)
	if err := writeHeaders(f, SummarySheet, headers); err != nil {
		return err
	}

	for i, day := range summary.Days {
		values := make([]any, 0, len(headers))
		values = append(values, day.Day.String())
		for _, zone := range summary.Zones {
			values = append(values, day.Counts[zone])
		}
		values = append(values, day.Packages, day.Amount)

		if err := writeRow(f, SummarySheet, i+2, values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	return w.save(f)
}

// WriteDetail writes the grouped detail rows. An empty set is common.ErrNoRows.
func (w *XLSXWriter) WriteDetail(ctx context.Context, rows []model.NumberedRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return common.ErrNoRows
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", DetailSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeHeaders(f, DetailSheet, DetailHeaders); err != nil {
		return err
	}

	for i, row := range rows {
		values := []any{
			row.Date, row.Day.String(), row.Client, row.Remito, row.AgentID,
			row.Zone, row.Locality, row.Address, row.Quantity, row.Amount,
		}
		if err := writeRow(f, DetailSheet, i+2, values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(DetailSheet, "A", "E", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(DetailSheet, "F", "H", 24); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	return w.save(f)
}

func (w *XLSXWriter) save(f *excelize.File) error {
	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.Path, err)
	}
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header %q: %w", h, err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header %q: %w", h, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
