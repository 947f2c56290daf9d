package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/model"
	"github.com/Veraticus/cordon/internal/service"
)

// Tab titles inside the spreadsheet.
const (
	SummaryTab = "Resumen"
	DetailTab  = "Detalle"
)

var detailHeader = []any{
	"Fecha", "Día", "Cliente", "Remito", "Guía Agente",
	"Cordón", "Localidad", "Domicilio", "Cantidad", "Importe",
}

// Writer implements service.ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
	}, nil
}

// WriteSummary replaces the summary tab with the weekly counters.
func (w *Writer) WriteSummary(ctx context.Context, summary *model.Summary) error {
	if summary == nil {
		return fmt.Errorf("%w: nil summary", common.ErrNoRows)
	}

	w.logger.Info("writing summary to sheets",
		"zones", len(summary.Zones),
		"packages", summary.TotalPackages)

	values := summaryValues(summary)
	return w.replaceTab(ctx, SummaryTab, values, len(summary.Zones)+3, 2+len(summary.Zones))
}

// WriteDetail replaces the detail tab with the grouped rows.
func (w *Writer) WriteDetail(ctx context.Context, rows []model.NumberedRow) error {
	if len(rows) == 0 {
		return common.ErrNoRows
	}

	w.logger.Info("writing detail rows to sheets", "rows", len(rows))

	values := detailValues(rows)
	return w.replaceTab(ctx, DetailTab, values, len(detailHeader), len(detailHeader)-1)
}

func (w *Writer) replaceTab(ctx context.Context, tab string, values [][]any, columns, amountColumn int) error {
	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	sheetID, err := w.ensureTab(ctx, spreadsheetID, tab)
	if err != nil {
		return fmt.Errorf("failed to prepare tab %s: %w", tab, err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID, tab); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, tab, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, sheetID, len(values), columns, amountColumn)
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheet updated",
		"spreadsheet_id", spreadsheetID,
		"tab", tab,
		"rows_written", len(values))

	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
// The id of a created spreadsheet is remembered for the next tab.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: SummaryTab}},
			{Properties: &sheets.SheetProperties{Title: DetailTab}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

// ensureTab returns the sheet id of tab, adding the tab when missing.
func (w *Writer) ensureTab(ctx context.Context, spreadsheetID, tab string) (int64, error) {
	existing, err := w.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}
	for _, s := range existing.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to add tab %s: %w", tab, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("unable to add tab %s: empty reply", tab)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// clearSheet clears all data from tab.
func (w *Writer) clearSheet(ctx context.Context, spreadsheetID, tab string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, tab+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// summaryValues lays out the counters table followed by the weekly totals.
func summaryValues(summary *model.Summary) [][]any {
	values := make([][]any, 0, len(summary.Days)+4)

	header := make([]any, 0, len(summary.Zones)+3)
	header = append(header, "Día")
	for _, zone := range summary.Zones {
		header = append(header, zone)
	}
	header = append(header, "Paquetes Día", "Total $ Día")
	values = append(values, header)

	for _, day := range summary.Days {
		row := make([]any, 0, len(header))
		row = append(row, day.Day.String())
		for _, zone := range summary.Zones {
			row = append(row, day.Counts[zone])
		}
		row = append(row, day.Packages, day.Amount)
		values = append(values, row)
	}

	values = append(values,
		[]any{}, // Empty row
		[]any{"Total semanal de paquetes", summary.TotalPackages},
		[]any{"Total semanal ($)", summary.TotalAmount},
	)
	return values
}

func detailValues(rows []model.NumberedRow) [][]any {
	values := make([][]any, 0, len(rows)+1)
	values = append(values, detailHeader)
	for _, row := range rows {
		values = append(values, []any{
			row.Date,
			row.Day.String(),
			row.Client,
			row.Remito,
			row.AgentID,
			row.Zone,
			row.Locality,
			row.Address,
			row.Quantity,
			row.Amount,
		})
	}
	return values
}

// writeData writes the data to tab.
func (w *Writer) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	// Write in batches to avoid API limits
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		rangeStr := fmt.Sprintf("%s!A%d", tab, i+1)
		// RAW keeps "04/03/2024" from being reinterpreted as a US date.
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "tab", tab, "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds the header, formats the amount column as currency,
// resizes columns and freezes the header row.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, totalRows, columns, amountColumn int) error {
	requests := formattingRequests(sheetID, totalRows, columns, amountColumn)

	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).Context(ctx).Do()
	return err
}

func formattingRequests(sheetID int64, totalRows, columns, amountColumn int) []*sheets.Request {
	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: int64(amountColumn),
					EndColumnIndex:   int64(amountColumn + 1),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "CURRENCY",
							Pattern: "$#,##0",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}
}
