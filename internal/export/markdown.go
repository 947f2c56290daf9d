package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/model"
)

// DetailTitle heads the markdown detail export.
const DetailTitle = "# 📦 Exportación detallada de entregas (agrupado)"

// SummaryTitle heads the markdown summary export.
const SummaryTitle = "# 📊 Resumen semanal por cordón"

// MarkdownHeaders are the columns of the markdown detail export.
var MarkdownHeaders = []string{
	"Fecha", "Día", "Cliente", "Cordón", "Localidad", "Domicilio", "Cantidad", "Importe",
}

// MarkdownWriter renders reports as GitHub-flavored markdown tables.
type MarkdownWriter struct {
	w io.Writer
}

// NewMarkdownWriter creates a writer emitting to w.
func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{w: w}
}

// WriteDetail writes the title and one table row per grouped row.
func (m *MarkdownWriter) WriteDetail(ctx context.Context, rows []model.NumberedRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return common.ErrNoRows
	}

	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		body = append(body, []string{
			row.Date,
			row.Day.String(),
			row.Client,
			row.Zone,
			escapeCell(row.Locality),
			escapeCell(row.Address),
			strconv.Itoa(row.Quantity),
			strconv.Itoa(row.Amount),
		})
	}

	return m.write(DetailTitle, MarkdownHeaders, body)
}

// WriteSummary writes the weekly counters table.
func (m *MarkdownWriter) WriteSummary(ctx context.Context, summary *model.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if summary == nil {
		return fmt.Errorf("%w: nil summary", common.ErrNoRows)
	}

	body := make([][]string, 0, len(summary.Days))
	for _, day := range summary.Days {
		cells := []string{day.Day.String()}
		for _, zone := range summary.Zones {
			cells = append(cells, strconv.Itoa(day.Counts[zone]))
		}
		cells = append(cells, strconv.Itoa(day.Packages), strconv.Itoa(day.Amount))
		body = append(body, cells)
	}

	return m.write(SummaryTitle, SummaryHeaders(summary.Zones), body)
}

func (m *MarkdownWriter) write(title string, headers []string, rows [][]string) error {
	t := RenderMarkdownTable(headers, rows)
	if _, err := fmt.Fprintf(m.w, "%s\n\n%s\n", title, t); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

// RenderMarkdownTable renders headers and rows as a pipe table.
func RenderMarkdownTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.MarkdownBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(_, _ int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}

// escapeCell keeps pipes and line breaks from splitting a table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
