package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/cordon/internal/model"
)

// FormatMoney renders a whole-peso amount with thousands separators: $1,234.
func FormatMoney(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}

// RenderSummary draws the weekly counters with a totals footer.
func RenderSummary(summary *model.Summary) string {
	headers := append([]string{"Día"}, summary.Zones...)
	headers = append(headers, "Paquetes", "Total")

	rows := make([][]string, 0, len(summary.Days)+1)
	for _, day := range summary.Days {
		cells := []string{day.Day.String()}
		for _, zone := range summary.Zones {
			cells = append(cells, strconv.Itoa(day.Counts[zone]))
		}
		cells = append(cells, strconv.Itoa(day.Packages), FormatMoney(day.Amount))
		rows = append(rows, cells)
	}

	footer := []string{"Semana"}
	for _, zone := range summary.Zones {
		total := 0
		for _, day := range summary.Days {
			total += day.Counts[zone]
		}
		footer = append(footer, strconv.Itoa(total))
	}
	footer = append(footer, strconv.Itoa(summary.TotalPackages), FormatMoney(summary.TotalAmount))
	rows = append(rows, footer)
	footerRow := len(rows) - 1

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch row {
			case table.HeaderRow:
				style = TableHeaderStyle
			case footerRow:
				style = TableFooterStyle
			default:
				style = TableCellStyle
			}
			if col > 0 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})

	return t.Render()
}
