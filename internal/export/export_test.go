package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/model"
)

func sampleRows() []model.NumberedRow {
	return []model.NumberedRow{
		{
			Client: "bazar gadol", Remito: "RM00000001", AgentID: "GA00000001",
			GroupedRow: model.GroupedRow{
				Date: "04/03/2024", Day: model.Monday, Zone: "Primer cordón",
				Locality: "MORON", Address: "Calle 1", UnitPrice: 5538, Quantity: 2, Amount: 11076,
			},
		},
		{
			Client: "bazar gadol", Remito: "RM00000002", AgentID: "GA00000002",
			GroupedRow: model.GroupedRow{
				Date: "04/03/2024", Day: model.Tuesday, Zone: "Tercer cordón (CABA)",
				Locality: "CABA", Address: model.Placeholder, UnitPrice: 3457, Quantity: 1, Amount: 3457,
			},
		},
	}
}

func sampleSummary() *model.Summary {
	return &model.Summary{
		Zones: []string{"A", "B"},
		Days: []model.DaySummary{
			{Day: model.Monday, Counts: map[string]int{"A": 2, "B": 1}, Packages: 3, Amount: 500},
			{Day: model.Tuesday, Counts: map[string]int{}, Packages: 0, Amount: 0},
		},
		TotalPackages: 3,
		TotalAmount:   500,
	}
}

func TestXLSXWriter_WriteDetail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detalle.xlsx")
	w := NewXLSXWriter(path)

	require.NoError(t, w.WriteDetail(context.Background(), sampleRows()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(DetailSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, DetailHeaders, rows[0])
	assert.Equal(t, []string{
		"04/03/2024", "Lunes", "bazar gadol", "RM00000001", "GA00000001",
		"Primer cordón", "MORON", "Calle 1", "2", "11076",
	}, rows[1])
	assert.Equal(t, "—", rows[2][7])
}

func TestXLSXWriter_WriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumen.xlsx")
	w := NewXLSXWriter(path)

	require.NoError(t, w.WriteSummary(context.Background(), sampleSummary()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Día", "A", "B", "Paquetes Día", "Total $ Día"}, rows[0])
	assert.Equal(t, []string{"Lunes", "2", "1", "3", "500"}, rows[1])
	assert.Equal(t, []string{"Martes", "0", "0", "0", "0"}, rows[2])
}

func TestWriters_EmptyDetail(t *testing.T) {
	ctx := context.Background()

	err := NewXLSXWriter(filepath.Join(t.TempDir(), "x.xlsx")).WriteDetail(ctx, nil)
	assert.ErrorIs(t, err, common.ErrNoRows)

	var buf bytes.Buffer
	err = NewMarkdownWriter(&buf).WriteDetail(ctx, []model.NumberedRow{})
	assert.ErrorIs(t, err, common.ErrNoRows)
	assert.Zero(t, buf.Len())
}

func TestMarkdownWriter_WriteDetail(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownWriter(&buf).WriteDetail(context.Background(), sampleRows()))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, DetailTitle, lines[0])
	assert.Empty(t, lines[1])
	require.Len(t, lines, 6)

	header := lines[2]
	for _, h := range MarkdownHeaders {
		assert.Contains(t, header, h)
	}
	assert.NotContains(t, header, "Remito")
	assert.True(t, strings.HasPrefix(lines[3], "|"))
	assert.Contains(t, lines[3], "-")

	assert.Contains(t, lines[4], "Primer cordón")
	assert.Contains(t, lines[4], "11076")
	assert.Contains(t, lines[5], "CABA")
	for _, line := range lines[2:] {
		assert.True(t, strings.HasPrefix(line, "|"), line)
		assert.True(t, strings.HasSuffix(line, "|"), line)
	}
}

func TestMarkdownWriter_WriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMarkdownWriter(&buf).WriteSummary(context.Background(), sampleSummary()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, SummaryTitle))
	assert.Contains(t, out, "Paquetes Día")
	assert.Contains(t, out, "Lunes")
	assert.Contains(t, out, "Martes")
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `Calle 1 \| Piso 2`, escapeCell("Calle 1 | Piso 2"))
	assert.Equal(t, "a b", escapeCell("a\nb"))
}

func TestWriters_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.ErrorIs(t, NewMarkdownWriter(&buf).WriteDetail(ctx, sampleRows()), context.Canceled)
	assert.ErrorIs(t, NewXLSXWriter("unused.xlsx").WriteSummary(ctx, sampleSummary()), context.Canceled)
}
