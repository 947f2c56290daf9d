package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/Veraticus/cordon/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReporter(t *testing.T) *Reporter {
	t.Helper()
	dir, err := model.NewDirectory([]model.Zone{
		{Name: "A", Price: 100, Localities: []string{"X"}},
		{Name: "B", Price: 300, Localities: []string{"Y"}},
	})
	require.NoError(t, err)
	return NewReporter(dir, Options{
		Now: func() time.Time { return time.Date(2024, 3, 4, 18, 0, 0, 0, time.Local) },
	})
}

func TestReporter_BuildGroupedRows_WorkedExample(t *testing.T) {
	r := testReporter(t)

	snapshot := map[model.Day][]model.DetailRecord{
		model.Monday: {
			{Zone: "A", Locality: "X", Address: "Calle 1"},
			{Zone: "A", Locality: "X", Address: "Calle 1"},
			{Zone: "A", Locality: "X", Address: "Calle 2"},
		},
	}

	rows := r.BuildGroupedRows(snapshot)

	require.Len(t, rows, 2)
	assert.Equal(t, model.GroupedRow{
		Date: "04/03/2024", Day: model.Monday, Zone: "A", Locality: "X",
		Address: "Calle 1", UnitPrice: 100, Quantity: 2, Amount: 200,
	}, rows[0])
	assert.Equal(t, model.GroupedRow{
		Date: "04/03/2024", Day: model.Monday, Zone: "A", Locality: "X",
		Address: "Calle 2", UnitPrice: 100, Quantity: 1, Amount: 100,
	}, rows[1])

	total := 0
	for _, row := range rows {
		total += row.Quantity
	}
	assert.Equal(t, 3, total)
}

func TestReporter_BuildGroupedRows_Placeholders(t *testing.T) {
	r := testReporter(t)

	rows := r.BuildGroupedRows(map[model.Day][]model.DetailRecord{
		model.Friday: {{Zone: "B"}, {Zone: "B", Locality: "", Address: ""}},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, model.Placeholder, rows[0].Locality)
	assert.Equal(t, model.Placeholder, rows[0].Address)
	assert.Equal(t, 2, rows[0].Quantity)
	assert.Equal(t, 600, rows[0].Amount)
}

func TestReporter_BuildGroupedRows_UnknownZonesAtZero(t *testing.T) {
	r := testReporter(t)

	rows := r.BuildGroupedRows(map[model.Day][]model.DetailRecord{
		model.Monday: {
			{Zone: "Legacy", Locality: "Q"},
			{Zone: model.Unidentified, Locality: "NOWHERE"},
			{Zone: "B", Locality: "Y"},
			{Zone: "A", Locality: "X"},
		},
	})

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"A", "B", "Legacy", model.Unidentified},
		[]string{rows[0].Zone, rows[1].Zone, rows[2].Zone, rows[3].Zone})
	assert.Zero(t, rows[2].Amount)
	assert.Zero(t, rows[3].UnitPrice)
}

func TestReporter_BuildGroupedRows_DayOrder(t *testing.T) {
	r := testReporter(t)

	rows := r.BuildGroupedRows(map[model.Day][]model.DetailRecord{
		model.Friday:  {{Zone: "A", Locality: "X"}},
		model.Tuesday: {{Zone: "A", Locality: "X"}},
		model.Monday:  {{Zone: "B", Locality: "Y"}},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, model.Monday, rows[0].Day)
	assert.Equal(t, model.Tuesday, rows[1].Day)
	assert.Equal(t, model.Friday, rows[2].Day)
}

func TestReporter_BuildGroupedRows_PermutationStable(t *testing.T) {
	r := testReporter(t)

	records := []model.DetailRecord{
		{Zone: "A", Locality: "X", Address: "Calle 1"},
		{Zone: "A", Locality: "X", Address: "Calle 1"},
		{Zone: "A", Locality: "X", Address: "Calle 2"},
		{Zone: "B", Locality: "Y", Address: ""},
		{Zone: "B", Locality: "Y", Address: "Ruta 8"},
		{Zone: "Legacy", Locality: "Q", Address: "Calle 1"},
	}
	want := r.BuildGroupedRows(map[model.Day][]model.DetailRecord{model.Wednesday: records})

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.DetailRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := r.BuildGroupedRows(map[model.Day][]model.DetailRecord{model.Wednesday: shuffled})
		assert.Equal(t, want, got)
	}
}

func TestReporter_BuildGroupedRows_Empty(t *testing.T) {
	r := testReporter(t)
	assert.Empty(t, r.BuildGroupedRows(nil))
}

func TestReporter_NumberRows(t *testing.T) {
	r := testReporter(t)

	rows := r.NumberRows([]model.GroupedRow{
		{Zone: "A", Quantity: 1},
		{Zone: "B", Quantity: 2},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "bazar gadol", rows[0].Client)
	assert.Equal(t, "RM00000001", rows[0].Remito)
	assert.Equal(t, "GA00000001", rows[0].AgentID)
	assert.Equal(t, "RM00000002", rows[1].Remito)
	assert.Equal(t, "GA00000002", rows[1].AgentID)
	assert.Equal(t, "B", rows[1].Zone)

	custom := NewReporter(r.dir, Options{Client: "otro cliente"})
	assert.Equal(t, "otro cliente", custom.NumberRows([]model.GroupedRow{{}})[0].Client)
}

func TestReporter_BuildSummary(t *testing.T) {
	r := testReporter(t)

	summary := r.BuildSummary(map[model.Day]map[string]int{
		model.Monday:   {"A": 3, "B": 1},
		model.Thursday: {"B": 2, "Legacy": 4},
	})

	assert.Equal(t, []string{"A", "B", "Legacy"}, summary.Zones)
	require.Len(t, summary.Days, len(model.Days))

	monday := summary.Days[0]
	assert.Equal(t, model.Monday, monday.Day)
	assert.Equal(t, 4, monday.Packages)
	assert.Equal(t, 3*100+1*300, monday.Amount)

	thursday := summary.Days[3]
	assert.Equal(t, 6, thursday.Packages)
	assert.Equal(t, 600, thursday.Amount)
	assert.Equal(t, 4, thursday.Counts["Legacy"])

	assert.Zero(t, summary.Days[1].Packages)
	assert.Equal(t, 10, summary.TotalPackages)
	assert.Equal(t, 1200, summary.TotalAmount)
}
