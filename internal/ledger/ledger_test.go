package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/cordon/internal/classification"
	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/model"
	"github.com/Veraticus/cordon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 4, 10, 30, 0, 0, time.Local)
}

func testDirectory(t *testing.T) *model.Directory {
	t.Helper()
	dir, err := model.NewDirectory([]model.Zone{
		{Name: "A", Price: 100, Localities: []string{"X", "Y"}},
		{Name: "B", Price: 250, Localities: []string{"Z"}},
	})
	require.NoError(t, err)
	return dir
}

func openTestLedger(t *testing.T, store *testutil.MemoryStore) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), store, testDirectory(t), Options{Now: fixedNow})
	require.NoError(t, err)
	return l
}

func assertCountersMatchRecords(t *testing.T, l *Ledger) {
	t.Helper()
	assert.Empty(t, l.Drift())
}

func TestLedger_AppendKeepsCountersInSync(t *testing.T) {
	l := openTestLedger(t, testutil.NewMemoryStore())

	require.NoError(t, l.Append(model.Monday, NewAutomaticRecord(classification.Result{Zone: "A", Locality: "X", Address: "Calle 1"}, "a.jpg")))
	require.NoError(t, l.Append(model.Monday, NewAutomaticRecord(classification.Result{Zone: "A", Locality: "Y"}, "b.jpg")))
	require.NoError(t, l.Append(model.Tuesday, NewManualRecord("B", "Z", "Calle 9", "c.jpg")))

	assert.Equal(t, map[string]int{"A": 2}, l.Counts(model.Monday))
	assert.Equal(t, map[string]int{"B": 1}, l.Counts(model.Tuesday))
	assert.Equal(t, 2, l.Counters().Total(model.Monday))
	assertCountersMatchRecords(t, l)

	records := l.Records(model.Monday)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-04T10:30:00", records[0].Timestamp)
	assert.False(t, records[0].Manual)
	assert.True(t, l.Records(model.Tuesday)[0].Manual)
}

func TestLedger_AppendRejectsUnknownZones(t *testing.T) {
	l := openTestLedger(t, testutil.NewMemoryStore())

	tests := []struct {
		name string
		zone string
	}{
		{name: "unidentified sentinel", zone: model.Unidentified},
		{name: "zone outside directory", zone: "C"},
		{name: "empty zone", zone: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Append(model.Monday, model.DetailRecord{Zone: tt.zone, Locality: "X", Source: "a.jpg"})
			require.ErrorIs(t, err, common.ErrInvalidZone)
			assert.Empty(t, l.Records(model.Monday))
			assert.Empty(t, l.Counts(model.Monday))
		})
	}

	err := l.Append(model.Day(6), model.DetailRecord{Zone: "A"})
	assert.ErrorIs(t, err, model.ErrInvalidDay)
}

func TestLedger_ResetDayIsolation(t *testing.T) {
	l := openTestLedger(t, testutil.NewMemoryStore())
	l.Enqueue("pending.jpg")

	require.NoError(t, l.Append(model.Monday, NewManualRecord("A", "X", "", "a.jpg")))
	require.NoError(t, l.Append(model.Wednesday, NewManualRecord("B", "Z", "", "b.jpg")))

	require.NoError(t, l.ResetDay(model.Monday))

	assert.Empty(t, l.Records(model.Monday))
	assert.Empty(t, l.Counts(model.Monday))
	assert.Len(t, l.Records(model.Wednesday), 1)
	assert.Equal(t, map[string]int{"B": 1}, l.Counts(model.Wednesday))
	assert.Equal(t, []string{"pending.jpg"}, l.Pending().All())
	assertCountersMatchRecords(t, l)
}

func TestLedger_ResetAllClearsPending(t *testing.T) {
	l := openTestLedger(t, testutil.NewMemoryStore())
	l.Enqueue("pending.jpg")
	require.NoError(t, l.Append(model.Friday, NewManualRecord("A", "X", "", "a.jpg")))

	l.ResetAll()

	for _, day := range model.Days {
		assert.Empty(t, l.Records(day))
		assert.Empty(t, l.Counts(day))
	}
	assert.Zero(t, l.Pending().Len())
}

func TestLedger_Resolve(t *testing.T) {
	l := openTestLedger(t, testutil.NewMemoryStore())
	assert.True(t, l.Enqueue("label.jpg"))
	assert.False(t, l.Enqueue("label.jpg"))

	err := l.Resolve(model.Thursday, "label.jpg", "C", "Q", "")
	require.ErrorIs(t, err, common.ErrInvalidZone)
	assert.True(t, l.Pending().Contains("label.jpg"))

	require.NoError(t, l.Resolve(model.Thursday, "label.jpg", "B", "Z", "Calle 5"))
	assert.False(t, l.Pending().Contains("label.jpg"))

	records := l.Records(model.Thursday)
	require.Len(t, records, 1)
	assert.True(t, records[0].Manual)
	assert.Equal(t, "label.jpg", records[0].Source)
	assert.Equal(t, 1, l.Counters().Get(model.Thursday, "B"))

	err = l.Resolve(model.Thursday, "label.jpg", "B", "Z", "Calle 5")
	assert.ErrorIs(t, err, common.ErrNotPending)
	assert.Len(t, l.Records(model.Thursday), 1)
}

func TestLedger_AppendDequeuesSource(t *testing.T) {
	l := openTestLedger(t, testutil.NewMemoryStore())
	l.Enqueue("retry.jpg")

	require.NoError(t, l.Append(model.Monday, NewManualRecord("A", "X", "", "retry.jpg")))
	assert.Zero(t, l.Pending().Len())
}

func TestLedger_FlushAndReopen(t *testing.T) {
	store := testutil.NewMemoryStore()
	l := openTestLedger(t, store)
	assert.False(t, l.HasDetailHistory())

	l.Enqueue("p.jpg")
	require.NoError(t, l.Append(model.Tuesday, NewManualRecord("A", "X", "Calle 1", "a.jpg")))
	require.NoError(t, l.Flush(context.Background()))

	assert.Contains(t, store.Raw(CountersDocument), `"Martes":{"A":1}`)
	assert.Contains(t, store.Raw(DetailsDocument), `"Cordon":"A"`)
	assert.Equal(t, `["p.jpg"]`, store.Raw(PendingDocument))

	reopened := openTestLedger(t, store)
	assert.True(t, reopened.HasDetailHistory())
	assert.Equal(t, l.Snapshot(), reopened.Snapshot())
	assert.Equal(t, l.Counters().All(), reopened.Counters().All())
	assert.Equal(t, []string{"p.jpg"}, reopened.Pending().All())
}

func TestLedger_FlushWrapsPersistenceErrors(t *testing.T) {
	store := testutil.NewMemoryStore()
	l := openTestLedger(t, store)
	store.SaveErr = errors.New("disk full")

	err := l.Flush(context.Background())
	require.ErrorIs(t, err, common.ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
}

func TestLedger_MigrateLegacyRecords(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Put(CountersDocument, `{"Lunes":{"A":2},"Martes":{}}`)
	store.Put(DetailsDocument, `{
		"Lunes":[
			{"Ciudad":"x","Subregión":"Calle 1","Src":"a.jpg"},
			{"Ciudad":"NOWHERE","Subregión":"","Src":"b.jpg","ts":"2024-01-01T08:00:00"}
		]
	}`)

	l := openTestLedger(t, store)
	assert.True(t, l.Migrated())

	records := l.Records(model.Monday)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Zone)
	assert.Equal(t, "2024-03-04T10:30:00", records[0].Timestamp)
	assert.Equal(t, model.Unidentified, records[1].Zone)
	assert.Equal(t, "2024-01-01T08:00:00", records[1].Timestamp)
	assert.Equal(t, 3, store.Saves)

	saves := store.Saves
	changed, err := l.MigrateSchema(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, saves, store.Saves)
}

func TestLedger_MigrateWithoutChangesDoesNotWrite(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Put(DetailsDocument, `{"Lunes":[{"Cordon":"A","Ciudad":"X","Subregión":"","Src":"a.jpg","ts":"2024-01-01T08:00:00","Manual":false}]}`)
	store.Put(CountersDocument, `{"Lunes":{"A":1}}`)

	l := openTestLedger(t, store)
	assert.False(t, l.Migrated())
	assert.Zero(t, store.Saves)
}

func TestLedger_UnknownDayLabelIsAnError(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Put(CountersDocument, `{"Sabado":{"A":1}}`)

	_, err := Open(context.Background(), store, testDirectory(t), Options{Now: fixedNow})
	assert.ErrorIs(t, err, common.ErrPersistence)
}

func TestLedger_DriftAndReconcile(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Put(CountersDocument, `{"Lunes":{"A":5,"B":0},"Martes":{"B":1}}`)
	store.Put(DetailsDocument, `{"Lunes":[{"Cordon":"A","Ciudad":"X","ts":"2024-01-01T08:00:00"}],"Martes":[{"Cordon":"B","Ciudad":"Z","ts":"2024-01-01T08:00:00"}]}`)

	l := openTestLedger(t, store)

	drift := l.Drift()
	require.Len(t, drift, 1)
	assert.Equal(t, model.Monday, drift[0].Day)
	assert.Equal(t, map[string]int{"A": 1}, drift[0].Recorded)

	days := l.Reconcile()
	assert.Equal(t, []model.Day{model.Monday}, days)
	assert.Equal(t, map[string]int{"A": 1}, l.Counts(model.Monday))
	assertCountersMatchRecords(t, l)
}

func TestLedger_CopiesAreIndependent(t *testing.T) {
	l := openTestLedger(t, testutil.NewMemoryStore())
	require.NoError(t, l.Append(model.Monday, NewManualRecord("A", "X", "", "a.jpg")))

	records := l.Records(model.Monday)
	records[0].Zone = "B"
	counts := l.Counts(model.Monday)
	counts["A"] = 99

	assert.Equal(t, "A", l.Records(model.Monday)[0].Zone)
	assert.Equal(t, 1, l.Counts(model.Monday)["A"])
}

func TestPendingQueue_List(t *testing.T) {
	q := &PendingQueue{}
	q.Enqueue("a.jpg")
	q.Enqueue("gone.jpg")
	q.Enqueue("b.jpg")
	q.Enqueue("")

	exists := func(s string) bool { return s != "gone.jpg" }

	assert.Equal(t, []string{"a.jpg", "b.jpg"}, q.List(exists))
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []string{"a.jpg", "gone.jpg", "b.jpg"}, q.List(nil))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(dir+"/missing.jpg"))
}
