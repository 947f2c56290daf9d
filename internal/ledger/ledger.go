package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/Veraticus/cordon/internal/classification"
	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/model"
	"github.com/Veraticus/cordon/internal/service"
)

// Document names, shared with the files written by earlier releases.
const (
	CountersDocument = "data_semanal"
	DetailsDocument  = "subregiones"
	PendingDocument  = "pendientes"
)

// Options configures a Ledger.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// Ledger is the durable state of the week: detail records per day, the zone
// counters derived from them, and the pending queue.
//
// Every append increments the matching counter in the same call and every
// reset clears records and counters together. Ledger is not safe for
// concurrent use; callers run batches one at a time.
type Ledger struct {
	store    service.DocumentStore
	dir      *model.Directory
	counters *Counters
	details  map[model.Day][]model.DetailRecord
	pending  *PendingQueue
	logger   *slog.Logger
	now      func() time.Time
	// detailsFound is false when no detail document existed at load time.
	detailsFound bool
	migrated     bool
}

// New creates an empty ledger backed by store without loading anything.
func New(store service.DocumentStore, dir *model.Directory, opts Options) *Ledger {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	l := &Ledger{
		store:    store,
		dir:      dir,
		counters: newCounters(),
		details:  make(map[model.Day][]model.DetailRecord, len(model.Days)),
		pending:  &PendingQueue{},
		logger:   opts.Logger,
		now:      opts.Now,
	}
	for _, day := range model.Days {
		l.details[day] = []model.DetailRecord{}
	}
	return l
}

// Open loads the three documents from store and runs the schema migration once.
func Open(ctx context.Context, store service.DocumentStore, dir *model.Directory, opts Options) (*Ledger, error) {
	l := New(store, dir, opts)
	if err := l.load(ctx); err != nil {
		return nil, err
	}
	changed, err := l.MigrateSchema(ctx)
	if err != nil {
		return nil, err
	}
	l.migrated = changed
	return l, nil
}

func (l *Ledger) load(ctx context.Context) error {
	var counts map[string]map[string]int
	if _, err := l.store.Load(ctx, CountersDocument, &counts); err != nil {
		return fmt.Errorf("%w: loading %s: %v", common.ErrPersistence, CountersDocument, err)
	}
	for label, zones := range counts {
		day, err := model.ParseDay(label)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", common.ErrPersistence, CountersDocument, err)
		}
		l.counters.set(day, zones)
	}

	var details map[string][]model.DetailRecord
	found, err := l.store.Load(ctx, DetailsDocument, &details)
	if err != nil {
		return fmt.Errorf("%w: loading %s: %v", common.ErrPersistence, DetailsDocument, err)
	}
	l.detailsFound = found
	for label, records := range details {
		day, err := model.ParseDay(label)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", common.ErrPersistence, DetailsDocument, err)
		}
		if records == nil {
			records = []model.DetailRecord{}
		}
		l.details[day] = records
	}

	var pending []string
	if _, err := l.store.Load(ctx, PendingDocument, &pending); err != nil {
		return fmt.Errorf("%w: loading %s: %v", common.ErrPersistence, PendingDocument, err)
	}
	for _, source := range pending {
		l.pending.Enqueue(source)
	}

	l.logger.Debug("Loaded ledger",
		"records", l.recordCount(),
		"pending", l.pending.Len())

	return nil
}

// MigrateSchema brings records written by older releases into the current
// shape: a missing zone is re-derived from the locality (or set to the
// Unidentified sentinel), a missing timestamp is set to now. It is
// idempotent and writes back only when something changed.
//
// Days whose counters disagree with their records are reported but not
// rewritten; see Reconcile.
func (l *Ledger) MigrateSchema(ctx context.Context) (bool, error) {
	changed := false
	stamp := model.FormatTimestamp(l.now())

	for _, day := range model.Days {
		records := l.details[day]
		for i := range records {
			rec := &records[i]

			if rec.Zone == "" {
				zone, ok := l.dir.ZoneOf(rec.Locality)
				if !ok {
					zone = model.Unidentified
				}
				rec.Zone = zone
				changed = true
				l.logger.Info("Migrated record zone",
					"day", day.String(),
					"locality", rec.Locality,
					"zone", zone,
					"source", rec.Source)
			}

			if rec.Timestamp == "" {
				rec.Timestamp = stamp
				changed = true
			}
		}
	}

	for _, drift := range l.Drift() {
		l.logger.Warn("Day counters disagree with detail records",
			"day", drift.Day.String(),
			"counted", drift.Counted,
			"recorded", drift.Recorded)
	}

	if !changed {
		return false, nil
	}
	if err := l.Flush(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// DayDrift describes a day whose counters do not match its detail records.
type DayDrift struct {
	Counted  map[string]int
	Recorded map[string]int
	Day      model.Day
}

// Drift lists every day whose counters differ from the counts derived from
// its records. Data from releases that kept counters without records shows
// up here.
func (l *Ledger) Drift() []DayDrift {
	var out []DayDrift
	for _, day := range model.Days {
		recorded := deriveCounts(l.details[day])
		counted := l.counters.Day(day)
		if !sameCounts(counted, recorded) {
			out = append(out, DayDrift{Day: day, Counted: counted, Recorded: recorded})
		}
	}
	return out
}

// Reconcile rebuilds the counters of every drifted day from its records.
// It returns the days that were rewritten.
func (l *Ledger) Reconcile() []model.Day {
	var days []model.Day
	for _, drift := range l.Drift() {
		l.counters.set(drift.Day, drift.Recorded)
		days = append(days, drift.Day)
	}
	return days
}

// NewAutomaticRecord builds the record for a label the classifier resolved.
func NewAutomaticRecord(result classification.Result, source string) model.DetailRecord {
	return model.DetailRecord{
		Zone:     result.Zone,
		Locality: result.Locality,
		Address:  result.Address,
		Source:   source,
	}
}

// NewManualRecord builds the record for a label an operator classified.
func NewManualRecord(zone, locality, address, source string) model.DetailRecord {
	return model.DetailRecord{
		Zone:     zone,
		Locality: locality,
		Address:  address,
		Source:   source,
		Manual:   true,
	}
}

// Append stamps rec with the current time, adds it to day and increments the
// day's counter for its zone. Zones outside the directory, including the
// Unidentified sentinel, are rejected with common.ErrInvalidZone.
// A source that was pending leaves the queue.
func (l *Ledger) Append(day model.Day, rec model.DetailRecord) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %d", model.ErrInvalidDay, int(day))
	}
	if err := l.validateZone(rec.Zone); err != nil {
		return err
	}

	rec.Timestamp = model.FormatTimestamp(l.now())
	l.details[day] = append(l.details[day], rec)
	l.counters.increment(day, rec.Zone)

	if rec.Source != "" {
		l.pending.remove(rec.Source)
	}

	l.logger.Debug("Appended record",
		"day", day.String(),
		"zone", rec.Zone,
		"locality", rec.Locality,
		"manual", rec.Manual,
		"source", rec.Source)

	return nil
}

// Enqueue adds source to the pending queue. It is a no-op for sources
// already queued.
func (l *Ledger) Enqueue(source string) bool {
	return l.pending.Enqueue(source)
}

// Resolve classifies a pending source by hand: it leaves the queue and one
// manual record is appended to day.
func (l *Ledger) Resolve(day model.Day, source, zone, locality, address string) error {
	if err := l.validateZone(zone); err != nil {
		return err
	}
	if !l.pending.Contains(source) {
		return fmt.Errorf("%w: %s", common.ErrNotPending, source)
	}
	return l.Append(day, NewManualRecord(zone, locality, address, source))
}

func (l *Ledger) validateZone(zone string) error {
	if zone == model.Unidentified {
		return fmt.Errorf("%w: unidentified labels belong in the pending queue", common.ErrInvalidZone)
	}
	if !l.dir.Has(zone) {
		return fmt.Errorf("%w: %q is not a known zone", common.ErrInvalidZone, zone)
	}
	return nil
}

// ResetDay clears the records and counters of day. Pending entries are
// day-agnostic and stay queued.
func (l *Ledger) ResetDay(day model.Day) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %d", model.ErrInvalidDay, int(day))
	}
	l.details[day] = []model.DetailRecord{}
	l.counters.resetDay(day)
	return nil
}

// ResetAll clears every day and the pending queue.
func (l *Ledger) ResetAll() {
	for _, day := range model.Days {
		l.details[day] = []model.DetailRecord{}
	}
	l.counters.resetAll()
	l.pending.clear()
}

// Records returns a copy of the records of day in arrival order.
func (l *Ledger) Records(day model.Day) []model.DetailRecord {
	return slices.Clone(l.details[day])
}

// Counts returns a copy of the zone counters of day.
func (l *Ledger) Counts(day model.Day) map[string]int {
	return l.counters.Day(day)
}

// Counters exposes the read side of the daily counters.
func (l *Ledger) Counters() *Counters {
	return l.counters
}

// Pending exposes the pending queue. Mutations go through Enqueue and Resolve.
func (l *Ledger) Pending() *PendingQueue {
	return l.pending
}

// Directory returns the zone directory the ledger validates against.
func (l *Ledger) Directory() *model.Directory {
	return l.dir
}

// HasDetailHistory reports whether a detail document existed when the
// ledger was loaded.
func (l *Ledger) HasDetailHistory() bool {
	return l.detailsFound
}

// Migrated reports whether Open rewrote legacy records.
func (l *Ledger) Migrated() bool {
	return l.migrated
}

// Snapshot returns a deep copy of the records of every day.
func (l *Ledger) Snapshot() map[model.Day][]model.DetailRecord {
	out := make(map[model.Day][]model.DetailRecord, len(l.details))
	for day, records := range l.details {
		out[day] = slices.Clone(records)
	}
	return out
}

// Flush rewrites the three documents in full.
func (l *Ledger) Flush(ctx context.Context) error {
	counts := make(map[string]map[string]int, len(model.Days))
	details := make(map[string][]model.DetailRecord, len(model.Days))
	for _, day := range model.Days {
		counts[day.String()] = l.counters.Day(day)
		details[day.String()] = l.details[day]
	}
	pending := l.pending.All()
	if pending == nil {
		pending = []string{}
	}

	docs := []struct {
		value any
		name  string
	}{
		{name: CountersDocument, value: counts},
		{name: DetailsDocument, value: details},
		{name: PendingDocument, value: pending},
	}

	var errs []error
	for _, doc := range docs {
		if err := l.store.Save(ctx, doc.name, doc.value); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", doc.name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", common.ErrPersistence, errors.Join(errs...))
	}

	l.detailsFound = true
	return nil
}

func (l *Ledger) recordCount() int {
	n := 0
	for _, records := range l.details {
		n += len(records)
	}
	return n
}

func deriveCounts(records []model.DetailRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Zone]++
	}
	return counts
}

func sameCounts(a, b map[string]int) bool {
	clean := func(m map[string]int) map[string]int {
		out := make(map[string]int, len(m))
		for k, v := range m {
			if v != 0 {
				out[k] = v
			}
		}
		return out
	}
	return maps.Equal(clean(a), clean(b))
}
