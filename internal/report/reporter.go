// Package report folds ledger snapshots into grouped billing rows and the
// weekly counters summary.
package report

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/Veraticus/cordon/internal/model"
)

// DefaultClient is the client name printed on every exported row.
const DefaultClient = "bazar gadol"

// Options configures a Reporter.
type Options struct {
	Now    func() time.Time
	Client string
}

// Reporter builds export rows priced against a zone directory.
type Reporter struct {
	dir    *model.Directory
	now    func() time.Time
	client string
}

// NewReporter creates a reporter for dir.
func NewReporter(dir *model.Directory, opts Options) *Reporter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Client == "" {
		opts.Client = DefaultClient
	}
	return &Reporter{dir: dir, now: opts.Now, client: opts.Client}
}

// Client returns the client name used by NumberRows.
func (r *Reporter) Client() string {
	return r.client
}

type groupKey struct {
	date      string
	zone      string
	locality  string
	address   string
	day       model.Day
	unitPrice int
}

// BuildGroupedRows groups the records of every day by
// (date, day, zone, locality, address, unit price). All rows of one call carry
// the same export date. Zones outside the directory are kept at price 0.
//
// The result does not depend on record order within a day.
func (r *Reporter) BuildGroupedRows(snapshot map[model.Day][]model.DetailRecord) []model.GroupedRow {
	date := r.now().Format(model.ExportDateLayout)

	groups := make(map[groupKey]int)
	for _, day := range model.Days {
		for _, rec := range snapshot[day] {
			key := groupKey{
				date:      date,
				day:       day,
				zone:      rec.Zone,
				locality:  orPlaceholder(rec.Locality),
				address:   orPlaceholder(rec.Address),
				unitPrice: r.dir.Price(rec.Zone),
			}
			groups[key]++
		}
	}

	rows := make([]model.GroupedRow, 0, len(groups))
	for key, qty := range groups {
		rows = append(rows, model.GroupedRow{
			Date:      key.date,
			Day:       key.day,
			Zone:      key.zone,
			Locality:  key.locality,
			Address:   key.address,
			UnitPrice: key.unitPrice,
			Quantity:  qty,
			Amount:    key.unitPrice * qty,
		})
	}

	slices.SortFunc(rows, r.compareRows)
	return rows
}

// compareRows orders rows by day, then directory rank with unknown zones
// last by name, then locality and address.
func (r *Reporter) compareRows(a, b model.GroupedRow) int {
	if c := cmp.Compare(a.Day, b.Day); c != 0 {
		return c
	}
	if c := cmp.Compare(r.zoneRank(a.Zone), r.zoneRank(b.Zone)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Zone, b.Zone); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Locality, b.Locality); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Address, b.Address); c != 0 {
		return c
	}
	return cmp.Compare(a.UnitPrice, b.UnitPrice)
}

func (r *Reporter) zoneRank(zone string) int {
	if rank := r.dir.Rank(zone); rank >= 0 {
		return rank
	}
	return len(r.dir.Names())
}

// NumberRows attaches the client name and the remito and agent guide
// identifiers, numbered from 1 in row order.
func (r *Reporter) NumberRows(rows []model.GroupedRow) []model.NumberedRow {
	out := make([]model.NumberedRow, len(rows))
	for i, row := range rows {
		out[i] = model.NumberedRow{
			Client:     r.client,
			Remito:     fmt.Sprintf("RM%08d", i+1),
			AgentID:    fmt.Sprintf("GA%08d", i+1),
			GroupedRow: row,
		}
	}
	return out
}

// BuildSummary folds the daily counters into one line per day plus totals.
// Zones are the directory zones in declared order followed by any other
// zone found in the counters, sorted; those are priced at 0.
func (r *Reporter) BuildSummary(counts map[model.Day]map[string]int) *model.Summary {
	zones := r.dir.Names()
	var extra []string
	seen := make(map[string]bool)
	for _, day := range model.Days {
		for zone := range counts[day] {
			if !r.dir.Has(zone) && !seen[zone] {
				seen[zone] = true
				extra = append(extra, zone)
			}
		}
	}
	sort.Strings(extra)
	zones = append(zones, extra...)

	summary := &model.Summary{Zones: zones}
	for _, day := range model.Days {
		line := model.DaySummary{Day: day, Counts: make(map[string]int, len(zones))}
		for _, zone := range zones {
			n := counts[day][zone]
			line.Counts[zone] = n
			line.Packages += n
			line.Amount += n * r.dir.Price(zone)
		}
		summary.Days = append(summary.Days, line)
		summary.TotalPackages += line.Packages
		summary.TotalAmount += line.Amount
	}
	return summary
}

func orPlaceholder(s string) string {
	if s == "" {
		return model.Placeholder
	}
	return s
}
