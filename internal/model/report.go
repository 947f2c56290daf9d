package model

// Placeholder replaces an empty locality or address in grouped exports.
const Placeholder = "—"

// ExportDateLayout is the date format of every export row (dd/mm/yyyy).
const ExportDateLayout = "02/01/2006"

// GroupedRow aggregates every detail record sharing
// (date, day, zone, locality, address, unit price).
type GroupedRow struct {
	Date      string
	Zone      string
	Locality  string
	Address   string
	Day       Day
	UnitPrice int
	Quantity  int
	Amount    int
}

// NumberedRow is a grouped row prepared for spreadsheet export, carrying the
// client name and the two correlation identifiers.
type NumberedRow struct {
	Client  string
	Remito  string
	AgentID string
	GroupedRow
}

// DaySummary folds one day bucket's counters.
type DaySummary struct {
	Counts   map[string]int
	Day      Day
	Packages int
	Amount   int
}

// Summary is the weekly counters table with grand totals.
type Summary struct {
	Zones         []string
	Days          []DaySummary
	TotalPackages int
	TotalAmount   int
}
