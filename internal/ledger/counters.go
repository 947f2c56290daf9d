// Package ledger owns the per-day detail records, the daily zone counters
// derived from them, and the queue of labels awaiting manual classification.
package ledger

import (
	"maps"
	"sort"

	"github.com/Veraticus/cordon/internal/model"
)

// Counters maps each day bucket to its per-zone package counts.
// Only the Ledger mutates it, always together with the detail records.
type Counters struct {
	counts map[model.Day]map[string]int
}

func newCounters() *Counters {
	c := &Counters{counts: make(map[model.Day]map[string]int, len(model.Days))}
	c.resetAll()
	return c
}

// Get returns the count of zone on day.
func (c *Counters) Get(day model.Day, zone string) int {
	return c.counts[day][zone]
}

// Day returns a copy of the zone counts of day.
func (c *Counters) Day(day model.Day) map[string]int {
	return maps.Clone(c.counts[day])
}

// Total returns the number of packages counted on day.
func (c *Counters) Total(day model.Day) int {
	total := 0
	for _, n := range c.counts[day] {
		total += n
	}
	return total
}

// All returns a deep copy of every day's counts.
func (c *Counters) All() map[model.Day]map[string]int {
	out := make(map[model.Day]map[string]int, len(c.counts))
	for day, zones := range c.counts {
		out[day] = maps.Clone(zones)
	}
	return out
}

// Zones returns every zone name with a count on any day, sorted.
func (c *Counters) Zones() []string {
	seen := make(map[string]struct{})
	for _, zones := range c.counts {
		for zone := range zones {
			seen[zone] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for zone := range seen {
		names = append(names, zone)
	}
	sort.Strings(names)
	return names
}

func (c *Counters) increment(day model.Day, zone string) {
	c.counts[day][zone]++
}

func (c *Counters) set(day model.Day, zones map[string]int) {
	c.counts[day] = maps.Clone(zones)
	if c.counts[day] == nil {
		c.counts[day] = make(map[string]int)
	}
}

func (c *Counters) resetDay(day model.Day) {
	c.counts[day] = make(map[string]int)
}

func (c *Counters) resetAll() {
	for _, day := range model.Days {
		c.resetDay(day)
	}
}
