package ledger

import (
	"os"
	"slices"
)

// PendingQueue holds source references whose zone could not be determined.
// Entries are day-agnostic and keep insertion order.
type PendingQueue struct {
	entries []string
}

// Enqueue adds source unless it is already queued. It reports whether the
// queue changed.
func (q *PendingQueue) Enqueue(source string) bool {
	if source == "" || q.Contains(source) {
		return false
	}
	q.entries = append(q.entries, source)
	return true
}

// Contains reports whether source is queued.
func (q *PendingQueue) Contains(source string) bool {
	return slices.Contains(q.entries, source)
}

// Len returns the number of queued entries, including unavailable ones.
func (q *PendingQueue) Len() int {
	return len(q.entries)
}

// List returns queued sources in insertion order, skipping those for which
// exists reports false. Skipped entries stay in storage.
func (q *PendingQueue) List(exists func(string) bool) []string {
	out := make([]string, 0, len(q.entries))
	for _, source := range q.entries {
		if exists != nil && !exists(source) {
			continue
		}
		out = append(out, source)
	}
	return out
}

// All returns every queued source, available or not.
func (q *PendingQueue) All() []string {
	return slices.Clone(q.entries)
}

func (q *PendingQueue) remove(source string) bool {
	i := slices.Index(q.entries, source)
	if i < 0 {
		return false
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	return true
}

func (q *PendingQueue) clear() {
	q.entries = nil
}

// FileExists reports whether a pending source still points at a file on disk.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
