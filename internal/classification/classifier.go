// Package classification resolves a delivery zone from recognized label text.
package classification

import (
	"context"
	"strings"

	"github.com/Veraticus/cordon/internal/model"
)

// Result is the outcome of classifying one label.
type Result struct {
	Zone     string
	Locality string
	// Address is the trimmed line right after the matched locality line.
	Address string
}

// Identified reports whether a known locality was found.
func (r Result) Identified() bool {
	return r.Zone != "" && r.Zone != model.Unidentified
}

// Unidentified is the result for text with no known locality.
func Unidentified() Result {
	return Result{Zone: model.Unidentified}
}

type entry struct {
	zone     string
	locality string
}

// Classifier matches label text against a zone directory.
// It is stateless and safe to share.
type Classifier struct {
	entries []entry
}

// NewClassifier flattens the directory into its match order:
// zones in declared order, then localities in declared order.
func NewClassifier(dir *model.Directory) *Classifier {
	var entries []entry
	for _, z := range dir.Zones() {
		for _, loc := range z.Localities {
			entries = append(entries, entry{zone: z.Name, locality: loc})
		}
	}
	return &Classifier{entries: entries}
}

// Classify returns the zone and locality of the first line mentioning a known
// locality. Lines are tried top to bottom; within a line the directory order
// decides, so this is a first-hit search and not a best match.
func (c *Classifier) Classify(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Unidentified()
	}

	lines := splitLines(text)
	for i, line := range lines {
		upper := strings.ToUpper(line)
		for _, e := range c.entries {
			if !strings.Contains(upper, e.locality) {
				continue
			}

			address := ""
			if i+1 < len(lines) {
				address = strings.TrimSpace(lines[i+1])
			}
			return Result{
				Zone:     e.zone,
				Locality: e.locality,
				Address:  address,
			}
		}
	}

	return Unidentified()
}

// ClassifyBatch classifies several texts keyed by source reference.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts map[string]string) (map[string]Result, error) {
	results := make(map[string]Result, len(texts))

	for source, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			results[source] = c.Classify(text)
		}
	}

	return results, nil
}

// splitLines splits on \n, \r\n and \r, keeping empty lines so the
// "next line" of a match is the physical next line of the label.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
