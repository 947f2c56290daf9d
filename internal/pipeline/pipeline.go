// Package pipeline runs batches of label images through recognition,
// classification and the ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/cordon/internal/classification"
	"github.com/Veraticus/cordon/internal/common"
	"github.com/Veraticus/cordon/internal/ledger"
	"github.com/Veraticus/cordon/internal/model"
	"github.com/Veraticus/cordon/internal/service"
)

// Rotations are tried in this order until one yields text.
var Rotations = []int{0, 90, 180, 270}

// RecognizeRotations returns the first non-blank text recognized from path.
// All-blank results wrap common.ErrRecognitionFailure; any recognizer error
// stops the search and is returned as is.
func RecognizeRotations(ctx context.Context, r service.Recognizer, path string) (string, error) {
	for _, rotation := range Rotations {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := r.Recognize(ctx, path, rotation)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: %s", common.ErrRecognitionFailure, path)
}

// Outcome is what happened to one image of a batch.
type Outcome int

// Outcomes.
const (
	OutcomeClassified Outcome = iota
	OutcomePending
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClassified:
		return "classified"
	case OutcomePending:
		return "pending"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Failure is an image that could not be processed.
type Failure struct {
	Err    error
	Source string
}

// BatchResult summarizes a batch.
type BatchResult struct {
	ID         string
	Zones      map[string]int
	Pending    []string
	Failures   []Failure
	Day        model.Day
	Total      int
	Processed  int
	Classified int
}

// ProgressFunc is called after every item with the number done so far.
type ProgressFunc func(done, total int, source string, outcome Outcome)

// Options configures a Processor.
type Options struct {
	Logger   *slog.Logger
	Progress ProgressFunc
}

// Processor classifies images one at a time into a ledger.
type Processor struct {
	ledger     *ledger.Ledger
	classifier *classification.Classifier
	recognizer service.Recognizer
	logger     *slog.Logger
	progress   ProgressFunc
}

// NewProcessor wires a processor.
func NewProcessor(l *ledger.Ledger, c *classification.Classifier, r service.Recognizer, opts Options) *Processor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Processor{
		ledger:     l,
		classifier: c,
		recognizer: r,
		logger:     opts.Logger,
		progress:   opts.Progress,
	}
}

// ProcessBatch recognizes and classifies paths in order, appending an
// automatic record to day for every identified label and queueing the rest.
// Per-image errors are collected in the result and never stop the batch.
// Cancellation is honored between images; the work done so far is flushed
// either way, and a flush failure is returned as a persistence error.
func (p *Processor) ProcessBatch(ctx context.Context, day model.Day, paths []string) (*BatchResult, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidDay, int(day))
	}

	result := &BatchResult{
		ID:    uuid.NewString(),
		Day:   day,
		Total: len(paths),
		Zones: make(map[string]int),
	}
	logger := p.logger.With("batch_id", result.ID, "day", day.String())
	logger.Info("Starting batch", "images", len(paths))

	var stopErr error
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			stopErr = err
			logger.Warn("Batch interrupted", "processed", i, "total", len(paths))
			break
		}

		outcome := p.processOne(ctx, logger, day, path, result)
		result.Processed++

		if p.progress != nil {
			p.progress(i+1, len(paths), path, outcome)
		}
	}

	// Flush even after an interrupt so finished images are kept.
	if err := p.ledger.Flush(context.WithoutCancel(ctx)); err != nil {
		return result, err
	}

	logger.Info("Batch complete",
		"classified", result.Classified,
		"pending", len(result.Pending),
		"failed", len(result.Failures))

	return result, stopErr
}

func (p *Processor) processOne(ctx context.Context, logger *slog.Logger, day model.Day, path string, result *BatchResult) Outcome {
	text, err := RecognizeRotations(ctx, p.recognizer, path)
	switch {
	case errors.Is(err, common.ErrRecognitionFailure):
		p.enqueue(logger, path, "no text recognized", result)
		return OutcomePending
	case err != nil:
		logger.Error("Failed to process image", "source", path, "error", err)
		result.Failures = append(result.Failures, Failure{Source: path, Err: err})
		return OutcomeFailed
	}

	res := p.classifier.Classify(text)
	if !res.Identified() {
		p.enqueue(logger, path, "no known locality", result)
		return OutcomePending
	}

	if err := p.ledger.Append(day, ledger.NewAutomaticRecord(res, path)); err != nil {
		logger.Error("Failed to record label", "source", path, "zone", res.Zone, "error", err)
		result.Failures = append(result.Failures, Failure{Source: path, Err: err})
		return OutcomeFailed
	}

	result.Classified++
	result.Zones[res.Zone]++
	logger.Debug("Classified label", "source", path, "zone", res.Zone, "locality", res.Locality)
	return OutcomeClassified
}

func (p *Processor) enqueue(logger *slog.Logger, path, reason string, result *BatchResult) {
	if p.ledger.Enqueue(path) {
		logger.Info("Queued label for manual review", "source", path, "reason", reason)
	}
	result.Pending = append(result.Pending, path)
}
