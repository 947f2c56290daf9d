// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/cordon/internal/model"
)

// DocumentStore persists whole JSON-shaped documents by name.
// Save always overwrites the complete document.
type DocumentStore interface {
	// Load decodes the named document into v. found is false when the
	// document has never been written; v is left untouched in that case.
	Load(ctx context.Context, name string, v any) (found bool, err error)
	Save(ctx context.Context, name string, v any) error
	Close() error
}

// Recognizer turns an image into text. rotation is one of 0, 90, 180, 270
// degrees (counter-clockwise).
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string, rotation int) (string, error)
}

// ReportWriter is a rendering sink for grouped detail rows and the weekly summary.
type ReportWriter interface {
	WriteDetail(ctx context.Context, rows []model.NumberedRow) error
	WriteSummary(ctx context.Context, summary *model.Summary) error
}

// RetryOptions configures retry behavior for remote sinks.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
