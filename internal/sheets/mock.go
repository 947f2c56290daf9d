package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/cordon/internal/model"
)

// MockWriter is a mock implementation of service.ReportWriter for testing.
type MockWriter struct {
	DetailFunc       func(ctx context.Context, rows []model.NumberedRow) error
	SummaryFunc      func(ctx context.Context, summary *model.Summary) error
	LastSummary      *model.Summary
	LastRows         []model.NumberedRow
	DetailCallCount  int
	SummaryCallCount int
	mu               sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// WriteDetail records the rows and runs DetailFunc when set.
func (m *MockWriter) WriteDetail(ctx context.Context, rows []model.NumberedRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DetailCallCount++
	m.LastRows = rows
	if m.DetailFunc != nil {
		return m.DetailFunc(ctx, rows)
	}
	return nil
}

// WriteSummary records the summary and runs SummaryFunc when set.
func (m *MockWriter) WriteSummary(ctx context.Context, summary *model.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SummaryCallCount++
	m.LastSummary = summary
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, summary)
	}
	return nil
}

// Reset clears all recorded calls.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DetailCallCount = 0
	m.SummaryCallCount = 0
	m.LastRows = nil
	m.LastSummary = nil
}

// SetWriteError configures the mock to fail every subsequent write.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DetailFunc = func(context.Context, []model.NumberedRow) error { return err }
	m.SummaryFunc = func(context.Context, *model.Summary) error { return err }
}
