package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/Veraticus/cordon/internal/model"
)

// Zone names of the fixture directory.
const (
	ZoneNorth = "Norte"
	ZoneSouth = "Sur"
)

// TestDirectory returns a two-zone directory: Norte (100) with LOCALIDAD A
// and LOCALIDAD B, Sur (250) with LOCALIDAD C.
func TestDirectory(t *testing.T) *model.Directory {
	t.Helper()
	dir, err := model.NewDirectory([]model.Zone{
		{Name: ZoneNorth, Price: 100, Localities: []string{"LOCALIDAD A", "LOCALIDAD B"}},
		{Name: ZoneSouth, Price: 250, Localities: []string{"LOCALIDAD C"}},
	})
	if err != nil {
		t.Fatalf("failed to build test directory: %v", err)
	}
	return dir
}

// FakeRecognizer returns scripted text per source and rotation.
type FakeRecognizer struct {
	// Texts maps source to the text returned at each rotation.
	Texts map[string]map[int]string
	// Errors maps source to an error returned at every rotation.
	Errors map[string]error
	Calls  []RecognizeCall
	mu     sync.Mutex
}

// RecognizeCall records one Recognize invocation.
type RecognizeCall struct {
	Source   string
	Rotation int
}

// NewFakeRecognizer creates a recognizer returning blank text by default.
func NewFakeRecognizer() *FakeRecognizer {
	return &FakeRecognizer{
		Texts:  make(map[string]map[int]string),
		Errors: make(map[string]error),
	}
}

// On scripts text for source at rotation and returns the recognizer.
func (f *FakeRecognizer) On(source string, rotation int, text string) *FakeRecognizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Texts[source] == nil {
		f.Texts[source] = make(map[int]string)
	}
	f.Texts[source][rotation] = text
	return f
}

// Fail makes every recognition of source return err.
func (f *FakeRecognizer) Fail(source string, err error) *FakeRecognizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[source] = err
	return f
}

// Recognize implements service.Recognizer.
func (f *FakeRecognizer) Recognize(_ context.Context, source string, rotation int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, RecognizeCall{Source: source, Rotation: rotation})
	if err := f.Errors[source]; err != nil {
		return "", err
	}
	return f.Texts[source][rotation], nil
}

// CallsFor returns the rotations tried for source, in order.
func (f *FakeRecognizer) CallsFor(source string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rotations []int
	for _, c := range f.Calls {
		if c.Source == source {
			rotations = append(rotations, c.Rotation)
		}
	}
	return rotations
}
