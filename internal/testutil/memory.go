package testutil

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is a DocumentStore keeping raw JSON in memory.
type MemoryStore struct {
	// SaveErr, when set, is returned by every Save.
	SaveErr error
	docs    map[string][]byte
	Saves   int
	mu      sync.Mutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Load decodes name into v.
func (m *MemoryStore) Load(_ context.Context, name string, v any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.docs[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

// Save encodes v under name.
func (m *MemoryStore) Save(_ context.Context, name string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.docs[name] = data
	m.Saves++
	return nil
}

// Put stores raw JSON, for seeding legacy documents.
func (m *MemoryStore) Put(name, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = []byte(raw)
}

// Raw returns the stored JSON of name.
func (m *MemoryStore) Raw(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.docs[name])
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
