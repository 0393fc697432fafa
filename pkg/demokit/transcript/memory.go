package transcript

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory transcript store for testing and short-lived
// sessions. Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]Entry // sessionID -> ordered entries
	closed bool
}

// NewMemoryStore creates a new in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]Entry),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(entry Entry) error {
	if entry.SessionID == "" {
		return ErrEmptySession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if entry.Seq == 0 {
		entry.Seq = len(m.data[entry.SessionID]) + 1
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	m.data[entry.SessionID] = append(m.data[entry.SessionID], entry)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(sessionID string) ([]Entry, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	entries := make([]Entry, len(m.data[sessionID]))
	copy(entries, m.data[sessionID])
	return entries, nil
}

// DeleteSession implements Store.
func (m *MemoryStore) DeleteSession(sessionID string) error {
	if sessionID == "" {
		return ErrEmptySession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, sessionID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}
