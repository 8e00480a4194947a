package tier

import (
	"context"
	"slices"
	"sync"
)

// InMemoryStore is a thread-safe, in-memory implementation of Store.
// Used by one-shot CLI commands and tests; the sqlite module provides the
// persistent implementation.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryStore creates a new empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]Record),
	}
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

// Put stores a record, replacing any existing record with the same key.
func (s *InMemoryStore) Put(_ context.Context, rec Record) error {
	if err := CheckInvariant(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
	return nil
}

// Get retrieves a record by key.
func (s *InMemoryStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

// Has reports whether a record with the given key exists.
func (s *InMemoryStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[key]
	return ok, nil
}

// Keys returns all record keys in ascending lexical order.
func (s *InMemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Latest returns the record with the greatest key.
func (s *InMemoryStore) Latest(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest string
	for k := range s.records {
		if k > latest {
			latest = k
		}
	}
	if latest == "" {
		return Record{}, ErrRecordNotFound
	}
	return s.records[latest], nil
}

// Len returns the total number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
