package store

import (
	"context"
	"sync"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// MemoryStore is an in-memory Store implementation for tests and
// single-process deployments. Records are deep-copied on the way in and out
// so callers never share backing slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*flag.Flag
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*flag.Flag)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*flag.Flag, error) {
	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, record *flag.Flag) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.records[record.Key] = record.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; !ok {
		return false, nil
	}
	delete(s.records, key)
	return true, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]*flag.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*flag.Flag, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record.Clone())
	}
	return records, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
