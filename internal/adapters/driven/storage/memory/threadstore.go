// Package memory provides in-memory store implementations for testing.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/medforum-cli/internal/core/domain"
	"github.com/custodia-labs/medforum-cli/internal/core/ports/driven"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore is an in-memory implementation of driven.ThreadStore.
// It preserves insertion order for new keys and original position for
// replaced keys, mirroring the JSONL store's semantics.
type ThreadStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.ThreadRecord
}

// NewThreadStore creates a new in-memory thread store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{
		records: make(map[string]domain.ThreadRecord),
	}
}

// Load returns every stored record in insertion order.
func (s *ThreadStore) Load(_ context.Context) ([]domain.ThreadRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.ThreadRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}
	return records, 0, nil
}

// Upsert inserts or replaces a record by thread id.
func (s *ThreadStore) Upsert(_ context.Context, record domain.ThreadRecord) (bool, error) {
	if record.ThreadID == "" {
		return false, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.ThreadID]
	if !ok {
		s.order = append(s.order, record.ThreadID)
	} else if existing.Equal(&record) {
		return false, nil
	}
	s.records[record.ThreadID] = record
	return true, nil
}

// Contains reports whether a thread id is stored.
func (s *ThreadStore) Contains(_ context.Context, threadID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[threadID]
	return ok, nil
}

// AllIDs returns the set of stored thread ids.
func (s *ThreadStore) AllIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{}, len(s.records))
	for id := range s.records {
		ids[id] = struct{}{}
	}
	return ids, nil
}
