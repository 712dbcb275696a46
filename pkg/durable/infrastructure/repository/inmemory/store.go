// Package inmemory provides a map-backed JobStateStore for tests and single-process use
// where state does not need to survive a restart.
package inmemory

import (
	"context"
	"sync"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
)

// Store keeps encoded job states in memory. Payloads are copied on the way in and out.
type Store struct {
	mu      sync.RWMutex
	records map[model.JobID][]byte
}

var _ repository.JobStateStore = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{records: make(map[model.JobID][]byte)}
}

func (s *Store) Write(_ context.Context, id model.JobID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = append([]byte(nil), data...)
	return nil
}

func (s *Store) Read(_ context.Context, id model.JobID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.records[id]
	if !ok {
		return nil, repository.ErrJobStateNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Delete(_ context.Context, id model.JobID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *Store) All(_ context.Context) ([]model.JobID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.JobID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close holds no resources and always returns nil.
func (s *Store) Close() error {
	return nil
}
