package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
)

// MemoryStore is the fallback record store used when redis is offline.
// It serialises all access so concurrent pipelines cannot lose stage
// updates.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]document.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]document.Record)}
}

func (s *MemoryStore) Get(_ context.Context, hash string) (document.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[hash]
	return rec, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, rec document.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Hash] = rec
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]document.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]document.Record, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Hash < records[j].Hash })
	return records, nil
}
