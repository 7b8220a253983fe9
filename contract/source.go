package contract

import (
	"context"
	"fmt"
	"sync"
)

// MemorySource holds records in memory, keyed by id, in insertion order.
type MemorySource struct {
	mu      sync.RWMutex
	order   []string
	records map[string]Record
}

// NewMemorySource creates a source seeded with records.
func NewMemorySource(records ...Record) (*MemorySource, error) {
	src := &MemorySource{records: make(map[string]Record)}
	for _, record := range records {
		if err := src.Add(record); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// Add stores a copy of record.
func (s *MemorySource) Add(record Record) error {
	if record.ID == "" {
		return NewError(KindValidation, "contract id is required", nil)
	}
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return NewError(KindValidation, fmt.Sprintf("contract %q already registered", record.ID), nil)
	}
	s.records[record.ID] = record.Clone()
	s.order = append(s.order, record.ID)
	return nil
}

// Get returns a copy of the record with id.
func (s *MemorySource) Get(ctx context.Context, id string) (Record, error) {
	_ = ctx
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, NewError(KindNotFound, fmt.Sprintf("contract %q not found", id), nil)
	}
	return record.Clone(), nil
}

// List returns copies of all records in insertion order.
func (s *MemorySource) List(ctx context.Context) []Record {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out
}
