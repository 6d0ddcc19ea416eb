package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/viant/procsim/service/dao"
)

// MemoryStore is a generic in-memory registry of *T keyed by K.
// The key is obtained from the supplied keySelector function.
//
// Find hands out the live record so that its owner can mutate it in place;
// List hands out copies produced by the clone function, ordered by key.
//
// It contains no filtering logic; higher-level DAOs wrap List when they
// need state-based selection.
type MemoryStore[K cmp.Ordered, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
	clone       func(*T) *T
}

// NewMemoryStore creates a new MemoryStore.
// keySelector extracts the entity key (usually the ID field) from a value,
// clone produces the detached copies returned by List.
func NewMemoryStore[K cmp.Ordered, T any](keySelector func(*T) K, clone func(*T) *T) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
		clone:       clone,
	}
}

// Insert stores a new record.
func (s *MemoryStore[K, T]) Insert(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		return fmt.Errorf("%w: %v", dao.ErrDuplicateID, key)
	}
	s.records[key] = v
	return nil
}

// Find returns a record by key.
func (s *MemoryStore[K, T]) Find(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", dao.ErrNotFound, key)
	}
	return v, nil
}

// Remove deletes and returns a record.
func (s *MemoryStore[K, T]) Remove(_ context.Context, key K) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("%w: %v", dao.ErrNotFound, key)
	}
	delete(s.records, key)
	return v, nil
}

// Len returns the number of stored records.
func (s *MemoryStore[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// List returns copies of all stored records ordered by key.
func (s *MemoryStore[K, T]) List(_ context.Context, _ ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	keys := make([]K, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.clone(s.records[k]))
	}
	s.mu.RUnlock()
	return out, nil
}
