package unittest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory model.CustomDataStore. Values are kept JSON-encoded so
// tests observe exactly what a persisting orchestrator would hand back.
type MemoryStore[T any] struct {
	mu     sync.Mutex
	values map[uint64][]byte
	// Writes counts successful writes.
	Writes int
	// FailStore, when set, is returned by every write instead of writing.
	FailStore error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{values: make(map[uint64][]byte)}
}

// LoadCustomData returns a decoded copy of the node's value, or nil.
func (s *MemoryStore[T]) LoadCustomData(_ context.Context, nodeID uint64) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.values[nodeID]
	if !ok {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("decode custom data: %w", err)
	}
	return v, nil
}

// StoreCustomData replaces the node's value.
func (s *MemoryStore[T]) StoreCustomData(_ context.Context, nodeID uint64, v *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailStore != nil {
		return s.FailStore
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode custom data: %w", err)
	}
	s.values[nodeID] = raw
	s.Writes++
	return nil
}

// UpdateCustomData applies fn to a decoded copy of the node's value and stores
// the result, holding the store lock throughout.
func (s *MemoryStore[T]) UpdateCustomData(_ context.Context, nodeID uint64, fn func(*T) (*T, error)) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *T
	if raw, ok := s.values[nodeID]; ok {
		current = new(T)
		if err := json.Unmarshal(raw, current); err != nil {
			return nil, fmt.Errorf("decode custom data: %w", err)
		}
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if s.FailStore != nil {
		return nil, s.FailStore
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode custom data: %w", err)
	}
	s.values[nodeID] = raw
	s.Writes++
	return next, nil
}
