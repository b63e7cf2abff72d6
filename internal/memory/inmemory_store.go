package memory

import (
	"context"
	"sync"
)

// InMemoryStore implements Store for tests and local demos.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Fact // userID -> facts, insertion order
}

// NewInMemoryStore constructs an in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string][]Fact),
	}
}

// EnsureSchema is a no-op for in-memory storage.
func (s *InMemoryStore) EnsureSchema(_ context.Context) error {
	return nil
}

// Load returns all facts for the user in insertion order.
func (s *InMemoryStore) Load(_ context.Context, userID string) ([]Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	facts := s.records[userID]
	out := make([]Fact, len(facts))
	copy(out, facts)
	return out, nil
}

// Append adds facts for the user.
func (s *InMemoryStore) Append(_ context.Context, userID string, facts []Fact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[userID] = append(s.records[userID], facts...)
	return nil
}
