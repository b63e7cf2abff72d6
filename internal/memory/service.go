package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/segmentio/ksuid"
)

// cacheSize bounds the number of users whose fact lists are held in memory.
const cacheSize = 256

// Service provides higher-level fact operations over a Store: normalization,
// id assignment, and a per-user read cache.
type Service struct {
	store Store
	cache *lru.Cache[string, []Fact]
}

// NewService constructs a fact service with the provided store.
func NewService(store Store) (*Service, error) {
	cache, err := lru.New[string, []Fact](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("fact cache: %w", err)
	}
	return &Service{store: store, cache: cache}, nil
}

// Load returns the user's facts, serving repeat reads from the cache.
func (s *Service) Load(ctx context.Context, userID string) ([]Fact, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("fact service not initialized")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	if facts, ok := s.cache.Get(userID); ok {
		return facts, nil
	}

	facts, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(userID, facts)
	return facts, nil
}

// Append persists new facts for the user with the given source tag.
//
// Facts are append-only: repeated mentions of the same preference accumulate
// rows rather than merging with existing keys.
func (s *Service) Append(ctx context.Context, userID string, facts []Fact, source string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("fact service not initialized")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if len(facts) == 0 {
		return nil
	}

	now := time.Now().UTC()
	prepared := make([]Fact, 0, len(facts))
	for _, fact := range facts {
		fact.Key = strings.TrimSpace(fact.Key)
		fact.Value = strings.TrimSpace(fact.Value)
		if fact.Key == "" || fact.Value == "" {
			continue
		}
		fact.UserID = userID
		fact.Source = source
		if fact.ID == "" {
			fact.ID = ksuid.New().String()
		}
		if fact.CreatedAt.IsZero() {
			fact.CreatedAt = now
		}
		prepared = append(prepared, fact)
	}
	if len(prepared) == 0 {
		return nil
	}

	if err := s.store.Append(ctx, userID, prepared); err != nil {
		return err
	}
	s.cache.Remove(userID)
	return nil
}
