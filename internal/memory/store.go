package memory

import "context"

// Store abstracts persistence for user facts.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Load(ctx context.Context, userID string) ([]Fact, error)
	Append(ctx context.Context, userID string, facts []Fact) error
}
