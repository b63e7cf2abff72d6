package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists facts using the shared application database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("fact store not initialized")
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_facts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    source TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_user_facts_user ON user_facts (user_id, created_at);`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns all facts for the user, oldest first.
func (s *PostgresStore) Load(ctx context.Context, userID string) ([]Fact, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("fact store not initialized")
	}

	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, key, value, source, created_at
FROM user_facts
WHERE user_id = $1
ORDER BY created_at
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		var fact Fact
		if err := rows.Scan(&fact.ID, &fact.UserID, &fact.Key, &fact.Value, &fact.Source, &fact.CreatedAt); err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return facts, nil
}

// Append writes new facts in a single batched commit.
func (s *PostgresStore) Append(ctx context.Context, userID string, facts []Fact) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("fact store not initialized")
	}
	if len(facts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, fact := range facts {
		createdAt := fact.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		batch.Queue(`
INSERT INTO user_facts (id, user_id, key, value, source, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING
`, fact.ID, userID, fact.Key, fact.Value, fact.Source, createdAt)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range facts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("append facts: %w", err)
		}
	}
	return nil
}
