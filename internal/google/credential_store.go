package google

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InMemoryCredentialStore keeps grants in process memory. Used in tests and
// when no database is configured.
type InMemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewInMemoryCredentialStore returns an empty in-memory store.
func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{creds: make(map[string]Credential)}
}

func (s *InMemoryCredentialStore) Get(_ context.Context, userID string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[userID]
	if !ok {
		return Credential{}, fmt.Errorf("no credentials stored for user %s", userID)
	}
	return cred, nil
}

func (s *InMemoryCredentialStore) Save(_ context.Context, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.UserID] = cred
	return nil
}

const credentialsDDL = `
CREATE TABLE IF NOT EXISTS user_credentials (
	user_id       TEXT PRIMARY KEY,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	expiry        TIMESTAMPTZ NOT NULL
)`

// PostgresCredentialStore persists grants in the user_credentials table.
type PostgresCredentialStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCredentialStore wraps the given pool.
func NewPostgresCredentialStore(pool *pgxpool.Pool) *PostgresCredentialStore {
	return &PostgresCredentialStore{pool: pool}
}

// EnsureSchema creates the user_credentials table if it does not exist.
func (s *PostgresCredentialStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("credential store not initialized")
	}
	if _, err := s.pool.Exec(ctx, credentialsDDL); err != nil {
		return fmt.Errorf("ensure user_credentials schema: %w", err)
	}
	return nil
}

func (s *PostgresCredentialStore) Get(ctx context.Context, userID string) (Credential, error) {
	if s == nil || s.pool == nil {
		return Credential{}, fmt.Errorf("credential store not initialized")
	}

	row := s.pool.QueryRow(ctx,
		`SELECT user_id, access_token, refresh_token, expiry FROM user_credentials WHERE user_id = $1`,
		userID)

	var cred Credential
	if err := row.Scan(&cred.UserID, &cred.AccessToken, &cred.RefreshToken, &cred.Expiry); err != nil {
		if err == pgx.ErrNoRows {
			return Credential{}, fmt.Errorf("no credentials stored for user %s", userID)
		}
		return Credential{}, fmt.Errorf("load credentials for %s: %w", userID, err)
	}
	return cred, nil
}

func (s *PostgresCredentialStore) Save(ctx context.Context, cred Credential) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("credential store not initialized")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_credentials (user_id, access_token, refresh_token, expiry)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET access_token = EXCLUDED.access_token,
		     refresh_token = EXCLUDED.refresh_token,
		     expiry = EXCLUDED.expiry`,
		cred.UserID, cred.AccessToken, cred.RefreshToken, cred.Expiry)
	if err != nil {
		return fmt.Errorf("save credentials for %s: %w", cred.UserID, err)
	}
	return nil
}
