// Package google holds the Google API connectors: OAuth token refresh plus
// thin REST clients for Calendar and Gmail.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
)

const defaultTokenURL = "https://oauth2.googleapis.com/token"

// expirySlack refreshes tokens slightly before they expire so an in-flight
// API call does not race the expiry.
const expirySlack = 30 * time.Second

// Credential is one user's stored OAuth grant.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// CredentialStore persists per-user OAuth grants.
type CredentialStore interface {
	Get(ctx context.Context, userID string) (Credential, error)
	Save(ctx context.Context, cred Credential) error
}

// TokenSource hands out live access tokens, refreshing expired ones through
// the OAuth token endpoint and writing the result back to the store.
type TokenSource struct {
	store        CredentialStore
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	logger       logging.Logger

	mu sync.Mutex
}

// TokenSourceOption customizes TokenSource construction.
type TokenSourceOption func(*TokenSource)

// WithTokenURL points the refresher at a non-default token endpoint.
func WithTokenURL(u string) TokenSourceOption {
	return func(ts *TokenSource) { ts.tokenURL = u }
}

// WithTokenHTTPClient replaces the HTTP client used for refresh calls.
func WithTokenHTTPClient(c *http.Client) TokenSourceOption {
	return func(ts *TokenSource) { ts.httpClient = c }
}

// WithTokenLogger replaces the token source logger.
func WithTokenLogger(logger logging.Logger) TokenSourceOption {
	return func(ts *TokenSource) { ts.logger = logging.OrNop(logger) }
}

// NewTokenSource builds a token source over the given store and OAuth client.
func NewTokenSource(store CredentialStore, clientID, clientSecret string, opts ...TokenSourceOption) *TokenSource {
	ts := &TokenSource{
		store:        store,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logging.NewComponentLogger("google-auth"),
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// AccessToken returns a live access token for userID, refreshing first when
// the stored one is expired or about to expire.
func (ts *TokenSource) AccessToken(ctx context.Context, userID string) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	cred, err := ts.store.Get(ctx, userID)
	if err != nil {
		return "", coserrors.NewService("google-auth", coserrors.KindAuthExpired,
			fmt.Errorf("no credentials for user %s: %w", userID, err))
	}

	if cred.AccessToken != "" && time.Until(cred.Expiry) > expirySlack {
		return cred.AccessToken, nil
	}

	refreshed, err := ts.refresh(ctx, cred)
	if err != nil {
		return "", err
	}
	if err := ts.store.Save(ctx, refreshed); err != nil {
		// The token is still usable this request even if persisting failed.
		ts.logger.Warn("persist refreshed token for %s failed: %v", userID, err)
	}
	return refreshed.AccessToken, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (ts *TokenSource) refresh(ctx context.Context, cred Credential) (Credential, error) {
	if cred.RefreshToken == "" {
		return Credential{}, coserrors.NewService("google-auth", coserrors.KindAuthExpired,
			fmt.Errorf("user %s has no refresh token", cred.UserID))
	}

	form := url.Values{
		"client_id":     {ts.clientID},
		"client_secret": {ts.clientSecret},
		"refresh_token": {cred.RefreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, coserrors.Classify("google-auth", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return Credential{}, coserrors.Classify("google-auth", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Credential{}, coserrors.Classify("google-auth", err)
	}

	if resp.StatusCode != http.StatusOK {
		// A failed refresh means the grant itself is gone; the user has to
		// reconnect their account.
		return Credential{}, coserrors.NewService("google-auth", coserrors.KindAuthExpired,
			fmt.Errorf("token refresh returned %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return Credential{}, coserrors.NewService("google-auth", coserrors.KindUnknown,
			fmt.Errorf("decode token response: %w", err))
	}
	if token.AccessToken == "" {
		return Credential{}, coserrors.NewService("google-auth", coserrors.KindAuthExpired,
			fmt.Errorf("token refresh returned no access token"))
	}

	cred.AccessToken = token.AccessToken
	cred.Expiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	ts.logger.Debug("refreshed token for %s, expires %s", cred.UserID, cred.Expiry.Format(time.RFC3339))
	return cred, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
