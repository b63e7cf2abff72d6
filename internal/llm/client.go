// Package llm provides the chat-completion collaborator: a narrow Client
// interface, a Gemini-backed implementation, a retry wrapper, and a mock.
package llm

import (
	"context"
	"time"
)

// Client is the chat-completion contract the workflow depends on.
//
// Implementations must surface rate-limit conditions as classified errors
// (internal/errors ServiceError with KindRateLimited) so callers can detect
// them without coupling to provider response codes.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config carries provider settings shared by client constructors.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration // 0 means the provider default
}
