package llm

import (
	"context"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
)

// retryClient wraps a Client with classification-aware retry logic.
type retryClient struct {
	underlying  Client
	retryConfig coserrors.RetryConfig
	logger      logging.Logger
}

var _ Client = (*retryClient)(nil)

// NewRetryClient wraps client so transient failures (timeouts, unclassified
// 5xx) are retried with backoff. Rate limits and auth failures pass through
// so the workflow can map them to their own user messages.
func NewRetryClient(client Client, retryConfig coserrors.RetryConfig) Client {
	return &retryClient{
		underlying:  client,
		retryConfig: retryConfig,
		logger:      logging.NewComponentLogger("llm-retry"),
	}
}

func (c *retryClient) Complete(ctx context.Context, prompt string) (string, error) {
	return coserrors.RetryWithResult(ctx, c.retryConfig, c.logger, func(ctx context.Context) (string, error) {
		text, err := c.underlying.Complete(ctx, prompt)
		if err != nil {
			return "", coserrors.Classify("llm", err)
		}
		return text, nil
	})
}
