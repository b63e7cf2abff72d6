package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
)

const maxResponseBytes = 1 << 20

// statusError maps a non-2xx Google API response to the error taxonomy.
func statusError(service string, status int, body []byte) error {
	err := fmt.Errorf("%s returned %d: %s", service, status, truncate(string(body), 200))
	switch {
	case status == http.StatusTooManyRequests:
		return coserrors.NewService(service, coserrors.KindRateLimited, err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return coserrors.NewService(service, coserrors.KindAuthExpired, err)
	case status == http.StatusGatewayTimeout:
		return coserrors.NewService(service, coserrors.KindTimeout, err)
	default:
		return coserrors.NewService(service, coserrors.KindUnknown, err)
	}
}

// getJSON issues an authorized GET and decodes the JSON response into out.
func getJSON(ctx context.Context, client *http.Client, service, url, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return coserrors.Classify(service, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return doJSON(client, service, req, out)
}

func doJSON(client *http.Client, service string, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return coserrors.Classify(service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return coserrors.Classify(service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(service, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return coserrors.NewService(service, coserrors.KindUnknown, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
