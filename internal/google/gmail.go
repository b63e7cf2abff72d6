package google

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManimeghanathA/chief-of-staff-ai/internal/assistant"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
)

const defaultGmailBaseURL = "https://gmail.googleapis.com/gmail/v1"

// metadataFanout bounds concurrent per-message metadata fetches.
const metadataFanout = 5

// GmailClient talks to the Gmail REST API. It implements
// assistant.MailReader.
type GmailClient struct {
	tokens     *TokenSource
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	now        func() time.Time
}

// GmailOption customizes GmailClient construction.
type GmailOption func(*GmailClient)

// WithGmailBaseURL points the client at a non-default API host.
func WithGmailBaseURL(u string) GmailOption {
	return func(c *GmailClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithGmailHTTPClient replaces the HTTP client.
func WithGmailHTTPClient(hc *http.Client) GmailOption {
	return func(c *GmailClient) { c.httpClient = hc }
}

// WithGmailClock pins the client's notion of now.
func WithGmailClock(now func() time.Time) GmailOption {
	return func(c *GmailClient) { c.now = now }
}

// NewGmailClient builds a Gmail client over the given token source.
func NewGmailClient(tokens *TokenSource, opts ...GmailOption) *GmailClient {
	c := &GmailClient{
		tokens:     tokens,
		baseURL:    defaultGmailBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logging.NewComponentLogger("gmail"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageRef struct {
	ID string `json:"id"`
}

type messageList struct {
	Messages []messageRef `json:"messages"`
}

type messageHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type messagePayload struct {
	Headers []messageHeader `json:"headers"`
}

type messageDetail struct {
	Payload messagePayload `json:"payload"`
}

// ListForDate returns up to maxResults emails received on the UTC day
// daysAgo days before today. The message list gives only IDs; From and
// Subject come from a bounded concurrent metadata fetch per message,
// preserving list order.
func (c *GmailClient) ListForDate(ctx context.Context, userID string, daysAgo, maxResults int) ([]assistant.EmailSummary, error) {
	token, err := c.tokens.AccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	day := c.now().UTC().AddDate(0, 0, -daysAgo)
	after := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	before := after.AddDate(0, 0, 1)

	query := url.Values{
		"maxResults": {strconv.Itoa(maxResults)},
		"q": {"after:" + after.Format("2006/01/02") +
			" before:" + before.Format("2006/01/02")},
	}
	endpoint := c.baseURL + "/users/me/messages?" + query.Encode()

	var list messageList
	if err := getJSON(ctx, c.httpClient, "gmail", endpoint, token, &list); err != nil {
		return nil, err
	}
	if len(list.Messages) == 0 {
		return nil, nil
	}

	summaries := make([]assistant.EmailSummary, len(list.Messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataFanout)
	for i, ref := range list.Messages {
		i, ref := i, ref
		g.Go(func() error {
			summary, err := c.fetchSummary(gctx, token, ref.ID)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("listed %d emails for %s (daysAgo=%d)", len(summaries), userID, daysAgo)
	return summaries, nil
}

func (c *GmailClient) fetchSummary(ctx context.Context, token, messageID string) (assistant.EmailSummary, error) {
	query := url.Values{
		"format":          {"metadata"},
		"metadataHeaders": {"From", "Subject"},
	}
	endpoint := c.baseURL + "/users/me/messages/" + url.PathEscape(messageID) + "?" + query.Encode()

	var detail messageDetail
	if err := getJSON(ctx, c.httpClient, "gmail", endpoint, token, &detail); err != nil {
		return assistant.EmailSummary{}, err
	}

	summary := assistant.EmailSummary{From: "(unknown sender)", Subject: "(no subject)"}
	for _, header := range detail.Payload.Headers {
		switch {
		case strings.EqualFold(header.Name, "From"):
			summary.From = header.Value
		case strings.EqualFold(header.Name, "Subject"):
			summary.Subject = header.Value
		}
	}
	return summary, nil
}

var _ assistant.MailReader = (*GmailClient)(nil)
