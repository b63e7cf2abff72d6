package google

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ManimeghanathA/chief-of-staff-ai/internal/assistant"
	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
)

const defaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"

// upcomingWindow bounds how far ahead ListUpcoming looks.
const upcomingWindow = 7 * 24 * time.Hour

// CalendarClient talks to the Google Calendar REST API for the primary
// calendar of each user. It implements assistant.CalendarReader and
// assistant.CalendarWriter.
type CalendarClient struct {
	tokens     *TokenSource
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	now        func() time.Time
}

// CalendarOption customizes CalendarClient construction.
type CalendarOption func(*CalendarClient)

// WithCalendarBaseURL points the client at a non-default API host.
func WithCalendarBaseURL(u string) CalendarOption {
	return func(c *CalendarClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithCalendarHTTPClient replaces the HTTP client.
func WithCalendarHTTPClient(hc *http.Client) CalendarOption {
	return func(c *CalendarClient) { c.httpClient = hc }
}

// WithCalendarClock pins the client's notion of now.
func WithCalendarClock(now func() time.Time) CalendarOption {
	return func(c *CalendarClient) { c.now = now }
}

// NewCalendarClient builds a calendar client over the given token source.
func NewCalendarClient(tokens *TokenSource, opts ...CalendarOption) *CalendarClient {
	c := &CalendarClient{
		tokens:     tokens,
		baseURL:    defaultCalendarBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logging.NewComponentLogger("calendar"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type calendarEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type calendarEvent struct {
	ID       string            `json:"id"`
	Summary  string            `json:"summary"`
	HTMLLink string            `json:"htmlLink"`
	Start    calendarEventTime `json:"start"`
	End      calendarEventTime `json:"end"`
}

type calendarEventList struct {
	Items []calendarEvent `json:"items"`
}

// ListUpcoming returns up to maxResults events on the user's primary
// calendar starting within the next seven days, ordered by start time.
func (c *CalendarClient) ListUpcoming(ctx context.Context, userID string, maxResults int) ([]assistant.CalendarEvent, error) {
	token, err := c.tokens.AccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	query := url.Values{
		"maxResults":   {strconv.Itoa(maxResults)},
		"orderBy":      {"startTime"},
		"singleEvents": {"true"},
		"timeMin":      {now.Format(time.RFC3339)},
		"timeMax":      {now.Add(upcomingWindow).Format(time.RFC3339)},
	}
	endpoint := c.baseURL + "/calendars/primary/events?" + query.Encode()

	var list calendarEventList
	if err := getJSON(ctx, c.httpClient, "calendar", endpoint, token, &list); err != nil {
		return nil, err
	}

	events := make([]assistant.CalendarEvent, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, assistant.CalendarEvent{
			Title:      item.Summary,
			Start:      parseEventTime(item.Start),
			End:        parseEventTime(item.End),
			ExternalID: item.ID,
		})
	}
	c.logger.Debug("listed %d upcoming events for %s", len(events), userID)
	return events, nil
}

// CreateEvent writes a new event to the user's primary calendar.
func (c *CalendarClient) CreateEvent(ctx context.Context, userID, title string, start, end time.Time) (assistant.CreatedEvent, error) {
	if strings.TrimSpace(title) == "" {
		return assistant.CreatedEvent{}, &coserrors.ValidationError{Field: "title", Message: "event title must not be empty"}
	}
	if !end.After(start) {
		return assistant.CreatedEvent{}, &coserrors.ValidationError{Field: "time_range", Message: "event end must be after its start"}
	}

	token, err := c.tokens.AccessToken(ctx, userID)
	if err != nil {
		return assistant.CreatedEvent{}, err
	}

	payload := calendarEvent{
		Summary: title,
		Start:   calendarEventTime{DateTime: start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:     calendarEventTime{DateTime: end.UTC().Format(time.RFC3339), TimeZone: "UTC"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return assistant.CreatedEvent{}, coserrors.Classify("calendar", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/calendars/primary/events", bytes.NewReader(body))
	if err != nil {
		return assistant.CreatedEvent{}, coserrors.Classify("calendar", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var created calendarEvent
	if err := doJSON(c.httpClient, "calendar", req, &created); err != nil {
		return assistant.CreatedEvent{}, err
	}

	c.logger.Info("created event %s for %s", created.ID, userID)
	return assistant.CreatedEvent{ID: created.ID, Title: created.Summary, Link: created.HTMLLink}, nil
}

// parseEventTime handles both timed events (dateTime) and all-day events
// (date). Unparsable values come back as the zero time, which the conflict
// checker skips.
func parseEventTime(t calendarEventTime) time.Time {
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed.UTC()
		}
		return time.Time{}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

var _ assistant.CalendarReader = (*CalendarClient)(nil)
var _ assistant.CalendarWriter = (*CalendarClient)(nil)
