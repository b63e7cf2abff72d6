package google

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
)

var calendarNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestTokenSource(t *testing.T) *TokenSource {
	t.Helper()
	store := NewInMemoryCredentialStore()
	require.NoError(t, store.Save(context.Background(), Credential{
		UserID:      "u1",
		AccessToken: "test-token",
		Expiry:      time.Now().Add(time.Hour),
	}))
	return NewTokenSource(store, "client", "secret", WithTokenLogger(logging.Nop()))
}

func newCalendarClient(t *testing.T, server *httptest.Server) *CalendarClient {
	t.Helper()
	return NewCalendarClient(newTestTokenSource(t),
		WithCalendarBaseURL(server.URL),
		WithCalendarClock(func() time.Time { return calendarNow }),
	)
}

func TestCalendarListUpcoming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		query := r.URL.Query()
		assert.Equal(t, "5", query.Get("maxResults"))
		assert.Equal(t, "startTime", query.Get("orderBy"))
		assert.Equal(t, "true", query.Get("singleEvents"))
		assert.Equal(t, calendarNow.Format(time.RFC3339), query.Get("timeMin"))
		assert.Equal(t, calendarNow.Add(7*24*time.Hour).Format(time.RFC3339), query.Get("timeMax"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":"e1","summary":"Standup","htmlLink":"https://cal/e1",
			 "start":{"dateTime":"2026-03-04T11:00:00Z"},"end":{"dateTime":"2026-03-04T11:30:00Z"}},
			{"id":"e2","summary":"Offsite",
			 "start":{"date":"2026-03-06"},"end":{"date":"2026-03-07"}},
			{"id":"e3","summary":"Broken",
			 "start":{"dateTime":"not-a-time"},"end":{}}
		]}`))
	}))
	defer server.Close()

	client := newCalendarClient(t, server)
	events, err := client.ListUpcoming(context.Background(), "u1", 5)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, "e1", events[0].ExternalID)
	assert.Equal(t, time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC), events[0].Start)

	// All-day events carry the midnight boundary.
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), events[1].Start)

	// Unparsable times come back zero so the conflict checker skips them.
	assert.True(t, events[2].Start.IsZero())
	assert.True(t, events[2].End.IsZero())
}

func TestCalendarListUpcomingAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newCalendarClient(t, server)
	_, err := client.ListUpcoming(context.Background(), "u1", 5)
	require.Error(t, err)

	var serviceErr *coserrors.ServiceError
	require.True(t, stderrors.As(err, &serviceErr))
	assert.Equal(t, coserrors.KindAuthExpired, serviceErr.Kind)
}

func TestCalendarListUpcomingRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newCalendarClient(t, server)
	_, err := client.ListUpcoming(context.Background(), "u1", 5)
	require.True(t, coserrors.IsRateLimited(err))
}

func TestCalendarCreateEvent(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)

		var payload struct {
			Summary string `json:"summary"`
			Start   struct {
				DateTime string `json:"dateTime"`
			} `json:"start"`
			End struct {
				DateTime string `json:"dateTime"`
			} `json:"end"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Sync", payload.Summary)
		assert.Equal(t, start.Format(time.RFC3339), payload.Start.DateTime)
		assert.Equal(t, end.Format(time.RFC3339), payload.End.DateTime)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"new-1","summary":"Sync","htmlLink":"https://cal/new-1"}`))
	}))
	defer server.Close()

	client := newCalendarClient(t, server)
	created, err := client.CreateEvent(context.Background(), "u1", "Sync", start, end)
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, "https://cal/new-1", created.Link)
}

func TestCalendarCreateEventValidation(t *testing.T) {
	client := NewCalendarClient(newTestTokenSource(t))
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	_, err := client.CreateEvent(context.Background(), "u1", "  ", start, start.Add(time.Hour))
	var validationErr *coserrors.ValidationError
	require.True(t, stderrors.As(err, &validationErr))
	assert.Equal(t, "title", validationErr.Field)

	_, err = client.CreateEvent(context.Background(), "u1", "Sync", start, start)
	require.True(t, stderrors.As(err, &validationErr))
	assert.Equal(t, "time_range", validationErr.Field)
}
