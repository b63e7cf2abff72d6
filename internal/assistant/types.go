// Package assistant implements the request-routing core: intent
// classification, parameter extraction from free text, scheduling-conflict
// detection, and the workflow engine that sequences them per request.
package assistant

import (
	"time"

	"github.com/google/uuid"

	"github.com/ManimeghanathA/chief-of-staff-ai/internal/memory"
)

// Intent is the closed-set classification of a user message.
type Intent string

const (
	IntentCalendarReadToday    Intent = "calendar_read_today"
	IntentCalendarReadTomorrow Intent = "calendar_read_tomorrow"
	IntentCalendarCreate       Intent = "calendar_create"
	IntentMailReadToday        Intent = "mail_read_today"
	IntentMailReadYesterday    Intent = "mail_read_yesterday"
	IntentMailSummaryToday     Intent = "mail_summary_today"
	IntentNeedMoreInfo         Intent = "need_more_info"
	IntentUnsupported          Intent = "unsupported"
)

// TimeRange is a half-open interval [Start, End) with End > Start after
// validation.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// CalendarEvent is the read-only view of an existing event. Start/End are
// zero when the connector could not parse them.
type CalendarEvent struct {
	Title      string
	Start      time.Time
	End        time.Time
	ExternalID string
}

// CreatedEvent describes a successfully written calendar event.
type CreatedEvent struct {
	ID    string
	Title string
	Link  string
}

// EmailSummary is the metadata view of one mail message.
type EmailSummary struct {
	From    string
	Subject string
}

// RequestContext is the per-run state threaded through the workflow. It is
// created for one incoming message, owned by exactly one run, and discarded
// after the response is produced.
type RequestContext struct {
	ID      string
	UserID  string
	Message string

	Facts     []memory.Fact
	Intent    Intent
	TimeRange *TimeRange
	Title     string

	Response string
}

// NewRequestContext builds the state for one workflow run.
func NewRequestContext(userID, message string) *RequestContext {
	return &RequestContext{
		ID:      uuid.NewString(),
		UserID:  userID,
		Message: message,
	}
}
