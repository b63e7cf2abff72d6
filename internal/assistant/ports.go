package assistant

import (
	"context"
	"time"

	"github.com/ManimeghanathA/chief-of-staff-ai/internal/memory"
)

// FactStore loads and appends durable personalization facts. Load is
// best-effort from the engine's point of view; Append is batched and
// append-only.
type FactStore interface {
	Load(ctx context.Context, userID string) ([]memory.Fact, error)
	Append(ctx context.Context, userID string, facts []memory.Fact, source string) error
}

// CalendarReader lists upcoming events over a fixed forward window
// (seven days).
type CalendarReader interface {
	ListUpcoming(ctx context.Context, userID string, maxResults int) ([]CalendarEvent, error)
}

// CalendarWriter creates a calendar event.
type CalendarWriter interface {
	CreateEvent(ctx context.Context, userID, title string, start, end time.Time) (CreatedEvent, error)
}

// MailReader lists message metadata for a single day. daysAgo 0 is today,
// 1 is yesterday.
type MailReader interface {
	ListForDate(ctx context.Context, userID string, daysAgo, maxResults int) ([]EmailSummary, error)
}

// ChatCompletion is the LLM collaborator contract (see internal/llm).
type ChatCompletion interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
