package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/memory"
)

const (
	// displayMaxEvents bounds calendar listings shown to the user.
	displayMaxEvents = 5
	// conflictMaxEvents bounds the pre-write read on the create path. Higher
	// than the display bound so a busy week cannot truncate away a conflict.
	conflictMaxEvents = 50

	mailMaxResults        = 10
	mailSummaryMaxResults = 15
)

func (e *Engine) handleCalendarReadToday(ctx context.Context, rc *RequestContext) (string, error) {
	callCtx, cancel := e.collaboratorContext(ctx)
	defer cancel()

	events, err := e.calendar.ListUpcoming(callCtx, rc.UserID, displayMaxEvents)
	if err != nil {
		return "", coserrors.Classify("calendar", err)
	}

	if len(events) == 0 {
		return "You have no meetings scheduled for today.", nil
	}
	return "Here are your meetings today:\n" + formatEvents(events), nil
}

func (e *Engine) handleCalendarReadTomorrow(ctx context.Context, rc *RequestContext) (string, error) {
	callCtx, cancel := e.collaboratorContext(ctx)
	defer cancel()

	events, err := e.calendar.ListUpcoming(callCtx, rc.UserID, displayMaxEvents)
	if err != nil {
		return "", coserrors.Classify("calendar", err)
	}

	tomorrow := e.now().UTC().AddDate(0, 0, 1)
	var matched []CalendarEvent
	for _, event := range events {
		if event.Start.IsZero() {
			continue
		}
		if sameUTCDate(event.Start, tomorrow) {
			matched = append(matched, event)
		}
	}

	if len(matched) == 0 {
		return "You have no meetings scheduled for tomorrow.", nil
	}
	return "Here are your meetings tomorrow:\n" + formatEvents(matched), nil
}

func (e *Engine) handleCalendarCreate(ctx context.Context, rc *RequestContext) (string, error) {
	if rc.TimeRange == nil {
		return "", &coserrors.ValidationError{
			Field:   "time_range",
			Message: "I need the start time and end time to create the meeting. Please tell me the time.",
		}
	}
	if rc.Title == "" {
		return "", &coserrors.ValidationError{
			Field:   "title",
			Message: "I need a title for the meeting. Please tell me what it should be called.",
		}
	}

	listCtx, cancel := e.collaboratorContext(ctx)
	existing, err := e.calendar.ListUpcoming(listCtx, rc.UserID, conflictMaxEvents)
	cancel()
	if err != nil {
		return "", coserrors.Classify("calendar", err)
	}

	report := FindConflicts(*rc.TimeRange, rc.Title, existing)
	if report.Duplicate {
		return "", &coserrors.ConflictError{Duplicate: true}
	}
	if len(report.Conflicts) > 0 {
		details := make([]string, 0, len(report.Conflicts))
		for _, event := range report.Conflicts {
			details = append(details, eventLine(event))
		}
		return "", &coserrors.ConflictError{Details: details}
	}

	if !rc.TimeRange.End.After(rc.TimeRange.Start) {
		return "", &coserrors.ValidationError{
			Field:   "time_range",
			Message: "The end time must be after the start time. Please tell me the time again.",
		}
	}

	writeCtx, cancel := e.collaboratorContext(ctx)
	defer cancel()
	created, err := e.writer.CreateEvent(writeCtx, rc.UserID, rc.Title, rc.TimeRange.Start, rc.TimeRange.End)
	if err != nil {
		return "", coserrors.Classify("calendar", err)
	}

	response := fmt.Sprintf("Your meeting has been created successfully.\n%s\n%s - %s",
		created.Title,
		rc.TimeRange.Start.Format(time.RFC3339),
		rc.TimeRange.End.Format(time.RFC3339))
	if created.Link != "" {
		response += "\n" + created.Link
	}
	return response, nil
}

func (e *Engine) handleMailRead(ctx context.Context, rc *RequestContext, daysAgo int) (string, error) {
	callCtx, cancel := e.collaboratorContext(ctx)
	defer cancel()

	emails, err := e.mail.ListForDate(callCtx, rc.UserID, daysAgo, mailMaxResults)
	if err != nil {
		return "", coserrors.Classify("gmail", err)
	}

	day := "today"
	if daysAgo == 1 {
		day = "yesterday"
	}
	if len(emails) == 0 {
		return fmt.Sprintf("You didn't receive any emails %s.", day), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the emails you received %s:", day)
	for _, email := range emails {
		fmt.Fprintf(&b, "\n- %s (from %s)", email.Subject, email.From)
	}
	return b.String(), nil
}

func (e *Engine) handleMailSummary(ctx context.Context, rc *RequestContext) (string, error) {
	callCtx, cancel := e.collaboratorContext(ctx)
	emails, err := e.mail.ListForDate(callCtx, rc.UserID, 0, mailSummaryMaxResults)
	cancel()
	if err != nil {
		return "", coserrors.Classify("gmail", err)
	}

	if len(emails) == 0 {
		return "You didn't receive any emails today.", nil
	}

	var lines []string
	for _, email := range emails {
		lines = append(lines, fmt.Sprintf("From: %s | Subject: %s", email.From, email.Subject))
	}
	prompt := "You are a Chief-of-Staff AI.\n" +
		"From the emails below, identify which are important " +
		"(work, deadlines, meetings, actions) and summarize them.\n\n" +
		strings.Join(lines, "\n")

	summary, err := e.chat.Complete(ctx, prompt)
	if err != nil {
		return "", coserrors.Classify("llm", err)
	}
	return summary, nil
}

// handleFallbackChat serves need_more_info and unsupported requests. When the
// message already carries a time range and a title marker it is almost
// certainly a scheduling continuation split across turns; the engine does not
// carry slot state between turns, so it asks for a single complete message
// instead of guessing.
func (e *Engine) handleFallbackChat(ctx context.Context, rc *RequestContext) (string, error) {
	if rc.TimeRange != nil && containsAny(strings.ToLower(rc.Message), titleMarkers...) {
		return "It looks like you're trying to schedule a meeting. " +
			"Please resend everything in one message, for example: " +
			`"schedule a meeting titled 'Sync' tomorrow from 9am to 10am".`, nil
	}

	prompt := "You are a Chief-of-Staff AI assistant.\n" +
		"If you cannot perform an action, explain politely.\n\n" +
		"User memory: " + formatFacts(rc.Facts) + "\n\n" +
		"User message: " + rc.Message

	response, err := e.chat.Complete(ctx, prompt)
	if err != nil {
		return "", coserrors.Classify("llm", err)
	}
	if strings.TrimSpace(response) == "" {
		return "I'm not sure how to help with that yet.", nil
	}
	return response, nil
}

func sameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func formatEvents(events []CalendarEvent) string {
	lines := make([]string, 0, len(events))
	for _, event := range events {
		lines = append(lines, "- "+eventLine(event))
	}
	return strings.Join(lines, "\n")
}

func eventLine(event CalendarEvent) string {
	title := event.Title
	if title == "" {
		title = "Untitled meeting"
	}
	start := "unknown time"
	if !event.Start.IsZero() {
		start = event.Start.Format(time.RFC3339)
	}
	return fmt.Sprintf("%s at %s", title, start)
}

func formatFacts(facts []memory.Fact) string {
	if len(facts) == 0 {
		return "(none)"
	}
	lines := make([]string, 0, len(facts))
	for _, fact := range facts {
		lines = append(lines, fmt.Sprintf("%s: %s", fact.Key, fact.Value))
	}
	return strings.Join(lines, "; ")
}
