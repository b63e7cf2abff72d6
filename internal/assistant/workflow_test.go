package assistant

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/llm"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/memory"
)

var engineNow = time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC)

type fakeFactStore struct {
	mu       sync.Mutex
	facts    []memory.Fact
	loadErr  error
	appendEr error
	appended []memory.Fact
}

func (f *fakeFactStore) Load(_ context.Context, _ string) ([]memory.Fact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.facts, nil
}

func (f *fakeFactStore) Append(_ context.Context, _ string, facts []memory.Fact, source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendEr != nil {
		return f.appendEr
	}
	for _, fact := range facts {
		fact.Source = source
		f.appended = append(f.appended, fact)
	}
	return nil
}

type fakeCalendar struct {
	events      []CalendarEvent
	listErr     error
	created     []CreatedEvent
	createErr   error
	listCalls   int
	createCalls int
}

func (f *fakeCalendar) ListUpcoming(_ context.Context, _ string, _ int) ([]CalendarEvent, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, _ string, title string, start, end time.Time) (CreatedEvent, error) {
	f.createCalls++
	if f.createErr != nil {
		return CreatedEvent{}, f.createErr
	}
	created := CreatedEvent{ID: "evt-1", Title: title, Link: "https://calendar.example/evt-1"}
	f.created = append(f.created, created)
	return created, nil
}

type fakeMail struct {
	emails  []EmailSummary
	err     error
	daysAgo []int
	max     []int
}

func (f *fakeMail) ListForDate(_ context.Context, _ string, daysAgo, maxResults int) ([]EmailSummary, error) {
	f.daysAgo = append(f.daysAgo, daysAgo)
	f.max = append(f.max, maxResults)
	if f.err != nil {
		return nil, f.err
	}
	return f.emails, nil
}

type engineFixture struct {
	facts    *fakeFactStore
	calendar *fakeCalendar
	mail     *fakeMail
	chat     *llm.MockClient
	engine   *Engine
}

func newFixture() *engineFixture {
	fx := &engineFixture{
		facts:    &fakeFactStore{},
		calendar: &fakeCalendar{},
		mail:     &fakeMail{},
		chat:     &llm.MockClient{Responses: []string{"[]"}},
	}
	fx.engine = NewEngine(fx.facts, fx.calendar, fx.calendar, fx.mail, fx.chat,
		WithClock(func() time.Time { return engineNow }),
		WithLogger(logging.Nop()),
	)
	return fx
}

func TestRunCalendarReadToday(t *testing.T) {
	fx := newFixture()
	fx.calendar.events = []CalendarEvent{
		{Title: "Standup", Start: engineNow.Add(time.Hour), End: engineNow.Add(2 * time.Hour)},
	}

	rc := fx.engine.Run(context.Background(), "u1", "what meetings do I have today")
	if rc.Intent != IntentCalendarReadToday {
		t.Fatalf("intent: %s", rc.Intent)
	}
	if !strings.Contains(rc.Response, "Here are your meetings today:") {
		t.Fatalf("response: %q", rc.Response)
	}
	if !strings.Contains(rc.Response, "Standup") {
		t.Fatalf("response: %q", rc.Response)
	}
	if fx.chat.CallCount() != 0 {
		t.Fatalf("read path must not call the LLM")
	}
}

func TestRunCalendarReadTodayEmpty(t *testing.T) {
	fx := newFixture()
	rc := fx.engine.Run(context.Background(), "u1", "meetings today?")
	if rc.Response != "You have no meetings scheduled for today." {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunCalendarReadTomorrow(t *testing.T) {
	fx := newFixture()
	tomorrow := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	fx.calendar.events = []CalendarEvent{
		{Title: "Today thing", Start: engineNow.Add(time.Hour), End: engineNow.Add(2 * time.Hour)},
		{Title: "Tomorrow thing", Start: tomorrow, End: tomorrow.Add(time.Hour)},
	}

	rc := fx.engine.Run(context.Background(), "u1", "what meetings do I have tomorrow")
	if rc.Intent != IntentCalendarReadTomorrow {
		t.Fatalf("intent: %s", rc.Intent)
	}
	if strings.Contains(rc.Response, "Today thing") {
		t.Fatalf("tomorrow listing leaked today's event: %q", rc.Response)
	}
	if !strings.Contains(rc.Response, "Tomorrow thing") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunCalendarCreateSuccess(t *testing.T) {
	fx := newFixture()

	rc := fx.engine.Run(context.Background(), "u1", `schedule a meeting titled "Sync" tomorrow from 9am to 10am`)
	if rc.Intent != IntentCalendarCreate {
		t.Fatalf("intent: %s", rc.Intent)
	}
	if rc.Title != "Sync" {
		t.Fatalf("title: %q", rc.Title)
	}
	if rc.TimeRange == nil {
		t.Fatalf("expected extracted time range")
	}
	wantStart := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	if !rc.TimeRange.Start.Equal(wantStart) {
		t.Fatalf("start: %v", rc.TimeRange.Start)
	}
	if fx.calendar.createCalls != 1 {
		t.Fatalf("create calls: %d", fx.calendar.createCalls)
	}
	if !strings.Contains(rc.Response, "created successfully") {
		t.Fatalf("response: %q", rc.Response)
	}
	if !strings.Contains(rc.Response, "https://calendar.example/evt-1") {
		t.Fatalf("response should carry the event link: %q", rc.Response)
	}
}

func TestRunCalendarCreateDuplicateSkipsWrite(t *testing.T) {
	fx := newFixture()
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	fx.calendar.events = []CalendarEvent{
		{Title: "Sync", Start: start, End: start.Add(time.Hour), ExternalID: "existing"},
	}

	rc := fx.engine.Run(context.Background(), "u1", `schedule a meeting titled "Sync" tomorrow from 9am to 10am`)
	if fx.calendar.createCalls != 0 {
		t.Fatalf("duplicate must not reach the write collaborator, got %d calls", fx.calendar.createCalls)
	}
	if !strings.Contains(rc.Response, "already exists") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunCalendarCreateConflictListsEvents(t *testing.T) {
	fx := newFixture()
	start := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	fx.calendar.events = []CalendarEvent{
		{Title: "Deep work", Start: start, End: start.Add(time.Hour)},
	}

	rc := fx.engine.Run(context.Background(), "u1", `schedule a meeting titled "Sync" tomorrow from 9am to 10am`)
	if fx.calendar.createCalls != 0 {
		t.Fatalf("conflict must not reach the write collaborator")
	}
	if !strings.Contains(rc.Response, "overlaps") || !strings.Contains(rc.Response, "Deep work") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunCalendarCreateMissingTimeShortCircuits(t *testing.T) {
	fx := newFixture()

	rc := fx.engine.Run(context.Background(), "u1", "schedule a meeting with the board")
	if rc.Intent != IntentCalendarCreate {
		t.Fatalf("intent: %s", rc.Intent)
	}
	if fx.calendar.listCalls != 0 || fx.calendar.createCalls != 0 {
		t.Fatalf("short-circuit must not call the calendar (list=%d create=%d)", fx.calendar.listCalls, fx.calendar.createCalls)
	}
	if !strings.Contains(rc.Response, "start time and end time") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunCalendarCreateMissingTitleShortCircuits(t *testing.T) {
	fx := newFixture()

	rc := fx.engine.Run(context.Background(), "u1", "schedule a meeting from 9am to 10am")
	if fx.calendar.createCalls != 0 {
		t.Fatalf("short-circuit must not write")
	}
	if !strings.Contains(rc.Response, "title") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunMailReadYesterday(t *testing.T) {
	fx := newFixture()
	fx.mail.emails = []EmailSummary{
		{From: "alice@example.com", Subject: "Q2 numbers"},
	}

	rc := fx.engine.Run(context.Background(), "u1", "what mail did I get yesterday")
	if rc.Intent != IntentMailReadYesterday {
		t.Fatalf("intent: %s", rc.Intent)
	}
	if len(fx.mail.daysAgo) != 1 || fx.mail.daysAgo[0] != 1 {
		t.Fatalf("daysAgo calls: %v", fx.mail.daysAgo)
	}
	if !strings.Contains(rc.Response, "Q2 numbers (from alice@example.com)") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunMailSummaryUsesLLM(t *testing.T) {
	fx := newFixture()
	fx.mail.emails = []EmailSummary{
		{From: "boss@example.com", Subject: "Deadline moved"},
	}
	fx.chat.Responses = []string{"One important email: the deadline moved."}

	rc := fx.engine.Run(context.Background(), "u1", "summarize my important emails today")
	if rc.Intent != IntentMailSummaryToday {
		t.Fatalf("intent: %s", rc.Intent)
	}
	if rc.Response != "One important email: the deadline moved." {
		t.Fatalf("response: %q", rc.Response)
	}
	if len(fx.mail.max) != 1 || fx.mail.max[0] != mailSummaryMaxResults {
		t.Fatalf("max results: %v", fx.mail.max)
	}
	if fx.chat.CallCount() != 1 {
		t.Fatalf("expected one LLM call, got %d", fx.chat.CallCount())
	}
	if !strings.Contains(fx.chat.Prompts[0], "Deadline moved") {
		t.Fatalf("prompt should carry the email metadata: %q", fx.chat.Prompts[0])
	}
}

func TestRunFallbackChatExtractsMemory(t *testing.T) {
	fx := newFixture()
	fx.facts.facts = []memory.Fact{{Key: "likes", Value: "tea"}}
	fx.chat.Responses = []string{
		"Nice to meet you! I'll remember that.",
		`[{"key":"hometown","value":"Pune"}]`,
	}

	rc := fx.engine.Run(context.Background(), "u1", "I grew up in Pune, by the way")
	if rc.Intent != IntentUnsupported {
		t.Fatalf("intent: %s", rc.Intent)
	}
	if rc.Response != "Nice to meet you! I'll remember that." {
		t.Fatalf("response: %q", rc.Response)
	}
	if !strings.Contains(fx.chat.Prompts[0], "likes: tea") {
		t.Fatalf("chat prompt should include loaded facts: %q", fx.chat.Prompts[0])
	}
	if len(fx.facts.appended) != 1 || fx.facts.appended[0].Key != "hometown" {
		t.Fatalf("appended facts: %+v", fx.facts.appended)
	}
	if fx.facts.appended[0].Source != memory.SourceChat {
		t.Fatalf("source: %q", fx.facts.appended[0].Source)
	}
}

func TestRunActionPathsSkipMemoryExtraction(t *testing.T) {
	fx := newFixture()
	fx.engine.Run(context.Background(), "u1", "what meetings do I have today")
	if fx.chat.CallCount() != 0 {
		t.Fatalf("action paths must not trigger extraction, got %d LLM calls", fx.chat.CallCount())
	}
}

func TestRunFactLoadFailureIsBestEffort(t *testing.T) {
	fx := newFixture()
	fx.facts.loadErr = stderrors.New("store down")
	fx.calendar.events = []CalendarEvent{
		{Title: "Standup", Start: engineNow.Add(time.Hour), End: engineNow.Add(2 * time.Hour)},
	}

	rc := fx.engine.Run(context.Background(), "u1", "meetings today")
	if !strings.Contains(rc.Response, "Standup") {
		t.Fatalf("fact-store failure must not block the request: %q", rc.Response)
	}
}

func TestRunExtractionFailureIsSilent(t *testing.T) {
	fx := newFixture()
	fx.chat.Responses = []string{"Hi!", "complete garbage { not json"}

	rc := fx.engine.Run(context.Background(), "u1", "hello there")
	if rc.Response != "Hi!" {
		t.Fatalf("extraction failure leaked into the response: %q", rc.Response)
	}
	if len(fx.facts.appended) != 0 {
		t.Fatalf("nothing should be appended: %+v", fx.facts.appended)
	}
}

func TestRunSchedulingFollowUpHint(t *testing.T) {
	fx := newFixture()

	rc := fx.engine.Run(context.Background(), "u1", `it's titled "Sync" and runs from 9am to 10am`)
	if !strings.Contains(rc.Response, "one message") {
		t.Fatalf("expected resend hint, got %q", rc.Response)
	}
	// The hint path skips the conversational LLM call; only the memory
	// extraction call remains.
	if fx.chat.CallCount() != 1 {
		t.Fatalf("LLM calls: %d", fx.chat.CallCount())
	}
	if !strings.Contains(fx.chat.Prompts[0], "memory extraction engine") {
		t.Fatalf("unexpected prompt: %q", fx.chat.Prompts[0])
	}
}

func TestRunCollaboratorTimeoutMapsToRetryableMessage(t *testing.T) {
	fx := newFixture()
	fx.calendar.listErr = context.DeadlineExceeded

	rc := fx.engine.Run(context.Background(), "u1", "meetings today")
	if !strings.Contains(rc.Response, "timed out") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunRateLimitedLLMMapsToMessage(t *testing.T) {
	fx := newFixture()
	fx.chat.Err = coserrors.NewService("llm", coserrors.KindRateLimited, stderrors.New("429"))

	rc := fx.engine.Run(context.Background(), "u1", "hello there")
	if !strings.Contains(rc.Response, "rate limited") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunAuthExpiredMapsToReconnectMessage(t *testing.T) {
	fx := newFixture()
	fx.calendar.listErr = coserrors.NewService("calendar", coserrors.KindAuthExpired, stderrors.New("invalid_grant"))

	rc := fx.engine.Run(context.Background(), "u1", "meetings today")
	if !strings.Contains(rc.Response, "reconnect your Google account") {
		t.Fatalf("response: %q", rc.Response)
	}
}

func TestRunEmptyMessage(t *testing.T) {
	fx := newFixture()
	rc := fx.engine.Run(context.Background(), "u1", "   ")
	if rc.Response == "" {
		t.Fatalf("terminal state must carry a non-empty response")
	}
	if fx.chat.CallCount() != 0 {
		t.Fatalf("empty message must not reach collaborators")
	}
}

func TestRunResponseNeverEmpty(t *testing.T) {
	fx := newFixture()
	messages := []string{
		"hello there",
		"what meetings do I have today",
		"schedule a meeting",
		"email",
		`schedule a meeting titled "Sync" from 9am to 10am`,
	}
	for _, message := range messages {
		rc := fx.engine.Run(context.Background(), "u1", message)
		if strings.TrimSpace(rc.Response) == "" {
			t.Fatalf("%q: empty response", message)
		}
	}
}
