package assistant

import (
	"context"
	"strings"
	"time"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/logging"
	"github.com/ManimeghanathA/chief-of-staff-ai/internal/memory"
)

// Node identifiers for the workflow state machine. One run visits
// load_facts, classify_intent, exactly one action node, and (on the chat
// path only) extract_memory before terminating.
const (
	nodeLoadFacts      = "load_facts"
	nodeClassifyIntent = "classify_intent"
	nodeExtractMemory  = "extract_memory"
)

// collaboratorTimeout bounds every calendar/mail collaborator call so a
// stuck connector surfaces as a retryable timeout instead of hanging the run.
const collaboratorTimeout = 15 * time.Second

// Clock supplies the current time; tests pin it.
type Clock func() time.Time

// Engine sequences one workflow run per incoming message. Runs are strictly
// sequential internally and own their RequestContext exclusively; the only
// shared state is behind the collaborator interfaces.
type Engine struct {
	facts     FactStore
	calendar  CalendarReader
	writer    CalendarWriter
	mail      MailReader
	chat      ChatCompletion
	extractor *MemoryExtractor
	logger    logging.Logger
	now       Clock
}

// EngineOption customizes Engine construction.
type EngineOption func(*Engine)

// WithClock pins the engine's notion of now.
func WithClock(clock Clock) EngineOption {
	return func(e *Engine) { e.now = clock }
}

// WithLogger replaces the engine's logger.
func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) { e.logger = logging.OrNop(logger) }
}

// NewEngine wires the workflow over its collaborators.
func NewEngine(facts FactStore, calendar CalendarReader, writer CalendarWriter, mail MailReader, chat ChatCompletion, opts ...EngineOption) *Engine {
	e := &Engine{
		facts:    facts,
		calendar: calendar,
		writer:   writer,
		mail:     mail,
		chat:     chat,
		logger:   logging.NewComponentLogger("workflow"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.extractor = NewMemoryExtractor(chat, e.logger)
	return e
}

// Run processes one message end to end and always terminates with a
// non-empty response on the returned context. Collaborator failures are
// caught at node boundaries and converted to user-facing text; they never
// escape to the caller.
func (e *Engine) Run(ctx context.Context, userID, message string) *RequestContext {
	rc := NewRequestContext(userID, message)

	if strings.TrimSpace(message) == "" {
		rc.Intent = IntentNeedMoreInfo
		rc.Response = "Please tell me what you'd like me to do."
		return rc
	}

	e.loadFacts(ctx, rc)
	e.classifyIntent(rc)

	e.logger.Info("[req:%s] intent=%s user=%s", rc.ID, rc.Intent, rc.UserID)

	response, err := e.dispatch(ctx, rc)
	if err != nil {
		e.logger.Warn("[req:%s] %s handler failed: %v", rc.ID, rc.Intent, err)
		response = coserrors.UserMessage(err)
	}
	rc.Response = response

	if e.isChatPath(rc.Intent) {
		e.extractMemory(ctx, rc)
	}

	return rc
}

// loadFacts is best-effort: a failing fact store degrades personalization
// but never blocks the request.
func (e *Engine) loadFacts(ctx context.Context, rc *RequestContext) {
	facts, err := e.facts.Load(ctx, rc.UserID)
	if err != nil {
		e.logger.Warn("[req:%s] %s: proceeding without facts: %v", rc.ID, nodeLoadFacts, err)
		return
	}
	rc.Facts = facts
}

func (e *Engine) classifyIntent(rc *RequestContext) {
	if timeRange, ok := ExtractTimeRange(rc.Message, e.now()); ok {
		rc.TimeRange = &timeRange
	}
	if title, ok := ExtractTitle(rc.Message); ok {
		rc.Title = title
	}
	rc.Intent = ClassifyIntent(rc.Message, rc.TimeRange)

	e.logger.Debug("[req:%s] %s: range=%v title=%q", rc.ID, nodeClassifyIntent, rc.TimeRange != nil, rc.Title)
}

// dispatch routes the classified intent to its action handler. The switch is
// total over the Intent tag set; need_more_info and unsupported both land on
// the conversational fallback.
func (e *Engine) dispatch(ctx context.Context, rc *RequestContext) (string, error) {
	switch rc.Intent {
	case IntentCalendarReadToday:
		return e.handleCalendarReadToday(ctx, rc)
	case IntentCalendarReadTomorrow:
		return e.handleCalendarReadTomorrow(ctx, rc)
	case IntentCalendarCreate:
		return e.handleCalendarCreate(ctx, rc)
	case IntentMailReadToday:
		return e.handleMailRead(ctx, rc, 0)
	case IntentMailReadYesterday:
		return e.handleMailRead(ctx, rc, 1)
	case IntentMailSummaryToday:
		return e.handleMailSummary(ctx, rc)
	case IntentNeedMoreInfo, IntentUnsupported:
		return e.handleFallbackChat(ctx, rc)
	default:
		return e.handleFallbackChat(ctx, rc)
	}
}

func (e *Engine) isChatPath(intent Intent) bool {
	return intent == IntentNeedMoreInfo || intent == IntentUnsupported
}

// extractMemory runs after the conversational fallback only. Failures are
// logged for operators and discarded; the user-facing response is already
// decided by this point.
func (e *Engine) extractMemory(ctx context.Context, rc *RequestContext) {
	facts, err := e.extractor.Extract(ctx, rc.Message)
	if err != nil {
		e.logger.Warn("[req:%s] %s skipped: %v", rc.ID, nodeExtractMemory, err)
		return
	}
	if len(facts) == 0 {
		return
	}

	if err := e.facts.Append(ctx, rc.UserID, facts, memory.SourceChat); err != nil {
		e.logger.Warn("[req:%s] %s: persist failed: %v", rc.ID, nodeExtractMemory, err)
		return
	}
	e.logger.Info("[req:%s] %s: stored %d facts", rc.ID, nodeExtractMemory, len(facts))
}

func (e *Engine) collaboratorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, collaboratorTimeout)
}
