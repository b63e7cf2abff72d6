package assistant

import "strings"

// Keyword groups for the classifier. Matching is a case-insensitive
// substring test on the whole message; precision over recall, with partial
// requests degrading to the conversational fallback instead of guessing.
var (
	createVerbs  = []string{"create", "schedule", "book", "set up", "add"}
	titleMarkers = []string{"titled", "called", "named", "title"}
)

// ClassifyIntent maps a message to one intent. timeRange carries the result
// of ExtractTimeRange (nil when no range phrase was found); an extractable
// range plus a title marker counts as a create request even without an
// explicit scheduling verb.
func ClassifyIntent(text string, timeRange *TimeRange) Intent {
	lower := strings.ToLower(text)

	if containsAny(lower, "meeting", "calendar") {
		switch {
		case containsAny(lower, createVerbs...),
			timeRange != nil && containsAny(lower, titleMarkers...):
			return IntentCalendarCreate
		case strings.Contains(lower, "today"):
			return IntentCalendarReadToday
		case strings.Contains(lower, "tomorrow"):
			return IntentCalendarReadTomorrow
		default:
			return IntentNeedMoreInfo
		}
	}

	if containsAny(lower, "mail", "email") {
		switch {
		case strings.Contains(lower, "today") && containsAny(lower, "important", "summary"):
			return IntentMailSummaryToday
		case strings.Contains(lower, "today"):
			return IntentMailReadToday
		case strings.Contains(lower, "yesterday"):
			return IntentMailReadYesterday
		default:
			return IntentNeedMoreInfo
		}
	}

	return IntentUnsupported
}

func containsAny(s string, patterns ...string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
