package assistant

import (
	"regexp"
	"strings"
	"unicode"
)

// minTitleLength rejects degenerate candidates like "a" or stray punctuation.
const minTitleLength = 2

var (
	// "titled \"Road map\"", "called 'Sync'", "named: \"1:1\""
	markerQuotedPattern = regexp.MustCompile(`(?i)\b(?:titled|called|named)\s*:?\s*(?:"([^"]+)"|'([^']+)')`)
	// "title: Quarterly review" / "subject: Budget" up to end of line
	markerLinePattern = regexp.MustCompile(`(?im)\b(?:title|subject)\s*:\s*([^\n]+)`)
	// any quoted span
	quotedPattern = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	// prefix heuristic anchor: the start of a time phrase
	timePhrasePattern = regexp.MustCompile(`(?i)\bfrom\s+\d`)
)

// leadingVerbs are scheduling verbs stripped from the front of a heuristic
// candidate, longest phrases first so "set up" wins over "set".
var leadingVerbs = []string{
	"schedule", "create", "book", "set up", "add", "a meeting", "meeting",
}

// trailingConnectors are dangling words stripped from the end of a heuristic
// candidate ("board review for", "board review at", ...).
var trailingConnectors = []string{"for", "on", "at", "with", "to"}

// ExtractTitle derives a meeting title from free text. Rules are tried in
// order; a candidate shorter than two characters after punctuation trimming
// falls through to the next rule. Returns false when nothing matches.
func ExtractTitle(text string) (string, bool) {
	if title, ok := titleFromMarkerQuote(text); ok {
		return title, true
	}
	if title, ok := titleFromMarkerLine(text); ok {
		return title, true
	}
	if title, ok := titleFromAnyQuote(text); ok {
		return title, true
	}
	return titleFromPrefixHeuristic(text)
}

func titleFromMarkerQuote(text string) (string, bool) {
	match := markerQuotedPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return acceptCandidate(firstNonEmpty(match[1], match[2]))
}

func titleFromMarkerLine(text string) (string, bool) {
	match := markerLinePattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return acceptCandidate(match[1])
}

func titleFromAnyQuote(text string) (string, bool) {
	match := quotedPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	return acceptCandidate(firstNonEmpty(match[1], match[2]))
}

// titleFromPrefixHeuristic takes everything before "from <digit>" and strips
// scheduling verbs and dangling connectors: "schedule budget review from 9am
// to 10am" yields "budget review".
func titleFromPrefixHeuristic(text string) (string, bool) {
	loc := timePhrasePattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	candidate := strings.TrimSpace(text[:loc[0]])

	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(candidate)
		for _, verb := range leadingVerbs {
			if strings.HasPrefix(lower, verb) {
				rest := candidate[len(verb):]
				if rest != "" && !unicode.IsSpace(rune(rest[0])) && !isPunct(rune(rest[0])) {
					continue // "addendum" must not lose "add"
				}
				candidate = strings.TrimSpace(rest)
				changed = true
				break
			}
		}
	}

	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(candidate)
		for _, connector := range trailingConnectors {
			if strings.HasSuffix(lower, " "+connector) || lower == connector {
				candidate = strings.TrimSpace(candidate[:len(candidate)-len(connector)])
				changed = true
				break
			}
		}
	}

	return acceptCandidate(candidate)
}

// acceptCandidate trims whitespace and surrounding punctuation, then applies
// the minimum-length rule.
func acceptCandidate(candidate string) (string, bool) {
	trimmed := strings.TrimFunc(candidate, func(r rune) bool {
		return unicode.IsSpace(r) || isPunct(r)
	})
	if len([]rune(trimmed)) < minTitleLength {
		return "", false
	}
	return trimmed, true
}

func isPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':', '-':
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
