package assistant

import (
	"strings"
	"time"
)

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Zero-length and back-to-back intervals never
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConflictReport is the result of checking a candidate slot against existing
// events.
type ConflictReport struct {
	// Duplicate is set when an overlapping event also carries the same title
	// (case-insensitive, trimmed).
	Duplicate bool
	// Conflicts lists every existing event that overlaps the candidate.
	Conflicts []CalendarEvent
}

// FindConflicts checks the candidate range against existing events. Events
// whose start or end could not be parsed are skipped rather than treated as
// conflicts; an unreadable event should not block scheduling.
func FindConflicts(candidate TimeRange, candidateTitle string, existing []CalendarEvent) ConflictReport {
	report := ConflictReport{}
	normalizedTitle := normalizeTitle(candidateTitle)

	for _, event := range existing {
		if event.Start.IsZero() || event.End.IsZero() {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, event.Start, event.End) {
			continue
		}
		report.Conflicts = append(report.Conflicts, event)
		if normalizedTitle != "" && normalizeTitle(event.Title) == normalizedTitle {
			report.Duplicate = true
		}
	}

	return report
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
