package assistant

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeRangePattern matches "from <hour> [am|pm]? to <hour> [am|pm]?" with
// hours 1-12. Minutes are not supported; ranges snap to whole hours.
var timeRangePattern = regexp.MustCompile(`(?i)\bfrom\s+(1[0-2]|[1-9])\s*(am|pm)?\s*to\s*(1[0-2]|[1-9])\s*(am|pm)?`)

// ExtractTimeRange parses a simple hour range out of free text.
//
// The base date is now in UTC with minutes and seconds zeroed. The literal
// substring "tomorrow" anywhere in the message shifts both ends one day
// forward. If the computed end does not land strictly after the start, the
// end gains one day so ranges like "11pm to 12am" cross midnight correctly.
//
// Returns false when no range phrase is present; that signals "no explicit
// time given", not an error.
func ExtractTimeRange(text string, now time.Time) (TimeRange, bool) {
	match := timeRangePattern.FindStringSubmatch(text)
	if match == nil {
		return TimeRange{}, false
	}

	startHour := normalizeHour(match[1], match[2])
	endHour := normalizeHour(match[3], match[4])

	base := now.UTC()
	start := time.Date(base.Year(), base.Month(), base.Day(), startHour, 0, 0, 0, time.UTC)
	end := time.Date(base.Year(), base.Month(), base.Day(), endHour, 0, 0, 0, time.UTC)

	if strings.Contains(strings.ToLower(text), "tomorrow") {
		start = start.AddDate(0, 0, 1)
		end = end.AddDate(0, 0, 1)
	}

	// Midnight crossing: "from 11pm to 12am" ends the next day.
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	return TimeRange{Start: start, End: end}, true
}

// normalizeHour maps a 1-12 clock hour plus optional am/pm marker onto 0-23.
// Hour 12 wraps to 0 first, so 12am is midnight and 12pm noon.
func normalizeHour(digits, marker string) int {
	hour, _ := strconv.Atoi(digits)
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(marker, "pm") && hour < 12 {
		hour += 12
	}
	return hour
}
