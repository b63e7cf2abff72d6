package errors

import (
	stderrors "errors"
	"strings"
)

// UserMessage converts an error from the taxonomy into the actionable text
// shown to the user. Every classified failure maps to a distinct message; the
// generic fallback is the last resort for unclassified errors.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr.Message
	}

	var conflictErr *ConflictError
	if stderrors.As(err, &conflictErr) {
		if conflictErr.Duplicate {
			return "That meeting already exists at the same time, so I didn't create it again."
		}
		var b strings.Builder
		b.WriteString("That time overlaps with existing meetings:\n")
		for _, detail := range conflictErr.Details {
			b.WriteString("- ")
			b.WriteString(detail)
			b.WriteString("\n")
		}
		b.WriteString("Please pick a different time.")
		return b.String()
	}

	switch KindOf(err) {
	case KindTimeout:
		return "The request timed out. Please try again in a moment."
	case KindRateLimited:
		return "I'm being rate limited right now. Please try again shortly."
	case KindAuthExpired:
		return "Your Google access has expired. Please reconnect your Google account."
	default:
		return "Something went wrong while handling your request. Please try again."
	}
}
