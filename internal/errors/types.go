package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ServiceKind classifies collaborator failures into the categories the
// workflow maps to distinct user-facing messages.
type ServiceKind string

const (
	// KindTimeout - the collaborator did not answer within its budget.
	KindTimeout ServiceKind = "timeout"
	// KindRateLimited - the collaborator rejected the call due to quota.
	KindRateLimited ServiceKind = "rate_limited"
	// KindAuthExpired - stored credentials are no longer valid.
	KindAuthExpired ServiceKind = "auth_expired"
	// KindUnknown - anything that could not be classified; last resort.
	KindUnknown ServiceKind = "unknown"
)

// ValidationError signals that the user must supply more input. It is never
// retried automatically.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
	}
	return "validation: " + e.Message
}

// ConflictError signals an overlapping or duplicate calendar event. The user
// must choose a different time.
type ConflictError struct {
	Duplicate bool
	Details   []string
}

func (e *ConflictError) Error() string {
	if e.Duplicate {
		return "conflict: duplicate event"
	}
	return fmt.Sprintf("conflict: %d overlapping events", len(e.Details))
}

// ServiceError wraps a collaborator failure with its classification and the
// name of the service that produced it.
type ServiceError struct {
	Service string
	Kind    ServiceKind
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ExtractionError marks an unparsable LLM memory-extraction response. It is
// always swallowed by the caller after logging; the user never sees it.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("memory extraction: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewService wraps err as a ServiceError with an explicit kind.
func NewService(service string, kind ServiceKind, err error) *ServiceError {
	return &ServiceError{Service: service, Kind: kind, Err: err}
}

// Classify wraps a collaborator error as a ServiceError, inferring its kind
// from the error chain and message. Already-classified errors pass through.
func Classify(service string, err error) *ServiceError {
	if err == nil {
		return nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	return &ServiceError{Service: service, Kind: KindOf(err), Err: err}
}

// KindOf infers a ServiceKind from an unclassified error.
func KindOf(err error) ServiceKind {
	if err == nil {
		return KindUnknown
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	lower := strings.ToLower(err.Error())
	switch {
	case containsAny(lower, "timeout", "deadline exceeded"):
		return KindTimeout
	case containsAny(lower, "429", "rate limit", "resource_exhausted", "quota"):
		return KindRateLimited
	case containsAny(lower, "401", "unauthorized", "invalid_grant", "token expired", "access expired"):
		return KindAuthExpired
	default:
		return KindUnknown
	}
}

// IsRateLimited reports whether err is (or wraps) a rate-limit condition.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}

// IsTimeout reports whether err is (or wraps) a timeout condition.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

func containsAny(s string, patterns ...string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
