// Package fault defines the recoverable error taxonomy shared by the
// catalog, lending and roster services. Every rejection carries a
// machine-readable kind plus a human-readable message so callers can
// branch without string matching.
package fault

import (
	"errors"
	"strings"
)

// Kind identifies a rejection category.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindUnavailable     Kind = "unavailable"
	KindLimitReached    Kind = "limit_reached"
	KindNotAuthorized   Kind = "not_authorized"
	KindAlreadyReturned Kind = "already_returned"
	KindValidation      Kind = "validation"
	KindDuplicateEmail  Kind = "duplicate_email"
	KindUnauthenticated Kind = "unauthenticated"
	KindRateLimited     Kind = "rate_limited"
)

// Error is a rejection surfaced to the caller. Validation errors carry
// every problem found, not just the first.
type Error struct {
	Kind     Kind
	Message  string
	Problems []string
}

func (e *Error) Error() string { return e.Message }

// New creates an error usable as a package-level sentinel for errors.Is.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation collects one or more input problems into a single error.
func Validation(problems []string) *Error {
	return &Error{
		Kind:     KindValidation,
		Message:  strings.Join(problems, "; "),
		Problems: problems,
	}
}

// KindOf extracts the Kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
