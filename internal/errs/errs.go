// Package errs defines the closed error taxonomy surfaced by the service
// layer. Route handlers map each kind deterministically to an HTTP status;
// nothing else is ever surfaced to callers as a typed failure.
package errs

import (
	"errors"
	"fmt"
)

// Kind discriminates the five failure classes.
type Kind int

const (
	// KindValidation is malformed or missing input (400).
	KindValidation Kind = iota
	// KindAuthorization is a wrong-tenant or insufficient-role failure (403).
	KindAuthorization
	// KindNotFound is an absent entity (404).
	KindNotFound
	// KindConflict is a uniqueness violation (409).
	KindConflict
	// KindInvariant is a business-rule violation distinct from basic input
	// shape (422).
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvariant:
		return "invariant_violation"
	}
	return "unknown"
}

// Error is a classified service-layer failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation reports malformed or missing input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Authorization reports a tenant-isolation or role failure.
func Authorization(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent entity.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Invariant reports a business-rule violation.
func Invariant(format string, args ...any) *Error {
	return &Error{Kind: KindInvariant, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err if it is a taxonomy error, and ok=false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err is a taxonomy error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
