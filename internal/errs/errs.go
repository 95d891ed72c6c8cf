// Package errs defines the error taxonomy shared by every stage of a series
// request. Each failure carries a Kind so callers can branch without
// matching on message text.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	// KindTypeMismatch: an input has the wrong fundamental type.
	KindTypeMismatch Kind = "TYPE_MISMATCH"
	// KindInvalidArgument: right type, but a business rule is violated.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	// KindNotFound: the source does not know the series identifier.
	KindNotFound Kind = "NOT_FOUND"
	// KindConnectivity: timeout or transport failure talking to the source.
	KindConnectivity Kind = "CONNECTIVITY"
	// KindMalformedPayload: the response is not usable tabular data.
	KindMalformedPayload Kind = "MALFORMED_PAYLOAD"
	// KindUnknown is reported by KindOf for errors outside the taxonomy.
	KindUnknown Kind = "UNKNOWN"
)

// Error is a classified failure. Message is the caller-facing text; Cause,
// when set, is the underlying error and is reachable through errors.Unwrap.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with a cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// TypeMismatch reports a value of the wrong type. The message reads
// "<label> must be a <want>, got <actual type>".
func TypeMismatch(label, want string, got any) *Error {
	return New(KindTypeMismatch, "%s must be a %s, got %s", label, want, typeName(got))
}

// InvalidArgument reports a rule violation.
func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
