package scheduling

import (
	"errors"
	"fmt"
)

// Kind classifies scheduling errors so handlers can map them to HTTP statuses.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindBadRequest
	KindConflict
)

// Error is the error type returned by scheduling operations. Details carries
// enough context for the caller to resolve the problem without a second
// round-trip (e.g. the conflicting interview's id and date).
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound reports a missing entity. Cross-tenant access uses the same error
// so it is indistinguishable from non-existence.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports invalid input or an illegal state transition.
func BadRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a double-booking or an already-active interview.
func Conflict(message string, details map[string]interface{}) *Error {
	return &Error{Kind: KindConflict, Message: message, Details: details}
}

// KindOf returns the Kind of err, or 0 if err is not a scheduling error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
