// FILE: internal/pkg/apperror/apperror.go
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error class. Errors from the store and the
// payment gateway are decoded into one of these kinds exactly once, at the
// boundary, instead of being shape-inspected all over the call sites.
type Kind string

const (
	KindNotFound               Kind = "NOT_FOUND"
	KindInvalidTransition      Kind = "INVALID_TRANSITION"
	KindValidation             Kind = "VALIDATION_ERROR"
	KindConcurrentModification Kind = "CONCURRENT_MODIFICATION"
	KindGateway                Kind = "GATEWAY_ERROR"
	KindPersistence            Kind = "PERSISTENCE_ERROR"
)

// Error carries a human-readable Message that is safe to surface to callers.
// The wrapped cause (raw gateway payloads, driver errors) stays internal.
type Error struct {
	Kind      Kind
	Message   string
	Field     string // offending field, set for validation errors
	Retryable bool   // meaningful for KindGateway only
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", resource, id)}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func InvalidTransition(contributionId, from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("contribution %s: illegal transition %s -> %s", contributionId, from, to),
	}
}

func Concurrent(contributionId string) *Error {
	return &Error{
		Kind:    KindConcurrentModification,
		Message: fmt.Sprintf("contribution %s is being modified by another request", contributionId),
	}
}

func Gateway(message string, retryable bool, cause error) *Error {
	return &Error{Kind: KindGateway, Message: message, Retryable: retryable, Err: cause}
}

func Persistence(cause error) *Error {
	return &Error{Kind: KindPersistence, Message: "ledger store unavailable", Err: cause}
}

// KindOf returns the kind of err, or KindPersistence for untagged errors so
// that unknown failures default to the most conservative class.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// IsRetryable reports whether err is a gateway error flagged retryable.
// Validation and transition errors are never retryable.
func IsRetryable(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == KindGateway && appErr.Retryable
	}
	return false
}
