// Package apperr defines the error taxonomy shared by the order core.
// Handlers map these to HTTP status codes; services return them unwrapped or
// wrapped with %w so callers can use errors.As / errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel matched by errors.Is for missing entities.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed required field. It names the
// first field that failed so the caller can surface a field-level message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// MissingField builds a ValidationError for an empty required field.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// NotFoundError reports an unknown entity id or reference.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a duplicate unique key (order reference, email).
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s already exists", e.Entity, e.Key)
}

// InvalidTransitionError reports an illegal status move, including attempts
// to leave a terminal state.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

// NoChangeError reports a rejected no-op transition. The ledger only records
// real state changes.
type NoChangeError struct {
	Status string
}

func (e *NoChangeError) Error() string {
	return fmt.Sprintf("order is already %q", e.Status)
}

// TransientError wraps a storage busy/locked condition. The storage layer
// retries once before surfacing it.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("storage temporarily unavailable: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ForbiddenError reports an actor that is neither privileged nor the owner of
// the requested record.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return e.Reason
}
