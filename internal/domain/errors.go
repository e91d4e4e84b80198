package domain

import "errors"

// ErrorKind classifies failures surfaced to callers of the services.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindNoEntries    ErrorKind = "no_entries"
	KindLimitReached ErrorKind = "limit_reached"
)

// Error is a typed domain error. Two errors match under errors.Is when their
// kinds are equal and the target carries no message of its own.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Sentinels for errors.Is checks.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrNoEntries    = &Error{Kind: KindNoEntries}
	ErrLimitReached = &Error{Kind: KindLimitReached}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" && t.Message != e.Message {
		return false
	}
	return t.Kind == e.Kind
}

// NewValidationError reports malformed or out-of-range input.
func NewValidationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewNotFoundError reports a missing or foreign-owned resource.
func NewNotFoundError(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// NewConflictError reports a uniqueness violation.
func NewConflictError(msg string, cause error) error {
	return &Error{Kind: KindConflict, Message: msg, Cause: cause}
}

// NewNoEntriesError reports a period without billable time.
func NewNoEntriesError(msg string) error {
	return &Error{Kind: KindNoEntries, Message: msg}
}

// NewLimitError reports a tier quota being exhausted.
func NewLimitError(msg string) error {
	return &Error{Kind: KindLimitReached, Message: msg}
}

// KindOf returns the kind of the first domain error in err's chain, or an
// empty kind for anything else (storage failures and the like).
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
