package apperr

import (
	"errors"
	"fmt"
)

// Code classifies planner errors so callers can branch without string matching.
type Code int

const (
	CodeNotFound Code = iota + 1
	CodeValidation
	CodeAmbiguousSchedule
	CodeStore
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not found"
	case CodeValidation:
		return "validation failed"
	case CodeAmbiguousSchedule:
		return "ambiguous schedule"
	case CodeStore:
		return "store failure"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is checks. Any *Error with the same code matches.
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: CodeNotFound.String()}
	ErrValidation        = &Error{Code: CodeValidation, Message: CodeValidation.String()}
	ErrAmbiguousSchedule = &Error{Code: CodeAmbiguousSchedule, Message: CodeAmbiguousSchedule.String()}
	ErrStore             = &Error{Code: CodeStore, Message: CodeStore.String()}
)

// Error is a planner error with a machine-readable code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// NotFound reports a missing record of the given kind.
func NotFound(kind string, id any) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %v not found", kind, id))
}

// Validation reports rejected input.
func Validation(format string, args ...any) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

// Store wraps a persistence failure. The core never retries these.
func Store(op string, cause error) *Error {
	return Wrap(CodeStore, op, cause)
}

// CodeOf returns the code carried by err, or zero when err is not a planner error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
