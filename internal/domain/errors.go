package domain

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindMalformedEvent
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindMalformedEvent:
		return "malformed_event"
	case KindNotFound:
		return "not_found"
	}
	return "internal"
}

// Error carries a caller-safe message; Err holds the cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind-only sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Msg != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrDuplicateUser  = &Error{Kind: KindDuplicate}
	ErrMalformedEvent = &Error{Kind: KindMalformedEvent}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrInternal       = &Error{Kind: KindInternal}
)

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func Duplicate(msg string) error  { return &Error{Kind: KindDuplicate, Msg: msg} }
func Malformed(msg string) error  { return &Error{Kind: KindMalformedEvent, Msg: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf reports the kind of err; anything that is not a *Error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for err, or fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Msg != "" {
		return e.Msg
	}
	return fallback
}
