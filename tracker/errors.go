package tracker

import (
	"errors"
	"fmt"
)

// Kind classifies every error the tracker returns.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindAlreadyBound      Kind = "already_bound"
	KindAlreadyCheckedOut Kind = "already_checked_out"
	KindResourceExhausted Kind = "resource_exhausted"
	KindStoreUnavailable  Kind = "store_unavailable"
	KindInternal          Kind = "internal"
)

// Error carries a Kind plus an optional message and cause.
//
// errors.Is(err, ErrNotFound) matches any Error of kind not_found, while the
// more specific sentinels (ErrInvalidMode, ErrNoPendingRegistration, ...) only
// match themselves.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrResourceExhausted = &Error{Kind: KindResourceExhausted}
	ErrStoreUnavailable  = &Error{Kind: KindStoreUnavailable}

	ErrInvalidMode           = &Error{Kind: KindNotFound, Msg: "invalid mode"}
	ErrModeFulfilled         = &Error{Kind: KindNotFound, Msg: "registration already fulfilled"}
	ErrNoPendingRegistration = &Error{Kind: KindNotFound, Msg: "no pending registration"}
	ErrNotLendable           = &Error{Kind: KindNotFound, Msg: "tool not found or not bound"}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	} else {
		msg = string(e.Kind) + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg == "" && t.Err == nil {
		return t.Kind == e.Kind
	}
	return t == e
}

// Errorf builds an Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to cause. A cause that already is an *Error keeps its kind.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	var te *Error
	if errors.As(cause, &te) {
		return cause
	}
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindInternal
}

// Retryable reports whether the caller may safely resubmit the whole request.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindConflict, KindStoreUnavailable:
		return true
	}
	return false
}
