// Package serrors implements the semantic error taxonomy shared by the
// density map packages. A semantic error carries a Kind (a comparable
// sentinel), an optional human readable message and an optional cause.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category. Only values created with NewKind
// implement it.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a semantic error kind. The name doubles as the stable
// machine readable code exposed to API callers.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrValidation reports caller input that cannot be served: unknown
	// profession or tier, malformed viewport, malformed pagination.
	ErrValidation = NewKind("VALIDATION_ERROR")
	// ErrDataNotFound reports codes absent from the boundary or density data.
	// The aggregation pipeline resolves it locally by omission; it only
	// surfaces on direct lookups.
	ErrDataNotFound = NewKind("DATA_NOT_FOUND")
	// ErrSourceRead reports a shard or source file that failed to load or
	// parse while populating a cache or building a dataset.
	ErrSourceRead = NewKind("SOURCE_READ_ERROR")
	// ErrUpstreamTimeout reports a remote source that did not answer in time
	// during an offline build.
	ErrUpstreamTimeout = NewKind("UPSTREAM_TIMEOUT")
	// ErrConflict reports a state conflict, e.g. a rebuild already running.
	ErrConflict = NewKind("CONFLICT")
	// ErrUnavailable reports a dependency that is not ready yet.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrInternal reports anything else.
	ErrInternal = NewKind("INTERNAL")
)

// Error is a semantic error. errors.Is and errors.As match both its kind
// and its wrapped cause.
//
// Error() renders "<msg>: <cause>", "<msg>", "<cause>" or the kind name,
// depending on which parts are set.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With creates a semantic error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap creates a semantic error of kind k wrapping err, with a formatted
// message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error that carries nothing but its kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches target against the kind first, then against the cause chain.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As tries the kind first, then the cause chain.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the semantic kind, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to the error, without the cause.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause, or nil.
func (e *Error) Cause() error { return e.err }

// KindOf returns the kind of the outermost semantic error found in err's
// chain. A bare Kind sentinel is returned as is. Errors without any
// semantic information are reported as ErrInternal.
func KindOf(err error) Kind {
	if err == nil {
		return nil
	}

	// (*Error).As exposes the kind, so a single As covers both wrapped
	// semantic errors and bare sentinels.
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return ErrInternal
}
