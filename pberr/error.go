// Package pberr defines the closed error taxonomy used throughout
// pbstream: every failure a codec can produce classifies as exactly one
// of the kinds below, so callers can decide whether to recover or
// abandon a stream without parsing error strings.
package pberr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of ways a codec operation can fail.
type Kind uint8

const (
	// Invalid means the wire bytes or field values violate the format:
	// an overlong varint, a non-UTF-8 string, an out-of-range int32, a
	// wire-type mismatch on a declared field, or a tag of zero or in the
	// reserved field-number band.
	Invalid Kind = iota
	// Unsupported means the bytes were recognized but this library has
	// chosen not to support them: wire types 3 and 4 (start/end group),
	// or a feature the implementation explicitly does not implement.
	Unsupported
	// UnexpectedEos means the source ended in the middle of a value:
	// mid-varint, mid-fixed-width, mid-length-delimited window, or
	// mid-key. A clean end-of-stream at a key boundary is not an error.
	UnexpectedEos
	// Other is an underlying I/O error from the source or sink that
	// doesn't fit the classification above.
	Other
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Unsupported:
		return "unsupported"
	case UnexpectedEos:
		return "unexpected end of stream"
	case Other:
		return "other"
	default:
		return "unknown error kind"
	}
}

// Error is the concrete error type returned by every package in this
// module. It carries a causal chain (via Unwrap) so debugging a failure
// deep in a nested submessage doesn't lose the context of what the
// outer decode was doing.
type Error struct {
	Kind Kind
	Msg  string
	Err  error

	// Stream is the source or sink the error was observed on, when the
	// failing operation attached one, so the caller can recover the
	// stream from a known position or abandon it. Nil when the error
	// arose below the codec surface.
	Stream interface{}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pbstream: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("pbstream: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, pberr.ErrInvalid) work by comparing against the
// sentinel Kind values below rather than requiring callers to type-assert
// *Error and inspect Kind by hand.
func (e *Error) Is(target error) bool {
	k, ok := target.(kindSentinel)
	if !ok {
		return false
	}
	return e.Kind == Kind(k)
}

type kindSentinel Kind

func (k kindSentinel) Error() string { return Kind(k).String() }

// Sentinels usable with errors.Is, e.g. errors.Is(err, pberr.ErrInvalid).
var (
	ErrInvalid       error = kindSentinel(Invalid)
	ErrUnsupported   error = kindSentinel(Unsupported)
	ErrUnexpectedEOS error = kindSentinel(UnexpectedEos)
	ErrOther         error = kindSentinel(Other)
)

// New builds a new Error of the given kind with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a new Error of the given kind that wraps cause as its
// causal chain.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Wrapf is Wrap with fmt.Sprintf-style formatting.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// AttachStream returns err carrying stream, recoverable via StreamOf.
// If err is already an *Error the stream is set on a shallow copy (so a
// shared error value isn't mutated); any other error is classified with
// KindOf and wrapped.
func AttachStream(err error, stream interface{}) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		cp := *e
		cp.Stream = stream
		return &cp
	}
	return &Error{Kind: KindOf(err), Msg: "stream error", Err: err, Stream: stream}
}

// StreamOf returns the stream attached to err, if any.
func StreamOf(err error) (interface{}, bool) {
	var e *Error
	if errors.As(err, &e) && e.Stream != nil {
		return e.Stream, true
	}
	return nil, false
}

// KindOf reports the Kind of err if it is (or wraps) a *Error, and
// Other otherwise -- useful at API boundaries that receive an arbitrary
// error from an underlying source/sink.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}
