package intermediate

import (
	"fmt"

	"intermediate-serializer/internal/doctree"
)

//go:generate go tool stringer -type=ErrorKind -trimprefix=Kind -output=errorkind_string.go

// ErrorKind classifies content-validation failures. Every kind is fatal to
// the call that raised it; nothing is retried or skipped.
type ErrorKind int

const (
	_ ErrorKind = iota

	KindUnexpectedMember  // document names an excluded or nonexistent member
	KindMissingMember     // required member absent
	KindValueFormat       // leaf text does not parse as the target type
	KindTypeResolution    // type token unknown or incompatible
	KindDanglingReference // shared identifier used but never defined
	KindDuplicateKey      // map member has two entries with equal keys
)

// kindError is the matchable sentinel form of an ErrorKind.
type kindError ErrorKind

func (k kindError) Error() string {
	switch ErrorKind(k) {
	case KindUnexpectedMember:
		return "unexpected member"
	case KindMissingMember:
		return "missing member"
	case KindValueFormat:
		return "value format"
	case KindTypeResolution:
		return "type resolution"
	case KindDanglingReference:
		return "dangling reference"
	case KindDuplicateKey:
		return "duplicate key"
	default:
		return "content validation"
	}
}

// Sentinels for errors.Is matching against *Error values.
var (
	ErrUnexpectedMember  error = kindError(KindUnexpectedMember)
	ErrMissingMember     error = kindError(KindMissingMember)
	ErrValueFormat       error = kindError(KindValueFormat)
	ErrTypeResolution    error = kindError(KindTypeResolution)
	ErrDanglingReference error = kindError(KindDanglingReference)
	ErrDuplicateKey      error = kindError(KindDuplicateKey)
)

// Error is the single content-validation error kind surfaced to callers. It
// carries the position of the offending element when one is known.
type Error struct {
	Kind         ErrorKind
	Line, Column int
	Msg          string
	Err          error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	body := kindError(e.Kind).Error() + ": " + msg

	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, body)
	}

	return body
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(kindError)
	return ok && ErrorKind(k) == e.Kind
}

func newError(el *doctree.Element, kind ErrorKind, format string, args ...any) *Error {
	e := &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
	if el != nil {
		e.Line, e.Column = el.Line, el.Column
	}

	return e
}

func wrapError(el *doctree.Element, kind ErrorKind, err error) *Error {
	e := &Error{Kind: kind, Err: err}
	if el != nil {
		e.Line, e.Column = el.Line, el.Column
	}

	return e
}
