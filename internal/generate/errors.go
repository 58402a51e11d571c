package generate

import (
	"errors"
	"fmt"
)

// ErrGenerationFailed matches every error returned by the Client
var ErrGenerationFailed = errors.New("generation failed")

// Kind classifies why a generation request failed
type Kind int

const (
	KindTransport Kind = iota + 1 // network or connection failure
	KindService                   // non-2xx status from the endpoint
	KindEnvelope                  // response lacks the expected text field
	KindParse                     // text is not valid, schema-conforming JSON
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindService:
		return "service"
	case KindEnvelope:
		return "envelope"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the Client
type Error struct {
	Kind       Kind
	Op         string // "roadmap" or "details"
	StatusCode int    // set for KindService
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s error", ErrGenerationFailed, e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrGenerationFailed and the underlying cause
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGenerationFailed}
	}
	return []error{ErrGenerationFailed, e.Err}
}

// KindOf returns the Kind of a generation error, or 0 if err is not one
func KindOf(err error) Kind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return 0
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
