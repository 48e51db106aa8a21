// Package judgeerr defines the failure taxonomy shared by the judging pipeline.
package judgeerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindInternal Kind = iota
	KindConfiguration
	KindCompile
	KindTimeout
	KindRuntime
	KindGrading
	KindNotFound
	KindUnsupported
	KindInvalid
)

var kindNames = map[Kind]string{
	KindInternal:      "internal",
	KindConfiguration: "configuration",
	KindCompile:       "compile",
	KindTimeout:       "timeout",
	KindRuntime:       "runtime",
	KindGrading:       "grading",
	KindNotFound:      "not_found",
	KindUnsupported:   "unsupported",
	KindInvalid:       "invalid",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error carries a Kind plus the diagnostics collected where it was raised.
type Error struct {
	Kind    Kind
	Message string
	// Detail holds compiler or runtime diagnostics (stderr, falling back to stdout).
	Detail string
	// Phase is "compile" or "run" for sandbox failures.
	Phase string
	// Output is whatever stdout was captured before a timeout.
	Output string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind to err. A nil err yields nil.
func Wrap(err error, kind Kind, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

func (e *Error) WithPhase(phase string) *Error {
	e.Phase = phase
	return e
}

func (e *Error) WithOutput(out string) *Error {
	e.Output = out
	return e
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
