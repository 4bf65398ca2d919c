// Package errdef defines the failure taxonomy shared by every spag package.
//
// Each failure is an *Error carrying a Code. Callers match codes with
// errors.Is against the Err* sentinels, or extract them with CodeOf; the CLI
// maps codes to exit statuses.
package errdef

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

const (
	CodeNoActiveEnvironment Code = "no_active_environment"
	CodeEnvironmentNotFound Code = "environment_not_found"
	CodeMalformedTemplate   Code = "malformed_template"
	CodeUnresolvedVariable  Code = "unresolved_variable"
	CodeMalformedHeader     Code = "malformed_header"
	CodeNoEndpoint          Code = "no_endpoint"
	CodeIndexOutOfRange     Code = "index_out_of_range"
	CodeTransport           Code = "transport_error"
	CodeProtocol            Code = "protocol_error"
	CodeDocumentIO          Code = "document_io_error"
	CodeRequestNotFound     Code = "request_not_found"
	CodeUsage               Code = "usage"
)

// Sentinels for use with errors.Is. Only the code is compared.
var (
	ErrNoActiveEnvironment = &Error{Code: CodeNoActiveEnvironment}
	ErrEnvironmentNotFound = &Error{Code: CodeEnvironmentNotFound}
	ErrMalformedTemplate   = &Error{Code: CodeMalformedTemplate}
	ErrUnresolvedVariable  = &Error{Code: CodeUnresolvedVariable}
	ErrMalformedHeader     = &Error{Code: CodeMalformedHeader}
	ErrNoEndpoint          = &Error{Code: CodeNoEndpoint}
	ErrIndexOutOfRange     = &Error{Code: CodeIndexOutOfRange}
	ErrTransport           = &Error{Code: CodeTransport}
	ErrProtocol            = &Error{Code: CodeProtocol}
	ErrDocumentIO          = &Error{Code: CodeDocumentIO}
	ErrRequestNotFound     = &Error{Code: CodeRequestNotFound}
	ErrUsage               = &Error{Code: CodeUsage}
)

// Error is a classified failure. Subject names the offending item (a variable,
// a header, an environment) when there is one.
type Error struct {
	Code    Code
	Message string
	Subject string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code, prefixing it with a formatted message.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithSubject returns a copy of e carrying subject.
func (e *Error) WithSubject(subject string) *Error {
	c := *e
	c.Subject = subject
	return &c
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// SubjectOf returns the subject of the first *Error in err's chain.
func SubjectOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Subject
	}
	return ""
}

// UnresolvedVariable reports a placeholder with no value.
func UnresolvedVariable(name string) *Error {
	return New(CodeUnresolvedVariable, "unresolved variable: {{%s}}", name).WithSubject(name)
}

// MalformedHeader reports a header that cannot be parsed or sent.
func MalformedHeader(raw, reason string) *Error {
	return New(CodeMalformedHeader, "malformed header %q: %s", raw, reason).WithSubject(raw)
}

// MalformedTemplate reports a template that fails validation.
func MalformedTemplate(format string, args ...any) *Error {
	return New(CodeMalformedTemplate, "malformed template: "+format, args...)
}

// IndexOutOfRange reports a history lookup miss.
func IndexOutOfRange(index, length int) *Error {
	return New(CodeIndexOutOfRange, "history index %d out of range (%d entries)", index, length)
}
