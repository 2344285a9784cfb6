package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by storage layers and translated by callers.
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource conflict")
)

// Type groups errors by who is at fault.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

var typeNames = map[Type]string{
	TypeServer:     "server",
	TypeBusiness:   "business",
	TypeValidation: "validation",
}

var typeFallbackMsg = map[Type]string{
	TypeServer:     "Internal error",
	TypeBusiness:   "Request violates a business rule",
	TypeValidation: "Validation violation",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Code selects the transport status of an error.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTooManyRequest
	CodeUnauthorized
	CodeForbidden
	CodeTimeout
)

var codeStatus = map[Code]struct {
	name   string
	status int
}{
	CodeInternal:       {"internal", http.StatusInternalServerError},
	CodeInvalidFormat:  {"invalid_format", http.StatusBadRequest},
	CodeInvalidInput:   {"invalid_input", http.StatusUnprocessableEntity},
	CodeNotFound:       {"not_found", http.StatusNotFound},
	CodeConflict:       {"conflict", http.StatusConflict},
	CodeTooManyRequest: {"too_many_requests", http.StatusTooManyRequests},
	CodeUnauthorized:   {"unauthorized", http.StatusUnauthorized},
	CodeForbidden:      {"forbidden", http.StatusForbidden},
	CodeTimeout:        {"timeout", http.StatusRequestTimeout},
}

func (c Code) String() string {
	if s, ok := codeStatus[c]; ok {
		return s.name
	}
	return codeStatus[CodeInternal].name
}

// Status returns the HTTP status for c. Unknown codes are 500.
func (c Code) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s.status
	}
	return http.StatusInternalServerError
}

// Error carries a cause, a message safe to show to clients and the
// classification the transport layer needs to render it.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	kind    Kind
	fields  map[string]string
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	}
	if msg, ok := typeFallbackMsg[e.errType]; ok {
		return msg
	}
	return "Unknown error"
}

// String is meant for logs; it includes the cause.
func (e *Error) String() string {
	return fmt.Sprintf("goerror[%s/%s/%s] %q: %v", e.errType, e.code, e.Kind(), e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }
func (e *Error) Type() Type { return e.errType }
func (e *Error) Code() Code { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) StatusCode() int { return e.code.Status() }

// Kind returns the authenticator kind. Errors built without one are
// classified from their type and code.
func (e *Error) Kind() Kind {
	if e.kind != KindUnknown {
		return e.kind
	}

	switch {
	case e.errType == TypeValidation:
		return KindParameterInvalid
	case e.code == CodeNotFound:
		return KindNotConfigured
	case e.errType == TypeServer:
		return KindSystemError
	}
	return KindUnknown
}

// NewServer wraps err as an internal failure.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewBusiness reports a rule violation with a client-facing message.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput builds a 422. With a nil err, kv is read as field/message
// pairs; an odd count means the caller could not even parse the body.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	}
	if len(kv)%2 == 1 {
		return NewInvalidFormat()
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: fields}
}

// NewInvalidFormat builds a 400 for a body that could not be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}
