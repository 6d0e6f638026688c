package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced to the approver
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindNetwork      Kind = "network"
	KindServer       Kind = "server"
	KindUnauthorized Kind = "unauthorized"
)

// User-facing messages
const (
	MsgNetwork            = "Network error. Please check your connection."
	MsgInvalidCredentials = "Invalid credentials"
	MsgUnknown            = "An error occurred"
)

// Error is a classified application error
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap classifies err under kind
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation returns a validation error
func Validation(op, message string) *Error {
	return New(KindValidation, op, message)
}

// NotFound returns a not-found error
func NotFound(op, message string) *Error {
	return New(KindNotFound, op, message)
}

// Network wraps a transport failure
func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Message: MsgNetwork, Err: err}
}

// Server returns a backend failure with the message the backend supplied
func Server(op string, status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("Server error: %d", status)
	}
	return &Error{Kind: KindServer, Op: op, Message: message, Status: status}
}

// Unauthorized returns the generic credential failure
func Unauthorized(op string, status int) *Error {
	return &Error{Kind: KindUnauthorized, Op: op, Message: "invalid credentials", Status: status}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries kind
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// UserMessage renders err for display to the approver
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return MsgUnknown
	}
	switch e.Kind {
	case KindNetwork:
		return MsgNetwork
	case KindUnauthorized:
		return MsgInvalidCredentials
	default:
		if e.Message != "" {
			return e.Message
		}
		return MsgUnknown
	}
}
