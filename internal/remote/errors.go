package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a failed remote call.
type Kind string

const (
	// TransportFailure: the request never produced an HTTP response
	// (connection refused, timeout, cancelled context).
	TransportFailure Kind = "transport_failure"

	// RemoteRejection: the collaborator answered, but with a non-success
	// status or a success status whose body cannot be trusted.
	RemoteRejection Kind = "remote_rejection"
)

// Sentinels for errors.Is.
var (
	ErrTransport = errors.New("remote: transport failure")
	ErrRejected  = errors.New("remote: rejected")
)

// Error is returned by every Client method on failure.
type Error struct {
	Kind       Kind
	Op         string // "list", "update", "delete"
	StatusCode int    // 0 for TransportFailure
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("remote %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransport) and errors.Is(err, ErrRejected)
// match on Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == TransportFailure
	case ErrRejected:
		return e.Kind == RemoteRejection
	}
	return false
}

// KindOf returns the Kind of err, or "" when err is not a remote error.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return ""
}

func transportErr(op string, err error) *Error {
	return &Error{Kind: TransportFailure, Op: op, Err: err}
}

func rejectedErr(op string, status int, message string, err error) *Error {
	return &Error{Kind: RemoteRejection, Op: op, StatusCode: status, Message: message, Err: err}
}
