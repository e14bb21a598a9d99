// Package errors provides structured error types for the promptly console.
// These errors carry the operation that failed and a Kind the UI uses to
// decide how a failure is surfaced to the user.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindUnauthorized
	KindOffline
	KindAPI
	KindConfig
	KindIO
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindOffline:
		return "unreachable"
	case KindAPI:
		return "api error"
	case KindConfig:
		return "configuration error"
	case KindIO:
		return "I/O error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for promptly.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error. Nested errors report the outermost
// Kind that is not KindUnknown.
func GetKind(err error) Kind {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return KindUnknown
		}
		if e.Kind != KindUnknown {
			return e.Kind
		}
		err = e.Err
	}
	return KindUnknown
}

// UserMessage returns a short message suitable for a flash or CLI error line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch GetKind(err) {
	case KindOffline:
		return "Server unreachable. Check your connection and the configured URL."
	case KindUnauthorized:
		return "Your session has expired. Please log in again."
	case KindTimeout:
		return "The request timed out."
	}
	var e *Error
	if errors.As(err, &e) && e.Context != "" {
		return e.Context
	}
	return err.Error()
}

// API errors
func TemplateNotFound(slug string) error {
	return E(Op("gallery.Open"), KindNotFound, fmt.Sprintf("template %s not found", slug))
}

func MissingProcessors(slug string) error {
	return E(Op("gallery.BuildDraft"), KindInvalid, fmt.Sprintf("template %s has no processors to create an app from", slug))
}

func Offline(op Op, err error) error {
	return E(op, KindOffline, "server unreachable", err)
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}
