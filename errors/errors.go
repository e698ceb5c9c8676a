package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// Coder is implemented by errors that carry an ErrorCode. Package specific
// error types implement it so GetCode can classify them.
type Coder interface {
	ErrorCode() ErrorCode
}

// Error is a coded error with an optional cause and structured context.
type Error struct {
	// Code classifies the failure.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Context holds structured details (paths, keys, status codes).
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode implements Coder.
func (e *Error) ErrorCode() ErrorCode {
	return e.Code
}

// Is reports whether target is an *Error with the same code. This lets
// callers write errors.Is(err, &Error{Code: CodeNetwork}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code != e.Code {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// New creates an Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// Wrapf wraps err with a code and formatted message. It returns nil when err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WrapWithContext wraps err with a code, message and structured context.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err, Context: ctx}
}

// WithContext adds a key/value pair to the error context and returns the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// GetCode returns the first ErrorCode found in err's chain. Context deadline
// errors map to CodeTimeout. Anything else is CodeUnknown.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var c Coder
	if stderrors.As(err, &c) {
		return c.ErrorCode()
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if c, ok := err.(Coder); ok && c.ErrorCode() == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return HasCode(u.Unwrap(), code)
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if HasCode(e, code) {
				return true
			}
		}
	}
	return false
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return HasCode(err, CodeInvalidConfig) }

// IsProcess reports whether err is an external process error.
func IsProcess(err error) bool { return HasCode(err, CodeExecutionFailed) }

// IsNetwork reports whether err is a transport-level error.
func IsNetwork(err error) bool { return HasCode(err, CodeNetwork) || HasCode(err, CodeTimeout) }

// IsRemote reports whether err is a non-2xx response from the object store.
func IsRemote(err error) bool { return HasCode(err, CodeRemote) }
