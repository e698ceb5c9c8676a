// Package errors provides error types and handling for object store operations.
package errors

import (
	"errors"
	"fmt"
	"strings"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

// Error represents an object store operation error with context about the
// operation that failed.
type Error struct {
	// Op is the operation that failed (e.g., "put", "get", "list", "delete")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// RemoteError is returned when the store answers with a non-2xx status.
// Message is the response body exactly as received, or the HTTP status
// line when the body is empty.
type RemoteError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, strings.TrimSpace(e.Message))
}

// ErrorCode classifies the error for errors.GetCode.
func (e *RemoteError) ErrorCode() psErrors.ErrorCode {
	return psErrors.CodeRemote
}

// NewRemoteError builds a RemoteError, falling back to status when body is empty.
func NewRemoteError(statusCode int, status string, body []byte) *RemoteError {
	msg := string(body)
	if msg == "" {
		msg = status
	}
	return &RemoteError{StatusCode: statusCode, Message: msg}
}

// Sentinel errors for common failures. They carry an ErrorCode so wrapped
// instances classify through errors.GetCode, and match with errors.Is.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = psErrors.New(psErrors.CodeInvalidConfig, "s3: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = psErrors.New(psErrors.CodeInvalidConfig, "s3: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = psErrors.New(psErrors.CodeInvalidConfig, "s3: invalid object key")

	// ErrInvalidEndpoint indicates that a custom endpoint URL could not be used
	ErrInvalidEndpoint = psErrors.New(psErrors.CodeInvalidConfig, "s3: invalid endpoint")

	// ErrConnection indicates no response was received
	ErrConnection = psErrors.New(psErrors.CodeNetwork, "s3: connection error")

	// ErrTimeout indicates that the operation timed out
	ErrTimeout = psErrors.New(psErrors.CodeTimeout, "s3: operation timeout")

	// ErrMalformedListing indicates a list response ended inside a key element
	ErrMalformedListing = psErrors.New(psErrors.CodeParse, "s3: malformed list response")
)

// AsRemote returns the RemoteError in err's chain, if any.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsInvalidInput checks if an error indicates invalid input of any kind.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidObjectKey) ||
		errors.Is(err, ErrInvalidEndpoint)
}

// IsTimeout checks if an error indicates a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
