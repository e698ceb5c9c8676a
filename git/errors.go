package git

// Sentinel errors for the diff and apply adapters. All of them can be checked
// with errors.Is() and classify through errors.GetCode.

import (
	"fmt"
	"strings"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

// ErrRepoRootMissing is returned when the repository root does not exist or
// cannot be read.
var ErrRepoRootMissing = psErrors.New(psErrors.CodeInvalidConfig, "repository root does not exist")

// ErrRepoRootNotDir is returned when the repository root is not a directory.
var ErrRepoRootNotDir = psErrors.New(psErrors.CodeInvalidConfig, "repository root is not a directory")

// ErrInvalidPatchName is returned when a patch name is empty or contains a
// path separator.
var ErrInvalidPatchName = psErrors.New(psErrors.CodeInvalidConfig, "invalid patch name")

// ErrNotRepository is returned when no git repository is found at or above
// the given directory.
var ErrNotRepository = psErrors.New(psErrors.CodeInvalidConfig, "not a git repository")

// ErrStartFailed is returned when the collaborator process could not be started.
var ErrStartFailed = psErrors.New(psErrors.CodeExecutionFailed, "collaborator could not be started")

// ErrCollaboratorFailed is returned when the collaborator exited unsuccessfully
// without writing diagnostics.
var ErrCollaboratorFailed = psErrors.New(psErrors.CodeExecutionFailed, "collaborator failed")

// ErrDiagnostics matches any DiagnosticError.
var ErrDiagnostics = psErrors.New(psErrors.CodeExecutionFailed, "collaborator reported diagnostics")

// DiagnosticError is returned when the collaborator wrote to its diagnostic
// stream. Any output counts, whatever the exit status.
type DiagnosticError struct {
	// Op is "diff" or "apply".
	Op string

	// Diagnostics is the collaborator's diagnostic output, unmodified.
	Diagnostics string
}

// Error implements the error interface.
func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, strings.TrimSpace(e.Diagnostics))
}

// Unwrap lets errors.Is match ErrDiagnostics.
func (e *DiagnosticError) Unwrap() error {
	return ErrDiagnostics
}

// ErrorCode classifies the error as a process failure.
func (e *DiagnosticError) ErrorCode() psErrors.ErrorCode {
	return psErrors.CodeExecutionFailed
}

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
