package patchsync

import (
	"fmt"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

// Configuration errors reported by Config.Validate and the workflows.
var (
	// ErrMissingBucket is returned when no bucket is configured.
	ErrMissingBucket = psErrors.New(psErrors.CodeInvalidConfig, "bucket is required")

	// ErrMissingCredentials is returned when the access or secret key is empty.
	ErrMissingCredentials = psErrors.New(psErrors.CodeInvalidConfig, "access key and secret key are required")

	// ErrMissingRegion is returned when no region is configured.
	ErrMissingRegion = psErrors.New(psErrors.CodeInvalidConfig, "region is required")

	// ErrMissingRepoPath is returned when a repository workflow has no
	// repository path.
	ErrMissingRepoPath = psErrors.New(psErrors.CodeInvalidConfig, "repository path is required")

	// ErrInvalidKey is returned when an object key cannot be used as a local
	// file name under the target directory.
	ErrInvalidKey = psErrors.New(psErrors.CodeInvalidConfig, "invalid object key")
)

// WorkflowError reports which workflow step failed.
type WorkflowError struct {
	Workflow Workflow
	Step     string
	Err      error
}

// Error implements the error interface.
func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Workflow, e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *WorkflowError) Unwrap() error {
	return e.Err
}

func stepError(w Workflow, step string, err error) error {
	if err == nil {
		return nil
	}
	return &WorkflowError{Workflow: w, Step: step, Err: err}
}
