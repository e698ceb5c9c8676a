// Package errors provides the error taxonomy shared by the patchsync packages.
// It extends Go's standard error handling with structured error codes so that
// callers can tell configuration, process, network, remote and parse failures
// apart without matching on message text.
package errors

// ErrorCode represents a specific class of failure.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Configuration errors.

	// CodeInvalidConfig indicates missing bucket or credentials, or an unusable repository path.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeInvalidInput indicates a malformed argument such as an empty object key.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Execution errors.

	// CodeExecutionFailed indicates the external diff/apply tool could not be started
	// or reported diagnostic output.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// Infrastructure errors.

	// CodeNetwork indicates a transport-level failure where no response was received.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeRemote indicates the object store answered with a non-2xx status.
	CodeRemote ErrorCode = "REMOTE_ERROR"

	// CodeParse indicates a list response did not contain well-formed key markers.
	// It is only ever logged; listing degrades to a shorter result instead.
	CodeParse ErrorCode = "PARSE_ERROR"

	// System errors.

	// CodeInternal indicates an internal failure such as a local file write error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
