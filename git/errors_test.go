package git

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

func TestSentinelErrors_Is(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		expected bool
	}{
		// Direct sentinel errors
		{"ErrRepoRootMissing direct", ErrRepoRootMissing, ErrRepoRootMissing, true},
		{"ErrRepoRootNotDir direct", ErrRepoRootNotDir, ErrRepoRootNotDir, true},
		{"ErrInvalidPatchName direct", ErrInvalidPatchName, ErrInvalidPatchName, true},
		{"ErrStartFailed direct", ErrStartFailed, ErrStartFailed, true},
		{"ErrCollaboratorFailed direct", ErrCollaboratorFailed, ErrCollaboratorFailed, true},

		// Wrapped errors
		{"ErrRepoRootMissing wrapped", WrapError(ErrRepoRootMissing, "context"), ErrRepoRootMissing, true},
		{"ErrStartFailed wrapped", WrapErrorf(ErrStartFailed, "context %s", "arg"), ErrStartFailed, true},
		{"DiagnosticError matches ErrDiagnostics", &DiagnosticError{Op: "diff", Diagnostics: "x"}, ErrDiagnostics, true},

		// Non-matching errors
		{"ErrRepoRootMissing vs ErrRepoRootNotDir", ErrRepoRootMissing, ErrRepoRootNotDir, false},
		{"ErrStartFailed vs ErrCollaboratorFailed", ErrStartFailed, ErrCollaboratorFailed, false},

		// Nil handling
		{"WrapError with nil", WrapError(nil, "context"), ErrRepoRootMissing, false},
		{"WrapErrorf with nil", WrapErrorf(nil, "context"), ErrRepoRootMissing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := errors.Is(tt.err, tt.target)
			assert.Equal(t, tt.expected, result,
				"errors.Is(%v, %v) should be %v", tt.err, tt.target, tt.expected)
		})
	}
}

func TestSentinelErrors_Codes(t *testing.T) {
	tests := []struct {
		err  error
		code psErrors.ErrorCode
	}{
		{ErrRepoRootMissing, psErrors.CodeInvalidConfig},
		{ErrRepoRootNotDir, psErrors.CodeInvalidConfig},
		{ErrInvalidPatchName, psErrors.CodeInvalidConfig},
		{ErrNotRepository, psErrors.CodeInvalidConfig},
		{ErrStartFailed, psErrors.CodeExecutionFailed},
		{ErrCollaboratorFailed, psErrors.CodeExecutionFailed},
		{&DiagnosticError{Op: "apply"}, psErrors.CodeExecutionFailed},
		{WrapErrorf(ErrInvalidPatchName, "%q", ""), psErrors.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, psErrors.GetCode(tt.err))
		})
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name:     "wrap ErrRepoRootNotDir",
			err:      ErrRepoRootNotDir,
			msg:      "/repo/file",
			expected: "/repo/file: repository root is not a directory",
		},
		{
			name:     "wrap ErrInvalidPatchName",
			err:      ErrInvalidPatchName,
			msg:      "build",
			expected: "build: invalid patch name",
		},
		{
			name:     "wrap nil error",
			err:      nil,
			msg:      "context",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapError(tt.err, tt.msg)
			if tt.err == nil {
				assert.NoError(t, result)
				return
			}
			assert.EqualError(t, result, tt.expected)
			assert.ErrorIs(t, result, tt.err)
		})
	}
}

func TestWrapErrorf(t *testing.T) {
	err := WrapErrorf(ErrCollaboratorFailed, "git %s exited %d", "apply", 1)
	assert.EqualError(t, err, "git apply exited 1: collaborator failed")
	assert.ErrorIs(t, err, ErrCollaboratorFailed)
}

func TestDiagnosticError(t *testing.T) {
	err := &DiagnosticError{Op: "apply", Diagnostics: "error: patch failed: a.txt:1\n"}

	assert.Equal(t, "apply: error: patch failed: a.txt:1", err.Error())
	assert.True(t, psErrors.IsProcess(err))

	var target *DiagnosticError
	wrapped := WrapError(err, "download and apply")
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "error: patch failed: a.txt:1\n", target.Diagnostics)
}
