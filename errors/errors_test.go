package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedErr struct{ code ErrorCode }

func (c codedErr) Error() string        { return string(c.code) }
func (c codedErr) ErrorCode() ErrorCode { return c.code }

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(CodeInvalidConfig, "bucket is required"),
			want: "bucket is required",
		},
		{
			name: "message and cause",
			err:  &Error{Code: CodeNetwork, Message: "put Fix.patch", Cause: fmt.Errorf("connection refused")},
			want: "put Fix.patch: connection refused",
		},
		{
			name: "cause only",
			err:  &Error{Code: CodeNetwork, Cause: fmt.Errorf("connection refused")},
			want: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	assert.NoError(t, Wrapf(nil, CodeInternal, "ignored %d", 1))
	assert.NoError(t, WrapWithContext(nil, CodeInternal, "ignored", nil))
}

func TestGetCode(t *testing.T) {
	base := fmt.Errorf("boom")

	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: base, want: CodeUnknown},
		{name: "direct", err: New(CodeRemote, "denied"), want: CodeRemote},
		{name: "wrapped by fmt", err: fmt.Errorf("list: %w", Wrap(base, CodeNetwork, "dial")), want: CodeNetwork},
		{name: "package type", err: fmt.Errorf("get: %w", codedErr{code: CodeRemote}), want: CodeRemote},
		{name: "deadline", err: fmt.Errorf("get: %w", context.DeadlineExceeded), want: CodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestHasCode_WalksChain(t *testing.T) {
	inner := New(CodeExecutionFailed, "git apply reported diagnostics")
	outer := Wrap(inner, CodeInternal, "download and apply")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeExecutionFailed))
	assert.True(t, IsProcess(outer))
	assert.False(t, IsRemote(outer))
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("put: %w", New(CodeNetwork, "dial tcp"))

	assert.True(t, stderrors.Is(err, &Error{Code: CodeNetwork}))
	assert.True(t, stderrors.Is(err, &Error{Code: CodeNetwork, Message: "dial tcp"}))
	assert.False(t, stderrors.Is(err, &Error{Code: CodeRemote}))
	assert.False(t, stderrors.Is(err, &Error{Code: CodeNetwork, Message: "other"}))
}

func TestWithContext(t *testing.T) {
	err := New(CodeRemote, "NoSuchKey").WithContext("status", 404).WithContext("key", "Fix.patch")

	require.NotNil(t, err.Context)
	assert.Equal(t, 404, err.Context["status"])
	assert.Equal(t, "Fix.patch", err.Context["key"])

	wrapped := WrapWithContext(stderrors.New("x"), CodeInternal, "write", map[string]any{"path": "/tmp/a"})
	var e *Error
	require.True(t, stderrors.As(wrapped, &e))
	assert.Equal(t, "/tmp/a", e.Context["path"])
}

func TestIsNetwork_IncludesTimeout(t *testing.T) {
	assert.True(t, IsNetwork(New(CodeTimeout, "deadline")))
	assert.True(t, IsNetwork(New(CodeNetwork, "reset")))
	assert.False(t, IsNetwork(New(CodeRemote, "403")))
	assert.True(t, IsConfig(Newf(CodeInvalidConfig, "repo path %q", "/nope")))
}
