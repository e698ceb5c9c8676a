package executor_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/input-output-hk/patchsync/executor"
)

func TestBasicExecution(t *testing.T) {
	cmd := executor.New("echo")
	result, err := cmd.Execute(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, "hello world") {
		t.Errorf("expected stdout to contain 'hello world', got: %s", result.Stdout)
	}

	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got: %d", result.ExitCode)
	}
}

func TestStderrCapturedSeparately(t *testing.T) {
	cmd := executor.New("sh")
	result, err := cmd.Execute(context.Background(), []string{"-c", "echo out && echo warning: trailing whitespace >&2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(result.Stdout) != "out" {
		t.Errorf("expected stdout 'out', got: %q", result.Stdout)
	}
	if !strings.Contains(result.Stderr, "trailing whitespace") {
		t.Errorf("expected diagnostics on stderr, got: %q", result.Stderr)
	}
}

func TestStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	cmd := executor.New("echo")
	result, err := cmd.Execute(
		context.Background(),
		[]string{"--- a.txt ---"},
		executor.WithStdoutWriter(&buf),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Stdout != "" {
		t.Errorf("expected no captured stdout when a writer is set, got: %q", result.Stdout)
	}
	if strings.TrimSpace(buf.String()) != "--- a.txt ---" {
		t.Errorf("expected writer to receive stdout, got: %q", buf.String())
	}
}

func TestNonZeroExit(t *testing.T) {
	cmd := executor.New("sh")
	result, err := cmd.Execute(context.Background(), []string{"-c", "exit 3"})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got: %d", result.ExitCode)
	}
	if !result.Started() {
		t.Error("expected process to be reported as started")
	}
}

func TestProgramNotFound(t *testing.T) {
	cmd := executor.New("patchsync-no-such-program")
	result, err := cmd.Execute(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for missing program")
	}
	if result.Started() {
		t.Errorf("expected process not to start, exit code: %d", result.ExitCode)
	}
	if result.Interrupted {
		t.Error("expected a process that never started not to be interrupted")
	}
}

func TestWithStdin(t *testing.T) {
	cmd := executor.New("cat")
	input := "hello from stdin"

	result, err := cmd.Execute(context.Background(), nil, executor.WithStdin(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.TrimSpace(result.Stdout) != input {
		t.Errorf("expected stdout to match input, got: %s", result.Stdout)
	}
}

func TestWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	cmd := executor.New("pwd")
	result, err := cmd.Execute(context.Background(), nil, executor.WithWorkingDir(dir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, dir) {
		t.Errorf("expected %s in output, got: %s", dir, result.Stdout)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	cmd := executor.New("sh", executor.WithEnvVar("BASE_VAR", "base"))
	result, err := cmd.Execute(
		context.Background(),
		[]string{"-c", "echo $BASE_VAR-$CUSTOM_VAR"},
		executor.WithEnvVar("CUSTOM_VAR", "test_value"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result.Stdout, "base-test_value") {
		t.Errorf("expected env var values in output, got: %s", result.Stdout)
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cmd := executor.New("sleep")
	start := time.Now()
	result, err := cmd.Execute(ctx, []string{"5"})
	if err == nil {
		t.Fatal("expected error when context expires")
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("command was not cancelled promptly")
	}
	if !result.Interrupted {
		t.Errorf("expected killed process to be reported as interrupted, exit code: %d", result.ExitCode)
	}
	if !result.Started() {
		t.Error("expected killed process to be reported as started")
	}
}
