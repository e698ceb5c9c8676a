// Package executor runs external programs on behalf of the diff and apply
// adapters. It captures the diagnostic stream separately from stdout, can
// stream stdout straight into a file, and honors context cancellation.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Result holds the output of a single command execution.
type Result struct {
	// Stdout is the captured standard output. It is empty when stdout was
	// redirected to a custom writer.
	Stdout string

	// Stderr is the captured diagnostic stream.
	Stderr string

	// ExitCode is the process exit code, or -1 if the process never ran or
	// was killed before exiting.
	ExitCode int

	// Interrupted is set when the process started but was killed before it
	// exited, for example because the context was cancelled.
	Interrupted bool

	// Duration is how long the process ran.
	Duration time.Duration
}

// Started reports whether the process was started at all.
func (r *Result) Started() bool {
	return r != nil && (r.ExitCode >= 0 || r.Interrupted)
}

// Executor runs a command for a fixed program.
type Executor interface {
	// Execute runs the program with args and returns its result. A non-nil
	// error is returned when the process could not start or exited non-zero;
	// the Result is still populated in that case.
	Execute(ctx context.Context, args []string, opts ...Option) (*Result, error)
}

// Options configures command execution behavior.
type Options struct {
	// WorkingDir is the directory the command runs in.
	WorkingDir string

	// Env holds variables appended to the current environment.
	Env map[string]string

	// Stdin, if set, is connected to the process standard input.
	Stdin io.Reader

	// StdoutWriter, if set, receives stdout instead of the capture buffer.
	StdoutWriter io.Writer

	// StderrWriter, if set, receives a copy of stderr in addition to capture.
	StderrWriter io.Writer

	// Logger receives debug records for each execution.
	Logger *slog.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// DefaultOptions returns default execution options.
func DefaultOptions() *Options {
	return &Options{
		Env:    make(map[string]string),
		Logger: slog.New(slog.DiscardHandler),
	}
}

// CommandExecutor executes a wrapped program.
type CommandExecutor struct {
	program string
	options *Options
}

// New creates a CommandExecutor for program. Options given here become the
// defaults for every Execute call.
func New(program string, opts ...Option) *CommandExecutor {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &CommandExecutor{
		program: program,
		options: options,
	}
}

// Program returns the wrapped program name.
func (c *CommandExecutor) Program() string {
	return c.program
}

// Execute implements Executor.
func (c *CommandExecutor) Execute(ctx context.Context, args []string, opts ...Option) (*Result, error) {
	options := c.mergeOptions(opts...)

	cmd := exec.CommandContext(ctx, c.program, args...)
	c.setupCommand(cmd, options)

	var stdoutBuf, stderrBuf bytes.Buffer
	if options.StdoutWriter != nil {
		cmd.Stdout = options.StdoutWriter
	} else {
		cmd.Stdout = &stdoutBuf
	}
	if options.StderrWriter != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, options.StderrWriter)
	} else {
		cmd.Stderr = &stderrBuf
	}

	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: exitCode(err),
		Duration: time.Since(start),
	}
	// Process is only set once Start succeeded.
	result.Interrupted = cmd.Process != nil && result.ExitCode < 0

	options.Logger.Debug("command finished",
		"program", c.program,
		"args", args,
		"dir", options.WorkingDir,
		"exit_code", result.ExitCode,
		"interrupted", result.Interrupted,
		"duration", result.Duration,
	)

	if err != nil {
		return result, fmt.Errorf("%s: command execution failed: %w", c.program, err)
	}
	return result, nil
}

// setupCommand configures the exec.Cmd with working directory, environment, and input.
func (c *CommandExecutor) setupCommand(cmd *exec.Cmd, options *Options) {
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	if options.Stdin != nil {
		cmd.Stdin = options.Stdin
	}
}

func (c *CommandExecutor) mergeOptions(opts ...Option) *Options {
	merged := *c.options
	merged.Env = make(map[string]string, len(c.options.Env))
	for k, v := range c.options.Env {
		merged.Env[k] = v
	}
	for _, opt := range opts {
		opt(&merged)
	}
	if merged.Logger == nil {
		merged.Logger = slog.New(slog.DiscardHandler)
	}
	return &merged
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	default:
		return -1
	}
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithStdin connects r to the process standard input.
func WithStdin(r io.Reader) Option {
	return func(o *Options) {
		o.Stdin = r
	}
}

// WithStdoutWriter sends stdout to w instead of capturing it.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter tees stderr to w.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// WithLogger sets the logger used for execution records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
