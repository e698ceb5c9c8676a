package git

import (
	"context"
	"io"
	"log/slog"

	"github.com/input-output-hk/patchsync/executor"
)

// Collaborator is the external version-control tool. Each call returns the
// tool's diagnostic output alongside an error for failures to run or a
// non-zero exit.
type Collaborator interface {
	// Diff writes a diff of workDir scoped to paths (all changes when paths
	// is empty) to out.
	Diff(ctx context.Context, workDir string, paths []string, out io.Writer) (diagnostics string, err error)

	// Apply applies patchFile to workDir.
	Apply(ctx context.Context, workDir, patchFile string) (diagnostics string, err error)
}

// CollaboratorFuncs implements Collaborator with function fields. A nil field
// succeeds with no output.
type CollaboratorFuncs struct {
	DiffFunc  func(ctx context.Context, workDir string, paths []string, out io.Writer) (string, error)
	ApplyFunc func(ctx context.Context, workDir, patchFile string) (string, error)
}

// Diff calls DiffFunc.
func (c *CollaboratorFuncs) Diff(ctx context.Context, workDir string, paths []string, out io.Writer) (string, error) {
	if c.DiffFunc != nil {
		return c.DiffFunc(ctx, workDir, paths, out)
	}
	return "", nil
}

// Apply calls ApplyFunc.
func (c *CollaboratorFuncs) Apply(ctx context.Context, workDir, patchFile string) (string, error) {
	if c.ApplyFunc != nil {
		return c.ApplyFunc(ctx, workDir, patchFile)
	}
	return "", nil
}

// CLI is the Collaborator backed by the git command line.
type CLI struct {
	exec   executor.Executor
	logger *slog.Logger
}

// CLIOption configures a CLI.
type CLIOption func(*CLI)

// WithExecutor replaces the command runner. The default runs "git".
func WithExecutor(e executor.Executor) CLIOption {
	return func(c *CLI) {
		c.exec = e
	}
}

// WithCLILogger sets the logger passed to each command execution.
func WithCLILogger(logger *slog.Logger) CLIOption {
	return func(c *CLI) {
		c.logger = logger
	}
}

// NewCLI creates a git command line collaborator.
func NewCLI(opts ...CLIOption) *CLI {
	c := &CLI{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.exec == nil {
		c.exec = executor.New("git", executor.WithLogger(c.logger))
	}
	return c
}

// Diff runs "git diff --binary [-- paths...]" in workDir with stdout
// streamed into out.
func (c *CLI) Diff(ctx context.Context, workDir string, paths []string, out io.Writer) (string, error) {
	args := []string{"diff", "--binary"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	return c.run(ctx, args,
		executor.WithWorkingDir(workDir),
		executor.WithStdoutWriter(out),
	)
}

// Apply runs "git apply <patchFile>" in workDir.
func (c *CLI) Apply(ctx context.Context, workDir, patchFile string) (string, error) {
	return c.run(ctx, []string{"apply", patchFile},
		executor.WithWorkingDir(workDir),
	)
}

func (c *CLI) run(ctx context.Context, args []string, opts ...executor.Option) (string, error) {
	res, err := c.exec.Execute(ctx, args, append(opts, executor.WithLogger(c.logger))...)

	var diagnostics string
	if res != nil {
		diagnostics = res.Stderr
	}

	switch {
	case err == nil:
		return diagnostics, nil
	case !res.Started():
		return diagnostics, WrapErrorf(ErrStartFailed, "git %s: %v", args[0], err)
	case res.Interrupted:
		cause := ctx.Err()
		if cause == nil {
			cause = err
		}
		return diagnostics, WrapErrorf(ErrCollaboratorFailed, "git %s interrupted: %w", args[0], cause)
	default:
		return diagnostics, WrapErrorf(ErrCollaboratorFailed, "git %s exited %d", args[0], res.ExitCode)
	}
}
