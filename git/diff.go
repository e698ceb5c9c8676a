package git

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

// PatchExt is the extension of patch files and patch object keys.
const PatchExt = ".patch"

// Option configures a DiffRunner or PatchApplier.
type Option func(*options)

type options struct {
	collab Collaborator
	fs     billy.Filesystem
	logger *slog.Logger
}

// WithCollaborator replaces the git command line collaborator.
func WithCollaborator(c Collaborator) Option {
	return func(o *options) {
		o.collab = c
	}
}

// WithFilesystem sets the filesystem patch files are written to and
// repository roots are checked against. Relative paths are resolved against
// the process working directory first, so the filesystem must be rooted at
// "/". Defaults to the OS filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.collab == nil {
		o.collab = NewCLI(WithCLILogger(o.logger))
	}
	if o.fs == nil {
		o.fs = osfs.New("/")
	}
	return o
}

// DiffRunner produces patch files from a working tree.
type DiffRunner struct {
	*options
}

// NewDiffRunner creates a DiffRunner.
func NewDiffRunner(opts ...Option) *DiffRunner {
	return &DiffRunner{options: newOptions(opts)}
}

// BuildPatch writes the diff of repoRoot, scoped to selection, to
// repoRoot/patchName.patch and returns that path. An empty selection
// produces an unscoped diff. Selection order and duplicates do not matter.
//
// The collaborator's output is streamed into the file as it is produced.
// Any diagnostic output fails the build, even when the collaborator exits
// successfully; the partially written file is left in place.
//
// Errors:
//   - ErrRepoRootMissing, ErrRepoRootNotDir, ErrInvalidPatchName: configuration
//   - DiagnosticError: the collaborator wrote diagnostics
//   - ErrStartFailed, ErrCollaboratorFailed: the collaborator could not run or failed
func (d *DiffRunner) BuildPatch(ctx context.Context, repoRoot, patchName string, selection []string) (string, error) {
	repoRoot, err := absRoot(repoRoot)
	if err != nil {
		return "", err
	}
	if err := checkRepoRoot(d.fs, repoRoot); err != nil {
		return "", err
	}
	if err := checkPatchName(patchName); err != nil {
		return "", err
	}

	paths := NormalizeSelection(selection)
	patchPath := filepath.Join(repoRoot, patchName+PatchExt)

	f, err := d.fs.OpenFile(patchPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", psErrors.Wrapf(err, psErrors.CodeInternal, "create patch file %s", patchPath)
	}

	start := time.Now()
	diagnostics, runErr := d.collab.Diff(ctx, repoRoot, paths, f)
	closeErr := f.Close()

	d.logger.Debug("diff finished",
		"repo", repoRoot,
		"patch", patchPath,
		"paths", len(paths),
		"diagnostics", len(diagnostics),
		"duration", time.Since(start),
	)

	if diagnostics != "" {
		return "", &DiagnosticError{Op: "diff", Diagnostics: diagnostics}
	}
	if runErr != nil {
		return "", WrapErrorf(runErr, "build patch %s", patchName)
	}
	if closeErr != nil {
		return "", psErrors.Wrapf(closeErr, psErrors.CodeInternal, "write patch file %s", patchPath)
	}

	return patchPath, nil
}

// NormalizeSelection returns the non-empty selection entries sorted and
// without duplicates.
func NormalizeSelection(selection []string) []string {
	seen := make(map[string]struct{}, len(selection))
	out := make([]string, 0, len(selection))
	for _, p := range selection {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// absRoot resolves repoRoot against the process working directory, which is
// also where the collaborator resolves a relative working directory.
func absRoot(repoRoot string) (string, error) {
	if repoRoot == "" {
		return "", WrapError(ErrRepoRootMissing, "repository root is empty")
	}
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", WrapErrorf(ErrRepoRootMissing, "%s: %v", repoRoot, err)
	}
	return abs, nil
}

func checkRepoRoot(fs billy.Filesystem, repoRoot string) error {
	if repoRoot == "" {
		return WrapError(ErrRepoRootMissing, "repository root is empty")
	}
	info, err := fs.Stat(repoRoot)
	if err != nil {
		return WrapErrorf(ErrRepoRootMissing, "%s: %v", repoRoot, err)
	}
	if !info.IsDir() {
		return WrapError(ErrRepoRootNotDir, repoRoot)
	}
	return nil
}

func checkPatchName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return WrapErrorf(ErrInvalidPatchName, "%q", name)
	}
	return nil
}
