package git

import (
	"context"
	"path/filepath"
	"time"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

// PatchApplier applies patch files to a working tree.
type PatchApplier struct {
	*options
}

// NewPatchApplier creates a PatchApplier. It accepts the same options as
// NewDiffRunner.
func NewPatchApplier(opts ...Option) *PatchApplier {
	return &PatchApplier{options: newOptions(opts)}
}

// Apply applies the patch at patchFilePath to repoRoot. Relative paths are
// resolved against the process working directory. There is no dry run
// and nothing is rolled back: whatever the collaborator changed before a
// failure stays changed. Diagnostic output fails the apply, even when the
// collaborator exits successfully.
func (a *PatchApplier) Apply(ctx context.Context, patchFilePath, repoRoot string) error {
	repoRoot, err := absRoot(repoRoot)
	if err != nil {
		return err
	}
	if err := checkRepoRoot(a.fs, repoRoot); err != nil {
		return err
	}
	if patchFilePath, err = filepath.Abs(patchFilePath); err != nil {
		return psErrors.Wrapf(err, psErrors.CodeInvalidConfig, "resolve patch path")
	}

	start := time.Now()
	diagnostics, err := a.collab.Apply(ctx, repoRoot, patchFilePath)

	a.logger.Debug("apply finished",
		"repo", repoRoot,
		"patch", patchFilePath,
		"diagnostics", len(diagnostics),
		"duration", time.Since(start),
	)

	if diagnostics != "" {
		return &DiagnosticError{Op: "apply", Diagnostics: diagnostics}
	}
	if err != nil {
		return WrapErrorf(err, "apply %s", patchFilePath)
	}
	return nil
}
