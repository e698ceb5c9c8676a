// Package git produces and applies patches against a working tree.
//
// The package wraps an external version-control collaborator, by default the
// git command line, behind two small adapters:
//
//   - DiffRunner.BuildPatch writes the diff of a repository, optionally scoped
//     to a selection of paths, to <repoRoot>/<name>.patch.
//   - PatchApplier.Apply applies a patch file to a repository.
//
// ChangedPaths reads the working tree status with go-git and lists the paths a
// selection can be chosen from.
//
// # Diagnostics
//
// Any output on the collaborator's diagnostic stream fails the operation with
// a *DiagnosticError, even when the collaborator exits successfully. Warnings
// are therefore treated as failures.
//
// # Basic Usage
//
//	runner := git.NewDiffRunner(git.WithLogger(logger))
//	patch, err := runner.BuildPatch(ctx, "/repo", "Fix", []string{"a.txt"})
//	if err != nil {
//	    return err
//	}
//
//	applier := git.NewPatchApplier()
//	if err := applier.Apply(ctx, patch, "/other"); err != nil {
//	    var diag *git.DiagnosticError
//	    if errors.As(err, &diag) {
//	        fmt.Println(diag.Diagnostics)
//	    }
//	    return err
//	}
//
// # Filesystem
//
// Patch files are created through a go-billy filesystem rooted at "/". Tests
// substitute memfs together with a stub Collaborator:
//
//	fs := memfs.New()
//	runner := git.NewDiffRunner(
//	    git.WithFilesystem(fs),
//	    git.WithCollaborator(&git.CollaboratorFuncs{DiffFunc: diff}),
//	)
//
// # Error Handling
//
// Configuration problems (missing repository root, bad patch name) wrap
// ErrRepoRootMissing, ErrRepoRootNotDir or ErrInvalidPatchName. Collaborator
// failures wrap ErrStartFailed or ErrCollaboratorFailed. All classify through
// the errors package codes.
package git
