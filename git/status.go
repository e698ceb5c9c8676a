package git

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	psErrors "github.com/input-output-hk/patchsync/errors"
)

// ChangedPaths returns the sorted paths under repoRoot that differ from HEAD,
// skipping untracked files since a diff never includes them. The repository
// is found by searching repoRoot and its parents for a .git directory; when
// repoRoot is a subdirectory of the working tree only changes beneath it are
// returned, relative to it. Every filter must accept a change for it to be
// included.
func ChangedPaths(ctx context.Context, repoRoot string, filters ...ChangeFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, WrapErrorf(ErrRepoRootMissing, "%s: %v", repoRoot, err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, WrapError(ErrNotRepository, repoRoot)
		}
		return nil, psErrors.Wrapf(err, psErrors.CodeExecutionFailed, "open repository %s", repoRoot)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, psErrors.Wrapf(err, psErrors.CodeExecutionFailed, "open worktree %s", repoRoot)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, psErrors.Wrapf(err, psErrors.CodeExecutionFailed, "read status %s", repoRoot)
	}

	sub, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, psErrors.Wrapf(err, psErrors.CodeInternal, "locate %s in worktree", repoRoot)
	}
	prefix := ""
	if sub != "." {
		prefix = filepath.ToSlash(sub) + "/"
	}

	keep := AndFilter(filters...)
	paths := make([]string, 0, len(status))
	for p, fs := range status {
		if fs.Staging == gogit.Untracked || fs.Worktree == gogit.Untracked {
			continue
		}
		if fs.Staging == gogit.Unmodified && fs.Worktree == gogit.Unmodified {
			continue
		}

		p = path.Clean(filepath.ToSlash(p))
		if !strings.HasPrefix(p, prefix) {
			continue
		}

		c := Change{Path: strings.TrimPrefix(p, prefix), Staging: fs.Staging, Worktree: fs.Worktree}
		if keep(c) {
			paths = append(paths, c.Path)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// ChangeLister lists changed paths with a fixed set of filters.
type ChangeLister struct {
	filters []ChangeFilter
}

// NewChangeLister creates a ChangeLister applying filters to every call.
func NewChangeLister(filters ...ChangeFilter) *ChangeLister {
	return &ChangeLister{filters: filters}
}

// ChangedPaths calls the package-level ChangedPaths with the lister's filters.
func (l *ChangeLister) ChangedPaths(ctx context.Context, repoRoot string) ([]string, error) {
	return ChangedPaths(ctx, repoRoot, l.filters...)
}
