package git

import (
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// Change is a single path reported by the working tree status.
type Change struct {
	// Path is slash-separated and relative to the repository root passed to
	// ChangedPaths.
	Path string

	// Staging is the index status relative to HEAD.
	Staging gogit.StatusCode

	// Worktree is the working tree status relative to the index.
	Worktree gogit.StatusCode
}

// ChangeFilter reports whether a change should be kept.
type ChangeFilter func(Change) bool

// Common ChangeFilter functions for narrowing ChangedPaths

// PathFilter keeps changes whose path matches the given pattern. The pattern
// can include wildcards (* and ?).
func PathFilter(pattern string) ChangeFilter {
	return func(c Change) bool {
		matched, _ := filepath.Match(pattern, c.Path)
		return matched
	}
}

// PathPrefixFilter keeps changes with paths starting with the given prefix.
// This is useful for filtering by directory.
func PathPrefixFilter(prefix string) ChangeFilter {
	return func(c Change) bool {
		return strings.HasPrefix(c.Path, prefix)
	}
}

// ExtensionFilter keeps changes for files with the given extensions.
// Extensions should include the dot (e.g., ".go", ".js").
func ExtensionFilter(extensions ...string) ChangeFilter {
	extSet := make(map[string]bool)
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = true
	}

	return func(c Change) bool {
		return extSet[strings.ToLower(filepath.Ext(c.Path))]
	}
}

// AddedFilter keeps files newly added to the index.
func AddedFilter() ChangeFilter {
	return func(c Change) bool {
		return c.Staging == gogit.Added
	}
}

// DeletedFilter keeps files deleted in the index or the working tree.
func DeletedFilter() ChangeFilter {
	return func(c Change) bool {
		return c.Staging == gogit.Deleted || c.Worktree == gogit.Deleted
	}
}

// ModifiedFilter keeps files modified in the index or the working tree.
func ModifiedFilter() ChangeFilter {
	return func(c Change) bool {
		return c.Staging == gogit.Modified || c.Worktree == gogit.Modified
	}
}

// UnstagedFilter keeps files with working tree changes not yet in the index.
// These are the changes a plain diff reports.
func UnstagedFilter() ChangeFilter {
	return func(c Change) bool {
		return c.Worktree != gogit.Unmodified
	}
}

// AndFilter combines multiple filters with AND logic - all must pass.
func AndFilter(filters ...ChangeFilter) ChangeFilter {
	return func(c Change) bool {
		for _, filter := range filters {
			if filter != nil && !filter(c) {
				return false
			}
		}
		return true
	}
}

// OrFilter combines multiple filters with OR logic - at least one must pass.
func OrFilter(filters ...ChangeFilter) ChangeFilter {
	return func(c Change) bool {
		for _, filter := range filters {
			if filter != nil && filter(c) {
				return true
			}
		}
		return false
	}
}

// NotFilter inverts the result of another filter.
func NotFilter(filter ChangeFilter) ChangeFilter {
	return func(c Change) bool {
		return filter == nil || !filter(c)
	}
}
