package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// testRepo is an on-disk repository in a temporary directory.
type testRepo struct {
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
}

// setupTestRepo initializes a repository with the given files committed.
func setupTestRepo(t *testing.T, files map[string]string) *testRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err, "failed to initialize test repository")

	wt, err := repo.Worktree()
	require.NoError(t, err, "failed to open worktree")

	tr := &testRepo{dir: dir, repo: repo, wt: wt}
	for name, content := range files {
		tr.writeFile(t, name, content)
	}
	if len(files) > 0 {
		tr.commitAll(t, "Initial commit")
	}
	return tr
}

// writeFile writes content to name, creating parent directories.
func (tr *testRepo) writeFile(t *testing.T, name, content string) {
	t.Helper()

	p := filepath.Join(tr.dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644), "failed to write %s", name)
}

// readFile returns the content of name.
func (tr *testRepo) readFile(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(tr.dir, filepath.FromSlash(name)))
	require.NoError(t, err, "failed to read %s", name)
	return string(data)
}

// commitAll stages every change and commits it.
func (tr *testRepo) commitAll(t *testing.T, msg string) {
	t.Helper()

	require.NoError(t, tr.wt.AddWithOptions(&gogit.AddOptions{All: true}), "failed to stage changes")
	_, err := tr.wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err, "failed to commit")
}
