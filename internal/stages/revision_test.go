package stages

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevision_ReadsHeadFromEnclosingRepository(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.md"), []byte("hi"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("src/index.md")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	bc := newTestContext(t)
	bc.SourceDir = src
	require.NoError(t, NewRevision().Transform(bc))
	assert.Equal(t, hash.String(), bc.Site.Revision)
}

func TestRevision_NotARepository(t *testing.T) {
	bc := newTestContext(t)
	require.NoError(t, NewRevision().Transform(bc))
	assert.Empty(t, bc.Site.Revision)
}

func TestRevision_EmptyRepository(t *testing.T) {
	root := t.TempDir()
	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	bc := newTestContext(t)
	bc.SourceDir = root
	require.NoError(t, NewRevision().Transform(bc))
	assert.Empty(t, bc.Site.Revision)
}
