package stages

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
)

type entry struct {
	path     string
	contents string
	attrs    map[string]any
}

func newTestContext(t *testing.T, entries ...entry) *build.Context {
	t.Helper()
	tree := filetree.New()
	for _, e := range entries {
		f := filetree.NewFile([]byte(e.contents))
		for k, v := range e.attrs {
			f.Set(filetree.Key(k), v)
		}
		require.NoError(t, tree.Add(e.path, f))
	}
	bc := build.NewContext(tree, &build.Site{Title: "Test Site", URL: "https://example.com"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	bc.SourceDir = t.TempDir()
	return bc
}

func mustGet(t *testing.T, bc *build.Context, p string) *filetree.File {
	t.Helper()
	f, ok := bc.Files.Get(p)
	require.True(t, ok, "missing %s", p)
	return f
}

// snapshot captures every record's attributes for before/after comparisons.
func snapshot(bc *build.Context) map[string]map[filetree.Key]any {
	out := make(map[string]map[filetree.Key]any)
	for _, p := range bc.Files.Paths() {
		f, _ := bc.Files.Get(p)
		out[p] = f.Attrs()
	}
	return out
}
