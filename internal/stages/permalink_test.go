package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
)

func TestPermalinks_DefaultPattern(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "path-to-files/index.html"},
		entry{path: "path-to-files/index.txt"},
		entry{path: "path-to-files/other.html"},
		entry{path: "index.html"},
	)

	st, err := NewPermalinks(nil)
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	assert.Equal(t, "/path-to-files/", mustGet(t, bc, "path-to-files/index.html").String(filetree.KeyPermalink))
	assert.Equal(t, "/path-to-files/", mustGet(t, bc, "path-to-files/index.txt").String(filetree.KeyPermalink))
	assert.False(t, mustGet(t, bc, "path-to-files/other.html").Has(filetree.KeyPermalink))
	assert.Equal(t, "/", mustGet(t, bc, "index.html").String(filetree.KeyPermalink))
}

func TestPermalinks_NestedPattern(t *testing.T) {
	bc := newTestContext(t, entry{path: "one/two/three/test.html"})

	st, err := NewPermalinks([]string{"**/*.html"})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))
	// Idempotent.
	require.NoError(t, st.Transform(bc))

	assert.Equal(t, "/one/two/three/", mustGet(t, bc, "one/two/three/test.html").String(filetree.KeyPermalink))
}

func TestPermalinks_NoMatchIsNoop(t *testing.T) {
	bc := newTestContext(t, entry{path: "a/page.md", attrs: map[string]any{"title": "x"}})
	before := snapshot(bc)

	st, err := NewPermalinks([]string{"*.nothing"})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	assert.Equal(t, before, snapshot(bc))
}

func TestNewPermalinks_InvalidPattern(t *testing.T) {
	_, err := NewPermalinks([]string{"[oops"})
	assert.Error(t, err)
}
