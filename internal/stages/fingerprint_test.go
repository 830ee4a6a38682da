package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
)

func TestFingerprint_StableAndContentSensitive(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "a/index.md", contents: "same", attrs: map[string]any{"title": "T"}},
		entry{path: "b/index.md", contents: "same", attrs: map[string]any{"title": "T"}},
		entry{path: "c/index.md", contents: "different", attrs: map[string]any{"title": "T"}},
		entry{path: "c/other.md", contents: "same"},
	)

	st, err := NewFingerprint(nil)
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	a := mustGet(t, bc, "a/index.md").String(filetree.KeyFingerprint)
	b := mustGet(t, bc, "b/index.md").String(filetree.KeyFingerprint)
	c := mustGet(t, bc, "c/index.md").String(filetree.KeyFingerprint)
	assert.NotEmpty(t, a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.False(t, mustGet(t, bc, "c/other.md").Has(filetree.KeyFingerprint))

	// Re-running ignores the stored fingerprint.
	require.NoError(t, st.Transform(bc))
	assert.Equal(t, a, mustGet(t, bc, "a/index.md").String(filetree.KeyFingerprint))
}
