package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func TestNewEmbed_RequiresFromAndTo(t *testing.T) {
	_, err := NewEmbed(EmbedOptions{To: filetree.KeyAppended, Targets: []string{"*"}})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Contains(t, err.Error(), "from")

	_, err = NewEmbed(EmbedOptions{From: filetree.KeyAppends, Targets: []string{"*"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to")
}

func TestEmbed_ResolvesInOrder(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "post/index.html", attrs: map[string]any{"appends": []any{"b.html", "../shared/a.html", "./b.html"}}},
		entry{path: "post/b.html", contents: "<p>b</p>"},
		entry{path: "shared/a.html", contents: "<p>a</p>"},
	)

	st, err := NewEmbed(EmbedOptions{From: filetree.KeyAppends, To: filetree.KeyAppends, Targets: []string{"*/*.html"}})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	refs := mustGet(t, bc, "post/index.html").Files(filetree.KeyAppends)
	require.Len(t, refs, 3)
	assert.Same(t, mustGet(t, bc, "post/b.html"), refs[0])
	assert.Same(t, mustGet(t, bc, "shared/a.html"), refs[1])
	assert.Same(t, mustGet(t, bc, "post/b.html"), refs[2])
}

func TestEmbed_LeavesSourceListUntouched(t *testing.T) {
	names := []any{"style.css"}
	bc := newTestContext(t,
		entry{path: "post/index.html", attrs: map[string]any{"stylesheets": names}},
		entry{path: "post/style.css", contents: "p{}"},
	)

	st, err := NewEmbed(EmbedOptions{From: filetree.KeyStylesheets, To: "resolved", Targets: []string{"**/*.html"}})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	f := mustGet(t, bc, "post/index.html")
	assert.Equal(t, names, mustAttr(t, f, "stylesheets"))
	assert.Len(t, f.Files("resolved"), 1)
}

func TestEmbed_SingleStringIsOneElementList(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "index.html", attrs: map[string]any{"stylesheets": "css/site.css"}},
		entry{path: "css/site.css"},
	)

	st, err := NewEmbed(EmbedOptions{From: filetree.KeyStylesheets, To: filetree.KeyStylesheets, Targets: []string{"*.html"}})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	assert.Len(t, mustGet(t, bc, "index.html").Files(filetree.KeyStylesheets), 1)
}

func TestEmbed_SkipsTargetsWithoutAttribute(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "a.html"},
		entry{path: "b.html", attrs: map[string]any{"appends": []any{}}},
	)
	before := snapshot(bc)

	st, err := NewEmbed(EmbedOptions{From: filetree.KeyAppends, To: filetree.KeyAppended, Targets: []string{"*.html"}})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	assert.Equal(t, before, snapshot(bc))
}

func TestEmbed_MissingReferenceIsFatal(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "post/index.html", attrs: map[string]any{"appends": []any{"nope.html"}}},
	)

	st, err := NewEmbed(EmbedOptions{From: filetree.KeyAppends, To: filetree.KeyAppended, Targets: []string{"*/*.html"}})
	require.NoError(t, err)

	err = st.Transform(bc)
	require.Error(t, err)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryReference, ce.Category())
	assert.True(t, ce.IsFatal())

	target, _ := ce.Context().GetString("target")
	from, _ := ce.Context().GetString("from")
	missing, _ := ce.Context().GetString("embed")
	assert.Equal(t, "post/index.html", target)
	assert.Equal(t, "appends", from)
	assert.Equal(t, "post/nope.html", missing)
	assert.Contains(t, err.Error(), "post/nope.html")
}

func TestEmbed_RejectsNonStringEntries(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "index.html", attrs: map[string]any{"appends": []any{1}}},
	)

	st, err := NewEmbed(EmbedOptions{From: filetree.KeyAppends, To: filetree.KeyAppended, Targets: []string{"*.html"}})
	require.NoError(t, err)
	assert.Error(t, st.Transform(bc))
}

func TestEmbed_LeadingSlashIsRelativeToTarget(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "post/index.html", attrs: map[string]any{"appends": []any{"/x.html"}}},
		entry{path: "post/x.html", contents: "post fragment"},
		entry{path: "x.html", contents: "root fragment"},
	)

	st, err := NewEmbed(EmbedOptions{From: filetree.KeyAppends, To: filetree.KeyAppends, Targets: []string{"*/*.html"}})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	got := mustGet(t, bc, "post/index.html").Files(filetree.KeyAppends)
	require.Len(t, got, 1)
	assert.Same(t, mustGet(t, bc, "post/x.html"), got[0])
}

func TestEmbed_ParentReferenceFromRootIsMissing(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "index.html", attrs: map[string]any{"stylesheets": []any{"../css/site.css"}}},
		entry{path: "post/index.html", attrs: map[string]any{"stylesheets": []any{"../css/site.css"}}},
		entry{path: "css/site.css"},
	)

	st, err := NewEmbed(EmbedOptions{From: filetree.KeyStylesheets, To: filetree.KeyStylesheets, Targets: []string{"post/*.html"}})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))
	assert.Same(t, mustGet(t, bc, "css/site.css"), mustGet(t, bc, "post/index.html").Files(filetree.KeyStylesheets)[0])

	st, err = NewEmbed(EmbedOptions{From: filetree.KeyStylesheets, To: filetree.KeyStylesheets, Targets: []string{"*.html"}})
	require.NoError(t, err)
	err = st.Transform(bc)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryReference))
}
