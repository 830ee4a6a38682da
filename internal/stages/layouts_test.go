package stages

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func layoutDirs(t *testing.T) LayoutOptions {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"layouts/post.html": `<title>{{.title}} | {{.site.Title}}</title>` +
			`<style>{{range .stylesheets}}{{css .}}{{end}}</style>` +
			`{{template "nav" .}}<main>{{.contents}}</main>` +
			`{{range .appends}}{{raw .}}{{end}}` +
			`{{with .date}}<time>{{date "MMMM D, YYYY" .}}</time>{{end}}`,
		"layouts/bare.html": `[{{shout .title}}]{{.contents}}`,
		"partials/nav.html": `<nav>{{.permalink}}</nav>`,
	})
	return LayoutOptions{
		Dir:         filepath.Join(root, "layouts"),
		PartialsDir: filepath.Join(root, "partials"),
		Default:     "post.html",
	}
}

func TestLayouts_RendersPagesWithEmbeds(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "post/index.html", contents: "<p>Body</p>", attrs: map[string]any{
			"title":     "Hello",
			"date":      "2015-03-01",
			"permalink": "/post/",
		}},
		entry{path: "post/_fragment.html", contents: "<aside>extra</aside>"},
		entry{path: "css/site.css", contents: "p{color:red}"},
	)
	page := mustGet(t, bc, "post/index.html")
	page.Set(filetree.KeyAppends, []*filetree.File{mustGet(t, bc, "post/_fragment.html")})
	page.Set(filetree.KeyStylesheets, []*filetree.File{mustGet(t, bc, "css/site.css")})

	st, err := NewLayouts(layoutDirs(t))
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	out := string(page.Contents)
	assert.Contains(t, out, "<title>Hello | Test Site</title>")
	assert.Contains(t, out, "<style>p{color:red}</style>")
	assert.Contains(t, out, "<nav>/post/</nav>")
	assert.Contains(t, out, "<main><p>Body</p></main>")
	assert.Contains(t, out, "<aside>extra</aside>")
	assert.Contains(t, out, "<time>March 1, 2015</time>")

	// Underscore fragments are not wrapped.
	assert.Equal(t, "<aside>extra</aside>", string(mustGet(t, bc, "post/_fragment.html").Contents))
}

func TestLayouts_PerFileLayoutAndSiteFuncs(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "index.html", contents: "<p>home</p>", attrs: map[string]any{"title": "home", "layout": "bare.html"}},
	)
	bc.Site.Funcs = template.FuncMap{"shout": strings.ToUpper}

	st, err := NewLayouts(layoutDirs(t))
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	assert.Equal(t, "[HOME]<p>home</p>", string(mustGet(t, bc, "index.html").Contents))
}

func TestLayouts_MissingLayout(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "index.html", attrs: map[string]any{"layout": "nope.html"}},
	)

	st, err := NewLayouts(layoutDirs(t))
	require.NoError(t, err)

	err = st.Transform(bc)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryReference))
	assert.Contains(t, err.Error(), "nope.html")
}

func TestLayouts_RejectsEscapingLayoutName(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "index.html", attrs: map[string]any{"layout": "../partials/nav.html"}},
	)

	st, err := NewLayouts(layoutDirs(t))
	require.NoError(t, err)
	assert.Error(t, st.Transform(bc))
}

func TestNewLayouts_Validation(t *testing.T) {
	_, err := NewLayouts(LayoutOptions{Default: "post.html"})
	assert.Error(t, err)
	_, err = NewLayouts(LayoutOptions{Dir: "layouts"})
	assert.Error(t, err)
}
