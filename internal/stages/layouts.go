package stages

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// LayoutOptions configures the Layouts stage.
type LayoutOptions struct {
	Dir         string // layout templates
	PartialsDir string // optional; each file becomes a template named after its basename
	Default     string // layout used when a record has no layout attribute
	Patterns    []string
}

// DefaultLayoutPatterns selects HTML pages at the root and one level down,
// skipping fragments whose name starts with an underscore.
var DefaultLayoutPatterns = []string{"*.html", "*/*.html", "!_*.html", "!*/_*.html"}

// Layouts wraps page contents in html/template layouts.
//
// Each page is rendered with its attributes as template data plus:
//
//	.contents     the rendered page body
//	.path         the page's tree key
//	.site         site metadata
//	.collections  named collections
type Layouts struct {
	opts LayoutOptions
}

func NewLayouts(opts LayoutOptions) (*Layouts, error) {
	if opts.Dir == "" {
		return nil, ferrors.ConfigError("layouts: directory is required").Build()
	}
	if opts.Default == "" {
		return nil, ferrors.ConfigError("layouts: default layout is required").Build()
	}
	if opts.Patterns == nil {
		opts.Patterns = DefaultLayoutPatterns
	}
	if err := pathmatch.Validate(opts.Patterns); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "layouts: invalid pattern").Fatal().Build()
	}
	return &Layouts{opts: opts}, nil
}

func (s *Layouts) Transform(bc *build.Context) error {
	keys, err := matchTree(bc.Files, s.opts.Patterns)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	funcs := DefaultFuncs()
	maps.Copy(funcs, bc.Site.Funcs)
	base, err := s.loadPartials(funcs)
	if err != nil {
		return err
	}

	cache := make(map[string]*template.Template)
	for _, key := range keys {
		f, _ := bc.Files.Get(key)
		name := f.String(filetree.KeyLayout)
		if name == "" {
			name = s.opts.Default
		}

		tmpl, ok := cache[name]
		if !ok {
			tmpl, err = s.loadLayout(base, name)
			if err != nil {
				return ferrors.WrapError(err, ferrors.CategoryReference, "layout not found").
					Fatal().
					WithContext("target", key).
					WithContext("layout", name).
					Build()
			}
			cache[name] = tmpl
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, templateData(bc, key, f)); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryBuild, "layout render failed").
				Fatal().
				WithContext("target", key).
				WithContext("layout", name).
				Build()
		}
		f.Contents = buf.Bytes()
	}
	bc.Logger.Debug("Applied layouts", logfields.Files(len(keys)))
	return nil
}

func (s *Layouts) loadPartials(funcs template.FuncMap) (*template.Template, error) {
	base := template.New("").Funcs(funcs)
	if s.opts.PartialsDir == "" {
		return base, nil
	}
	entries, err := os.ReadDir(s.opts.PartialsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read partials").
			Fatal().
			WithContext("path", s.opts.PartialsDir).
			Build()
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.opts.PartialsDir, e.Name()))
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read partial").Fatal().Build()
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, err := base.New(name).Parse(string(raw)); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryBuild, "parse partial").
				Fatal().
				WithContext("partial", e.Name()).
				Build()
		}
	}
	return base, nil
}

func (s *Layouts) loadLayout(base *template.Template, name string) (*template.Template, error) {
	if !filepath.IsLocal(name) {
		return nil, errors.New("layout name must stay inside the layouts directory")
	}
	raw, err := os.ReadFile(filepath.Join(s.opts.Dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	t, err := base.Clone()
	if err != nil {
		return nil, err
	}
	return t.New(name).Parse(string(raw))
}

func templateData(bc *build.Context, key string, f *filetree.File) map[string]any {
	data := make(map[string]any, len(f.Keys())+4)
	for k, v := range f.Attrs() {
		data[string(k)] = v
	}
	data["contents"] = template.HTML(f.Contents) //nolint:gosec // page body rendered by earlier stages
	data["path"] = key
	data["site"] = bc.Site
	data["collections"] = bc.Site.Collections
	return data
}
