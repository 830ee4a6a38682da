package stages

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const cssMediaType = "text/css"

var DefaultStylesheetPatterns = []string{"**/*.css"}

// Stylesheets minifies CSS files in place.
type Stylesheets struct {
	patterns []string
	m        *minify.M
}

func NewStylesheets(patterns []string) (*Stylesheets, error) {
	if patterns == nil {
		patterns = DefaultStylesheetPatterns
	}
	if err := pathmatch.Validate(patterns); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "stylesheets: invalid pattern").Fatal().Build()
	}
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)
	return &Stylesheets{patterns: patterns, m: m}, nil
}

func (s *Stylesheets) Transform(bc *build.Context) error {
	keys, err := matchTree(bc.Files, s.patterns)
	if err != nil {
		return err
	}
	for _, key := range keys {
		f, _ := bc.Files.Get(key)
		out, err := s.m.Bytes(cssMediaType, f.Contents)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryBuild, "stylesheet compilation failed").
				Fatal().
				WithContext("path", key).
				Build()
		}
		f.Contents = out
	}
	bc.Logger.Debug("Compiled stylesheets", logfields.Files(len(keys)))
	return nil
}
