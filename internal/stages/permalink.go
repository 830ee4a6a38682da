package stages

import (
	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultPermalinkPatterns selects index files at any depth, the site root included.
var DefaultPermalinkPatterns = []string{"**/index.*"}

// Permalinks sets the permalink attribute of matching files to the URL path
// of their directory.
type Permalinks struct {
	patterns []string
}

// NewPermalinks creates the stage. Nil patterns mean DefaultPermalinkPatterns.
func NewPermalinks(patterns []string) (*Permalinks, error) {
	if patterns == nil {
		patterns = DefaultPermalinkPatterns
	}
	if err := pathmatch.Validate(patterns); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "permalinks: invalid pattern").Fatal().Build()
	}
	return &Permalinks{patterns: patterns}, nil
}

// Permalink is the URL path of the directory holding key: "/" for root-level
// keys, "/<dir>/" otherwise.
func Permalink(key string) string {
	dir := dirOf(key)
	if dir == "" {
		return "/"
	}
	return "/" + dir + "/"
}

func (s *Permalinks) Transform(bc *build.Context) error {
	keys, err := matchTree(bc.Files, s.patterns)
	if err != nil {
		return err
	}
	for _, key := range keys {
		f, _ := bc.Files.Get(key)
		f.Set(filetree.KeyPermalink, Permalink(key))
	}
	bc.Logger.Debug("Assigned permalinks", logfields.Files(len(keys)))
	return nil
}
