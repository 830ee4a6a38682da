package stages

import (
	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultIgnorePatterns are the support files dropped from the output.
var DefaultIgnorePatterns = []string{"css/*", "sass/*", "*/data.json", "data.json"}

// Ignore removes matching paths from the tree. It runs last so that no
// embedded reference outlives its record in the written output.
type Ignore struct {
	patterns []string
}

func NewIgnore(patterns []string) (*Ignore, error) {
	if err := pathmatch.Validate(patterns); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "ignore: invalid pattern").Fatal().Build()
	}
	return &Ignore{patterns: patterns}, nil
}

func (s *Ignore) Transform(bc *build.Context) error {
	keys, err := matchTree(bc.Files, s.patterns)
	if err != nil {
		return err
	}
	for _, k := range keys {
		bc.Files.Remove(k)
	}
	bc.Logger.Debug("Removed support files", logfields.Files(len(keys)))
	return nil
}
