package stages

import (
	"errors"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Revision records the HEAD commit of the repository holding the source
// directory on the site metadata. A source tree outside version control, or
// a repository without commits, leaves the revision empty.
type Revision struct{}

func NewRevision() *Revision { return &Revision{} }

func (s *Revision) Transform(bc *build.Context) error {
	if bc.SourceDir == "" {
		return nil
	}
	repo, err := git.PlainOpenWithOptions(bc.SourceDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			bc.Logger.Debug("Source is not a git repository", logfields.Path(bc.SourceDir))
			return nil
		}
		bc.Logger.Warn("Failed to open git repository", logfields.Path(bc.SourceDir), logfields.Error(err))
		return nil
	}

	ref, err := repo.Head()
	if err != nil {
		bc.Logger.Debug("Repository has no HEAD", logfields.Path(bc.SourceDir), logfields.Error(err))
		return nil
	}
	bc.Site.Revision = ref.Hash().String()
	return nil
}
