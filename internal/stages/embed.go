package stages

import (
	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// EmbedOptions configures an Embed stage. From and To are required.
type EmbedOptions struct {
	// From names the attribute holding relative filenames on each target.
	From filetree.Key
	// To names the attribute receiving the resolved records.
	To filetree.Key
	// Targets selects the files the stage applies to.
	Targets []string
}

// Embed resolves a list of target-relative filenames into references to the
// records at those paths.
type Embed struct {
	opts EmbedOptions
}

// NewEmbed validates opts and creates the stage.
func NewEmbed(opts EmbedOptions) (*Embed, error) {
	if opts.From == "" {
		return nil, ferrors.ConfigError("embed: 'from' attribute is required").Build()
	}
	if opts.To == "" {
		return nil, ferrors.ConfigError("embed: 'to' attribute is required").Build()
	}
	if err := pathmatch.Validate(opts.Targets); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "embed: invalid pattern").Fatal().Build()
	}
	return &Embed{opts: opts}, nil
}

func (s *Embed) Transform(bc *build.Context) error {
	targets, err := matchTree(bc.Files, s.opts.Targets)
	if err != nil {
		return err
	}

	embedded := 0
	for _, target := range targets {
		f, _ := bc.Files.Get(target)
		names, err := f.Strings(s.opts.From)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "embed: bad attribute").
				Fatal().
				WithContext("target", target).
				WithContext("from", string(s.opts.From)).
				Build()
		}
		if len(names) == 0 {
			continue
		}

		dir := dirOf(target)
		refs := make([]*filetree.File, 0, len(names))
		for _, name := range names {
			p := resolveRelative(dir, name)
			ref, ok := bc.Files.Get(p)
			if !ok {
				return ferrors.ReferenceError("missing embed").
					WithContext("target", target).
					WithContext("from", string(s.opts.From)).
					WithContext("embed", p).
					Build()
			}
			refs = append(refs, ref)
		}
		f.Set(s.opts.To, refs)
		embedded++
	}
	bc.Logger.Debug("Embedded references", logfields.Attribute(string(s.opts.From)), logfields.Files(embedded))
	return nil
}
