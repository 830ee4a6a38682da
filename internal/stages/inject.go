package stages

import (
	"fmt"
	"maps"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultInjectFrom selects data files one directory below the root.
var DefaultInjectFrom = []string{"*/data.json"}

// InjectOptions configures the Inject stage.
type InjectOptions struct {
	// From selects source files by pattern. Nil means DefaultInjectFrom.
	From []string
	// To lists target patterns relative to each source's directory.
	// Empty means the stage does nothing.
	To []string
	// Defaults are copied onto every target before the source's own data.
	Defaults map[string]any
}

// Inject copies the parsed data of source files onto sibling target files.
//
// Sources are visited in pattern order. For each source the merged attributes
// (defaults overlaid with the source's data) are shallow-copied onto every
// tree key matched by the source-relative To patterns, so when several
// sources reach the same target the last one wins per key.
type Inject struct {
	from     []string
	to       []string
	defaults map[string]any
}

// NewInject validates opts and creates the stage.
func NewInject(opts InjectOptions) (*Inject, error) {
	from := opts.From
	if from == nil {
		from = DefaultInjectFrom
	}
	for _, set := range [][]string{from, opts.To} {
		if err := pathmatch.Validate(set); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "inject: invalid pattern").Fatal().Build()
		}
	}
	return &Inject{from: from, to: opts.To, defaults: maps.Clone(opts.Defaults)}, nil
}

func (s *Inject) Transform(bc *build.Context) error {
	if len(s.to) == 0 {
		return nil
	}
	sources, err := matchTree(bc.Files, s.from)
	if err != nil {
		return err
	}

	for _, src := range sources {
		f, _ := bc.Files.Get(src)
		merged := make(map[string]any, len(s.defaults))
		maps.Copy(merged, s.defaults)
		maps.Copy(merged, f.Data())

		targets, err := matchTree(bc.Files, joinPatterns(dirOf(src), s.to))
		if err != nil {
			return err
		}
		for _, target := range targets {
			tf, _ := bc.Files.Get(target)
			if err := copyAttrs(tf, merged); err != nil {
				return ferrors.WrapError(err, ferrors.CategoryBuild, "inject failed").
					Fatal().
					WithContext("source", src).
					WithContext("target", target).
					Build()
			}
		}
		bc.Logger.Debug("Injected data", logfields.Path(src), logfields.Files(len(targets)))
	}
	return nil
}

// copyAttrs shallow-copies attrs onto f, overwriting existing keys.
func copyAttrs(f *filetree.File, attrs map[string]any) error {
	for k, v := range attrs {
		key := filetree.Key(k)
		if key == filetree.KeyContents {
			switch v.(type) {
			case string, []byte:
			default:
				return fmt.Errorf("attribute %q must be a string, got %T", k, v)
			}
		}
		f.Set(key, v)
	}
	return nil
}
