package stages

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// CollectionOptions defines one named collection.
type CollectionOptions struct {
	Name            string
	Patterns        []string
	SortBy          filetree.Key
	Reverse         bool
	Limit           int  // 0 means unlimited
	IncludeUnlisted bool // unlisted records are skipped by default
}

// Collections groups matching records into ordered, named lists on the site
// metadata and links neighbours through previous/next attributes.
type Collections struct {
	defs []CollectionOptions
}

func NewCollections(defs []CollectionOptions) (*Collections, error) {
	for _, d := range defs {
		if d.Name == "" {
			return nil, ferrors.ConfigError("collections: name is required").Build()
		}
		if err := pathmatch.Validate(d.Patterns); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "collections: invalid pattern").
				Fatal().
				WithContext("collection", d.Name).
				Build()
		}
	}
	return &Collections{defs: defs}, nil
}

func (s *Collections) Transform(bc *build.Context) error {
	for _, d := range s.defs {
		keys, err := matchTree(bc.Files, d.Patterns)
		if err != nil {
			return err
		}
		members := make([]*filetree.File, 0, len(keys))
		for _, k := range keys {
			f, _ := bc.Files.Get(k)
			if f.Bool(filetree.KeyUnlisted) && !d.IncludeUnlisted {
				continue
			}
			members = append(members, f)
		}

		if d.SortBy != "" {
			sortRecords(members, d.SortBy)
		}
		if d.Reverse {
			slices.Reverse(members)
		}
		if d.Limit > 0 && len(members) > d.Limit {
			members = members[:d.Limit]
		}

		for i, f := range members {
			names, _ := f.Get(filetree.KeyCollection)
			list, _ := names.([]string)
			f.Set(filetree.KeyCollection, append(slices.Clone(list), d.Name))
			if i > 0 {
				f.Set(filetree.KeyPrevious, members[i-1])
			}
			if i < len(members)-1 {
				f.Set(filetree.KeyNext, members[i+1])
			}
		}
		bc.Site.Collections[d.Name] = members
		bc.Logger.Debug("Built collection", "collection", d.Name, logfields.Files(len(members)))
	}
	return nil
}

// sortRecords orders records ascending by key. Dates compare chronologically,
// numbers numerically and anything else by its string form. Records missing
// the key sort first. The sort is stable.
func sortRecords(files []*filetree.File, key filetree.Key) {
	sort.SliceStable(files, func(i, j int) bool {
		return compareAttr(files[i], files[j], key) < 0
	})
}

func compareAttr(a, b *filetree.File, key filetree.Key) int {
	av, aok := a.Get(key)
	bv, bok := b.Get(key)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	if at, ok := filetree.ParseTime(av); ok {
		if bt, ok := filetree.ParseTime(bv); ok {
			return at.Compare(bt)
		}
	}
	if an, ok := toFloat(av); ok {
		if bn, ok := toFloat(bv); ok {
			return cmp.Compare(an, bn)
		}
	}
	return cmp.Compare(fmt.Sprint(av), fmt.Sprint(bv))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
