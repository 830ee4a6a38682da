package stages

import (
	"bytes"
	"path"
	"strings"

	"github.com/gorilla/feeds"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// FeedOptions configures the Feed stage.
type FeedOptions struct {
	Path       string // output path; the extension picks the format (.rss, .atom, .json)
	Collection string
	Limit      int
}

// Feed writes a syndication feed built from a collection.
type Feed struct {
	opts FeedOptions
}

func NewFeed(opts FeedOptions) (*Feed, error) {
	if opts.Path == "" {
		return nil, ferrors.ConfigError("feed: path is required").Build()
	}
	if opts.Collection == "" {
		return nil, ferrors.ConfigError("feed: collection is required").Build()
	}
	switch path.Ext(opts.Path) {
	case ".rss", ".xml", ".atom", ".json":
	default:
		return nil, ferrors.ConfigError("feed: unsupported feed extension").
			WithContext("path", opts.Path).
			Build()
	}
	return &Feed{opts: opts}, nil
}

func (s *Feed) Transform(bc *build.Context) error {
	site := bc.Site
	members, ok := site.Collections[s.opts.Collection]
	if !ok {
		return ferrors.ReferenceError("feed: unknown collection").
			WithContext("collection", s.opts.Collection).
			Build()
	}

	base := strings.TrimSuffix(site.URL, "/")
	feed := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: base + "/"},
		Description: site.Description,
		Created:     site.BuiltAt,
	}
	if site.Author != "" {
		feed.Author = &feeds.Author{Name: site.Author}
	}

	for i, f := range members {
		if s.opts.Limit > 0 && i >= s.opts.Limit {
			break
		}
		link := base + f.String(filetree.KeyPermalink)
		item := &feeds.Item{
			Title:       f.String(filetree.KeyTitle),
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: f.String(filetree.KeyExcerpt),
		}
		if item.Description == "" {
			item.Description = firstParagraph(f.Contents)
		}
		if t, ok := f.Time(filetree.KeyDate); ok {
			item.Created = t
		}
		feed.Items = append(feed.Items, item)
	}

	var out string
	var err error
	switch path.Ext(s.opts.Path) {
	case ".atom":
		out, err = feed.ToAtom()
	case ".json":
		out, err = feed.ToJSON()
	default:
		out, err = feed.ToRss()
	}
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryBuild, "feed generation failed").Fatal().Build()
	}

	if err := bc.Files.Add(s.opts.Path, filetree.NewFile([]byte(out))); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryBuild, "feed output collides with an existing file").
			Fatal().
			WithContext("path", s.opts.Path).
			Build()
	}
	bc.Logger.Debug("Generated feed", logfields.Path(s.opts.Path), logfields.Files(len(feed.Items)))
	return nil
}

// firstParagraph returns the text of the first <p> element in rendered HTML.
func firstParagraph(doc []byte) string {
	z := html.NewTokenizer(bytes.NewReader(doc))
	depth := 0
	var text strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(text.String())
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "p" {
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "p" && depth > 0 {
				return strings.TrimSpace(text.String())
			}
		case html.TextToken:
			if depth > 0 {
				text.Write(z.Text())
			}
		}
	}
}
