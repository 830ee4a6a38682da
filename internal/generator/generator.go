// Package generator assembles the build pipeline from configuration and runs
// it against the source directory.
package generator

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/source"
	"git.home.luguber.info/inful/sitebuilder/internal/stages"
)

// Generator builds a site described by a configuration.
type Generator struct {
	cfg      *config.Config
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRecorder sets the metrics recorder (default NoopRecorder).
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a generator for cfg.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Build constructs the pipeline, reads the source tree, runs every stage and
// writes the result. Configuration errors are reported before the source is
// read; a failed stage leaves the destination untouched.
func (g *Generator) Build(ctx context.Context) (*build.Report, error) {
	defs, err := g.Pipeline()
	if err != nil {
		return nil, err
	}

	tree, err := source.Read(g.cfg.SourceDir())
	if err != nil {
		return nil, err
	}

	bc := build.NewContext(tree, g.site(), g.logger)
	bc.SourceDir = g.cfg.SourceDir()

	report, err := build.Run(ctx, bc, defs, g.recorder)
	if err != nil {
		return report, err
	}

	n, err := source.Write(bc.Files, g.cfg.DestinationDir(), g.cfg.Clean)
	report.FilesWritten = n
	g.recorder.SetFilesWritten(n)
	if err != nil {
		return report, err
	}
	g.logger.Info("Site written",
		logfields.BuildID(report.BuildID),
		logfields.Path(g.cfg.DestinationDir()),
		logfields.Files(n))
	return report, nil
}

func (g *Generator) site() *build.Site {
	return &build.Site{
		Title:       g.cfg.Site.Title,
		URL:         g.cfg.Site.URL,
		Description: g.cfg.Site.Description,
		Author:      g.cfg.Site.Author,
		BuiltAt:     g.now(),
		Funcs:       stages.DefaultFuncs(),
	}
}

// Pipeline builds the ordered stage list. Every stage validates its options
// here so misconfiguration fails before any file is touched.
func (g *Generator) Pipeline() ([]build.StageDef, error) {
	c := g.cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p := build.NewPipeline()
	p.AddIf(c.Revision.Enabled, build.StageRevision, stages.NewRevision())

	if c.Stylesheets.Minify {
		st, err := stages.NewStylesheets(c.Stylesheets.Patterns)
		if err != nil {
			return nil, err
		}
		p.Add(build.StageStylesheets, st)
	}

	data, err := stages.NewData(c.Data.Patterns)
	if err != nil {
		return nil, err
	}
	p.Add(build.StageData, data)

	permalinks, err := stages.NewPermalinks(c.Permalinks.Patterns)
	if err != nil {
		return nil, err
	}
	p.Add(build.StagePermalinks, permalinks)

	for _, in := range c.Inject {
		inject, err := stages.NewInject(stages.InjectOptions{
			From:     in.From,
			To:       in.To,
			Defaults: in.Defaults,
		})
		if err != nil {
			return nil, err
		}
		p.AddIf(len(in.To) > 0, build.InjectStageName(in.Name), inject)
	}

	if c.Fingerprint.Enabled {
		fp, err := stages.NewFingerprint(c.Fingerprint.Patterns)
		if err != nil {
			return nil, err
		}
		p.Add(build.StageFingerprint, fp)
	}

	if len(c.Collections) > 0 {
		defs := make([]stages.CollectionOptions, 0, len(c.Collections))
		for _, col := range c.Collections {
			defs = append(defs, stages.CollectionOptions{
				Name:            col.Name,
				Patterns:        col.Pattern,
				SortBy:          filetree.Key(col.SortBy),
				Reverse:         col.Reverse,
				Limit:           col.Limit,
				IncludeUnlisted: col.IncludeUnlisted,
			})
		}
		collections, err := stages.NewCollections(defs)
		if err != nil {
			return nil, err
		}
		p.Add(build.StageCollections, collections)
	}

	md, err := stages.NewMarkdown(stages.MarkdownOptions{
		Patterns:   c.Markdown.Patterns,
		GFM:        c.Markdown.GFM,
		Tables:     c.Markdown.Tables,
		LangPrefix: c.Markdown.LangPrefix,
		Highlight:  c.Markdown.Highlight,
	})
	if err != nil {
		return nil, err
	}
	p.Add(build.StageMarkdown, md)

	if c.Feed.Path != "" {
		feed, err := stages.NewFeed(stages.FeedOptions{Path: c.Feed.Path, Collection: c.Feed.Collection, Limit: c.Feed.Limit})
		if err != nil {
			return nil, err
		}
		p.Add(build.StageFeed, feed)
	}

	for _, e := range c.Embed {
		embed, err := stages.NewEmbed(stages.EmbedOptions{
			From:    filetree.Key(e.From),
			To:      filetree.Key(e.To),
			Targets: e.Targets,
		})
		if err != nil {
			return nil, err
		}
		p.Add(build.EmbedStageName(e.Name), embed)
	}

	layouts, err := stages.NewLayouts(stages.LayoutOptions{
		Dir:         c.Path(c.Layouts.Directory),
		PartialsDir: c.Path(c.Layouts.Partials),
		Default:     c.Layouts.Default,
		Patterns:    c.Layouts.Patterns,
	})
	if err != nil {
		return nil, err
	}
	p.Add(build.StageLayouts, layouts)

	ignore, err := stages.NewIgnore(c.Ignore)
	if err != nil {
		return nil, err
	}
	p.Add(build.StageIgnore, ignore)

	return p.Build(), nil
}
