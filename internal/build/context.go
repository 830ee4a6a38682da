package build

import (
	"html/template"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
)

// Site is global, read-mostly metadata shared by all stages. Stages may add
// collections and the source revision; everything else comes from config.
type Site struct {
	Title       string
	URL         string
	Description string
	Author      string

	// Revision is the source repository HEAD commit, empty when the source
	// directory is not under version control.
	Revision string

	// BuiltAt is the time the build started.
	BuiltAt time.Time

	// Collections maps a collection name to its ordered member records.
	Collections map[string][]*filetree.File

	// Funcs is the helper registry handed to the layout renderer.
	Funcs template.FuncMap
}

// Context is the mutable state passed through the stage chain. Exactly one
// stage holds it at a time.
type Context struct {
	Files  *filetree.Tree
	Site   *Site
	Logger *slog.Logger

	// SourceDir is the directory the tree was read from. Stages that look
	// outside the tree (layouts, revision) resolve relative to it.
	SourceDir string
}

// NewContext creates a build context over files.
func NewContext(files *filetree.Tree, site *Site, logger *slog.Logger) *Context {
	if site == nil {
		site = &Site{}
	}
	if site.Collections == nil {
		site.Collections = make(map[string][]*filetree.File)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{Files: files, Site: site, Logger: logger}
}
