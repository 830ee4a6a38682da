// Package config loads the sitebuilder YAML configuration.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "sitebuilder.yaml"

// Config represents the application configuration.
type Config struct {
	Site        SiteConfig         `yaml:"site"`
	Source      string             `yaml:"source"`
	Destination string             `yaml:"destination"`
	Clean       bool               `yaml:"clean"` // Clean destination directory before writing
	Revision    RevisionConfig     `yaml:"revision"`
	Stylesheets StylesheetsConfig  `yaml:"stylesheets"`
	Data        PatternsConfig     `yaml:"data"`
	Permalinks  PatternsConfig     `yaml:"permalinks"`
	Inject      []InjectConfig     `yaml:"inject"`
	Fingerprint FingerprintConfig  `yaml:"fingerprint"`
	Collections []CollectionConfig `yaml:"collections"`
	Markdown    MarkdownConfig     `yaml:"markdown"`
	Feed        FeedConfig         `yaml:"feed"`
	Embed       []EmbedConfig      `yaml:"embed"`
	Layouts     LayoutsConfig      `yaml:"layouts"`
	Ignore      []string           `yaml:"ignore"`
	Watch       WatchConfig        `yaml:"watch"`

	// BaseDir anchors relative paths; it is the directory of the loaded file.
	BaseDir string `yaml:"-"`
}

// SiteConfig is global metadata exposed to layouts and the feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
}

type RevisionConfig struct {
	Enabled bool `yaml:"enabled"`
}

type StylesheetsConfig struct {
	Minify   bool     `yaml:"minify"`
	Patterns []string `yaml:"patterns,omitempty"`
}

// PatternsConfig is the shape of stages that only select files.
type PatternsConfig struct {
	Patterns []string `yaml:"patterns,omitempty"`
}

// InjectConfig configures one data injection rule. An empty To disables it.
type InjectConfig struct {
	Name     string         `yaml:"name"`
	From     []string       `yaml:"from,omitempty"`
	To       []string       `yaml:"to,omitempty"`
	Defaults map[string]any `yaml:"defaults,omitempty"`
}

type FingerprintConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Patterns []string `yaml:"patterns,omitempty"`
}

// CollectionConfig defines a named, ordered group of pages.
type CollectionConfig struct {
	Name            string   `yaml:"name"`
	Pattern         []string `yaml:"pattern"`
	SortBy          string   `yaml:"sort_by,omitempty"`
	Reverse         bool     `yaml:"reverse,omitempty"`
	Limit           int      `yaml:"limit,omitempty"`
	IncludeUnlisted bool     `yaml:"include_unlisted,omitempty"`
}

type MarkdownConfig struct {
	Patterns   []string `yaml:"patterns,omitempty"`
	GFM        bool     `yaml:"gfm"`
	Tables     bool     `yaml:"tables"`
	LangPrefix string   `yaml:"lang_prefix"`
	Highlight  bool     `yaml:"highlight"`
}

// FeedConfig configures the syndication feed. An empty Path disables it.
type FeedConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	Limit      int    `yaml:"limit,omitempty"`
}

// EmbedConfig configures one reference-resolution pass.
type EmbedConfig struct {
	Name    string   `yaml:"name"`
	From    string   `yaml:"from"`
	To      string   `yaml:"to"`
	Targets []string `yaml:"targets"`
}

type LayoutsConfig struct {
	Directory string   `yaml:"directory"`
	Partials  string   `yaml:"partials,omitempty"`
	Default   string   `yaml:"default"`
	Patterns  []string `yaml:"patterns,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Paths       []string      `yaml:"paths"`
	Debounce    time.Duration `yaml:"debounce"`
	Interval    time.Duration `yaml:"interval,omitempty"` // periodic full rebuild; 0 disables
	MetricsAddr string        `yaml:"metrics_addr,omitempty"`
}

// Default returns the stock blog configuration.
func Default() *Config {
	return &Config{
		Site:        SiteConfig{Title: "My Blog", URL: "https://example.com"},
		Source:      "src",
		Destination: "build",
		Clean:       true,
		Revision:    RevisionConfig{Enabled: true},
		Stylesheets: StylesheetsConfig{Minify: true, Patterns: []string{"**/*.css"}},
		Data:        PatternsConfig{Patterns: []string{"**/*.json", "**/*.yaml", "**/*.yml", "**/*.toml"}},
		Permalinks:  PatternsConfig{Patterns: []string{"**/index.*"}},
		Inject: []InjectConfig{
			{
				Name:     "home",
				From:     []string{"data.json"},
				To:       []string{"index.md"},
				Defaults: map[string]any{"stylesheets": []any{"css/site.css"}},
			},
			{
				Name:     "posts",
				From:     []string{"*/data.json"},
				To:       []string{"index.md"},
				Defaults: map[string]any{"stylesheets": []any{"../css/site.css"}},
			},
		},
		Fingerprint: FingerprintConfig{Enabled: true, Patterns: []string{"index.md", "*/index.md"}},
		Collections: []CollectionConfig{
			{Name: "posts", Pattern: []string{"*/index.md"}, SortBy: "date", Reverse: true},
		},
		Markdown: MarkdownConfig{
			Patterns:   []string{"**/*.md"},
			GFM:        true,
			Tables:     true,
			LangPrefix: "hljs lang-",
			Highlight:  true,
		},
		Feed: FeedConfig{Path: "feed.rss", Collection: "posts", Limit: 20},
		Embed: []EmbedConfig{
			{Name: "appends", From: "appends", To: "appends", Targets: []string{"*/*.html"}},
			{Name: "append", From: "append", To: "appended", Targets: []string{"*/*.html"}},
			{Name: "css", From: "stylesheets", To: "stylesheets", Targets: []string{"*.html", "*/*.html"}},
			{Name: "stylesheet", From: "stylesheet", To: "stylesheet", Targets: []string{"*.html", "*/*.html"}},
		},
		Layouts: LayoutsConfig{
			Directory: "layouts",
			Partials:  "partials",
			Default:   "post.html",
			Patterns:  []string{"*.html", "*/*.html", "!_*.html", "!*/_*.html"},
		},
		Ignore: []string{"css/*", "sass/*", "*/data.json", "data.json"},
		Watch: WatchConfig{
			Paths:    []string{"layouts", "partials", "src"},
			Debounce: 300 * time.Millisecond,
		},
	}
}

// Load reads configPath and overlays it on Default. Relative paths in the
// result are anchored at the file's directory.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	cfg.BaseDir = filepath.Dir(abs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init creates a new configuration file holding the defaults.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := "# sitebuilder configuration. Paths are relative to this file.\n"

	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path anchors p at BaseDir unless it is already absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// SourceDir is the absolute or BaseDir-relative source directory.
func (c *Config) SourceDir() string { return c.Path(c.Source) }

// DestinationDir is the absolute or BaseDir-relative output directory.
func (c *Config) DestinationDir() string { return c.Path(c.Destination) }

// Snapshot computes a stable hash of the configuration. Watch mode uses it to
// notice configuration edits between rebuilds.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
