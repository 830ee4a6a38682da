package config

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Validate checks the configuration for mistakes that would otherwise only
// surface mid-build.
func (c *Config) Validate() error {
	if c.Source == "" {
		return ferrors.ConfigError("source directory is required").WithContext("field", "source").Build()
	}
	if c.Destination == "" {
		return ferrors.ConfigError("destination directory is required").WithContext("field", "destination").Build()
	}
	if filepath.Clean(c.SourceDir()) == filepath.Clean(c.DestinationDir()) {
		return ferrors.ConfigError("source and destination must differ").WithContext("field", "destination").Build()
	}

	patternSets := map[string][]string{
		"stylesheets.patterns": c.Stylesheets.Patterns,
		"data.patterns":        c.Data.Patterns,
		"permalinks.patterns":  c.Permalinks.Patterns,
		"fingerprint.patterns": c.Fingerprint.Patterns,
		"markdown.patterns":    c.Markdown.Patterns,
		"layouts.patterns":     c.Layouts.Patterns,
		"ignore":               c.Ignore,
	}
	for i, in := range c.Inject {
		patternSets[fmt.Sprintf("inject[%d].from", i)] = in.From
		patternSets[fmt.Sprintf("inject[%d].to", i)] = in.To
	}
	for i, col := range c.Collections {
		patternSets[fmt.Sprintf("collections[%d].pattern", i)] = col.Pattern
	}
	for i, e := range c.Embed {
		patternSets[fmt.Sprintf("embed[%d].targets", i)] = e.Targets
	}
	for _, field := range slices.Sorted(maps.Keys(patternSets)) {
		if err := pathmatch.Validate(patternSets[field]); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid pattern").
				Fatal().
				WithContext("field", field).
				Build()
		}
	}

	names := make(map[string]bool)
	for i, col := range c.Collections {
		if col.Name == "" {
			return ferrors.ConfigError("collection name is required").
				WithContext("field", fmt.Sprintf("collections[%d].name", i)).
				Build()
		}
		if names[col.Name] {
			return ferrors.ConfigError("duplicate collection").WithContext("collection", col.Name).Build()
		}
		names[col.Name] = true
	}

	injectNames := make(map[string]bool)
	for i, in := range c.Inject {
		switch {
		case in.Name == "":
			return ferrors.ConfigError("inject name is required").
				WithContext("field", fmt.Sprintf("inject[%d].name", i)).
				Build()
		case injectNames[in.Name]:
			return ferrors.ConfigError("duplicate inject name").WithContext("inject", in.Name).Build()
		}
		injectNames[in.Name] = true
	}

	embedNames := make(map[string]bool)
	for i, e := range c.Embed {
		field := fmt.Sprintf("embed[%d]", i)
		switch {
		case e.Name == "":
			return ferrors.ConfigError("embed name is required").WithContext("field", field+".name").Build()
		case embedNames[e.Name]:
			return ferrors.ConfigError("duplicate embed name").WithContext("embed", e.Name).Build()
		case e.From == "":
			return ferrors.ConfigError("embed 'from' attribute is required").WithContext("field", field+".from").Build()
		case e.To == "":
			return ferrors.ConfigError("embed 'to' attribute is required").WithContext("field", field+".to").Build()
		}
		embedNames[e.Name] = true
	}

	if c.Feed.Path != "" && !names[c.Feed.Collection] {
		return ferrors.ConfigError("feed references an unknown collection").
			WithContext("collection", c.Feed.Collection).
			Build()
	}
	if c.Layouts.Directory == "" || c.Layouts.Default == "" {
		return ferrors.ConfigError("layouts directory and default layout are required").WithContext("field", "layouts").Build()
	}
	if c.Watch.Debounce < 0 || c.Watch.Interval < 0 {
		return ferrors.ConfigError("watch durations must not be negative").WithContext("field", "watch").Build()
	}
	return nil
}
