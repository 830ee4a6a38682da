// Package commands implements the sitebuilder command line.
package commands

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"1" help:"Build the site once"`
	Watch WatchCmd `cmd:"" help:"Build the site and rebuild whenever sources change"`
	New   NewCmd   `cmd:"" help:"Create a new post interactively"`
	Init  InitCmd  `cmd:"" help:"Write a configuration file holding the defaults"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// Execute runs the selected command and maps its error to an exit code.
func Execute(parser *kong.Context, cli *CLI, g *Global) int {
	err := parser.Run(g, cli)
	if err == nil {
		return 0
	}
	if g.Logger == nil {
		g.Logger = slog.Default()
	}
	return ferrors.NewCLIErrorAdapter(cli.Verbose, g.Logger).Report(err)
}

// LoadConfig loads the configuration file. A missing file is only tolerated
// at the default location, where the defaults apply relative to the working
// directory.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(path); path != config.DefaultFile || !errors.Is(statErr, os.ErrNotExist) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "load config").
			Fatal().
			WithContext("path", path).
			Build()
	}

	cfg = config.Default()
	wd, err := os.Getwd()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve working directory").Fatal().Build()
	}
	cfg.BaseDir = wd
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configFileToWatch returns the absolute config path when it exists.
func configFileToWatch(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	if _, err := os.Stat(abs); err != nil {
		return ""
	}
	return abs
}
