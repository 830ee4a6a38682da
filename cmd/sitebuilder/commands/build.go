package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/generator"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Report string `name:"report" help:"Write a JSON build report to this path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, buildErr := generator.New(cfg, generator.WithLogger(g.Logger)).Build(ctx)
	if report != nil && b.Report != "" {
		if err := report.Persist(b.Report); err != nil {
			g.Logger.Warn("Failed to write build report", "path", b.Report, "error", err)
		}
	}
	if buildErr != nil {
		return buildErr
	}
	if report == nil {
		return ferrors.InternalError("build finished without a report").Build()
	}
	fmt.Println(report.Summary())
	return nil
}
