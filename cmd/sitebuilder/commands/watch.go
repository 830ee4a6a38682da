package commands

import (
	"context"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address (overrides watch.metrics_addr)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := watch.Options{
		Debounce:    cfg.Watch.Debounce,
		Interval:    cfg.Watch.Interval,
		MetricsAddr: cfg.Watch.MetricsAddr,
		Logger:      g.Logger,
	}
	if w.MetricsAddr != "" {
		opts.MetricsAddr = w.MetricsAddr
	}
	for _, p := range cfg.Watch.Paths {
		opts.Paths = append(opts.Paths, cfg.Path(p))
	}
	if cfgFile := configFileToWatch(root.Config); cfgFile != "" {
		opts.Paths = append(opts.Paths, cfgFile)
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if opts.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		opts.MetricsHandler = metrics.HTTPHandler(reg)
	}

	b := &rebuilder{root: root, g: g, recorder: recorder, snapshot: cfg.Snapshot()}
	return watch.New(b.build, opts).Run(ctx)
}

// rebuilder reloads the configuration before every build so edits to the
// config file take effect without restarting.
type rebuilder struct {
	root     *CLI
	g        *Global
	recorder metrics.Recorder
	snapshot string
}

func (r *rebuilder) build(ctx context.Context) error {
	cfg, err := LoadConfig(r.root.Config)
	if err != nil {
		return err
	}
	if snap := cfg.Snapshot(); snap != r.snapshot {
		r.g.Logger.Info("Configuration changed", "path", r.root.Config)
		r.snapshot = snap
	}

	_, err = generator.New(cfg, generator.WithLogger(r.g.Logger), generator.WithRecorder(r.recorder)).Build(ctx)
	return err
}
