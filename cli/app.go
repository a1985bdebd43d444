package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/compta/config"
	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/output"
	"github.com/robinvdvleuten/compta/store"
	"github.com/robinvdvleuten/compta/telemetry"
)

// app is what a command runs against: the resolved configuration and the
// ledger opened on the configured store.
type app struct {
	ctx    context.Context
	config *config.Config
	logger *slog.Logger
	ledger *ledger.Ledger
	styles *output.Styles

	collector *telemetry.TimingCollector
	timer     telemetry.Timer
}

// loadConfig resolves the configuration named by the global flags.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{File: g.Config, EnvFile: g.EnvFile})
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		if _, err := config.ParseLevel(g.LogLevel); err != nil {
			return nil, err
		}
		cfg.Log.Level = g.LogLevel
	}
	return cfg, nil
}

// open loads the configuration and opens the ledger. The caller must call close.
func (g *Globals) open(kctx *kong.Context, name string) (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return g.openWith(kctx, name, cfg)
}

func (g *Globals) openWith(kctx *kong.Context, name string, cfg *config.Config) (*app, error) {
	a := &app{
		ctx:    context.Background(),
		config: cfg,
		logger: cfg.Logger(kctx.Stderr),
		styles: output.NewStyles(kctx.Stdout),
	}

	if g.Telemetry {
		a.collector = telemetry.NewTimingCollector().WithStyles(output.NewStyles(kctx.Stderr))
		a.ctx = telemetry.WithCollector(a.ctx, a.collector)
		a.timer = a.collector.Start(name)
	}

	ledgerConfig, err := cfg.LedgerConfig()
	if err != nil {
		return nil, err
	}

	openTimer := telemetry.StartTimer(a.ctx, fmt.Sprintf("store.open %s", cfg.Store.Driver))
	s, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	openTimer.End()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store %s: %w", cfg.Store.Driver, cfg.Store.Path, err)
	}

	a.ledger = ledger.New(s, ledger.WithConfig(ledgerConfig), ledger.WithLogger(a.logger))
	a.logger.Debug("ledger opened",
		slog.String("driver", cfg.Store.Driver),
		slog.String("path", cfg.Store.Path))
	return a, nil
}

// close closes the ledger and prints the telemetry report.
func (a *app) close(kctx *kong.Context) {
	if err := a.ledger.Close(); err != nil {
		a.logger.Warn("failed to close store", slog.Any("error", err))
	}
	if a.collector != nil {
		a.timer.End()
		_, _ = fmt.Fprintln(kctx.Stderr)
		a.collector.Report(kctx.Stderr)
	}
}
