package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/compta/store"
	"github.com/robinvdvleuten/compta/web"
)

type ServeCmd struct {
	Host     string `help:"Host to listen on. Overrides the configuration." placeholder:"HOST"`
	Port     int    `help:"Port to listen on. Overrides the configuration." placeholder:"PORT"`
	ReadOnly bool   `help:"Enable read-only mode (no write operations allowed)." short:"r"`
	NoWatch  bool   `help:"Do not watch the store file for changes made by other processes."`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Host != "" {
		cfg.Server.Host = cmd.Host
	}
	if cmd.Port != 0 {
		cfg.Server.Port = cmd.Port
	}
	if cmd.ReadOnly {
		cfg.Server.ReadOnly = true
	}
	if cmd.NoWatch {
		cfg.Server.Watch = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := globals.openWith(ctx, "serve", cfg)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(a.ledger, version, commitSHA)
	server.Host = cfg.Server.Host
	server.Port = cfg.Server.Port
	server.ReadOnly = cfg.Server.ReadOnly
	server.Logger = a.logger

	if store.Persistent(cfg.Store.Driver) && cfg.Store.Path != ":memory:" {
		storePath, err := filepath.Abs(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		server.StorePath = storePath
		server.WatchEnabled = cfg.Server.Watch
	}

	printInfof(ctx.Stdout, "Starting server on %s", cfg.Server.Addr())
	if server.StorePath != "" {
		printInfof(ctx.Stdout, "Serving %s store: %s", cfg.Store.Driver, pathStyle.Render(server.StorePath))
	} else {
		printInfof(ctx.Stdout, "Serving %s store", cfg.Store.Driver)
	}
	if server.ReadOnly {
		printInfof(ctx.Stdout, "Server running in READ-ONLY mode")
	}

	runCtx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(runCtx)
}
