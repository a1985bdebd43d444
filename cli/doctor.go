package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"
)

// DoctorCmd provides utilities for debugging the ledger and its configuration.
type DoctorCmd struct {
	Dump       DumpCmd       `cmd:"" help:"Dump the stored entries and derived statements as Go values."`
	Categories CategoriesCmd `cmd:"" help:"Show the category taxonomy."`
	Config     ConfigCmd     `cmd:"" help:"Print the resolved configuration as TOML."`
}

type DumpCmd struct {
	Statements bool `help:"Also dump the derived statements."`
}

func (cmd *DumpCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := globals.open(ctx, "doctor dump")
	if err != nil {
		return err
	}
	defer a.close(ctx)

	entries, err := a.ledger.List(a.ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(ctx.Stdout, repr.String(entries, repr.Indent("  ")))

	if cmd.Statements {
		st, err := a.ledger.Statements(a.ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(ctx.Stdout, repr.String(st, repr.Indent("  ")))
	}
	return nil
}

type CategoriesCmd struct {
	JSON bool `help:"Print the taxonomy as JSON."`
}

func (cmd *CategoriesCmd) Run(ctx *kong.Context) error {
	if cmd.JSON {
		return writeJSON(ctx.Stdout, categoryRows())
	}
	renderCategories(ctx.Stdout)
	return nil
}

type ConfigCmd struct{}

func (cmd *ConfigCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.loadConfig()
	if err != nil {
		return err
	}
	return cfg.Encode(ctx.Stdout)
}
