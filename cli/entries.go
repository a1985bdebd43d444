package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/output"
)

type ListCmd struct {
	JSON bool `help:"Print entries as JSON."`
}

func (cmd *ListCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := globals.open(ctx, "list")
	if err != nil {
		return err
	}
	defer a.close(ctx)

	entries, err := a.ledger.List(a.ctx)
	if err != nil {
		return err
	}

	if cmd.JSON {
		if entries == nil {
			entries = []ledger.Entry{}
		}
		return writeJSON(ctx.Stdout, entries)
	}

	if len(entries) == 0 {
		printInfof(ctx.Stdout, "No entries")
		return nil
	}
	renderEntries(ctx.Stdout, entries)
	return nil
}

type AddCmd struct {
	Label    string `help:"Entry label." arg:""`
	Amount   string `help:"Amount, e.g. 1200, 25,000 or '2000 + 160'. Put -- before the arguments when it is negative." arg:""`
	Category string `help:"Category key (see 'doctor categories')." arg:""`
	Link     string `help:"ID of the investment entry this entry finances." placeholder:"ID"`
}

func (cmd *AddCmd) Run(ctx *kong.Context, globals *Globals) error {
	category, err := ledger.ParseCategory(cmd.Category)
	if err != nil {
		return err
	}
	amount, err := ledger.ParseAmount(cmd.Amount)
	if err != nil {
		return err
	}

	a, err := globals.open(ctx, "add")
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if cmd.Link != "" {
		if _, ok, err := a.ledger.Get(a.ctx, cmd.Link); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("linked entry %s does not exist", cmd.Link)
		}
	}

	e, err := a.ledger.Register(a.ctx, ledger.Draft{
		Label:    cmd.Label,
		Amount:   amount,
		Category: category,
		LinkedTo: cmd.Link,
	})
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Registered %s %s %s",
		e.ID, a.styles.Category(string(e.Category)), a.styles.Amount(e.Amount)))
	return nil
}

type DeleteCmd struct {
	ID  string `help:"Entry ID." arg:""`
	Yes bool   `help:"Delete without asking for confirmation." short:"y"`
}

func (cmd *DeleteCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := globals.open(ctx, "delete")
	if err != nil {
		return err
	}
	defer a.close(ctx)

	e, ok, err := a.ledger.Get(a.ctx, cmd.ID)
	if err != nil {
		return err
	}
	if !ok {
		printError(ctx.Stderr, fmt.Sprintf("No entry with ID %s", cmd.ID))
		return NewCommandError(1)
	}

	confirmed, err := confirm(cmd.Yes, fmt.Sprintf("Delete %q (%s)?", e.Label, output.FormatAmount(e.Amount)))
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !confirmed {
		return CommandErrorf("deletion of %s not confirmed (use --yes)", cmd.ID)
	}

	if _, err := a.ledger.Remove(a.ctx, cmd.ID); err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("Deleted %s", cmd.ID))
	return nil
}
