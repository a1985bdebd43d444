package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/output"
)

type ReportCmd struct {
	Statement string `help:"Statement to show: balance, income, cashflow or all." arg:"" optional:"" enum:"balance,income,cashflow,all" default:"all"`
	JSON      bool   `help:"Print the statements as JSON."`
}

func (cmd *ReportCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := globals.open(ctx, "report "+cmd.Statement)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	st, err := a.ledger.Statements(a.ctx)
	if err != nil {
		return err
	}

	if cmd.JSON {
		switch cmd.Statement {
		case "balance":
			return writeJSON(ctx.Stdout, st.BalanceSheet)
		case "income":
			return writeJSON(ctx.Stdout, st.IncomeStatement)
		case "cashflow":
			return writeJSON(ctx.Stdout, st.Cashflow)
		default:
			return writeJSON(ctx.Stdout, st)
		}
	}

	if cmd.Statement == "income" || cmd.Statement == "all" {
		renderIncomeStatement(ctx.Stdout, st.IncomeStatement)
	}
	if cmd.Statement == "cashflow" || cmd.Statement == "all" {
		renderCashflow(ctx.Stdout, st.Cashflow)
	}
	if cmd.Statement == "balance" || cmd.Statement == "all" {
		renderBalanceSheet(ctx.Stdout, st.BalanceSheet)
	}
	return nil
}

type CloseCmd struct {
	Yes bool `help:"Close without asking for confirmation." short:"y"`
}

func (cmd *CloseCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := globals.open(ctx, "close")
	if err != nil {
		return err
	}
	defer a.close(ctx)

	is, err := a.ledger.IncomeStatement(a.ctx)
	if err != nil {
		return err
	}

	confirmed, err := confirm(cmd.Yes, fmt.Sprintf("Close the exercise with a net result of %s?", output.FormatAmount(is.NetResult)))
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !confirmed {
		return CommandErrorf("closing not confirmed (use --yes)")
	}

	res, err := a.ledger.CloseExercise(a.ctx)
	if err != nil {
		return err
	}
	if !res.Inserted {
		printInfof(ctx.Stdout, "%s", res.Message)
		return nil
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Exercise closed: %s moved to %s (%s)",
		a.styles.Amount(res.Result), a.styles.Category(string(ledger.CategoryRetainedEarnings)), res.Entry.ID))
	return nil
}
