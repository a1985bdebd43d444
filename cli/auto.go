package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/compta/classify"
	"github.com/robinvdvleuten/compta/ledger"
)

type AutoCmd struct {
	Text AutoTextCmd `cmd:"" help:"Classify a free-text description and register it."`
	Op   AutoOpCmd   `cmd:"" help:"Register the entries of a structured operation."`
}

type AutoTextCmd struct {
	Description string `help:"Free-text description, e.g. 'Loyer mars'." arg:""`
	Amount      string `help:"Amount." arg:""`
}

func (cmd *AutoTextCmd) Run(ctx *kong.Context, globals *Globals) error {
	amount, err := ledger.ParseAmount(cmd.Amount)
	if err != nil {
		return err
	}

	a, err := globals.open(ctx, "auto text")
	if err != nil {
		return err
	}
	defer a.close(ctx)

	e, ok, err := classify.RegisterText(a.ctx, a.ledger, cmd.Description, amount)
	if err != nil {
		return err
	}
	if !ok {
		printError(ctx.Stderr, fmt.Sprintf("No rule matches %q", cmd.Description))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Registered %s %s %s",
		e.ID, a.styles.Category(string(e.Category)), a.styles.Amount(e.Amount)))
	return nil
}

type AutoOpCmd struct {
	Key      string `help:"Operation key (${keys})." arg:""`
	Amount   string `help:"Operation amount." arg:""`
	Credit   bool   `help:"Pay on credit instead of cash."`
	Interest string `help:"Interest part included in the amount." placeholder:"AMOUNT"`
	Loan     string `help:"Part financed by a bank loan." placeholder:"AMOUNT"`
	COGS     string `help:"Cost of goods sold taken from stock." name:"cogs" placeholder:"AMOUNT"`
}

// operation converts the flags into a structured operation.
func (cmd *AutoOpCmd) operation() (classify.Operation, error) {
	var (
		op  classify.Operation
		err error
	)
	if op.Key, err = classify.ParseOperationKey(cmd.Key); err != nil {
		return op, err
	}
	op.PaymentMode = classify.PaymentCash
	if cmd.Credit {
		op.PaymentMode = classify.PaymentCredit
	}
	if op.Amount, err = ledger.ParseAmount(cmd.Amount); err != nil {
		return op, err
	}
	if op.InterestsPart, err = optionalAmount(cmd.Interest); err != nil {
		return op, err
	}
	if op.LoanPart, err = optionalAmount(cmd.Loan); err != nil {
		return op, err
	}
	if op.CostOfGoodsSold, err = optionalAmount(cmd.COGS); err != nil {
		return op, err
	}
	return op, nil
}

func optionalAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return ledger.ParseAmount(s)
}

func (cmd *AutoOpCmd) Run(ctx *kong.Context, globals *Globals) error {
	op, err := cmd.operation()
	if err != nil {
		return err
	}

	a, err := globals.open(ctx, "auto op "+string(op.Key))
	if err != nil {
		return err
	}
	defer a.close(ctx)

	entries, err := classify.RegisterOperation(a.ctx, a.ledger, op)
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Registered %d entries for %s", len(entries), op.Key))
	renderEntries(ctx.Stdout, entries)
	return nil
}

func operationKeysHelp() string {
	keys := make([]string, len(classify.OperationKeys))
	for i, k := range classify.OperationKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}

type ClassifyCmd struct {
	Label string `help:"Label to classify." arg:""`
	JSON  bool   `help:"Print the classification as JSON."`
}

func (cmd *ClassifyCmd) Run(ctx *kong.Context, globals *Globals) error {
	a, err := globals.open(ctx, "classify")
	if err != nil {
		return err
	}
	defer a.close(ctx)

	p, err := classify.PreviewLabel(a.ctx, a.ledger, cmd.Label)
	if err != nil {
		return err
	}

	if cmd.JSON {
		return writeJSON(ctx.Stdout, p)
	}

	if p.Match == nil {
		printInfof(ctx.Stdout, "No rule matches %q", cmd.Label)
	} else {
		m := p.Match
		destinations := make([]string, len(m.Destinations))
		for i, d := range m.Destinations {
			destinations[i] = string(d)
		}
		printSuccess(ctx.Stdout, fmt.Sprintf("%s: %s (%s, %s)", m.Label, a.styles.Category(string(m.Category)), m.Kind, m.Subtype))
		printInfof(ctx.Stdout, "Matched %q, feeds %s", m.Phrase, strings.Join(destinations, ", "))
	}
	if p.Suggestion != "" {
		printInfof(ctx.Stdout, "Suggested from existing entries: %s", a.styles.Category(string(p.Suggestion)))
	}
	return nil
}
