package loader

import (
	"context"
	"fmt"

	"github.com/robinvdvleuten/compta/classify"
	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/telemetry"
	"github.com/shopspring/decimal"
)

// LedgerConfig builds the derivation rules named by the scenario options.
func (sc *Scenario) LedgerConfig() (*ledger.Config, error) {
	return ledger.ConfigFromOptions(sc.Options)
}

// Summary describes what applying a scenario registered.
type Summary struct {
	Entries  []ledger.Entry
	Closings []*ledger.ClosingResult
}

// Apply runs the steps of sc against l in order. A failing step does not stop
// the run: every failure is collected and returned as *ledger.ValidationErrors
// of *StepError, alongside the summary of what did get registered.
func Apply(ctx context.Context, l *ledger.Ledger, sc *Scenario) (*Summary, error) {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("loader.apply (%d steps)", len(sc.Steps)))
	defer timer.End()

	a := &applier{ledger: l, refs: make(map[string]string), summary: &Summary{}}

	var errs []error
	for i := range sc.Steps {
		select {
		case <-ctx.Done():
			return a.summary, ctx.Err()
		default:
		}

		step := sc.Steps[i]
		if err := a.apply(ctx, &step); err != nil {
			errs = append(errs, &StepError{Step: step, Err: err})
		}
	}

	if len(errs) > 0 {
		return a.summary, &ledger.ValidationErrors{Errors: errs}
	}
	return a.summary, nil
}

type applier struct {
	ledger  *ledger.Ledger
	refs    map[string]string
	summary *Summary
}

func (a *applier) apply(ctx context.Context, step *Step) error {
	if step.Ref != "" {
		if _, dup := a.refs[step.Ref]; dup {
			return fmt.Errorf("ref %q is already used by an earlier step", step.Ref)
		}
	}

	var created []ledger.Entry
	switch step.Kind {
	case StepEntry:
		e, err := a.entry(ctx, step.Entry)
		if err != nil {
			return err
		}
		created = []ledger.Entry{e}

	case StepOperation:
		op, err := operation(step.Operation)
		if err != nil {
			return err
		}
		created, err = classify.RegisterOperation(ctx, a.ledger, op)
		if err != nil {
			return err
		}

	case StepText:
		amount, err := ledger.ParseAmount(step.Text.Amount)
		if err != nil {
			return err
		}
		e, ok, err := classify.RegisterText(ctx, a.ledger, step.Text.Description, amount)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no rule matches %q", step.Text.Description)
		}
		created = []ledger.Entry{e}

	case StepClose:
		res, err := a.ledger.CloseExercise(ctx)
		if err != nil {
			return err
		}
		a.summary.Closings = append(a.summary.Closings, res)
		if res.Entry != nil {
			a.summary.Entries = append(a.summary.Entries, *res.Entry)
		}
		return nil

	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}

	a.summary.Entries = append(a.summary.Entries, created...)
	if step.Ref != "" && len(created) > 0 {
		a.refs[step.Ref] = created[0].ID
	}
	return nil
}

func (a *applier) entry(ctx context.Context, s *EntryStep) (ledger.Entry, error) {
	category, err := ledger.ParseCategory(s.Category)
	if err != nil {
		return ledger.Entry{}, err
	}
	amount, err := ledger.ParseAmount(s.Amount)
	if err != nil {
		return ledger.Entry{}, err
	}

	d := ledger.NewDraft(s.Label, amount, category)
	if s.Link != "" {
		id, ok := a.refs[s.Link]
		if !ok {
			return ledger.Entry{}, fmt.Errorf("link %q does not name an earlier step", s.Link)
		}
		d.LinkedTo = id
	}
	return a.ledger.Register(ctx, d)
}

func operation(s *OperationStep) (classify.Operation, error) {
	key, err := classify.ParseOperationKey(s.Key)
	if err != nil {
		return classify.Operation{}, err
	}
	mode, err := classify.ParsePaymentMode(s.Mode)
	if err != nil {
		return classify.Operation{}, err
	}

	op := classify.Operation{Key: key, PaymentMode: mode}
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{
		{s.Amount, &op.Amount},
		{s.Interest, &op.InterestsPart},
		{s.Loan, &op.LoanPart},
		{s.COGS, &op.CostOfGoodsSold},
	} {
		if f.raw == "" && f.dst != &op.Amount {
			continue
		}
		v, err := ledger.ParseAmount(f.raw)
		if err != nil {
			return classify.Operation{}, err
		}
		*f.dst = v
	}
	return op, nil
}
