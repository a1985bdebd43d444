package classify

import (
	"context"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/shopspring/decimal"
)

// RegisterText classifies description and registers the resulting entry. It
// reports false, without an error, when no rule matches.
func RegisterText(ctx context.Context, l *ledger.Ledger, description string, amount decimal.Decimal) (ledger.Entry, bool, error) {
	m, ok := MatchText(description)
	if !ok {
		return ledger.Entry{}, false, nil
	}
	e, err := l.Register(ctx, m.Draft(description, amount))
	if err != nil {
		return ledger.Entry{}, false, err
	}
	return e, true, nil
}

// RegisterOperation expands op and registers its drafts as one batch.
func RegisterOperation(ctx context.Context, l *ledger.Ledger, op Operation) ([]ledger.Entry, error) {
	drafts, err := Build(op)
	if err != nil {
		return nil, err
	}
	return l.RegisterBatch(ctx, drafts)
}

// Preview is the read-only classification of a label.
type Preview struct {
	Match      *Match          `json:"match,omitempty"`
	Suggestion ledger.Category `json:"suggestion,omitempty"`
}

// PreviewLabel classifies label with the rule table and with a suggester
// trained on the current entries, without registering anything.
func PreviewLabel(ctx context.Context, l *ledger.Ledger, label string) (*Preview, error) {
	p := &Preview{}
	if m, ok := MatchText(label); ok {
		p.Match = &m
	}

	entries, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	if s, ok := TrainSuggester(entries); ok {
		if c, ok := s.Suggest(label); ok {
			p.Suggestion = c
		}
	}
	return p, nil
}
