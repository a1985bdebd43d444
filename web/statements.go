package web

import (
	"context"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/shopspring/decimal"
)

// BalanceSheetResponse is the JSON response of statements.balance. It adds
// the balance check to the derived sheet.
type BalanceSheetResponse struct {
	*ledger.BalanceSheet
	Balanced  bool            `json:"balanced"`
	Imbalance decimal.Decimal `json:"imbalance"`
}

func balanceSheet(ctx context.Context, s *Server, _ *input) (any, error) {
	bs, err := s.ledger.BalanceSheet(ctx)
	if err != nil {
		return nil, err
	}
	return &BalanceSheetResponse{
		BalanceSheet: bs,
		Balanced:     bs.Balanced(),
		Imbalance:    bs.Imbalance(),
	}, nil
}

func incomeStatement(ctx context.Context, s *Server, _ *input) (any, error) {
	return s.ledger.IncomeStatement(ctx)
}

func cashflow(ctx context.Context, s *Server, _ *input) (any, error) {
	return s.ledger.Cashflow(ctx)
}

// countEntries returns the number of entries for the entries gauge.
func (s *Server) countEntries(ctx context.Context) (int, error) {
	entries, err := s.ledger.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
