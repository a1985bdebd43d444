// Package storetest checks ledger.Store implementations against the
// behaviour the ledger relies on.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/compta/ledger"
	"github.com/shopspring/decimal"
)

// Opener returns a fresh, empty store. The store is closed by the caller.
type Opener func(t *testing.T) ledger.Store

// Run runs the store contract against stores returned by open.
func Run(t *testing.T, open Opener) {
	t.Run("InsertionOrder", func(t *testing.T) { testInsertionOrder(t, open(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, open(t)) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, open(t)) })
	t.Run("Closed", func(t *testing.T) { testClosed(t, open(t)) })
	t.Run("Ledger", func(t *testing.T) { testLedger(t, open(t)) })
}

func entry(id, label, amount string, c ledger.Category) ledger.Entry {
	return ledger.Entry{
		ID:        id,
		Label:     label,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC),
		Category:  c,
	}
}

func testInsertionOrder(t *testing.T, s ledger.Store) {
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("id-%02d", 11-i)
		assert.NoError(t, s.Insert(ctx, entry(id, "Sale", "1", ledger.CategorySale)))
	}

	got, err := s.Entries(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 12, len(got))
	for i, e := range got {
		assert.Equal(t, fmt.Sprintf("id-%02d", 11-i), e.ID)
	}
}

func testRoundTrip(t *testing.T, s ledger.Store) {
	defer s.Close()
	ctx := context.Background()

	want := entry("loan", "Bank loan - machine", "15000.50", ledger.CategoryBankLoan)
	want.LinkedTo = "machine"
	assert.NoError(t, s.Insert(ctx, want))
	assert.NoError(t, s.Insert(ctx, entry("neg", "Stock consumed", "-6000", ledger.CategoryStock)))

	got, err := s.Entries(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(got))

	assert.Equal(t, want.ID, got[0].ID)
	assert.Equal(t, want.Label, got[0].Label)
	assert.True(t, want.Amount.Equal(got[0].Amount), "amount %s", got[0].Amount)
	assert.True(t, want.CreatedAt.Equal(got[0].CreatedAt), "created at %s", got[0].CreatedAt)
	assert.Equal(t, want.Category, got[0].Category)
	assert.Equal(t, "machine", got[0].LinkedTo)

	assert.Equal(t, "-6000", got[1].Amount.String())
	assert.Equal(t, "", got[1].LinkedTo)
}

func testRemove(t *testing.T, s ledger.Store) {
	defer s.Close()
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, entry("a", "A", "1", ledger.CategoryRent)))
	assert.NoError(t, s.Insert(ctx, entry("b", "B", "2", ledger.CategoryRent)))
	assert.NoError(t, s.Insert(ctx, entry("c", "C", "3", ledger.CategoryRent)))

	removed, err := s.Remove(ctx, "b")
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, "b")
	assert.NoError(t, err)
	assert.False(t, removed)

	got, err := s.Entries(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func testClosed(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	_, err := s.Entries(ctx)
	assert.IsError(t, err, ledger.ErrStoreClosed)
	assert.IsError(t, s.Insert(ctx, entry("x", "X", "1", ledger.CategorySale)), ledger.ErrStoreClosed)
	_, err = s.Remove(ctx, "x")
	assert.IsError(t, err, ledger.ErrStoreClosed)
}

func testLedger(t *testing.T, s ledger.Store) {
	ctx := context.Background()
	l := ledger.New(s)
	defer l.Close()

	drafts := []ledger.Draft{
		ledger.NewDraft("Capital contribution", decimal.NewFromInt(40000), ledger.CategoryCapital),
		ledger.NewDraft("Furniture sale", decimal.NewFromInt(18000), ledger.CategorySale),
	}
	for _, d := range drafts {
		_, err := l.Register(ctx, d)
		assert.NoError(t, err)
	}

	st, err := l.Statements(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "18000", st.IncomeStatement.NetResult.String())
	assert.Equal(t, "58000", st.Cashflow.Net.String())
	assert.True(t, st.BalanceSheet.Balanced())

	// List reads back through the store.
	listed, err := l.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(listed))
}
