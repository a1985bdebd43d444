package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, what string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", what, want, got)
}

// entries builds entries with sequential IDs "e1", "e2", ...
func entries(specs ...Entry) []Entry {
	out := make([]Entry, len(specs))
	for i, e := range specs {
		if e.ID == "" {
			e.ID = fmt.Sprintf("e%d", i+1)
		}
		out[i] = e
	}
	return out
}

func en(label, amount string, c Category) Entry {
	return Entry{Label: label, Amount: dec(amount), Category: c}
}

func linked(e Entry, id string) Entry {
	e.LinkedTo = id
	return e
}

// firstYear is the worked first-year scenario of a small furniture workshop.
func firstYear() []Entry {
	return entries(
		en("Capital contribution", "40000", CategoryCapital),
		en("Machine purchase", "25000", CategoryMachine),
		en("Bank loan - machine", "15000", CategoryBankLoan),
		en("Supplier payable - machine", "10000", CategoryPayables),
		en("Registration fees", "3000", CategoryRegistrationFees),
		en("Raw materials purchase", "10000", CategoryStock),
		en("Supplier payable - raw materials", "10000", CategoryPayables),
		en("Furniture sale", "18000", CategorySale),
		en("Client receivable", "18000", CategoryReceivables),
		en("Raw materials consumed", "6000", CategoryRawMaterials),
		en("Stock consumed", "-6000", CategoryStock),
		en("Supplier payment", "-10000", CategorySupplierPayment),
		en("Supplier payable settled", "-10000", CategoryPayables),
		en("Electricity bill", "1200", CategoryElectricity),
		en("Supplier payable - electricity", "1200", CategoryPayables),
		en("Cash credit line drawn", "2000", CategoryCashCredit),
		en("Client collection", "18000", CategoryClientCollection),
		en("Client receivable settled", "-18000", CategoryReceivables),
		en("Cash credit repayment", "-2000", CategoryCashCredit),
		en("Cash credit interest", "160", CategoryInterest),
	)
}

// steppingClock returns a clock advancing by step on each call.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func newTestLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	n := 0
	base := []Option{
		WithClock(steppingClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), time.Minute)),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}
	return New(NewMemoryStore(), append(base, opts...)...)
}

func registerAll(t *testing.T, l *Ledger, es []Entry) {
	t.Helper()
	for _, e := range es {
		_, err := l.Register(context.Background(), Draft{Label: e.Label, Amount: e.Amount, Category: e.Category, LinkedTo: e.LinkedTo})
		assert.NoError(t, err)
	}
}
