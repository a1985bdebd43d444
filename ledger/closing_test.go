package ledger

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCloseExercise(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	registerAll(t, l, firstYear())

	res, err := l.CloseExercise(ctx)
	assert.NoError(t, err)
	assert.True(t, res.Inserted)
	assertDecimal(t, "7640", res.Result, "result")
	assert.Equal(t, ClosingLabel, res.Entry.Label)
	assert.Equal(t, CategoryRetainedEarnings, res.Entry.Category)

	bs, err := l.BalanceSheet(ctx)
	assert.NoError(t, err)
	assert.True(t, bs.Closed)
	assert.True(t, bs.Balanced(), "imbalance %s", bs.Imbalance())
	assertDecimal(t, "73840", bs.TotalAssets, "total assets")
}

func TestCloseExerciseZeroResult(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	registerAll(t, l, entries(
		en("Sale", "500", CategorySale),
		en("Rent", "500", CategoryRent),
	))

	res, err := l.CloseExercise(ctx)
	assert.NoError(t, err)
	assert.False(t, res.Inserted)
	assert.Equal(t, MsgZeroResult, res.Message)

	list, err := l.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(list))
}

func TestCloseExerciseLoss(t *testing.T) {
	l := newTestLedger(t)
	registerAll(t, l, entries(en("Rent", "800", CategoryRent)))

	res, err := l.CloseExercise(context.Background())
	assert.NoError(t, err)
	assert.True(t, res.Inserted)
	assertDecimal(t, "-800", res.Entry.Amount, "closing amount")
}

func TestCloseExerciseRepeat(t *testing.T) {
	tests := []struct {
		name         string
		guard        bool
		wantInserted bool
		wantMessage  string
		wantEntries  int
	}{
		{name: "repeatable by default", wantInserted: true, wantEntries: 3},
		{name: "guarded", guard: true, wantMessage: MsgAlreadyClosed, wantEntries: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := NewConfig()
			cfg.GuardClosing = tt.guard
			l := newTestLedger(t, WithConfig(cfg))
			registerAll(t, l, entries(en("Sale", "1000", CategorySale)))

			first, err := l.CloseExercise(ctx)
			assert.NoError(t, err)
			assert.True(t, first.Inserted)

			second, err := l.CloseExercise(ctx)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantInserted, second.Inserted)
			assert.Equal(t, tt.wantMessage, second.Message)

			list, err := l.List(ctx)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantEntries, len(list))
		})
	}
}
