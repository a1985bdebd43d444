package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// ClosingLabel is the label of the retained-earnings entry written by Close.
const ClosingLabel = "Retained earnings - closing"

// Messages returned when Close does not insert an entry.
const (
	MsgZeroResult    = "net result is zero, no closing entry created"
	MsgAlreadyClosed = "exercise already closed"
)

// ClosingResult describes the outcome of closing the exercise.
type ClosingResult struct {
	Inserted bool            `json:"inserted"`
	Entry    *Entry          `json:"entry,omitempty"`
	Result   decimal.Decimal `json:"result"`
	Message  string          `json:"message,omitempty"`
}

// CloseExercise folds the current net result into retained earnings by registering a
// closing entry. A zero result inserts nothing. Closing is repeatable unless
// the ledger is configured with GuardClosing, in which case a ledger that
// already carries a closing entry is left untouched.
func (l *Ledger) CloseExercise(ctx context.Context) (*ClosingResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if l.config.GuardClosing && HasClosingEntry(entries, l.config) {
		return &ClosingResult{Message: MsgAlreadyClosed}, nil
	}

	net := ComputeIncomeStatement(entries).NetResult
	if net.IsZero() {
		return &ClosingResult{Result: net, Message: MsgZeroResult}, nil
	}

	e, err := l.insert(ctx, Draft{
		Label:    ClosingLabel,
		Amount:   net,
		Category: CategoryRetainedEarnings,
	})
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "exercise closed", slog.String("result", net.String()))
	return &ClosingResult{Inserted: true, Entry: &e, Result: net}, nil
}
