// Package ledger keeps the general ledger of a small business and derives its
// financial statements.
//
// A Ledger owns a Store of flat entries, each filed under one Category of a
// closed taxonomy. The income statement, the cash-flow statement and the
// balance sheet are recomputed from a snapshot of the store on every request:
//
//	l := ledger.New(ledger.NewMemoryStore())
//	_, _ = l.Register(ctx, ledger.NewDraft("Capital contribution", decimal.NewFromInt(40000), ledger.CategoryCapital))
//	st, err := l.Statements(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(st.BalanceSheet.Balanced())
//
// The balance sheet carries no cash account: treasury is the net of the
// cash-flow statement, so the balance sheet only balances when the cash-flow
// derivation classified every entry correctly. Balanced reports the check.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robinvdvleuten/compta/telemetry"
	"golang.org/x/exp/slices"
)

// Ledger is the entry point of the engine. It is safe for concurrent use:
// mutations are serialized, derivations work on snapshots.
type Ledger struct {
	store  Store
	config *Config
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	mu sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithConfig sets the derivation rules.
func WithConfig(cfg *Config) Option {
	return func(l *Ledger) {
		if cfg != nil {
			l.config = cfg
		}
	}
}

// WithClock sets the clock used to timestamp new entries.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithIDGenerator sets the generator of entry IDs.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) {
		l.newID = gen
	}
}

// WithLogger sets the logger used for mutation events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Ledger backed by store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		config: NewConfig(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the derivation rules of the ledger.
func (l *Ledger) Config() *Config {
	return l.config
}

// Store returns the underlying store.
func (l *Ledger) Store() Store {
	return l.store
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}

// snapshot returns the entries in insertion order.
func (l *Ledger) snapshot(ctx context.Context) ([]Entry, error) {
	entries, err := l.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	return entries, nil
}

// List returns all entries, newest first. Entries created at the same instant
// keep their insertion order.
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	entries, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return entries, nil
}

// Get returns the entry with the given ID.
func (l *Ledger) Get(ctx context.Context, id string) (Entry, bool, error) {
	entries, err := l.snapshot(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	i := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
	if i < 0 {
		return Entry{}, false, nil
	}
	return entries[i], true, nil
}

// Register creates an entry from d with a fresh ID and timestamp. Zero and
// negative amounts are accepted.
func (l *Ledger) Register(ctx context.Context, d Draft) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.insert(ctx, d)
}

// RegisterBatch registers drafts in order. A draft with Finances set receives
// the ID of the referenced earlier draft in LinkedTo.
//
// The batch is all or nothing: when an insert fails, the entries already
// inserted by this call are removed again before the error is returned.
func (l *Ledger) RegisterBatch(ctx context.Context, drafts []Draft) ([]Entry, error) {
	for i, d := range drafts {
		if d.Finances != 0 && (d.Finances < 1 || d.Finances > i) {
			return nil, &InvalidLinkError{Position: i + 1, Finances: d.Finances}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timer := telemetry.StartTimer(ctx, "ledger.register_batch")
	defer timer.End()

	out := make([]Entry, 0, len(drafts))
	for _, d := range drafts {
		if d.Finances != 0 {
			d.LinkedTo = out[d.Finances-1].ID
		}
		e, err := l.insert(ctx, d)
		if err != nil {
			l.rollback(ctx, out)
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// rollback removes inserted entries, newest first. Failures are logged since
// the original insert error is the one reported.
func (l *Ledger) rollback(ctx context.Context, inserted []Entry) {
	for i := len(inserted) - 1; i >= 0; i-- {
		id := inserted[i].ID
		if _, err := l.store.Remove(ctx, id); err != nil {
			l.logger.ErrorContext(ctx, "failed to roll back entry",
				slog.String("id", id),
				slog.Any("error", err))
		}
	}
}

func (l *Ledger) insert(ctx context.Context, d Draft) (Entry, error) {
	if !d.Category.Valid() {
		return Entry{}, &UnknownCategoryError{Value: string(d.Category)}
	}

	e := Entry{
		ID:        l.newID(),
		Label:     d.Label,
		Amount:    d.Amount,
		CreatedAt: l.now(),
		Category:  d.Category,
		LinkedTo:  d.LinkedTo,
	}
	if err := l.store.Insert(ctx, e); err != nil {
		return Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}

	l.logger.DebugContext(ctx, "entry registered",
		slog.String("id", e.ID),
		slog.String("category", string(e.Category)),
		slog.String("amount", e.Amount.String()))
	return e, nil
}

// Remove deletes the entry with the given ID. It reports false, without an
// error, when no such entry exists.
func (l *Ledger) Remove(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed, err := l.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove entry %s: %w", id, err)
	}
	if removed {
		l.logger.DebugContext(ctx, "entry removed", slog.String("id", id))
	}
	return removed, nil
}

// IncomeStatement derives the income statement.
func (l *Ledger) IncomeStatement(ctx context.Context) (*IncomeStatement, error) {
	entries, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	timer := telemetry.StartTimer(ctx, "ledger.income_statement")
	defer timer.End()
	return ComputeIncomeStatement(entries), nil
}

// Cashflow derives the cash-flow statement.
func (l *Ledger) Cashflow(ctx context.Context) (*Cashflow, error) {
	entries, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	timer := telemetry.StartTimer(ctx, "ledger.cashflow")
	defer timer.End()
	return ComputeCashflow(entries, l.config), nil
}

// BalanceSheet derives the balance sheet.
func (l *Ledger) BalanceSheet(ctx context.Context) (*BalanceSheet, error) {
	st, err := l.Statements(ctx)
	if err != nil {
		return nil, err
	}
	return st.BalanceSheet, nil
}

// Statements bundles the three statements derived from one snapshot.
type Statements struct {
	IncomeStatement *IncomeStatement `json:"incomeStatement"`
	Cashflow        *Cashflow        `json:"cashflow"`
	BalanceSheet    *BalanceSheet    `json:"balanceSheet"`
}

// Statements derives all three statements from the same snapshot.
func (l *Ledger) Statements(ctx context.Context) (*Statements, error) {
	entries, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return l.derive(ctx, entries), nil
}

func (l *Ledger) derive(ctx context.Context, entries []Entry) *Statements {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.statements (%d entries)", len(entries)))
	defer timer.End()

	isTimer := timer.Child("ledger.income_statement")
	is := ComputeIncomeStatement(entries)
	isTimer.End()

	cfTimer := timer.Child("ledger.cashflow")
	cf := ComputeCashflow(entries, l.config)
	cfTimer.End()

	bsTimer := timer.Child("ledger.balance_sheet")
	bs := ComputeBalanceSheet(entries, is, cf, l.config)
	bsTimer.End()

	return &Statements{IncomeStatement: is, Cashflow: cf, BalanceSheet: bs}
}
