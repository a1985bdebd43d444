package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a single ledger record. Entries are immutable once registered;
// the only mutation the ledger supports is removal by ID.
type Entry struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
	Category  Category        `json:"category"`

	// LinkedTo holds the ID of the investment entry this entry finances.
	// Only meaningful on payables and bank loans.
	LinkedTo string `json:"linkedTo,omitempty"`
}

// Draft is the caller-supplied part of an entry. The ledger assigns ID and CreatedAt.
type Draft struct {
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
	Category Category        `json:"category"`
	LinkedTo string          `json:"linkedTo,omitempty"`

	// Finances is the 1-based position, within the same batch, of the draft this
	// draft finances. Zero means unlinked. Only used by RegisterBatch.
	Finances int `json:"-"`
}

// NewDraft is a small constructor used by callers building drafts from literals.
func NewDraft(label string, amount decimal.Decimal, category Category) Draft {
	return Draft{Label: label, Amount: amount, Category: category}
}

// amountKey is the multiset key of an amount: its value rounded to two decimals.
func amountKey(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
