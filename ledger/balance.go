package ledger

import (
	"github.com/shopspring/decimal"
)

// Keys of the synthetic balance sheet lines that do not come from a category.
const (
	LineTreasury      = "treasury"
	LineCurrentResult = "current_result"
)

// balanceSheetLayout is the fixed order of the balance sheet sections.
var balanceSheetLayout = []struct {
	group   Group
	section Section
}{
	{GroupAsset, SectionFixedAssets},
	{GroupAsset, SectionCurrentAssets},
	{GroupAsset, SectionCash},
	{GroupLiability, SectionEquity},
	{GroupLiability, SectionDebts},
}

// BalanceSheetLine is one line of a balance sheet section.
type BalanceSheetLine struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Synthetic bool            `json:"synthetic,omitempty"`
}

// BalanceSheetSection groups the lines of one (group, section) pair.
type BalanceSheetSection struct {
	Group   Group              `json:"group"`
	Section Section            `json:"section"`
	Lines   []BalanceSheetLine `json:"lines"`
	Total   decimal.Decimal    `json:"total"`
}

// BalanceSheet is the statement of financial position derived from the ledger.
type BalanceSheet struct {
	Assets           []BalanceSheetSection `json:"assets"`
	Liabilities      []BalanceSheetSection `json:"liabilities"`
	TotalAssets      decimal.Decimal       `json:"totalAssets"`
	TotalLiabilities decimal.Decimal       `json:"totalLiabilities"`

	// Closed reports that a closing entry already folded the result into equity.
	Closed bool `json:"closed"`
}

// Balanced reports whether total assets equal total liabilities.
func (b *BalanceSheet) Balanced() bool {
	return b.TotalAssets.Equal(b.TotalLiabilities)
}

// Imbalance returns total assets minus total liabilities.
func (b *BalanceSheet) Imbalance() decimal.Decimal {
	return b.TotalAssets.Sub(b.TotalLiabilities)
}

// Section returns the section for (group, section) if present.
func (b *BalanceSheet) Section(group Group, section Section) (BalanceSheetSection, bool) {
	sections := b.Assets
	if group == GroupLiability {
		sections = b.Liabilities
	}
	for _, s := range sections {
		if s.Section == section {
			return s, true
		}
	}
	return BalanceSheetSection{}, false
}

// HasClosingEntry reports whether entries contain a retained-earnings entry
// produced by closing the exercise.
func HasClosingEntry(entries []Entry, cfg *Config) bool {
	if cfg == nil {
		cfg = NewConfig()
	}
	for _, e := range entries {
		if e.Category == CategoryRetainedEarnings && cfg.isClosingLabel(e.Label) {
			return true
		}
	}
	return false
}

// ComputeBalanceSheet derives the balance sheet from entries and the income
// statement and cash-flow statement computed over the same entries.
//
// Cash is not recorded by any entry: it is the net of the cash-flow statement.
// The current period result is added to equity until a closing entry has been
// registered, after which the retained earnings line already carries it.
func ComputeBalanceSheet(entries []Entry, is *IncomeStatement, cf *Cashflow, cfg *Config) *BalanceSheet {
	if cfg == nil {
		cfg = NewConfig()
	}

	totals := categoryTotals(entries)
	defer putTotals(totals)

	bs := &BalanceSheet{
		Assets:      []BalanceSheetSection{},
		Liabilities: []BalanceSheetSection{},
		Closed:      HasClosingEntry(entries, cfg),
	}

	for _, l := range balanceSheetLayout {
		section := BalanceSheetSection{Group: l.group, Section: l.section, Lines: []BalanceSheetLine{}}
		for _, c := range categoriesIn(l.group, l.section) {
			section.Lines = append(section.Lines, BalanceSheetLine{
				Key:    string(c),
				Label:  c.Label(),
				Amount: totals[c],
			})
		}

		switch l.section {
		case SectionCash:
			section.Lines = append(section.Lines, BalanceSheetLine{
				Key:       LineTreasury,
				Label:     "Treasury",
				Amount:    cf.Net,
				Synthetic: true,
			})
		case SectionEquity:
			result := is.NetResult
			if bs.Closed {
				result = decimal.Zero
			}
			section.Lines = append(section.Lines, BalanceSheetLine{
				Key:       LineCurrentResult,
				Label:     "Current period result",
				Amount:    result,
				Synthetic: true,
			})
		}

		for _, line := range section.Lines {
			section.Total = section.Total.Add(line.Amount)
		}

		if l.group == GroupAsset {
			bs.Assets = append(bs.Assets, section)
			bs.TotalAssets = bs.TotalAssets.Add(section.Total)
		} else {
			bs.Liabilities = append(bs.Liabilities, section)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(section.Total)
		}
	}

	return bs
}
