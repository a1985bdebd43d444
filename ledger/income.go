package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// chargeCategories and productCategories are the income statement memberships.
// Every other category is left out of the income statement.
var (
	chargeCategories = []Category{
		CategoryRegistrationFees,
		CategoryRent,
		CategoryElectricity,
		CategoryInterest,
		CategorySalaries,
		CategoryRawMaterials,
	}
	productCategories = []Category{
		CategorySale,
		CategoryServiceRevenue,
	}
)

// StatementLine is one line of a derived statement, produced from one entry.
type StatementLine struct {
	EntryID     string          `json:"entryId"`
	Category    Category        `json:"category"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// IncomeStatement is the profit and loss view of the ledger.
type IncomeStatement struct {
	Charges       []StatementLine `json:"charges"`
	Products      []StatementLine `json:"products"`
	TotalCharges  decimal.Decimal `json:"totalCharges"`
	TotalProducts decimal.Decimal `json:"totalProducts"`
	NetResult     decimal.Decimal `json:"netResult"`
}

// ComputeIncomeStatement derives the income statement from entries in insertion order.
// It emits one line per charge or product entry, in input order.
func ComputeIncomeStatement(entries []Entry) *IncomeStatement {
	is := &IncomeStatement{
		Charges:  []StatementLine{},
		Products: []StatementLine{},
	}

	for _, e := range entries {
		switch {
		case slices.Contains(chargeCategories, e.Category):
			is.Charges = append(is.Charges, lineOf(e))
			is.TotalCharges = is.TotalCharges.Add(e.Amount)
		case slices.Contains(productCategories, e.Category):
			is.Products = append(is.Products, lineOf(e))
			is.TotalProducts = is.TotalProducts.Add(e.Amount)
		}
	}

	is.NetResult = is.TotalProducts.Sub(is.TotalCharges)
	return is
}

func lineOf(e Entry) StatementLine {
	return StatementLine{
		EntryID:     e.ID,
		Category:    e.Category,
		Label:       e.Category.Label(),
		Description: e.Label,
		Amount:      e.Amount,
	}
}
