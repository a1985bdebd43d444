package classify

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/compta/ledger"
	"github.com/shopspring/decimal"
)

func TestMatchText(t *testing.T) {
	tests := []struct {
		description string
		want        ledger.Category
		outflow     bool
		wantOK      bool
	}{
		{"Apport en capital", ledger.CategoryCapital, false, true},
		{"Facture d'électricité", ledger.CategoryElectricity, false, true},
		{"Remboursement emprunt", ledger.CategoryLoanRepayment, true, true},
		{"Remboursement crédit caisse", ledger.CategoryCashCredit, true, true},
		{"Crédit caisse", ledger.CategoryCashCredit, false, true},
		{"Paiement fournisseur", ledger.CategorySupplierPayment, true, true},
		{"Supplier payable - machine", ledger.CategoryPayables, false, true},
		{"Achat machine", ledger.CategoryMachine, false, true},
		{"Achat camion", ledger.CategoryTruck, false, true},
		{"Intérêts crédit", ledger.CategoryInterest, false, true},
		{"Ventes du mois", ledger.CategorySale, false, true},
		{"Loyer mars", ledger.CategoryRent, false, true},
		{"Encaissement client", ledger.CategoryClientCollection, false, true},
		{"Consommation matières", ledger.CategoryRawMaterials, false, true},
		{"Achat matières premières", ledger.CategoryStock, false, true},
		{"Customer invoice 42", ledger.CategorySale, false, true},
		{"Supplier invoice", ledger.CategoryPayables, false, true},
		{"Facture fournisseur", ledger.CategoryPayables, false, true},
		{"Electricity invoice", ledger.CategoryElectricity, false, true},
		{"Rent invoice March", ledger.CategoryRent, false, true},
		{"Invoice", "", false, false},
		{"Current account", "", false, false},
		{"Random words", "", false, false},
		{"", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			m, ok := MatchText(tt.description)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, m.Category)
			assert.Equal(t, tt.outflow, m.Outflow)
		})
	}
}

func TestMatchKindAndDestinations(t *testing.T) {
	tests := []struct {
		description  string
		kind         Kind
		destinations []ledger.Statement
	}{
		{"Vente meubles", KindRevenue, []ledger.Statement{ledger.StatementIncomeStatement, ledger.StatementCashflow}},
		{"Loyer", KindExpense, []ledger.Statement{ledger.StatementIncomeStatement, ledger.StatementCashflow}},
		{"Achat logiciel", KindAsset, []ledger.Statement{ledger.StatementBalanceSheet, ledger.StatementCashflow}},
		{"Dette fournisseur", KindLiability, []ledger.Statement{ledger.StatementBalanceSheet}},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			m, ok := MatchText(tt.description)
			assert.True(t, ok)
			assert.Equal(t, tt.kind, m.Kind)
			assert.Equal(t, tt.destinations, m.Destinations)
		})
	}
}

func TestMatchDraft(t *testing.T) {
	m, ok := MatchText("Paiement fournisseur")
	assert.True(t, ok)

	d := m.Draft("  Paiement fournisseur bois ", decimal.NewFromInt(500))
	assert.Equal(t, "Paiement fournisseur bois", d.Label)
	assert.Equal(t, ledger.CategorySupplierPayment, d.Category)
	assert.Equal(t, "-500", d.Amount.String())

	// Already negative amounts stay negative.
	d = m.Draft("", decimal.NewFromInt(-500))
	assert.Equal(t, "-500", d.Amount.String())
	assert.Equal(t, "Supplier payment", d.Label)

	m, _ = MatchText("Vente")
	d = m.Draft("Vente", decimal.NewFromInt(-20))
	assert.Equal(t, "-20", d.Amount.String())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Facture d'électricité", "facture d electricite"},
		{"  CRÉANCE   client!! ", "creance client"},
		{"Intérêts - crédit", "interets credit"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestRulesPhrasesAreNormalized(t *testing.T) {
	for _, r := range Rules() {
		assert.True(t, r.Category.Valid(), "rule %q has unknown category %q", r.Label, r.Category)
		for _, p := range r.Phrases {
			assert.Equal(t, Normalize(p), p)
		}
	}
}
