// Package classify turns loosely specified input into ledger drafts: free-text
// descriptions matched against an ordered rule table, structured operation
// keys expanded into one or more linked drafts, and category suggestions
// learned from the entries already in the ledger.
package classify

import (
	"strings"
	"unicode"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind is the accounting nature of a classified description.
type Kind string

const (
	KindAsset     Kind = "asset"
	KindLiability Kind = "liability"
	KindExpense   Kind = "expense"
	KindRevenue   Kind = "revenue"
)

// Rule maps descriptions containing one of its phrases to a category.
type Rule struct {
	Phrases  []string
	Category ledger.Category
	Label    string
	Subtype  string

	// Outflow rules post the absolute amount negated.
	Outflow bool
}

// rules is tried in order; more specific phrases come before the general ones
// they contain. Phrases are written in normalized form.
var rules = []Rule{
	{Phrases: []string{"remboursement credit caisse", "cash credit repayment", "repay cash credit"}, Category: ledger.CategoryCashCredit, Label: "Cash credit repayment", Subtype: "Short-term borrowings", Outflow: true},
	{Phrases: []string{"remboursement emprunt", "loan repayment", "repay loan"}, Category: ledger.CategoryLoanRepayment, Label: "Loan repayment", Subtype: "Long-term borrowings", Outflow: true},
	{Phrases: []string{"interets credit", "interets", "interest"}, Category: ledger.CategoryInterest, Label: "Bank interest", Subtype: "Financial charges"},
	{Phrases: []string{"apport capital", "apport en capital", "capital initial", "capital contribution", "share capital"}, Category: ledger.CategoryCapital, Label: "Capital contribution", Subtype: "Equity"},
	{Phrases: []string{"paiement fournisseur", "reglement fournisseur", "supplier payment", "pay supplier"}, Category: ledger.CategorySupplierPayment, Label: "Supplier payment", Subtype: "Cash", Outflow: true},
	{Phrases: []string{"dette fournisseur", "facture fournisseur", "supplier payable", "supplier credit", "supplier invoice"}, Category: ledger.CategoryPayables, Label: "Supplier payable", Subtype: "Trade payables"},
	{Phrases: []string{"encaissement client", "client collection", "customer payment"}, Category: ledger.CategoryClientCollection, Label: "Client collection", Subtype: "Cash"},
	{Phrases: []string{"creance client", "client receivable", "receivable"}, Category: ledger.CategoryReceivables, Label: "Client receivable", Subtype: "Trade receivables"},
	{Phrases: []string{"frais immatriculation", "frais d immatriculation", "registration fee"}, Category: ledger.CategoryRegistrationFees, Label: "Registration fees", Subtype: "Start-up costs"},
	{Phrases: []string{"achat machine", "machine purchase", "machine"}, Category: ledger.CategoryMachine, Label: "Machine purchase", Subtype: "Fixed assets"},
	{Phrases: []string{"achat camion", "camion", "truck"}, Category: ledger.CategoryTruck, Label: "Truck purchase", Subtype: "Fixed assets"},
	{Phrases: []string{"achat logiciel", "logiciel", "software"}, Category: ledger.CategorySoftware, Label: "Software purchase", Subtype: "Fixed assets"},
	{Phrases: []string{"consommation matieres", "materials consumed", "raw materials consumed"}, Category: ledger.CategoryRawMaterials, Label: "Raw materials consumed", Subtype: "Cost of goods sold"},
	{Phrases: []string{"achat matieres", "raw materials purchase", "matieres premieres", "raw materials"}, Category: ledger.CategoryStock, Label: "Raw materials purchase", Subtype: "Inventory"},
	{Phrases: []string{"vente meubles", "vente", "facture client", "sale", "client invoice", "customer invoice"}, Category: ledger.CategorySale, Label: "Sale of goods", Subtype: "Sales"},
	{Phrases: []string{"prestation", "service"}, Category: ledger.CategoryServiceRevenue, Label: "Service revenue", Subtype: "Sales"},
	{Phrases: []string{"facture electricite", "electricite", "electricity", "power bill"}, Category: ledger.CategoryElectricity, Label: "Electricity", Subtype: "Utilities"},
	{Phrases: []string{"credit caisse", "cash credit", "overdraft"}, Category: ledger.CategoryCashCredit, Label: "Cash credit line", Subtype: "Short-term borrowings"},
	{Phrases: []string{"emprunt", "pret bancaire", "bank loan"}, Category: ledger.CategoryBankLoan, Label: "Bank loan", Subtype: "Long-term borrowings"},
	{Phrases: []string{"loyer", "rent"}, Category: ledger.CategoryRent, Label: "Rent", Subtype: "External charges"},
	{Phrases: []string{"salaire", "salary", "payroll", "wages"}, Category: ledger.CategorySalaries, Label: "Salaries", Subtype: "Personnel costs"},
	{Phrases: []string{"stock", "inventaire", "inventory"}, Category: ledger.CategoryStock, Label: "Stock", Subtype: "Inventory"},
}

// Rules returns the free-text rule table in match order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Match is the outcome of classifying a description.
type Match struct {
	Category     ledger.Category    `json:"category"`
	Label        string             `json:"label"`
	Kind         Kind               `json:"kind"`
	Subtype      string             `json:"subtype"`
	Destinations []ledger.Statement `json:"destinations"`
	Phrase       string             `json:"phrase"`
	Outflow      bool               `json:"outflow,omitempty"`
}

// Draft builds the ledger draft for amount. Outflow matches post -|amount|.
func (m Match) Draft(description string, amount decimal.Decimal) ledger.Draft {
	if m.Outflow {
		amount = amount.Abs().Neg()
	}
	label := strings.TrimSpace(description)
	if label == "" {
		label = m.Label
	}
	return ledger.Draft{Label: label, Amount: amount, Category: m.Category}
}

// MatchText classifies a free-text description. It reports false when no
// rule matches.
func MatchText(description string) (Match, bool) {
	text := " " + Normalize(description) + " "
	for _, r := range rules {
		for _, phrase := range r.Phrases {
			if containsWordPrefix(text, phrase) {
				return Match{
					Category:     r.Category,
					Label:        r.Label,
					Kind:         kindOf(r.Category),
					Subtype:      r.Subtype,
					Destinations: r.Category.Statements(),
					Phrase:       phrase,
					Outflow:      r.Outflow,
				}, true
			}
		}
	}
	return Match{}, false
}

// containsWordPrefix reports whether phrase occurs in text starting at a word
// boundary. "vente" matches "ventes", "rent" does not match "current".
func containsWordPrefix(text, phrase string) bool {
	return strings.Contains(text, " "+phrase)
}

func kindOf(c ledger.Category) Kind {
	info, _ := c.Info()
	switch {
	case info.Section == ledger.SectionRevenue:
		return KindRevenue
	case info.Section == ledger.SectionExpenses:
		return KindExpense
	case info.Group == ledger.GroupAsset:
		return KindAsset
	default:
		return KindLiability
	}
}

// Normalize lowercases s, strips diacritics and reduces punctuation to single
// spaces: "Facture d'électricité" becomes "facture d electricite".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
