package ledger

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Category is the closed set of accounting categories an entry can be filed under.
// The string value is the wire identifier used by the CLI, the HTTP API and the stores.
type Category string

const (
	CategorySale             Category = "sale"
	CategoryServiceRevenue   Category = "service_revenue"
	CategoryRegistrationFees Category = "registration_fees"
	CategoryRent             Category = "rent"
	CategoryElectricity      Category = "electricity"
	CategoryInterest         Category = "interest"
	CategorySalaries         Category = "salaries"
	CategoryRawMaterials     Category = "raw_materials"
	CategoryMachine          Category = "machine"
	CategorySoftware         Category = "software"
	CategoryTruck            Category = "truck"
	CategoryCapital          Category = "capital"
	CategoryRetainedEarnings Category = "retained_earnings"
	CategoryBankLoan         Category = "bank_loan"
	CategoryCashCredit       Category = "cash_credit"
	CategoryPayables         Category = "payables"
	CategoryLoanRepayment    Category = "loan_repayment"
	CategoryStock            Category = "stock"
	CategoryReceivables      Category = "receivables"
	CategoryClientCollection Category = "client_collection"
	CategorySupplierPayment  Category = "supplier_payment"
)

// Group is the side of the balance sheet a category belongs to.
type Group string

const (
	GroupAsset     Group = "asset"
	GroupLiability Group = "liability"
)

// Section is the presentation section of a category.
type Section string

const (
	SectionRevenue       Section = "Revenue"
	SectionExpenses      Section = "Expenses"
	SectionFixedAssets   Section = "Fixed assets"
	SectionCurrentAssets Section = "Current assets"
	SectionCash          Section = "Cash"
	SectionEquity        Section = "Equity"
	SectionDebts         Section = "Debts"
	SectionMovements     Section = "Movements"
)

// OnBalanceSheet reports whether entries of this section are carried on the balance sheet.
// Revenue, expenses and cash movements only feed the income and cash-flow statements.
func (s Section) OnBalanceSheet() bool {
	switch s {
	case SectionFixedAssets, SectionCurrentAssets, SectionCash, SectionEquity, SectionDebts:
		return true
	default:
		return false
	}
}

// CategoryInfo is the taxonomy record of a category.
type CategoryInfo struct {
	Category Category `json:"key"`
	Label    string   `json:"label"`
	Group    Group    `json:"group"`
	Section  Section  `json:"section"`
}

// taxonomy lists every category in presentation order.
var taxonomy = []CategoryInfo{
	{CategorySale, "Sale of goods", GroupAsset, SectionRevenue},
	{CategoryServiceRevenue, "Service revenue", GroupAsset, SectionRevenue},
	{CategoryRegistrationFees, "Registration fees", GroupLiability, SectionExpenses},
	{CategoryRent, "Rent", GroupLiability, SectionExpenses},
	{CategoryElectricity, "Electricity", GroupLiability, SectionExpenses},
	{CategoryInterest, "Bank interest", GroupLiability, SectionExpenses},
	{CategorySalaries, "Salaries", GroupLiability, SectionExpenses},
	{CategoryRawMaterials, "Raw materials consumed", GroupLiability, SectionExpenses},
	{CategoryMachine, "Machine purchase", GroupAsset, SectionFixedAssets},
	{CategorySoftware, "Software purchase", GroupAsset, SectionFixedAssets},
	{CategoryTruck, "Truck purchase", GroupAsset, SectionFixedAssets},
	{CategoryCapital, "Capital contribution", GroupLiability, SectionEquity},
	{CategoryRetainedEarnings, "Retained earnings", GroupLiability, SectionEquity},
	{CategoryBankLoan, "Bank loan", GroupLiability, SectionDebts},
	{CategoryCashCredit, "Cash credit line", GroupLiability, SectionDebts},
	{CategoryPayables, "Supplier payables", GroupLiability, SectionDebts},
	{CategoryLoanRepayment, "Loan repayment", GroupLiability, SectionDebts},
	{CategoryStock, "Stock", GroupAsset, SectionCurrentAssets},
	{CategoryReceivables, "Client receivables", GroupAsset, SectionCurrentAssets},
	{CategoryClientCollection, "Client collection", GroupAsset, SectionMovements},
	{CategorySupplierPayment, "Supplier payment", GroupLiability, SectionMovements},
}

var taxonomyIndex = func() map[Category]int {
	idx := make(map[Category]int, len(taxonomy))
	for i, info := range taxonomy {
		idx[info.Category] = i
	}
	return idx
}()

// Categories returns all categories in presentation order.
func Categories() []Category {
	out := make([]Category, len(taxonomy))
	for i, info := range taxonomy {
		out[i] = info.Category
	}
	return out
}

// Taxonomy returns a copy of the full taxonomy.
func Taxonomy() []CategoryInfo {
	out := make([]CategoryInfo, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// Info returns the taxonomy record of c.
func (c Category) Info() (CategoryInfo, bool) {
	i, ok := taxonomyIndex[c]
	if !ok {
		return CategoryInfo{}, false
	}
	return taxonomy[i], true
}

// Valid reports whether c is a member of the taxonomy.
func (c Category) Valid() bool {
	_, ok := taxonomyIndex[c]
	return ok
}

// Label returns the display label of c, or the raw identifier when c is unknown.
func (c Category) Label() string {
	if info, ok := c.Info(); ok {
		return info.Label
	}
	return string(c)
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a wire identifier into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &UnknownCategoryError{Value: s}
	}
	return c, nil
}

// MustParseCategory is like ParseCategory but panics on unknown input.
// Use only in tests or with constant input.
func MustParseCategory(s string) Category {
	c, err := ParseCategory(s)
	if err != nil {
		panic(fmt.Sprintf("ledger: %v", err))
	}
	return c
}

// categoriesIn returns the categories classified under (group, section), in taxonomy order.
func categoriesIn(group Group, section Section) []Category {
	var out []Category
	for _, info := range taxonomy {
		if info.Group == group && info.Section == section {
			out = append(out, info.Category)
		}
	}
	return out
}

// Statement names one of the derived statements.
type Statement string

const (
	StatementBalanceSheet    Statement = "balance_sheet"
	StatementIncomeStatement Statement = "income_statement"
	StatementCashflow        Statement = "cashflow"
)

// Statements returns the statements an entry of category c contributes to.
func (c Category) Statements() []Statement {
	var out []Statement
	if info, ok := c.Info(); ok && info.Section.OnBalanceSheet() {
		out = append(out, StatementBalanceSheet)
	}
	if slices.Contains(chargeCategories, c) || slices.Contains(productCategories, c) {
		out = append(out, StatementIncomeStatement)
	}
	if !slices.Contains(cashflowIgnored, c) {
		out = append(out, StatementCashflow)
	}
	return out
}
