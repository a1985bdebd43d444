package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Cash-flow buckets, tried in this order. Categories listed in
// cashflowIgnored have no cash effect of their own.
var (
	settlementInflows      = []Category{CategoryClientCollection}
	settlementOutflows     = []Category{CategorySupplierPayment}
	financingInflows       = []Category{CategoryCapital, CategoryBankLoan, CategoryCashCredit}
	financingRepayments    = []Category{CategoryLoanRepayment}
	interestCharges        = []Category{CategoryInterest}
	operatingRevenues      = []Category{CategorySale, CategoryServiceRevenue}
	operatingExpenses      = []Category{CategoryRegistrationFees, CategoryRent, CategoryElectricity, CategorySalaries}
	investmentCategories   = []Category{CategoryMachine, CategorySoftware, CategoryTruck}
	cashflowIgnored        = []Category{CategoryRawMaterials, CategoryStock, CategoryReceivables, CategoryPayables, CategoryRetainedEarnings}
)

// Cashflow is the cash-flow statement of the ledger.
type Cashflow struct {
	Operating decimal.Decimal `json:"operating"`
	Investing decimal.Decimal `json:"investing"`
	Financing decimal.Decimal `json:"financing"`
	Net       decimal.Decimal `json:"net"`

	ClientCollections    decimal.Decimal `json:"clientCollections"`
	SupplierPayments     decimal.Decimal `json:"supplierPayments"`
	OperatingChargesPaid decimal.Decimal `json:"operatingChargesPaid"`
	InterestPaid         decimal.Decimal `json:"interestPaid"`
	CapitalContributions decimal.Decimal `json:"capitalContributions"`
	LoansReceived        decimal.Decimal `json:"loansReceived"`
	Repayments           decimal.Decimal `json:"repayments"`
	InvestmentsRecorded  decimal.Decimal `json:"investmentsRecorded"`

	OffsetByPayables decimal.Decimal `json:"offsetByPayables"`
	OffsetByLoans    decimal.Decimal `json:"offsetByLoans"`
}

// cashScan holds the results of the pre-scan over all entries.
type cashScan struct {
	payables    amountBag
	receivables amountBag

	// associated holds the amounts of payables financing an investment, a
	// subset of payables; associatedPayables is their total.
	associated         amountBag
	associatedPayables decimal.Decimal
	loansReceived      decimal.Decimal
}

func scanEntries(entries []Entry, cfg *Config) cashScan {
	scan := cashScan{payables: amountBag{}, receivables: amountBag{}, associated: amountBag{}}

	investments := make(map[string]bool)
	for _, e := range entries {
		if slices.Contains(investmentCategories, e.Category) {
			investments[e.ID] = true
		}
	}

	for _, e := range entries {
		if !e.Amount.IsPositive() {
			continue
		}
		switch e.Category {
		case CategoryPayables:
			scan.payables.add(e.Amount)
			if financesInvestment(e, investments, cfg) {
				scan.associated.add(e.Amount)
				scan.associatedPayables = scan.associatedPayables.Add(e.Amount)
			}
		case CategoryReceivables:
			scan.receivables.add(e.Amount)
		case CategoryBankLoan:
			scan.loansReceived = scan.loansReceived.Add(e.Amount)
		}
	}
	return scan
}

// financesInvestment reports whether a payable finances an investment. An
// explicit link decides; unlinked payables fall back to label keywords.
func financesInvestment(e Entry, investments map[string]bool, cfg *Config) bool {
	if e.LinkedTo != "" {
		return investments[e.LinkedTo]
	}
	return cfg.matchesAssociation(e.Label)
}

// ComputeCashflow derives the cash-flow statement from entries in insertion order.
//
// Credit sales and credit purchases are recognized by matching them against a
// receivable or payable of the same amount; a matched entry has no cash effect.
// Investment outflows financed directly by a supplier credit or a bank loan are
// neutralized afterwards so that only cash actually paid shows as investing.
func ComputeCashflow(entries []Entry, cfg *Config) *Cashflow {
	if cfg == nil {
		cfg = NewConfig()
	}

	scan := scanEntries(entries, cfg)
	cf := &Cashflow{}

	var investedOutflow, matchedAssociated decimal.Decimal
	for _, e := range entries {
		a := e.Amount
		switch {
		case slices.Contains(settlementInflows, e.Category):
			cf.Operating = cf.Operating.Add(a.Abs())
			cf.ClientCollections = cf.ClientCollections.Add(a.Abs())

		case slices.Contains(settlementOutflows, e.Category):
			cf.Operating = cf.Operating.Sub(a.Abs())
			cf.SupplierPayments = cf.SupplierPayments.Add(a.Abs())

		case slices.Contains(financingInflows, e.Category):
			cf.Financing = cf.Financing.Add(a)
			if e.Category == CategoryCapital {
				cf.CapitalContributions = cf.CapitalContributions.Add(a)
			} else {
				cf.LoansReceived = cf.LoansReceived.Add(a)
			}

		case slices.Contains(financingRepayments, e.Category):
			cf.Financing = cf.Financing.Add(a)
			cf.Repayments = cf.Repayments.Add(a)

		case slices.Contains(interestCharges, e.Category):
			cf.Operating = cf.Operating.Sub(a.Abs())
			cf.InterestPaid = cf.InterestPaid.Add(a.Abs())

		case slices.Contains(operatingRevenues, e.Category):
			if scan.receivables.consume(a) {
				continue
			}
			cf.Operating = cf.Operating.Add(a)
			cf.ClientCollections = cf.ClientCollections.Add(a)

		case slices.Contains(operatingExpenses, e.Category):
			if scan.payables.consume(a) {
				continue
			}
			cf.Operating = cf.Operating.Sub(a)
			cf.OperatingChargesPaid = cf.OperatingChargesPaid.Add(a)

		case slices.Contains(investmentCategories, e.Category):
			cf.InvestmentsRecorded = cf.InvestmentsRecorded.Add(a)
			if scan.payables.consume(a) {
				if scan.associated.consume(a) {
					matchedAssociated = matchedAssociated.Add(a)
				}
				continue
			}
			cf.Investing = cf.Investing.Sub(a)
			if a.IsPositive() {
				investedOutflow = investedOutflow.Add(a)
			}
		}
	}

	// Associated payables consumed by the matching above already cancelled
	// their investment. Unassociated ones never counted toward the cover.
	available := decimal.Max(decimal.Zero, scan.associatedPayables.Sub(matchedAssociated))
	cf.OffsetByPayables = decimal.Min(investedOutflow, available)
	cf.Investing = cf.Investing.Add(cf.OffsetByPayables)

	remaining := investedOutflow.Sub(cf.OffsetByPayables)
	cf.OffsetByLoans = decimal.Min(remaining, scan.loansReceived)
	cf.Investing = cf.Investing.Add(cf.OffsetByLoans)
	cf.Financing = cf.Financing.Sub(cf.OffsetByLoans)
	cf.LoansReceived = cf.LoansReceived.Sub(cf.OffsetByLoans)

	cf.Net = cf.Operating.Add(cf.Investing).Add(cf.Financing)
	return cf
}
