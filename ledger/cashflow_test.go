package ledger

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestComputeCashflowFirstYear(t *testing.T) {
	cf := ComputeCashflow(firstYear(), NewConfig())

	assertDecimal(t, "4840", cf.Operating, "operating")
	assertDecimal(t, "0", cf.Investing, "investing")
	assertDecimal(t, "40000", cf.Financing, "financing")
	assertDecimal(t, "44840", cf.Net, "net")

	assertDecimal(t, "25000", cf.InvestmentsRecorded, "investments recorded")
	assertDecimal(t, "10000", cf.OffsetByPayables, "offset by payables")
	assertDecimal(t, "15000", cf.OffsetByLoans, "offset by loans")
	assertDecimal(t, "40000", cf.CapitalContributions, "capital contributions")
	assertDecimal(t, "0", cf.LoansReceived, "loans received")
	assertDecimal(t, "160", cf.InterestPaid, "interest paid")
	assertDecimal(t, "10000", cf.SupplierPayments, "supplier payments")
	assertDecimal(t, "18000", cf.ClientCollections, "client collections")
	assertDecimal(t, "3000", cf.OperatingChargesPaid, "operating charges paid")
}

func TestCashflowConservation(t *testing.T) {
	es := entries(
		en("Sale", "1200", CategorySale),
		en("Consulting", "800.50", CategoryServiceRevenue),
		en("Rent", "700", CategoryRent),
		en("Power", "95.25", CategoryElectricity),
		en("Wages", "1000", CategorySalaries),
		en("Fees", "50", CategoryRegistrationFees),
		en("Interest", "12", CategoryInterest),
	)
	cf := ComputeCashflow(es, NewConfig())
	is := ComputeIncomeStatement(es)

	assert.True(t, cf.Operating.Equal(is.NetResult), "operating %s != net result %s", cf.Operating, is.NetResult)
	assertDecimal(t, "143.25", cf.Operating, "operating")
}

func TestCashflowAccrualExclusion(t *testing.T) {
	tests := []struct {
		name     string
		entries  []Entry
		wantOp   string
		wantNote string
	}{
		{
			name: "credit sale",
			entries: entries(
				en("Sale on credit", "5000", CategorySale),
				en("Client receivable", "5000", CategoryReceivables),
			),
			wantOp: "0",
		},
		{
			name: "credit expense",
			entries: entries(
				en("Rent on credit", "700", CategoryRent),
				en("Supplier payable", "700", CategoryPayables),
			),
			wantOp: "0",
		},
		{
			name: "receivable of another amount",
			entries: entries(
				en("Sale", "5000", CategorySale),
				en("Client receivable", "4999.99", CategoryReceivables),
			),
			wantOp: "5000",
		},
		{
			name: "match at two decimals",
			entries: entries(
				en("Sale", "99.994", CategorySale),
				en("Client receivable", "99.99", CategoryReceivables),
			),
			wantOp: "0",
		},
		{
			name: "negative receivables are not matchable",
			entries: entries(
				en("Client receivable settled", "-300", CategoryReceivables),
				en("Sale", "-300", CategorySale),
			),
			wantOp: "-300",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := ComputeCashflow(tt.entries, NewConfig())
			assertDecimal(t, tt.wantOp, cf.Operating, "operating")
		})
	}
}

func TestCashflowMultisetConsumesOnce(t *testing.T) {
	es := entries(
		en("Supplier payable", "1200", CategoryPayables),
		en("Power January", "1200", CategoryElectricity),
		en("Power February", "1200", CategoryElectricity),
	)
	cf := ComputeCashflow(es, NewConfig())
	assertDecimal(t, "-1200", cf.Operating, "operating")

	es = append(es, Entry{ID: "e4", Label: "Supplier payable", Amount: dec("1200"), Category: CategoryPayables})
	cf = ComputeCashflow(es, NewConfig())
	assertDecimal(t, "0", cf.Operating, "operating")
}

func TestCashflowInvestmentNeutralization(t *testing.T) {
	es := entries(
		en("Machine", "25000", CategoryMachine),
		en("Supplier payable - machine", "10000", CategoryPayables),
		en("Bank loan", "15000", CategoryBankLoan),
	)
	cf := ComputeCashflow(es, NewConfig())

	assertDecimal(t, "0", cf.Investing, "investing")
	assertDecimal(t, "0", cf.Financing, "financing")
	assertDecimal(t, "0", cf.LoansReceived, "loans received")
	assertDecimal(t, "25000", cf.InvestmentsRecorded, "investments recorded")
	assertDecimal(t, "0", cf.Net, "net")
}

func TestCashflowPartialNeutralization(t *testing.T) {
	es := entries(
		en("Capital", "30000", CategoryCapital),
		en("Truck", "20000", CategoryTruck),
		en("Bank loan", "8000", CategoryBankLoan),
	)
	cf := ComputeCashflow(es, NewConfig())

	assertDecimal(t, "-12000", cf.Investing, "investing")
	assertDecimal(t, "30000", cf.Financing, "financing")
	assertDecimal(t, "18000", cf.Net, "net")
	assertDecimal(t, "8000", cf.OffsetByLoans, "offset by loans")
}

func TestCashflowFullCreditInvestmentIsNotNeutralizedTwice(t *testing.T) {
	es := entries(
		en("Machine", "25000", CategoryMachine),
		en("Supplier payable - machine", "25000", CategoryPayables),
	)
	cf := ComputeCashflow(es, NewConfig())

	assertDecimal(t, "0", cf.Investing, "investing")
	assertDecimal(t, "0", cf.OffsetByPayables, "offset by payables")
	assertDecimal(t, "0", cf.Net, "net")
}

func TestCashflowPayableAssociation(t *testing.T) {
	tests := []struct {
		name      string
		payable   Entry
		cfg       func(*Config)
		wantInv string
		wantNet string
	}{
		{
			name:    "explicit link without keyword",
			payable: linked(en("Vendor credit", "10000", CategoryPayables), "e1"),
			wantInv: "-10000",
			wantNet: "0",
		},
		{
			name:    "link to a non-investment entry",
			payable: linked(en("Vendor credit - machine", "10000", CategoryPayables), "e2"),
			wantInv: "-20000",
			wantNet: "-10000",
		},
		{
			name:    "keyword fallback",
			payable: en("Dette fournisseur - immobilisation", "10000", CategoryPayables),
			wantInv: "-10000",
			wantNet: "0",
		},
		{
			name:    "keyword fallback disabled",
			payable: en("Supplier payable - machine", "10000", CategoryPayables),
			cfg:     func(c *Config) { c.KeywordFallback = false },
			wantInv: "-20000",
			wantNet: "-10000",
		},
		{
			name:    "unrelated payable",
			payable: en("Supplier payable - paper", "10000", CategoryPayables),
			wantInv: "-20000",
			wantNet: "-10000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			es := entries(
				en("Software licence", "20000", CategorySoftware),
				en("Rent", "0", CategoryRent),
				tt.payable,
				en("Capital", "10000", CategoryCapital),
			)

			cf := ComputeCashflow(es, cfg)
			assertDecimal(t, tt.wantInv, cf.Investing, "investing")
			assertDecimal(t, tt.wantNet, cf.Net, "net")
		})
	}
}

func TestCashflowRepaymentsAndSettlements(t *testing.T) {
	es := entries(
		en("Loan", "10000", CategoryBankLoan),
		en("Loan repayment", "-4000", CategoryLoanRepayment),
		en("Client collection", "-500", CategoryClientCollection),
		en("Supplier payment", "300", CategorySupplierPayment),
		en("Interest", "-20", CategoryInterest),
	)
	cf := ComputeCashflow(es, NewConfig())

	assertDecimal(t, "6000", cf.Financing, "financing")
	assertDecimal(t, "-4000", cf.Repayments, "repayments")
	assertDecimal(t, "180", cf.Operating, "operating")
	assertDecimal(t, "20", cf.InterestPaid, "interest paid")
}

func TestCashflowIgnoredCategories(t *testing.T) {
	es := entries(
		en("Stock", "1000", CategoryStock),
		en("Consumed", "400", CategoryRawMaterials),
		en("Retained", "900", CategoryRetainedEarnings),
		en("Payable", "50", CategoryPayables),
		en("Receivable", "60", CategoryReceivables),
	)
	cf := ComputeCashflow(es, NewConfig())
	assert.True(t, cf.Net.IsZero())
}

func TestCashflowIsIdempotent(t *testing.T) {
	es := firstYear()
	assert.Equal(t, ComputeCashflow(es, nil), ComputeCashflow(es, nil))
}

// A credit purchase matched by an unlinked payable must not eat into the
// payable cover of another, linked investment.
func TestCashflowUnassociatedMatchKeepsLinkedCover(t *testing.T) {
	machine := en("Machine purchase", "20000", CategoryMachine)
	machine.ID = "m"
	es := entries(
		en("Software licence", "5000", CategorySoftware),
		en("Supplier invoice - licence", "5000", CategoryPayables),
		machine,
		linked(en("Supplier credit", "8000", CategoryPayables), "m"),
		linked(en("Bank loan", "12000", CategoryBankLoan), "m"),
	)
	cf := ComputeCashflow(es, NewConfig())

	assertDecimal(t, "0", cf.Investing, "investing")
	assertDecimal(t, "0", cf.Financing, "financing")
	assertDecimal(t, "0", cf.Net, "net")
	assertDecimal(t, "25000", cf.InvestmentsRecorded, "investments recorded")
	assertDecimal(t, "8000", cf.OffsetByPayables, "offset by payables")
	assertDecimal(t, "12000", cf.OffsetByLoans, "offset by loans")

	bs := computeAll(es, NewConfig())
	assert.True(t, bs.Balanced(), "imbalance %s", bs.Imbalance())
	assertDecimal(t, "25000", bs.TotalAssets, "total assets")
	assertDecimal(t, "25000", bs.TotalLiabilities, "total liabilities")
}
