package classify

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/shopspring/decimal"
)

// OperationKey names a structured business operation.
type OperationKey string

const (
	OpCapitalInitial        OperationKey = "capital_initial"
	OpRegistrationFees      OperationKey = "registration_fees"
	OpMachinePurchase       OperationKey = "machine_purchase"
	OpRawMaterialsPurchase  OperationKey = "raw_materials_purchase"
	OpFurnitureSale         OperationKey = "furniture_sale"
	OpSupplierPayment       OperationKey = "supplier_payment"
	OpElectricityBill       OperationKey = "electricity_bill"
	OpCashCredit            OperationKey = "cash_credit"
	OpCashCreditRepayment   OperationKey = "cash_credit_repayment"
	OpBankLoan              OperationKey = "bank_loan"
	OpClientCollection      OperationKey = "client_collection"
	OpLoanRepaymentInterest OperationKey = "loan_repayment_interest"
)

// OperationKeys lists every supported operation.
var OperationKeys = []OperationKey{
	OpCapitalInitial,
	OpRegistrationFees,
	OpMachinePurchase,
	OpRawMaterialsPurchase,
	OpFurnitureSale,
	OpSupplierPayment,
	OpElectricityBill,
	OpCashCredit,
	OpCashCreditRepayment,
	OpBankLoan,
	OpClientCollection,
	OpLoanRepaymentInterest,
}

// ParseOperationKey validates a key received at a boundary.
func ParseOperationKey(s string) (OperationKey, error) {
	key := OperationKey(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range OperationKeys {
		if k == key {
			return k, nil
		}
	}
	return "", &UnsupportedOperationError{Key: s}
}

// PaymentMode tells whether an operation was settled immediately or on credit.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentCredit PaymentMode = "credit"
)

// ParsePaymentMode accepts "cash", "credit" or an empty string (cash).
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaymentCash:
		return PaymentCash, nil
	case PaymentCredit:
		return PaymentCredit, nil
	}
	return "", fmt.Errorf("invalid payment mode %q, expected cash or credit", s)
}

// Operation is a structured operation request.
type Operation struct {
	Key         OperationKey    `json:"key"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode PaymentMode     `json:"paymentMode,omitempty"`

	// InterestsPart is the interest included in Amount for repayment operations.
	InterestsPart decimal.Decimal `json:"interestsPart"`

	// LoanPart is the part of a machine purchase financed by a bank loan.
	LoanPart decimal.Decimal `json:"loanPart"`

	// CostOfGoodsSold is the stock consumed by a sale.
	CostOfGoodsSold decimal.Decimal `json:"costOfGoodsSold"`
}

func (op Operation) onCredit() bool {
	return op.PaymentMode == PaymentCredit
}

// UnsupportedOperationError is returned for operation keys outside OperationKeys.
type UnsupportedOperationError struct {
	Key string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %q", e.Key)
}

// InvalidOperationError is returned when an operation's parts are inconsistent.
type InvalidOperationError struct {
	Key    OperationKey
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid %s operation: %s", e.Key, e.Reason)
}

func (op Operation) validate() error {
	for name, part := range map[string]decimal.Decimal{
		"interestsPart":   op.InterestsPart,
		"loanPart":        op.LoanPart,
		"costOfGoodsSold": op.CostOfGoodsSold,
	} {
		if part.IsNegative() {
			return &InvalidOperationError{Key: op.Key, Reason: name + " must not be negative"}
		}
	}
	if op.LoanPart.GreaterThan(op.Amount) {
		return &InvalidOperationError{Key: op.Key, Reason: "loanPart exceeds the amount"}
	}
	if op.InterestsPart.GreaterThan(op.Amount.Abs()) {
		return &InvalidOperationError{Key: op.Key, Reason: "interestsPart exceeds the amount"}
	}
	if op.PaymentMode != "" && op.PaymentMode != PaymentCash && op.PaymentMode != PaymentCredit {
		return &InvalidOperationError{Key: op.Key, Reason: fmt.Sprintf("unknown payment mode %q", op.PaymentMode)}
	}
	return nil
}

// Build expands op into the drafts it posts. Drafts that finance an earlier
// draft of the same batch reference it through Finances.
//
// Build panics on a key that passed ParseOperationKey but has no expansion.
func Build(op Operation) ([]ledger.Draft, error) {
	if err := op.validate(); err != nil {
		return nil, err
	}

	a := op.Amount
	draft := func(label string, amount decimal.Decimal, c ledger.Category) ledger.Draft {
		return ledger.Draft{Label: label, Amount: amount, Category: c}
	}
	payable := func(what string, amount decimal.Decimal) ledger.Draft {
		return draft("Supplier payable - "+what, amount, ledger.CategoryPayables)
	}

	var out []ledger.Draft
	switch op.Key {
	case OpCapitalInitial:
		out = append(out, draft("Initial capital contribution", a, ledger.CategoryCapital))

	case OpRegistrationFees:
		out = append(out, draft("Registration fees", a, ledger.CategoryRegistrationFees))
		if op.onCredit() {
			out = append(out, payable("registration fees", a))
		}

	case OpMachinePurchase:
		out = append(out, draft("Machine purchase", a, ledger.CategoryMachine))
		if op.LoanPart.IsPositive() {
			loan := draft("Bank loan - machine", op.LoanPart, ledger.CategoryBankLoan)
			loan.Finances = 1
			out = append(out, loan)
		}
		if rest := a.Sub(op.LoanPart); op.onCredit() && rest.IsPositive() {
			p := payable("machine", rest)
			p.Finances = 1
			out = append(out, p)
		}

	case OpRawMaterialsPurchase:
		out = append(out, draft("Raw materials purchase", a, ledger.CategoryStock))
		if op.onCredit() {
			out = append(out, payable("raw materials", a))
		} else {
			out = append(out, draft("Supplier payment - raw materials", a.Abs().Neg(), ledger.CategorySupplierPayment))
		}

	case OpFurnitureSale:
		out = append(out, draft("Furniture sale", a, ledger.CategorySale))
		if op.onCredit() {
			out = append(out, draft("Client receivable - furniture sale", a, ledger.CategoryReceivables))
		}
		if cogs := op.CostOfGoodsSold; cogs.IsPositive() {
			out = append(out,
				draft("Raw materials consumed", cogs, ledger.CategoryRawMaterials),
				draft("Stock consumed", cogs.Neg(), ledger.CategoryStock))
		}

	case OpSupplierPayment:
		out = append(out,
			draft("Supplier payment", a.Abs().Neg(), ledger.CategorySupplierPayment),
			draft("Supplier payable settled", a.Abs().Neg(), ledger.CategoryPayables))

	case OpElectricityBill:
		out = append(out, draft("Electricity bill", a, ledger.CategoryElectricity))
		if op.onCredit() {
			out = append(out, payable("electricity", a))
		}

	case OpCashCredit:
		out = append(out, draft("Cash credit line drawn", a, ledger.CategoryCashCredit))

	case OpCashCreditRepayment:
		principal := a.Abs().Sub(op.InterestsPart)
		if principal.IsPositive() {
			out = append(out, draft("Cash credit repayment", principal.Neg(), ledger.CategoryCashCredit))
		}
		if op.InterestsPart.IsPositive() {
			out = append(out, draft("Cash credit interest", op.InterestsPart, ledger.CategoryInterest))
		}

	case OpBankLoan:
		out = append(out, draft("Bank loan", a, ledger.CategoryBankLoan))

	case OpClientCollection:
		out = append(out,
			draft("Client collection", a.Abs(), ledger.CategoryClientCollection),
			draft("Client receivable settled", a.Abs().Neg(), ledger.CategoryReceivables))

	case OpLoanRepaymentInterest:
		principal := a.Abs().Sub(op.InterestsPart)
		if principal.IsPositive() {
			out = append(out, draft("Loan repayment", principal.Neg(), ledger.CategoryLoanRepayment))
		}
		if op.InterestsPart.IsPositive() {
			out = append(out, draft("Loan interest", op.InterestsPart, ledger.CategoryInterest))
		}

	default:
		panic(&UnsupportedOperationError{Key: string(op.Key)})
	}

	return out, nil
}
