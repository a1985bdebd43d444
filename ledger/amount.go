package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a decimal amount.
// It accepts plain numbers ("1200", "-10000.50"), numbers with thousands
// separators ("25,000", "25 000") and arithmetic expressions ("25000 - 15000",
// "(2000 + 160)").
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &InvalidAmountError{Value: raw, Err: errEmptyAmount}
	}

	if d, err := decimal.NewFromString(stripGrouping(s)); err == nil {
		return d, nil
	}

	expr := s
	if !strings.HasPrefix(expr, "(") || !strings.HasSuffix(expr, ")") {
		expr = "(" + expr + ")"
	}
	d, err := EvaluateExpression(expr)
	if err != nil {
		return decimal.Zero, &InvalidAmountError{Value: raw, Err: err}
	}
	return d, nil
}

// MustParseAmount is like ParseAmount but panics on error.
// Use only in tests or when you're certain the amount is valid
func MustParseAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}

// stripGrouping removes thousands separators from a plain number.
// Only commas followed by exactly three digits are treated as grouping.
func stripGrouping(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	if !strings.Contains(s, ",") {
		return s
	}
	parts := strings.Split(s, ",")
	for _, p := range parts[1:] {
		digits := p
		if i := strings.IndexByte(p, '.'); i >= 0 {
			digits = p[:i]
		}
		if len(digits) != 3 {
			return s
		}
	}
	return strings.Join(parts, "")
}
