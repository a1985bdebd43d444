package ledger

import "github.com/shopspring/decimal"

// amountBag is a counted multiset of amounts keyed on their two-decimal rounding.
type amountBag map[string]int

func (b amountBag) add(d decimal.Decimal) {
	b[amountKey(d)]++
}

// consume removes one occurrence of d and reports whether one was present.
func (b amountBag) consume(d decimal.Decimal) bool {
	k := amountKey(d)
	if b[k] == 0 {
		return false
	}
	b[k]--
	if b[k] == 0 {
		delete(b, k)
	}
	return true
}

func (b amountBag) count(d decimal.Decimal) int {
	return b[amountKey(d)]
}
