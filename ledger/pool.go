package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Statements are derived on every read, so the per-category totals map is
// pooled between derivations.
var totalsPool = sync.Pool{
	New: func() any {
		return make(map[Category]decimal.Decimal, len(taxonomy))
	},
}

// getTotals retrieves an empty pooled totals map.
func getTotals() map[Category]decimal.Decimal {
	return totalsPool.Get().(map[Category]decimal.Decimal)
}

// putTotals clears m and returns it to the pool.
func putTotals(m map[Category]decimal.Decimal) {
	clear(m)
	totalsPool.Put(m)
}

// categoryTotals sums entry amounts per category. The caller must return the
// map with putTotals.
func categoryTotals(entries []Entry) map[Category]decimal.Decimal {
	totals := getTotals()
	for _, e := range entries {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}
