package web

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/compta/ledger"
)

// firstYear registers the first year of a small furniture workshop through
// the structured operation endpoints.
func firstYear(t *testing.T, ts *testServer) {
	t.Helper()
	operations := []string{
		`{"key":"capital_initial","amount":"40,000"}`,
		`{"key":"machine_purchase","amount":25000,"loanPart":15000,"paymentMode":"credit"}`,
		`{"key":"registration_fees","amount":3000}`,
		`{"key":"raw_materials_purchase","amount":10000,"paymentMode":"credit"}`,
		`{"key":"furniture_sale","amount":18000,"paymentMode":"credit","costOfGoodsSold":6000}`,
		`{"key":"supplier_payment","amount":10000}`,
		`{"key":"electricity_bill","amount":1200,"paymentMode":"credit"}`,
		`{"key":"cash_credit","amount":2000}`,
		`{"key":"client_collection","amount":18000}`,
		`{"key":"cash_credit_repayment","amount":"2000 + 160","interestsPart":160}`,
	}
	for i, body := range operations {
		// Alternate between the REST and RPC bindings.
		path, status := "/api/auto/operation", http.StatusCreated
		if i%2 == 1 {
			path, status = "/api/rpc/auto.operation", http.StatusOK
		}
		rec := ts.do(t, http.MethodPost, path, body)
		assert.Equal(t, status, rec.Code, "%s: %s", body, rec.Body.String())
	}
}

func TestAPIStatements(t *testing.T) {
	ts := newTestServer(t)
	firstYear(t, ts)

	rec := ts.do(t, http.MethodGet, "/api/entries", "")
	assert.Equal(t, 20, len(decode[[]ledger.Entry](t, rec)))

	t.Run("IncomeStatement", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/income-statement", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		is := decode[ledger.IncomeStatement](t, rec)
		assert.Equal(t, "7640", is.NetResult.String())
		assert.Equal(t, "18000", is.TotalProducts.String())
		assert.Equal(t, "10360", is.TotalCharges.String())
	})

	t.Run("Cashflow", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/cashflow", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		cf := decode[ledger.Cashflow](t, rec)
		assert.Equal(t, "4840", cf.Operating.String())
		assert.Equal(t, "0", cf.Investing.String())
		assert.Equal(t, "40000", cf.Financing.String())
		assert.Equal(t, "44840", cf.Net.String())
	})

	t.Run("BalanceSheet", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/balance-sheet", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var bs struct {
			TotalAssets      string `json:"totalAssets"`
			TotalLiabilities string `json:"totalLiabilities"`
			Balanced         bool   `json:"balanced"`
			Imbalance        string `json:"imbalance"`
			Closed           bool   `json:"closed"`
			Assets           []ledger.BalanceSheetSection
		}
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&bs))
		assert.Equal(t, "73840", bs.TotalAssets)
		assert.Equal(t, "73840", bs.TotalLiabilities)
		assert.True(t, bs.Balanced)
		assert.Equal(t, "0", bs.Imbalance)
		assert.False(t, bs.Closed)
		assert.Equal(t, 3, len(bs.Assets))
	})

	t.Run("Close", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/close", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		res := decode[ledger.ClosingResult](t, rec)
		assert.True(t, res.Inserted)
		assert.Equal(t, "7640", res.Result.String())
		assert.Equal(t, ledger.CategoryRetainedEarnings, res.Entry.Category)

		rec = ts.do(t, http.MethodGet, "/api/balance-sheet", "")
		var bs BalanceSheetResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&bs))
		assert.True(t, bs.Closed)
		assert.True(t, bs.Balanced)
		assert.Equal(t, "73840", bs.TotalAssets.String())
	})
}

func TestAPIClassifyPreview(t *testing.T) {
	ts := newTestServer(t)
	for _, body := range []string{
		`{"label":"Loyer atelier","amount":"800","category":"rent"}`,
		`{"label":"Loyer bureau","amount":"800","category":"rent"}`,
		`{"label":"Vente table","amount":"1200","category":"sale"}`,
		`{"label":"Vente chaise","amount":"300","category":"sale"}`,
	} {
		rec := ts.do(t, http.MethodPost, "/api/entries", body)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := ts.do(t, http.MethodPost, "/api/classify", `{"label":"Loyer mars"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var preview struct {
		Match *struct {
			Category string `json:"category"`
			Kind     string `json:"kind"`
		} `json:"match"`
		Suggestion string `json:"suggestion"`
	}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, "rent", preview.Match.Category)
	assert.Equal(t, "expense", preview.Match.Kind)
	assert.Equal(t, "rent", preview.Suggestion)
}
