package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/robinvdvleuten/compta/classify"
	comptaerrors "github.com/robinvdvleuten/compta/errors"
	"github.com/robinvdvleuten/compta/ledger"
	"github.com/shopspring/decimal"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// writeJSONResponse writes a JSON response with status 200.
func writeJSONResponse(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// writeJSON writes data as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error comptaerrors.ErrorJSON `json:"error"`
}

// writeError writes err with the status derived from its type.
func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)

	var herr *httpError
	if errors.As(err, &herr) {
		err = herr.Err
	}
	writeJSON(w, status, &ErrorResponse{Error: comptaerrors.NewJSONFormatter().ToJSON(err)})
}

// httpError carries an explicit status for errors raised by the HTTP layer.
type httpError struct {
	Status int
	Err    error
}

func (e *httpError) Error() string { return e.Err.Error() }

func (e *httpError) Unwrap() error { return e.Err }

func badRequest(format string, args ...any) error {
	return &httpError{Status: http.StatusBadRequest, Err: fmt.Errorf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &httpError{Status: http.StatusNotFound, Err: fmt.Errorf(format, args...)}
}

var errReadOnly = &httpError{Status: http.StatusForbidden, Err: errors.New("server is in read-only mode")}

func statusOf(err error) int {
	var (
		herr        *httpError
		unknown     *ledger.UnknownCategoryError
		amount      *ledger.InvalidAmountError
		link        *ledger.InvalidLinkError
		unsupported *classify.UnsupportedOperationError
		invalidOp   *classify.InvalidOperationError
	)
	switch {
	case errors.As(err, &herr):
		return herr.Status
	case errors.As(err, &unknown), errors.As(err, &amount), errors.As(err, &link),
		errors.As(err, &unsupported), errors.As(err, &invalidOp):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// input is the decoded request of an operation: the JSON body plus the
// route parameters of the REST binding.
type input struct {
	body   []byte
	params map[string]string
}

func readInput(r *http.Request, params map[string]string) (*input, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, badRequest("failed to read request body: %v", err)
	}
	return &input{body: body, params: params}, nil
}

// decode unmarshals the body into v. An empty body leaves v untouched.
func (in *input) decode(v any) error {
	if len(strings.TrimSpace(string(in.body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(in.body, v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// param returns a route parameter, falling back to the body value.
func (in *input) param(name, fallback string) string {
	if v := in.params[name]; v != "" {
		return v
	}
	return fallback
}

// amountParam accepts an amount as a JSON number or string. Strings go
// through ledger.ParseAmount, so "25,000" and "2000 + 160" are accepted.
type amountParam string

func (a *amountParam) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = amountParam(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string")
	}
	*a = amountParam(n.String())
	return nil
}

// parse converts the amount. An empty optional amount is zero.
func (a amountParam) parse(required bool) (decimal.Decimal, error) {
	if strings.TrimSpace(string(a)) == "" && !required {
		return decimal.Zero, nil
	}
	return ledger.ParseAmount(string(a))
}
