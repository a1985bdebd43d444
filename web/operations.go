package web

import (
	"context"
	"net/http"

	"github.com/robinvdvleuten/compta/classify"
	"github.com/robinvdvleuten/compta/ledger"
)

// Operation binds one ledger operation to the HTTP boundary. Every operation
// is served on its REST route and on POST /api/rpc/{name}.
type Operation struct {
	Name    string
	Method  string
	Path    string
	Mutates bool

	// Status is the success status of the REST binding.
	Status int

	handle func(ctx context.Context, s *Server, in *input) (any, error)
}

// Operations returns the operation table.
func Operations() []Operation {
	return []Operation{
		{Name: "entries.list", Method: http.MethodGet, Path: "/api/entries", handle: listEntries},
		{Name: "entries.register", Method: http.MethodPost, Path: "/api/entries", Mutates: true, Status: http.StatusCreated, handle: registerEntry},
		{Name: "entries.delete", Method: http.MethodDelete, Path: "/api/entries/{id}", Mutates: true, handle: deleteEntry},
		{Name: "statements.balance", Method: http.MethodGet, Path: "/api/balance-sheet", handle: balanceSheet},
		{Name: "statements.income", Method: http.MethodGet, Path: "/api/income-statement", handle: incomeStatement},
		{Name: "statements.cashflow", Method: http.MethodGet, Path: "/api/cashflow", handle: cashflow},
		{Name: "exercise.close", Method: http.MethodPost, Path: "/api/close", Mutates: true, handle: closeExercise},
		{Name: "auto.text", Method: http.MethodPost, Path: "/api/auto/text", Mutates: true, Status: http.StatusCreated, handle: autoText},
		{Name: "auto.operation", Method: http.MethodPost, Path: "/api/auto/operation", Mutates: true, Status: http.StatusCreated, handle: autoOperation},
		{Name: "classify.preview", Method: http.MethodPost, Path: "/api/classify", handle: classifyPreview},
		{Name: "categories.list", Method: http.MethodGet, Path: "/api/categories", handle: listCategories},
	}
}

func listEntries(ctx context.Context, s *Server, _ *input) (any, error) {
	entries, err := s.ledger.List(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return entries, nil
}

// RegisterRequest is the body of entries.register.
type RegisterRequest struct {
	Label    string      `json:"label"`
	Amount   amountParam `json:"amount"`
	Category string      `json:"category"`
	LinkedTo string      `json:"linkedTo,omitempty"`
}

func registerEntry(ctx context.Context, s *Server, in *input) (any, error) {
	var req RegisterRequest
	if err := in.decode(&req); err != nil {
		return nil, err
	}

	category, err := ledger.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	amount, err := req.Amount.parse(true)
	if err != nil {
		return nil, err
	}

	if req.LinkedTo != "" {
		if _, ok, err := s.ledger.Get(ctx, req.LinkedTo); err != nil {
			return nil, err
		} else if !ok {
			return nil, badRequest("linked entry %s does not exist", req.LinkedTo)
		}
	}

	return s.ledger.Register(ctx, ledger.Draft{
		Label:    req.Label,
		Amount:   amount,
		Category: category,
		LinkedTo: req.LinkedTo,
	})
}

// DeleteResponse is the result of entries.delete.
type DeleteResponse struct {
	Removed bool `json:"removed"`
}

func deleteEntry(ctx context.Context, s *Server, in *input) (any, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := in.decode(&req); err != nil {
		return nil, err
	}
	id := in.param("id", req.ID)
	if id == "" {
		return nil, badRequest("missing entry id")
	}

	removed, err := s.ledger.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DeleteResponse{Removed: removed}, nil
}

func closeExercise(ctx context.Context, s *Server, _ *input) (any, error) {
	return s.ledger.CloseExercise(ctx)
}

// AutoTextRequest is the body of auto.text.
type AutoTextRequest struct {
	Description string      `json:"description"`
	Amount      amountParam `json:"amount"`
}

func autoText(ctx context.Context, s *Server, in *input) (any, error) {
	var req AutoTextRequest
	if err := in.decode(&req); err != nil {
		return nil, err
	}
	amount, err := req.Amount.parse(true)
	if err != nil {
		return nil, err
	}

	e, ok, err := classify.RegisterText(ctx, s.ledger, req.Description, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("no rule matches %q", req.Description)
	}
	return e, nil
}

// AutoOperationRequest is the body of auto.operation.
type AutoOperationRequest struct {
	Key             string      `json:"key"`
	Amount          amountParam `json:"amount"`
	PaymentMode     string      `json:"paymentMode,omitempty"`
	InterestsPart   amountParam `json:"interestsPart,omitempty"`
	LoanPart        amountParam `json:"loanPart,omitempty"`
	CostOfGoodsSold amountParam `json:"costOfGoodsSold,omitempty"`
}

// Operation converts the request into a structured operation.
func (req *AutoOperationRequest) Operation() (classify.Operation, error) {
	var (
		op  classify.Operation
		err error
	)
	if op.Key, err = classify.ParseOperationKey(req.Key); err != nil {
		return op, err
	}
	if op.PaymentMode, err = classify.ParsePaymentMode(req.PaymentMode); err != nil {
		return op, badRequest("%v", err)
	}
	if op.Amount, err = req.Amount.parse(true); err != nil {
		return op, err
	}
	if op.InterestsPart, err = req.InterestsPart.parse(false); err != nil {
		return op, err
	}
	if op.LoanPart, err = req.LoanPart.parse(false); err != nil {
		return op, err
	}
	if op.CostOfGoodsSold, err = req.CostOfGoodsSold.parse(false); err != nil {
		return op, err
	}
	return op, nil
}

func autoOperation(ctx context.Context, s *Server, in *input) (any, error) {
	var req AutoOperationRequest
	if err := in.decode(&req); err != nil {
		return nil, err
	}
	op, err := req.Operation()
	if err != nil {
		return nil, err
	}
	return classify.RegisterOperation(ctx, s.ledger, op)
}

// ClassifyRequest is the body of classify.preview.
type ClassifyRequest struct {
	Label string `json:"label"`
}

func classifyPreview(ctx context.Context, s *Server, in *input) (any, error) {
	var req ClassifyRequest
	if err := in.decode(&req); err != nil {
		return nil, err
	}
	if req.Label == "" {
		return nil, badRequest("missing label")
	}
	return classify.PreviewLabel(ctx, s.ledger, req.Label)
}

// CategoryResponse is one category of the taxonomy with the statements it feeds.
type CategoryResponse struct {
	ledger.CategoryInfo
	Statements []ledger.Statement `json:"statements"`
}

func listCategories(_ context.Context, _ *Server, _ *input) (any, error) {
	taxonomy := ledger.Taxonomy()
	out := make([]CategoryResponse, len(taxonomy))
	for i, info := range taxonomy {
		out[i] = CategoryResponse{CategoryInfo: info, Statements: info.Category.Statements()}
	}
	return out, nil
}
