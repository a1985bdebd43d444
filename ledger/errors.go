package ledger

import (
	"errors"
	"fmt"
)

// ErrStoreClosed is returned by stores used after Close.
var ErrStoreClosed = errors.New("store is closed")

// UnknownCategoryError is returned when a string does not name a taxonomy category.
type UnknownCategoryError struct {
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Value)
}

func (e *UnknownCategoryError) GetValue() string {
	return e.Value
}

// InvalidAmountError is returned when an amount string cannot be evaluated.
type InvalidAmountError struct {
	Value string
	Err   error
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %v", e.Value, e.Err)
}

func (e *InvalidAmountError) Unwrap() error {
	return e.Err
}

// InvalidLinkError is returned when a draft of a batch references a position
// that is not an earlier draft of the same batch.
type InvalidLinkError struct {
	Position int
	Finances int
}

func (e *InvalidLinkError) Error() string {
	return fmt.Sprintf("draft %d links to draft %d, which is not an earlier draft of the batch", e.Position, e.Finances)
}

// ValidationErrors wraps multiple errors collected while processing a batch.
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}
