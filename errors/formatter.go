// Package errors provides error formatting for ledger, classification and
// scenario errors. It separates error formatting from domain logic, allowing
// errors to be rendered in multiple formats (text, JSON) for different
// consumers (CLI, HTTP API).
//
// The package defines a Formatter interface and provides two implementations:
//   - TextFormatter: Formats errors for command-line output, with the failing
//     scenario step or source lines as context
//   - JSONFormatter: Formats errors as structured JSON for the HTTP API
//
// Domain-specific error types remain in their respective packages (e.g., ledger),
// while this package handles the presentation layer.
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/compta/classify"
	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/loader"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	sourceContent []byte // Optional source content for error context
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the source content used for positional errors that do not
// carry their own.
func WithSource(source []byte) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.sourceContent = source
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Aggregated errors are expanded.
func (tf *TextFormatter) Format(err error) string {
	if verrs, ok := err.(*ledger.ValidationErrors); ok {
		return tf.FormatAll(verrs.Errors)
	}

	// Errors from a scenario step show the step as written
	if e, ok := err.(interface {
		GetPosition() loader.Position
		GetStep() *loader.Step
		Error() string
	}); ok {
		return tf.formatWithContext(e.Error(), e.GetStep())
	}

	// Errors carrying their source show the lines around the position
	if e, ok := err.(interface {
		GetPosition() loader.Position
		GetSource() []byte
		Error() string
	}); ok {
		source := tf.sourceContent
		if source == nil {
			source = e.GetSource()
		}
		if source != nil && e.GetPosition().Line > 0 {
			return tf.formatWithSourceContext(e.GetPosition(), e.Error(), source)
		}
		return e.Error()
	}

	// Fallback to standard error formatting
	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		// Add blank line between errors (but not after the last one)
		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// formatWithSourceContext shows the error message followed by the source
// lines around the error position.
func (tf *TextFormatter) formatWithSourceContext(pos loader.Position, message string, sourceContent []byte) string {
	var buf bytes.Buffer

	buf.WriteString(message)
	buf.WriteString("\n\n")

	sourceLines := strings.Split(string(sourceContent), "\n")

	// Two lines before the error line and one after
	startLine := pos.Line - 3
	endLine := pos.Line

	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(sourceLines) {
		endLine = len(sourceLines) - 1
	}

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(sourceLines[i])
		buf.WriteByte('\n')

		// Caret under the error column
		if i == pos.Line-1 && pos.Column > 0 {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", pos.Column-1))
			buf.WriteString("^\n")
		}
	}

	return buf.String()
}

// formatWithContext formats an error followed by the step it came from.
func (tf *TextFormatter) formatWithContext(message string, step *loader.Step) string {
	source := ""
	if step != nil {
		source = step.Source()
	}
	if source == "" {
		return message
	}

	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteString("\n\n")

	for _, line := range strings.Split(strings.TrimRight(source, "\n"), "\n") {
		buf.WriteString("   ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return buf.String()
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type     string                 `json:"type"`
	Message  string                 `json:"message"`
	Position *PositionJSON          `json:"position,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// PositionJSON represents a file position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	errJSON := jf.ToJSON(err)
	data, _ := json.Marshal(errJSON)
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	jsonErrors := jf.FormatAllToSlice(errs)
	data, _ := json.MarshalIndent(jsonErrors, "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
// Aggregated errors are flattened.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		if verrs, ok := err.(*ledger.ValidationErrors); ok {
			result = append(result, jf.FormatAllToSlice(verrs.Errors)...)
			continue
		}
		result = append(result, jf.ToJSON(err))
	}
	return result
}

// ToJSON converts an error to ErrorJSON.
func (jf *JSONFormatter) ToJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Details: make(map[string]interface{}),
	}

	// Extract position if available
	if e, ok := err.(interface{ GetPosition() loader.Position }); ok {
		pos := e.GetPosition()
		errJSON.Position = &PositionJSON{
			Filename: pos.Filename,
			Line:     pos.Line,
			Column:   pos.Column,
		}
	}

	if e, ok := err.(interface{ GetStep() *loader.Step }); ok {
		errJSON.Details["step"] = string(e.GetStep().Kind)
	}

	var (
		unknown     *ledger.UnknownCategoryError
		amount      *ledger.InvalidAmountError
		link        *ledger.InvalidLinkError
		unsupported *classify.UnsupportedOperationError
		invalidOp   *classify.InvalidOperationError
	)
	switch {
	case stderrors.As(err, &unknown):
		errJSON.Details["category"] = unknown.GetValue()
	case stderrors.As(err, &amount):
		errJSON.Details["amount"] = amount.Value
	case stderrors.As(err, &link):
		errJSON.Details["position"] = link.Position
		errJSON.Details["finances"] = link.Finances
	case stderrors.As(err, &unsupported):
		errJSON.Details["operation"] = unsupported.Key
	case stderrors.As(err, &invalidOp):
		errJSON.Details["operation"] = string(invalidOp.Key)
		errJSON.Details["reason"] = invalidOp.Reason
	}

	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}
	return errJSON
}
