package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/compta/classify"
	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/loader"
)

const brokenScenario = `steps:
  - entry: {label: Capital, amount: 1000, category: capital}
  - entry: {label: Lunch, amount: 12, category: vente}
`

func applyBroken(t *testing.T) error {
	t.Helper()
	ctx := context.Background()
	sc := loader.New().MustLoadBytes(ctx, "broken.yaml", []byte(brokenScenario))
	_, err := loader.Apply(ctx, ledger.New(ledger.NewMemoryStore()), sc)
	assert.Error(t, err)
	return err
}

func TestTextFormatter_Format_Plain(t *testing.T) {
	tf := NewTextFormatter()
	assert.Equal(t, "boom", tf.Format(stderrors.New("boom")))
}

func TestTextFormatter_Format_WithStepContext(t *testing.T) {
	tf := NewTextFormatter()

	output := tf.Format(applyBroken(t))
	assert.HasPrefix(t, output, "broken.yaml:3: entry step: unknown category \"vente\"\n\n")
	assert.Contains(t, output, "   entry: {label: Lunch, amount: 12, category: vente}\n")
}

func TestTextFormatter_Format_WithSourceContext(t *testing.T) {
	tf := NewTextFormatter()

	_, err := loader.New().LoadBytes(context.Background(), "bad.yaml", []byte(`steps:
  - entry: {label: A, amount: 1, category: sale}
  - ref: lonely
  - entry: {label: B, amount: 1, category: sale}
`))
	assert.Error(t, err)

	output := tf.Format(err)
	expected := "bad.yaml:3: step must have exactly one of entry, operation, text or close\n\n" +
		"   steps:\n" +
		"     - entry: {label: A, amount: 1, category: sale}\n" +
		"     - ref: lonely\n" +
		"       ^\n" +
		"     - entry: {label: B, amount: 1, category: sale}\n"
	assert.Equal(t, expected, output)
}

func TestTextFormatter_FormatAll(t *testing.T) {
	tf := NewTextFormatter()
	assert.Equal(t, "", tf.FormatAll(nil))
	assert.Equal(t, "first\n\nsecond", tf.FormatAll([]error{stderrors.New("first"), stderrors.New("second")}))
}

func TestTextFormatter_ExpandsValidationErrors(t *testing.T) {
	tf := NewTextFormatter()
	err := &ledger.ValidationErrors{Errors: []error{
		&ledger.UnknownCategoryError{Value: "a"},
		&ledger.UnknownCategoryError{Value: "b"},
	}}
	assert.Equal(t, "unknown category \"a\"\n\nunknown category \"b\"", tf.Format(err))
}

func TestJSONFormatter_ToJSON(t *testing.T) {
	jf := NewJSONFormatter()

	tests := []struct {
		name     string
		err      error
		wantType string
		details  map[string]interface{}
	}{
		{
			name:     "unknown category",
			err:      &ledger.UnknownCategoryError{Value: "vente"},
			wantType: "*ledger.UnknownCategoryError",
			details:  map[string]interface{}{"category": "vente"},
		},
		{
			name:     "unsupported operation",
			err:      &classify.UnsupportedOperationError{Key: "teleport"},
			wantType: "*classify.UnsupportedOperationError",
			details:  map[string]interface{}{"operation": "teleport"},
		},
		{
			name:     "invalid operation",
			err:      &classify.InvalidOperationError{Key: classify.OpMachinePurchase, Reason: "loanPart exceeds the amount"},
			wantType: "*classify.InvalidOperationError",
			details:  map[string]interface{}{"operation": "machine_purchase", "reason": "loanPart exceeds the amount"},
		},
		{
			name:     "plain",
			err:      stderrors.New("boom"),
			wantType: "*errors.errorString",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jf.ToJSON(tt.err)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.err.Error(), got.Message)
			assert.Equal(t, tt.details, got.Details)
			assert.True(t, got.Position == nil)
		})
	}
}

func TestJSONFormatter_StepError(t *testing.T) {
	jf := NewJSONFormatter()

	errs := jf.FormatAllToSlice([]error{applyBroken(t)})
	assert.Equal(t, 1, len(errs))
	assert.Equal(t, "*loader.StepError", errs[0].Type)
	assert.Equal(t, "broken.yaml", errs[0].Position.Filename)
	assert.Equal(t, 3, errs[0].Position.Line)
	assert.Equal(t, map[string]interface{}{"step": "entry", "category": "vente"}, errs[0].Details)

	var decoded []ErrorJSON
	assert.NoError(t, json.Unmarshal([]byte(jf.FormatAll([]error{applyBroken(t)})), &decoded))
	assert.Equal(t, 1, len(decoded))
}
