package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/loader"
)

func TestErrorRenderer_RenderParseErrorWithSourceContext(t *testing.T) {
	source := `steps:
  - entry:
      label: Capital
      amount: 40000
      category: capital
  - entry: [not, a, mapping]
`

	parseErr := &loader.ParseError{
		Filename: "test.yaml",
		Pos:      loader.Position{Filename: "test.yaml", Line: 6, Column: 5},
		Err:      errors.New("step must have exactly one of entry, operation, text or close"),
		Source:   []byte(source),
	}

	output := NewErrorRenderer(nil).Render(parseErr)

	assert.Contains(t, output, "test.yaml:6")
	assert.Contains(t, output, "step must have exactly one of")
	assert.Contains(t, output, "category: capital")
	assert.Contains(t, output, "^")

	found := false
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "   ") && strings.Contains(line, "entry: [not, a, mapping]") {
			found = true
			break
		}
	}
	assert.True(t, found, "expected indented source lines")
}

func TestErrorRenderer_RenderParseErrorWithoutPosition(t *testing.T) {
	parseErr := &loader.ParseError{
		Filename: "test.yaml",
		Err:      errors.New("yaml: did not find expected key"),
	}

	output := NewErrorRenderer([]byte("steps: [")).Render(parseErr)
	assert.Equal(t, "test.yaml: yaml: did not find expected key", output)
}

func TestErrorRenderer_RenderWithSourceContext(t *testing.T) {
	source := "steps:\n  - close: true\n  - text:\n      description: Loyer\n"
	pos := loader.Position{Filename: "test.yaml", Line: 2, Column: 5}

	output := NewErrorRenderer(nil).renderWithSourceContext(pos, "test error message", []byte(source))

	assert.Contains(t, output, "test error message")
	assert.Contains(t, output, "close: true")
	assert.Contains(t, output, "^")

	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.True(t, len(lines) >= 5, "expected at least 5 lines in output")
}

func TestErrorRenderer_RenderStepError(t *testing.T) {
	source := `steps:
  - entry:
      label: Mystery
      amount: 100
      category: not_a_category
`
	sc, err := loader.New().LoadBytes(context.Background(), "bad.yaml", []byte(source))
	assert.NoError(t, err)

	_, err = loader.Apply(context.Background(), ledger.New(ledger.NewMemoryStore()), sc)
	var verrs *ledger.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.Equal(t, 1, len(verrs.Errors))

	output := NewErrorRenderer(nil).Render(verrs.Errors[0])
	assert.Contains(t, output, "bad.yaml:2")
	assert.Contains(t, output, "not_a_category")
	assert.Contains(t, output, "   ")
	assert.Contains(t, output, "label: Mystery")
}

func TestErrorRenderer_RenderStepErrorWithoutSource(t *testing.T) {
	stepErr := &loader.StepError{
		Step: loader.Step{Kind: loader.StepClose, Pos: loader.Position{Filename: "x.yaml", Line: 3}},
		Err:  errors.New("exercise already closed"),
	}
	output := NewErrorRenderer(nil).Render(stepErr)
	assert.Equal(t, "x.yaml:3: close step: exercise already closed", output)
}

func TestErrorRenderer_RenderAll(t *testing.T) {
	r := NewErrorRenderer(nil)

	assert.Equal(t, "", r.RenderAll(nil))

	output := r.RenderAll([]error{
		fmt.Errorf("first"),
		fmt.Errorf("second"),
	})
	assert.Equal(t, "first\n\nsecond", output)
}
