package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Position is a location in a scenario file.
type Position struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (p Position) String() string {
	if p.Line == 0 {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// StepKind names what a scenario step does.
type StepKind string

const (
	StepEntry     StepKind = "entry"
	StepOperation StepKind = "operation"
	StepText      StepKind = "text"
	StepClose     StepKind = "close"
)

// EntryStep registers one entry as written.
type EntryStep struct {
	Label    string `yaml:"label"`
	Amount   string `yaml:"amount"`
	Category string `yaml:"category"`

	// Link is the ref of an earlier step whose entry this one finances.
	Link string `yaml:"link"`
}

// OperationStep expands a structured operation.
type OperationStep struct {
	Key      string `yaml:"key"`
	Amount   string `yaml:"amount"`
	Mode     string `yaml:"mode"`
	Interest string `yaml:"interest"`
	Loan     string `yaml:"loan"`
	COGS     string `yaml:"cogs"`
}

// TextStep classifies a free-text description.
type TextStep struct {
	Description string `yaml:"description"`
	Amount      string `yaml:"amount"`
}

// Step is one instruction of a scenario. Exactly one of Entry, Operation and
// Text is set, unless Kind is StepClose.
type Step struct {
	Kind StepKind
	Pos  Position

	// Ref names the step so later entries can link to the entry it creates.
	Ref string

	Entry     *EntryStep
	Operation *OperationStep
	Text      *TextStep

	node *yaml.Node
}

// Source renders the step back to YAML, for error context.
func (s *Step) Source() string {
	if s.node == nil {
		return ""
	}
	out, err := yaml.Marshal(s.node)
	if err != nil {
		return ""
	}
	return string(out)
}

// Scenario is a parsed scenario file.
type Scenario struct {
	Filename string

	// Includes holds the include paths as written; it is nil once resolved.
	Includes []string

	// Options are ledger options, repeatable keys merged into lists.
	Options map[string][]string

	Steps []Step
}

type document struct {
	Include []string             `yaml:"include"`
	Options map[string]yaml.Node `yaml:"options"`
	Steps   []yaml.Node          `yaml:"steps"`
}

type rawStep struct {
	Ref       string         `yaml:"ref"`
	Entry     *EntryStep     `yaml:"entry"`
	Operation *OperationStep `yaml:"operation"`
	Text      *TextStep      `yaml:"text"`
	Close     bool           `yaml:"close"`
}

// parse decodes a scenario document. Structural problems are reported as
// *StepError with the position of the offending node.
func parse(filename string, data []byte) (*Scenario, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Filename: filename, Err: err, Source: data}
	}

	sc := &Scenario{
		Filename: filename,
		Includes: doc.Include,
		Options:  make(map[string][]string, len(doc.Options)),
	}

	for name, node := range doc.Options {
		switch node.Kind {
		case yaml.ScalarNode:
			sc.Options[name] = []string{node.Value}
		case yaml.SequenceNode:
			for _, item := range node.Content {
				sc.Options[name] = append(sc.Options[name], item.Value)
			}
		default:
			return nil, &ParseError{
				Filename: filename,
				Pos:      Position{Filename: filename, Line: node.Line, Column: node.Column},
				Err:      fmt.Errorf("option %q must be a value or a list of values", name),
				Source:   data,
			}
		}
	}

	for i := range doc.Steps {
		node := &doc.Steps[i]
		step, err := parseStep(filename, node)
		if err != nil {
			return nil, &ParseError{Filename: filename, Pos: step.Pos, Err: err, Source: data}
		}
		sc.Steps = append(sc.Steps, step)
	}

	return sc, nil
}

func parseStep(filename string, node *yaml.Node) (Step, error) {
	step := Step{
		Pos:  Position{Filename: filename, Line: node.Line, Column: node.Column},
		node: node,
	}

	var raw rawStep
	if err := node.Decode(&raw); err != nil {
		return step, err
	}
	step.Ref = raw.Ref
	step.Entry, step.Operation, step.Text = raw.Entry, raw.Operation, raw.Text

	n := 0
	if raw.Entry != nil {
		step.Kind = StepEntry
		n++
	}
	if raw.Operation != nil {
		step.Kind = StepOperation
		n++
	}
	if raw.Text != nil {
		step.Kind = StepText
		n++
	}
	if raw.Close {
		step.Kind = StepClose
		n++
	}
	if n != 1 {
		return step, fmt.Errorf("step must have exactly one of entry, operation, text or close")
	}
	if step.Kind == StepClose && step.Ref != "" {
		return step, fmt.Errorf("close step cannot carry a ref")
	}
	return step, nil
}
