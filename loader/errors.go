package loader

import (
	"fmt"
)

// ParseError reports a scenario file that could not be decoded.
type ParseError struct {
	Filename string
	Pos      Position
	Err      error

	// Source is the file content, used to show context around Pos.
	Source []byte
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// GetPosition returns the location of the error.
func (e *ParseError) GetPosition() Position {
	if e.Pos.Line == 0 {
		return Position{Filename: e.Filename}
	}
	return e.Pos
}

// GetSource returns the content of the file the error occurred in.
func (e *ParseError) GetSource() []byte {
	return e.Source
}

// StepError reports a step that failed while applying a scenario.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s step: %v", e.Step.Pos, e.Step.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// GetPosition returns the location of the failing step.
func (e *StepError) GetPosition() Position {
	return e.Step.Pos
}

// GetStep returns the failing step.
func (e *StepError) GetStep() *Step {
	return &e.Step
}
