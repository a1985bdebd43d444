package cli

import "fmt"

// CommandError signals a command failure with a specific exit code.
// Commands return this after handling all output (printing errors/warnings to stderr).
// Main centralizes exit handling instead of commands calling os.Exit directly.
type CommandError struct {
	exitCode int
	message  string
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

// CommandErrorf creates a CommandError with exit code 1 and a message that
// has not been printed yet.
func CommandErrorf(format string, args ...any) *CommandError {
	return &CommandError{exitCode: 1, message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.message != "" {
		return e.message
	}
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// Reported tells whether the command already printed the failure.
func (e *CommandError) Reported() bool {
	return e.message == ""
}
