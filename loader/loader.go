// Package loader reads scenario files: YAML documents listing entries,
// structured operations, free-text descriptions and closings to apply to a
// ledger in order. Scenarios can include other scenario files.
//
// A scenario looks like:
//
//	include:
//	  - opening.yaml
//	options:
//	  guard_closing: true
//	steps:
//	  - entry: {label: Capital contribution, amount: 40000, category: capital}
//	  - operation: {key: machine_purchase, amount: 25000, loan: 15000, mode: credit}
//	    ref: machine
//	  - entry: {label: Vendor credit, amount: 1000, category: payables, link: machine}
//	  - text: {description: Loyer mars, amount: 800}
//	  - close: true
//
// Example usage:
//
//	// Load a single file without following includes
//	ldr := loader.New()
//	result, err := ldr.Load(ctx, "first-year.yaml")
//
//	// Load with recursive include resolution
//	ldr := loader.New(loader.WithFollowIncludes())
//	result, err := ldr.Load(ctx, "first-year.yaml")
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Loader handles loading and parsing of scenario files with optional include resolution.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithFollowIncludes())
type Loader struct {
	// FollowIncludes determines whether to recursively load included files.
	// When false, only the specified file is parsed and Scenario.Includes is preserved.
	// When true, included files are loaded and their steps run before the
	// steps of the including file.
	FollowIncludes bool
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFollowIncludes configures the loader to recursively load and merge all included files.
// When enabled:
//   - All includes are recursively resolved and loaded
//   - Relative paths are resolved from the directory of the including file
//   - Steps of included files come first, in include order
//   - Options of the including file take precedence
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is a loaded scenario and the files it came from.
type Result struct {
	Scenario *Scenario

	// Root is the absolute path of the loaded file.
	Root string

	// Includes lists the absolute paths of included files, in load order.
	Includes []string
}

// Load parses a scenario file with optional recursive include resolution.
func (l *Loader) Load(ctx context.Context, filename string) (*Result, error) {
	root, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	if !l.FollowIncludes {
		sc, err := readScenario(filename)
		if err != nil {
			return nil, err
		}
		return &Result{Scenario: sc, Root: root}, nil
	}

	state := &loaderState{visited: make(map[string]bool)}
	sc, err := state.loadRecursive(ctx, filename)
	if err != nil {
		return nil, err
	}
	return &Result{Scenario: sc, Root: root, Includes: state.includes}, nil
}

// LoadBytes parses a scenario from data. Includes cannot be resolved without
// a file on disk, so with FollowIncludes a scenario that has includes is an error.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*Scenario, error) {
	sc, err := parse(filename, data)
	if err != nil {
		return nil, err
	}
	if l.FollowIncludes && len(sc.Includes) > 0 {
		if filename == "<stdin>" {
			return nil, fmt.Errorf("include directives are not supported when reading from stdin")
		}
		return nil, fmt.Errorf("include directives found; use Load() instead of LoadBytes() to resolve includes")
	}
	return sc, nil
}

// MustLoad is like Load but panics on error.
func (l *Loader) MustLoad(ctx context.Context, filename string) *Result {
	result, err := l.Load(ctx, filename)
	if err != nil {
		panic(err)
	}
	return result
}

// MustLoadBytes is like LoadBytes but panics on error.
func (l *Loader) MustLoadBytes(ctx context.Context, filename string, data []byte) *Scenario {
	sc, err := l.LoadBytes(ctx, filename, data)
	if err != nil {
		panic(err)
	}
	return sc
}

func readScenario(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return parse(filename, data)
}

// loaderState tracks state during recursive loading.
type loaderState struct {
	visited  map[string]bool // Absolute paths of files already loaded
	includes []string
}

// loadRecursive recursively loads a file and all its includes.
func (l *loaderState) loadRecursive(ctx context.Context, filename string) (*Scenario, error) {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", filename, err)
	}

	// Already loaded through another include.
	if l.visited[absPath] {
		return &Scenario{Filename: filename}, nil
	}
	if len(l.visited) > 0 {
		l.includes = append(l.includes, absPath)
	}
	l.visited[absPath] = true

	sc, err := readScenario(filename)
	if err != nil {
		return nil, err
	}
	if len(sc.Includes) == 0 {
		sc.Includes = nil
		return sc, nil
	}

	baseDir := filepath.Dir(absPath)
	var included []*Scenario

	for _, inc := range sc.Includes {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		includePath := inc
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, includePath)
		}

		incScenario, err := l.loadRecursive(ctx, includePath)
		if err != nil {
			return nil, fmt.Errorf("in file %s: %w", filename, err)
		}
		included = append(included, incScenario)
	}

	return merge(sc, included...), nil
}

// merge combines a main scenario with the scenarios it includes.
func merge(main *Scenario, included ...*Scenario) *Scenario {
	result := &Scenario{
		Filename: main.Filename,
		Options:  make(map[string][]string),
	}

	for _, inc := range included {
		result.Steps = append(result.Steps, inc.Steps...)
		for name, vals := range inc.Options {
			result.Options[name] = vals
		}
	}
	result.Steps = append(result.Steps, main.Steps...)

	// Main file options take precedence
	for name, vals := range main.Options {
		result.Options[name] = vals
	}

	return result
}
