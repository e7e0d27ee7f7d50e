// Package symtrie compiles a fixed set of literal patterns into a greedy,
// longest-prefix symbol matcher.
//
// A pattern set can be compiled at run time into a *Matcher, or emitted as Go
// source with Generate:
//
//	err := symtrie.Generate(symtrie.Options{
//	    Package:    "tokens",
//	    OutputFile: "symbols_gen.go",
//	    Function:   "GetSymbol",
//	    StateType:  "SymbolState",
//	    ResultType: "SymbolStateResult",
//	    ValueType:  "Token",
//	    Mappings: []symtrie.Mapping{
//	        {Pattern: "=", Value: "Assign"},
//	        {Pattern: "==", Value: "Equal"},
//	    },
//	})
package symtrie

import (
	"github.com/KromDaniel/symtrie/internal/compiler"
	"github.com/pkg/errors"
)

// ErrInvalidOptions is wrapped by every Options validation error.
var ErrInvalidOptions = errors.New("invalid options")

// ErrNameCollision is returned when two generated identifiers share a name.
var ErrNameCollision = compiler.ErrNameCollision

// Mapping is a literal pattern and the Go expression that produces its value
// in generated code.
type Mapping = compiler.Mapping

// Options configures matcher code generation.
type Options struct {
	// Package is the Go package name for the generated code
	Package string

	// OutputFile is the path where generated code will be written
	OutputFile string

	// Function is the name of the generated matcher function
	Function string

	// StateType is the name of the generated state type
	StateType string

	// ResultType is the name of the generated step result type
	ResultType string

	// ValueType is the existing type of the mapping values in the target package
	ValueType string

	// Mappings is the ordered pattern set. A later entry for the same literal
	// overwrites an earlier one.
	Mappings []Mapping

	// GenerateTestFile writes a _test.go next to OutputFile that checks every literal
	GenerateTestFile bool

	// Verbose logs trie and state statistics to stderr
	Verbose bool
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.OutputFile == "" {
		return errors.Wrap(ErrInvalidOptions, "output file cannot be empty")
	}
	return o.validateSource()
}

// validateSource checks everything except OutputFile.
func (o Options) validateSource() error {
	required := []struct {
		name  string
		value string
	}{
		{"package", o.Package},
		{"function", o.Function},
		{"state type", o.StateType},
		{"result type", o.ResultType},
		{"value type", o.ValueType},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Wrapf(ErrInvalidOptions, "%s cannot be empty", r.name)
		}
	}
	for i, m := range o.Mappings {
		if m.Pattern == "" {
			return errors.Wrapf(ErrEmptyPattern, "mapping %d", i)
		}
		if m.Value == "" {
			return errors.Wrapf(ErrInvalidOptions, "mapping %d (%q): value cannot be empty", i, m.Pattern)
		}
	}
	return nil
}

func (o Options) compilerConfig() compiler.Config {
	return compiler.Config{
		Package:          o.Package,
		OutputFile:       o.OutputFile,
		Function:         o.Function,
		StateType:        o.StateType,
		ResultType:       o.ResultType,
		ValueType:        o.ValueType,
		Mappings:         o.Mappings,
		GenerateTestFile: o.GenerateTestFile,
		Verbose:          o.Verbose,
	}
}

// Generate compiles the pattern set and writes the matcher source to
// OutputFile. Nothing is written if any pattern, expression or name is
// invalid.
func Generate(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	c, err := compiler.New(opts.compilerConfig())
	if err != nil {
		return errors.Wrap(err, "failed to compile pattern set")
	}

	if err := c.Generate(); err != nil {
		return errors.Wrap(err, "failed to generate code")
	}
	return nil
}

// Source compiles the pattern set and returns the matcher source without
// writing anything. OutputFile is not required.
func Source(opts Options) ([]byte, error) {
	if err := opts.validateSource(); err != nil {
		return nil, err
	}

	c, err := compiler.New(opts.compilerConfig())
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile pattern set")
	}
	return c.Source()
}
