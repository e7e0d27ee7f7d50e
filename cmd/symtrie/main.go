package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/KromDaniel/symtrie/pkg/symtrie"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

const (
	appVersion = "1.0.0"
	appName    = "symtrie"
)

// arrayFlags is a repeatable string flag.
type arrayFlags []string

func (a *arrayFlags) String() string {
	return strings.Join(*a, ", ")
}

func (a *arrayFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

// parseMapping splits "pattern=>value". The last "=>" separates the two so
// patterns may themselves contain "=>".
func parseMapping(s string) (symtrie.Mapping, error) {
	i := strings.LastIndex(s, "=>")
	if i < 0 {
		return symtrie.Mapping{}, errors.Errorf("mapping %q: expected pattern=>value", s)
	}
	m := symtrie.Mapping{
		Pattern: s[:i],
		Value:   strings.TrimSpace(s[i+2:]),
	}
	if m.Pattern == "" {
		return symtrie.Mapping{}, errors.Wrapf(symtrie.ErrEmptyPattern, "mapping %q", s)
	}
	return m, nil
}

type cliOptions struct {
	config     string
	output     string
	pkg        string
	function   string
	stateType  string
	resultType string
	valueType  string
	mappings   arrayFlags
	testFile   bool
	analyze    bool
	color      bool
	verbose    bool
	version    bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*cliOptions, error) {
	o := &cliOptions{}
	fs.StringVar(&o.config, "config", "", "YAML pattern file")
	fs.StringVar(&o.output, "output", "", "Output Go file")
	fs.StringVar(&o.pkg, "package", "", "Package name of the generated code")
	fs.StringVar(&o.function, "function", "", "Matcher function name")
	fs.StringVar(&o.stateType, "state-type", "", "Generated state type name")
	fs.StringVar(&o.resultType, "result-type", "", "Generated result type name")
	fs.StringVar(&o.valueType, "value-type", "", "Type of the mapping values")
	fs.Var(&o.mappings, "map", "Mapping pattern=>value (repeatable, appended after config mappings)")
	fs.BoolVar(&o.testFile, "test", false, "Also generate a _test.go file")
	fs.BoolVar(&o.analyze, "analyze", false, "Print a JSON summary of the compiled states instead of generating code")
	fs.BoolVar(&o.color, "color", false, "Colorize -analyze output")
	fs.BoolVar(&o.verbose, "verbose", false, "Log compilation statistics to stderr")
	fs.BoolVar(&o.version, "version", false, "Print version information")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// options merges the config file, if any, with flags. Flags win.
func (o *cliOptions) options() (symtrie.Options, error) {
	var opts symtrie.Options
	if o.config != "" {
		loaded, err := symtrie.LoadFile(o.config)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&opts.OutputFile, o.output)
	override(&opts.Package, o.pkg)
	override(&opts.Function, o.function)
	override(&opts.StateType, o.stateType)
	override(&opts.ResultType, o.resultType)
	override(&opts.ValueType, o.valueType)
	opts.GenerateTestFile = opts.GenerateTestFile || o.testFile
	opts.Verbose = opts.Verbose || o.verbose

	for _, raw := range o.mappings {
		m, err := parseMapping(raw)
		if err != nil {
			return opts, err
		}
		opts.Mappings = append(opts.Mappings, m)
	}
	return opts, nil
}

func run(args []string) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	o, err := parseFlags(fs, args)
	if err != nil {
		return err
	}

	if o.version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		return nil
	}

	opts, err := o.options()
	if err != nil {
		return err
	}

	if o.analyze {
		result, err := symtrie.Analyze(opts.Mappings)
		if err != nil {
			return err
		}
		return printJSON(result, o.color)
	}

	if err := symtrie.Generate(opts); err != nil {
		return err
	}
	fmt.Printf("Generated %s\n", opts.OutputFile)
	return nil
}

func printJSON(v interface{}, color bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode analysis")
	}
	out := pretty.Pretty(b)
	if color {
		out = pretty.Color(out, nil)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
