// Package compiler turns a literal pattern set into a state transition table
// and emits it as a Go matcher function.
package compiler

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"os"
	"strings"

	"github.com/KromDaniel/symtrie/internal/codegen"
	"github.com/KromDaniel/symtrie/internal/trie"
	"github.com/dave/jennifer/jen"
	"github.com/pkg/errors"
)

// ErrNameCollision is returned when two generated top-level identifiers
// would share a name.
var ErrNameCollision = errors.New("generated name collision")

// Mapping is a literal pattern and the Go expression producing its value.
type Mapping struct {
	Pattern string
	Value   string
}

// Config holds the configuration for code generation.
type Config struct {
	Package          string
	OutputFile       string
	Function         string    // Matcher function name
	StateType        string    // Generated state type
	ResultType       string    // Generated step result type
	ValueType        string    // Existing type of the mapping values
	Mappings         []Mapping // Ordered; later duplicates win
	GenerateTestFile bool      // Generate a _test.go next to OutputFile
	Verbose          bool      // Enable verbose logging of compilation
}

// Compiler generates a Go matcher from a pattern set.
type Compiler struct {
	config      Config
	file        *jen.File
	logger      *Logger
	trie        *trie.Trie[string]
	table       *Table[string]
	stateIdents []string // Constant name per State, indexed by State
}

// New validates the configuration, builds the trie and compiles the
// transition table. Nothing is written until Generate is called.
func New(config Config) (*Compiler, error) {
	c := &Compiler{
		config: config,
		logger: NewLogger(config.Verbose),
	}

	if err := c.validateNames(); err != nil {
		return nil, err
	}

	c.trie = trie.New[string]()
	for i, m := range config.Mappings {
		if _, err := parser.ParseExpr(m.Value); err != nil {
			return nil, errors.Wrapf(err, "mapping %d (%q): invalid value expression %q", i, m.Pattern, m.Value)
		}
		if err := c.trie.Insert(m.Pattern, m.Value); err != nil {
			return nil, errors.Wrapf(err, "mapping %d", i)
		}
	}

	c.table = Compile(c.trie)

	c.stateIdents = make([]string, c.table.NumStates())
	for s := range c.stateIdents {
		c.stateIdents[s] = codegen.StateIdent(config.StateType, c.table.StateName(State(s)))
	}

	if err := c.checkCollisions(); err != nil {
		return nil, err
	}

	c.logStats()
	return c, nil
}

func (c *Compiler) validateNames() error {
	names := []struct {
		field string
		value string
	}{
		{"package", c.config.Package},
		{"function", c.config.Function},
		{"state type", c.config.StateType},
		{"result type", c.config.ResultType},
		{"value type", c.config.ValueType},
	}
	for _, n := range names {
		if !codegen.IsIdentifier(n.value) {
			return errors.Errorf("%s %q is not a valid Go identifier", n.field, n.value)
		}
	}
	return nil
}

// importedPackages are imported by the generated matcher and test files.
var importedPackages = []string{"fmt", "reflect", "strconv", "testing"}

// predeclaredNames are the predeclared identifiers generated code refers to.
var predeclaredNames = []string{"bool", "error", "false", "int", "len", "nil", "rune", "string", "true"}

// checkCollisions makes sure every generated top-level identifier is unique,
// that none of them shadows the value type, and that none shadows a name the
// generated code refers to.
func (c *Compiler) checkCollisions() error {
	seen := make(map[string]string)
	for _, name := range predeclaredNames {
		seen[name] = "predeclared " + name
	}
	add := func(name, what string) error {
		if prev, ok := seen[name]; ok {
			return errors.Wrapf(ErrNameCollision, "%q used by both %s and %s", name, prev, what)
		}
		seen[name] = what
		return nil
	}

	for _, pkg := range importedPackages {
		if err := add(pkg, "import of package "+pkg); err != nil {
			return err
		}
	}
	// The value type is declared elsewhere and may itself be predeclared.
	if prev := seen[c.config.ValueType]; !strings.HasPrefix(prev, "predeclared ") {
		if err := add(c.config.ValueType, "value type"); err != nil {
			return err
		}
	}
	fixed := []struct{ name, what string }{
		{c.config.Function, "matcher function"},
		{c.eofName(), "end-of-input constant"},
		{c.config.StateType, "state type"},
		{c.stateNamesVar(), "state names table"},
		{c.config.ResultType, "result type"},
		{c.errorType(), "error type"},
	}
	for _, f := range fixed {
		if err := add(f.name, f.what); err != nil {
			return err
		}
	}
	for s, ident := range c.stateIdents {
		if err := add(ident, fmt.Sprintf("state %s", c.table.StateName(State(s)))); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) logStats() {
	c.logger.Section("Pattern Set")
	c.logger.Stat("Mappings", len(c.config.Mappings))
	c.logger.Stat("Distinct literals", c.trie.Patterns())
	c.logger.Stat("Trie nodes", c.trie.Len())
	c.logger.Stat("Longest pattern", c.trie.Depth())

	c.logger.Section("Transition Table")
	c.logger.Stat("States", c.table.NumStates())
	c.logger.Stat("Exact rules", len(c.table.Rules()))
	c.logger.Stat("Fallback rules", c.table.NumFallbacks())
	if !c.logger.Enabled() {
		return
	}
	for s := 0; s < c.table.NumStates(); s++ {
		info := c.table.State(State(s))
		fallback := "none"
		if info.Fallback != nil {
			fallback = *info.Fallback
		}
		c.logger.State(c.stateIdents[s], info.Prefix, len(c.table.StateRules(State(s))), fallback)
	}
}

// Table returns the compiled transition table.
func (c *Compiler) Table() *Table[string] {
	return c.table
}

// SetOutputFile sets the output file path.
func (c *Compiler) SetOutputFile(path string) {
	c.config.OutputFile = path
}

func (c *Compiler) eofName() string       { return c.config.Function + codegen.EOFSuffix }
func (c *Compiler) errorType() string     { return c.config.ResultType + codegen.ErrorSuffix }
func (c *Compiler) stateNamesVar() string { return codegen.LowerFirst(c.config.StateType) + codegen.NamesSuffix }

// Source renders the matcher file and returns gofmt-ed source.
func (c *Compiler) Source() ([]byte, error) {
	c.file = jen.NewFile(c.config.Package)
	c.file.HeaderComment("Code generated by symtrie. DO NOT EDIT.")

	c.generateStateType()
	c.generateResultType()
	c.generateErrorType()
	c.generateMatcher()

	var buf bytes.Buffer
	if err := c.file.Render(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to render matcher")
	}
	return format.Source(buf.Bytes())
}

// Generate generates the Go code and writes it to the output file.
func (c *Compiler) Generate() error {
	if c.config.OutputFile == "" {
		return errors.New("output file cannot be empty")
	}

	src, err := c.Source()
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.config.OutputFile, src, 0644); err != nil {
		return errors.Wrap(err, "failed to save file")
	}
	c.logger.Wrote(c.config.OutputFile)

	if c.config.GenerateTestFile {
		if err := c.generateTestFile(); err != nil {
			return errors.Wrap(err, "failed to generate test file")
		}
	}
	return nil
}

func (c *Compiler) generateStateType() {
	st := c.config.StateType

	c.file.Commentf("%s is a matcher state. %s is the initial state.", st, c.stateIdents[Initial])
	c.file.Type().Id(st).Int()
	c.file.Line()

	consts := make([]jen.Code, 0, len(c.stateIdents))
	for s, ident := range c.stateIdents {
		if s == int(Initial) {
			consts = append(consts, jen.Id(ident).Id(st).Op("=").Iota())
			continue
		}
		consts = append(consts, jen.Id(ident).Comment(fmt.Sprintf("after %q", c.table.State(State(s)).Prefix)))
	}
	c.file.Const().Defs(consts...)
	c.file.Line()

	names := make([]jen.Code, 0, c.table.NumStates())
	for s := 0; s < c.table.NumStates(); s++ {
		names = append(names, jen.Lit(c.table.StateName(State(s))))
	}
	c.file.Var().Id(c.stateNamesVar()).Op("=").Index(jen.Op("...")).String().Values(names...)
	c.file.Line()

	c.file.Func().Params(jen.Id("s").Id(st)).Id("String").Params().String().Block(
		jen.If(jen.Id("s").Op(">=").Lit(0).Op("&&").Int().Call(jen.Id("s")).Op("<").Len(jen.Id(c.stateNamesVar()))).Block(
			jen.Return(jen.Id(c.stateNamesVar()).Index(jen.Id("s"))),
		),
		jen.Return(jen.Lit(st+"(").Op("+").Qual("strconv", "Itoa").Call(jen.Int().Call(jen.Id("s"))).Op("+").Lit(")")),
	)
	c.file.Line()
}

func (c *Compiler) generateResultType() {
	c.file.Commentf("%s is the outcome of one %s call. When Emit is false the", c.config.ResultType, c.config.Function)
	c.file.Comment("character was consumed and Next is the new state. When Emit is true Value")
	c.file.Comment("completed a match; if Consumed is false the character must be offered again")
	c.file.Commentf("starting from %s.", c.stateIdents[Initial])
	c.file.Type().Id(c.config.ResultType).Struct(
		jen.Id(codegen.EmitField).Bool(),
		jen.Id(codegen.ValueField).Id(c.config.ValueType),
		jen.Id(codegen.ConsumedField).Bool(),
		jen.Id(codegen.NextField).Id(c.config.StateType),
	)
	c.file.Line()
}

func (c *Compiler) generateErrorType() {
	et := c.errorType()

	c.file.Commentf("%s reports a character that cannot continue, complete or fall back", et)
	c.file.Comment("from the current partial match.")
	c.file.Type().Id(et).Struct(
		jen.Id(codegen.StateField).Id(c.config.StateType),
		jen.Id(codegen.CharField).Rune(),
	)
	c.file.Line()

	c.file.Func().Params(jen.Id("e").Op("*").Id(et)).Id("Error").Params().String().Block(
		jen.If(jen.Id("e").Dot(codegen.CharField).Op("==").Id(c.eofName())).Block(
			jen.Return(jen.Qual("fmt", "Sprintf").Call(jen.Lit("no transition from state %s at end of input"), jen.Id("e").Dot(codegen.StateField))),
		),
		jen.Return(jen.Qual("fmt", "Sprintf").Call(jen.Lit("no transition from state %s on %q"), jen.Id("e").Dot(codegen.StateField), jen.Id("e").Dot(codegen.CharField))),
	)
	c.file.Line()

	c.file.Commentf("%s is the end-of-input sentinel. Pass it to %s to flush a partial match.", c.eofName(), c.config.Function)
	c.file.Const().Id(c.eofName()).Rune().Op("=").Lit(int(EOF))
	c.file.Line()
}

// outcomeValue renders an Outcome as a composite literal of the result type.
func (c *Compiler) outcomeValue(o Outcome[string]) *jen.Statement {
	if o.Kind == Advance {
		return jen.Id(c.config.ResultType).Values(field(codegen.NextField, jen.Id(c.stateIdents[o.Next])))
	}
	fields := []jen.Code{
		field(codegen.EmitField, jen.True()),
		field(codegen.ValueField, jen.Id(o.Value)),
	}
	if o.Consumed {
		fields = append(fields, field(codegen.ConsumedField, jen.True()))
	}
	return jen.Id(c.config.ResultType).Values(fields...)
}

// field renders "name: value" for keyed composite literals on one line.
func field(name string, value jen.Code) *jen.Statement {
	return jen.Id(name).Op(":").Add(value)
}

func (c *Compiler) generateMatcher() {
	state := jen.Id(codegen.StateParamName)
	chr := jen.Id(codegen.CharParamName)

	var cases []jen.Code
	for s := 0; s < c.table.NumStates(); s++ {
		body := c.stateBody(State(s))
		cases = append(cases, jen.Case(jen.Id(c.stateIdents[s])).Block(body...))
	}

	c.file.Commentf("%s advances the matcher by one character. It is pure and safe for", c.config.Function)
	c.file.Comment("concurrent use; the caller owns the current state.")
	c.file.Func().Id(c.config.Function).
		Params(state.Clone().Id(c.config.StateType), chr.Clone().Rune()).
		Params(jen.Id(c.config.ResultType), jen.Error()).
		Block(
			jen.Switch(state.Clone()).Block(cases...),
			jen.Return(
				jen.Id(c.config.ResultType).Values(),
				jen.Op("&").Id(c.errorType()).Values(
					field(codegen.StateField, state.Clone()),
					field(codegen.CharField, chr.Clone()),
				),
			),
		)
}

func (c *Compiler) stateBody(s State) []jen.Code {
	var body []jen.Code

	rules := c.table.StateRules(s)
	if len(rules) > 0 {
		var cases []jen.Code
		for _, r := range rules {
			cases = append(cases, jen.Case(jen.LitRune(r.Char)).Block(
				jen.Return(c.outcomeValue(r.Outcome), jen.Nil()),
			))
		}
		body = append(body, jen.Switch(jen.Id(codegen.CharParamName)).Block(cases...))
	}

	info := c.table.State(s)
	switch {
	case s == Initial:
		body = append(body, jen.Return(c.outcomeValue(Outcome[string]{Kind: Advance, Next: Initial}), jen.Nil()))
	case info.Fallback != nil:
		body = append(body, jen.Return(c.outcomeValue(Outcome[string]{Kind: Emit, Value: *info.Fallback}), jen.Nil()))
	}
	return body
}

// effectiveMappings returns one mapping per distinct literal, in first-seen
// order, carrying the last value assigned to it.
func (c *Compiler) effectiveMappings() []Mapping {
	index := make(map[string]int)
	var out []Mapping
	for _, m := range c.config.Mappings {
		if i, ok := index[m.Pattern]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Pattern] = len(out)
		out = append(out, m)
	}
	return out
}

// testFilePath derives foo_test.go from foo.go.
func testFilePath(output string) string {
	return strings.TrimSuffix(output, ".go") + "_test.go"
}
