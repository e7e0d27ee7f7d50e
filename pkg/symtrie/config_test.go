package symtrie

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const symbolsYAML = `
package: tokens
output: symbols_gen.go
function: GetSymbol
state_type: SymbolState
result_type: SymbolStateResult
value_type: Token
test: true
mappings:
  "{": OpenBrace
  "}": CloseBrace
  "=>": ArrowFunction
  "==": Equal
  "===": StrictEqual
  "=": Assign
  "==": Token(42)
  "+": 7
`

func TestParseConfig(t *testing.T) {
	opts, err := ParseConfig([]byte(symbolsYAML))
	require.NoError(t, err)

	assert.Equal(t, "tokens", opts.Package)
	assert.Equal(t, "symbols_gen.go", opts.OutputFile)
	assert.Equal(t, "GetSymbol", opts.Function)
	assert.Equal(t, "SymbolState", opts.StateType)
	assert.Equal(t, "SymbolStateResult", opts.ResultType)
	assert.Equal(t, "Token", opts.ValueType)
	assert.True(t, opts.GenerateTestFile)
	assert.False(t, opts.Verbose)

	assert.Equal(t, []Mapping{
		{Pattern: "{", Value: "OpenBrace"},
		{Pattern: "}", Value: "CloseBrace"},
		{Pattern: "=>", Value: "ArrowFunction"},
		{Pattern: "==", Value: "Equal"},
		{Pattern: "===", Value: "StrictEqual"},
		{Pattern: "=", Value: "Assign"},
		{Pattern: "==", Value: "Token(42)"},
		{Pattern: "+", Value: "7"},
	}, opts.Mappings)
	assert.NoError(t, opts.Validate())
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"duplicate key", "function: A\nfunction: B\nmappings: {}\n", "function already defined"},
		{"unknown key", "functions: A\nmappings: {}\n", "invalid keys: functions"},
		{"no mappings", "function: A\n", "no mappings"},
		{"mappings list", "mappings:\n  - a\n", "expected a mapping"},
		{"unquoted number pattern", "mappings:\n  1: One\n", "must be a quoted string"},
		{"nested value", "mappings:\n  \"=\": {a: b}\n", "expected a scalar"},
		{"bad bool", "test: maybe\nmappings: {}\n", "cannot parse 'test' as bool"},
		{"nested scalar", "package: {a: b}\nmappings: {}\n", "invalid config"},
		{"bad yaml", "mappings: [\n", "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.yaml")
	require.NoError(t, os.WriteFile(path, []byte(symbolsYAML), 0644))

	opts, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, opts.Mappings, 8)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
