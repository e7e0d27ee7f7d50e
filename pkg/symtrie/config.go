package symtrie

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const keyMappings = "mappings"

// LoadFile reads a YAML pattern file. See ParseConfig for the format.
func LoadFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrap(err, "failed to read config")
	}
	opts, err := ParseConfig(data)
	if err != nil {
		return Options{}, errors.Wrapf(err, "%s", path)
	}
	return opts, nil
}

// ParseConfig decodes a YAML pattern file:
//
//	package: tokens
//	output: symbols_gen.go
//	function: GetSymbol
//	state_type: SymbolState
//	result_type: SymbolStateResult
//	value_type: Token
//	mappings:
//	  "{": OpenBrace
//	  "==": Equal
//	  "=": Assign
//
// Mapping order is preserved and a repeated literal overwrites the earlier
// one. Each top-level key may appear only once and unknown keys are errors.
func ParseConfig(data []byte) (Options, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Options{}, errors.Wrap(err, "failed to parse config")
	}

	var opts Options
	raw := make(map[string]interface{}, len(doc))
	seen := make(map[string]bool)
	for _, item := range doc {
		key, ok := item.Key.(string)
		if !ok {
			return Options{}, errors.Errorf("invalid key %v", item.Key)
		}
		if seen[key] {
			return Options{}, errors.Errorf("%s already defined", key)
		}
		seen[key] = true

		if key == keyMappings {
			m, err := mappings(item.Value)
			if err != nil {
				return Options{}, err
			}
			opts.Mappings = m
			continue
		}
		raw[key] = item.Value
	}
	if !seen[keyMappings] {
		return Options{}, errors.New("no mappings")
	}

	var fc fileConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &fc,
	})
	if err != nil {
		return Options{}, errors.Wrap(err, "failed to create config decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return Options{}, errors.Wrap(err, "invalid config")
	}

	opts.Package = fc.Package
	opts.OutputFile = fc.Output
	opts.Function = fc.Function
	opts.StateType = fc.StateType
	opts.ResultType = fc.ResultType
	opts.ValueType = fc.ValueType
	opts.GenerateTestFile = fc.Test
	opts.Verbose = fc.Verbose
	return opts, nil
}

// fileConfig holds the top-level keys other than mappings.
type fileConfig struct {
	Package    string `mapstructure:"package"`
	Output     string `mapstructure:"output"`
	Function   string `mapstructure:"function"`
	StateType  string `mapstructure:"state_type"`
	ResultType string `mapstructure:"result_type"`
	ValueType  string `mapstructure:"value_type"`
	Test       bool   `mapstructure:"test"`
	Verbose    bool   `mapstructure:"verbose"`
}

func scalar(key string, v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case nil:
		return "", errors.Errorf("%s: value required", key)
	case yaml.MapSlice, []interface{}:
		return "", errors.Errorf("%s: expected a scalar", key)
	default:
		return fmt.Sprint(v), nil
	}
}

func mappings(v interface{}) ([]Mapping, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, errors.Errorf("%s: expected a mapping of pattern to value", keyMappings)
	}

	out := make([]Mapping, 0, len(items))
	for _, item := range items {
		pattern, ok := item.Key.(string)
		if !ok {
			return nil, errors.Errorf("%s: pattern %v must be a quoted string", keyMappings, item.Key)
		}
		value, err := scalar(fmt.Sprintf("%s[%q]", keyMappings, pattern), item.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Mapping{Pattern: pattern, Value: value})
	}
	return out, nil
}
