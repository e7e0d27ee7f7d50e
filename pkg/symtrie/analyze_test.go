package symtrie

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	result, err := Analyze([]Mapping{
		{Pattern: "{", Value: "OpenBrace"},
		{Pattern: "{{", Value: "DoubleBrace"},
		{Pattern: "!==", Value: "StrictNe"},
		{Pattern: "=", Value: "Assign"},
		{Pattern: "=", Value: "Assign2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Mappings)
	assert.Equal(t, 4, result.Literals)
	assert.Equal(t, 3, result.MaxLength)
	// root, "!", "!=", "!==", "=", "{", "{{"
	assert.Equal(t, 7, result.TrieNodes)
	// Initial, "!", "!=", "{"
	require.Len(t, result.States, 4)
	assert.Equal(t, 1, result.Fallbacks)
	assert.Equal(t, []string{"!", "!="}, result.Truncatable)
	assert.Equal(t, []string{"OpenBrace", "DoubleBrace", "StrictNe", "Assign2"}, result.Values)

	assert.Equal(t, StateSummary{Name: "None", Prefix: "", Rules: 3}, result.States[0])

	byPrefix := make(map[string]StateSummary)
	for _, s := range result.States {
		byPrefix[s.Prefix] = s
	}
	assert.Equal(t, "OpenBrace", byPrefix["{"].Fallback)
	assert.Equal(t, "", byPrefix["!"].Fallback)
}

func TestAnalyzeEmptyPattern(t *testing.T) {
	_, err := Analyze([]Mapping{{Pattern: "", Value: "X"}})
	assert.True(t, errors.Is(err, ErrEmptyPattern))
}
