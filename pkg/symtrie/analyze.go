package symtrie

import (
	"sort"

	"github.com/KromDaniel/symtrie/internal/compiler"
	"github.com/KromDaniel/symtrie/internal/trie"
	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
)

// StateSummary describes one compiled state.
type StateSummary struct {
	Name     string `json:"name"`
	Prefix   string `json:"prefix"`
	Rules    int    `json:"rules"`
	Fallback string `json:"fallback,omitempty"`
}

// AnalysisResult summarizes a compiled pattern set without generating code.
type AnalysisResult struct {
	Mappings  int            `json:"mappings"`
	Literals  int            `json:"literals"`
	TrieNodes int            `json:"trie_nodes"`
	MaxLength int            `json:"max_length"`
	States    []StateSummary `json:"states"`
	Rules     int            `json:"rules"`
	Fallbacks int            `json:"fallbacks"`

	// Values lists the distinct value expressions that can be emitted, in
	// first-seen order. Overwritten values are not included.
	Values []string `json:"values"`

	// Truncatable lists prefixes that are not literals themselves. Input
	// ending on one of them fails to flush.
	Truncatable []string `json:"truncatable,omitempty"`
}

// Analyze compiles mappings and reports trie and state statistics.
//
// Example:
//
//	result, err := symtrie.Analyze([]symtrie.Mapping{
//	    {Pattern: "=", Value: "Assign"},
//	    {Pattern: "==", Value: "Equal"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.States)) // 2
func Analyze(mappings []Mapping) (*AnalysisResult, error) {
	t := trie.New[string]()
	for i, m := range mappings {
		if err := t.Insert(m.Pattern, m.Value); err != nil {
			return nil, errors.Wrapf(err, "mapping %d", i)
		}
	}
	tbl := compiler.Compile(t)

	final := make(map[string]string, len(mappings))
	for _, m := range mappings {
		final[m.Pattern] = m.Value
	}
	values := make([]string, 0, len(mappings))
	for _, m := range mappings {
		values = append(values, final[m.Pattern])
	}

	result := &AnalysisResult{
		Mappings:  len(mappings),
		Literals:  t.Patterns(),
		TrieNodes: t.Len(),
		MaxLength: t.Depth(),
		Rules:     len(tbl.Rules()),
		Fallbacks: tbl.NumFallbacks(),
		Values:    funk.UniqString(values),
	}

	for s := 0; s < tbl.NumStates(); s++ {
		info := tbl.State(compiler.State(s))
		summary := StateSummary{
			Name:   info.Name,
			Prefix: info.Prefix,
			Rules:  len(tbl.StateRules(compiler.State(s))),
		}
		if info.Fallback != nil {
			summary.Fallback = *info.Fallback
		} else if s != int(compiler.Initial) {
			result.Truncatable = append(result.Truncatable, info.Prefix)
		}
		result.States = append(result.States, summary)
	}
	sort.Strings(result.Truncatable)

	return result, nil
}
