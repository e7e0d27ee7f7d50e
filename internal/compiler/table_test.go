package compiler

import (
	"math/rand"
	"testing"

	"github.com/KromDaniel/symtrie/internal/trie"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	pattern string
	value   string
}

var symbolPatterns = []pair{
	{"{", "Brace"},
	{"}", "CloseBrace"},
	{"=>", "Arrow"},
	{"==", "Eq"},
	{"===", "StrictEq"},
	{"=", "Assign"},
}

func compilePairs(t *testing.T, pairs []pair) *Table[string] {
	t.Helper()
	tr := trie.New[string]()
	for _, p := range pairs {
		require.NoError(t, tr.Insert(p.pattern, p.value))
	}
	return Compile(tr)
}

// run drives the table the way a tokenizer would and returns emitted values.
func run(tbl *Table[string], input string) ([]string, error) {
	var out []string
	state := Initial
	runes := append([]rune(input), EOF)
	for i := 0; i < len(runes); {
		r := runes[i]
		if r == EOF && state == Initial {
			break
		}
		o, err := tbl.Lookup(state, r)
		if err != nil {
			return out, err
		}
		switch o.Kind {
		case Advance:
			if r == EOF {
				return out, errors.New("advance on EOF")
			}
			state = o.Next
			i++
		case Emit:
			out = append(out, o.Value)
			state = Initial
			if o.Consumed {
				i++
			}
		}
	}
	return out, nil
}

func TestCompileStates(t *testing.T) {
	tbl := compilePairs(t, symbolPatterns)

	// Initial, "=", "=="; "{", "}", "=>", "===" are leaves.
	require.Equal(t, 3, tbl.NumStates())
	assert.Equal(t, "None", tbl.StateName(Initial))
	assert.Equal(t, "a", tbl.StateName(1))
	assert.Equal(t, "aa", tbl.StateName(2))
	assert.Equal(t, "=", tbl.State(1).Prefix)
	assert.Equal(t, "==", tbl.State(2).Prefix)
	assert.Equal(t, 2, tbl.NumFallbacks())
	assert.Equal(t, 6, len(tbl.Rules()))
}

func TestLookupResolutionOrder(t *testing.T) {
	tbl := compilePairs(t, symbolPatterns)
	eq := State(1)
	eqeq := State(2)

	tests := []struct {
		name  string
		state State
		char  rune
		want  Outcome[string]
	}{
		{"exact emit", Initial, '{', Outcome[string]{Kind: Emit, Value: "Brace", Consumed: true}},
		{"exact advance", Initial, '=', Outcome[string]{Kind: Advance, Next: eq}},
		{"initial absorbs", Initial, 'x', Outcome[string]{Kind: Advance, Next: Initial}},
		{"initial absorbs eof", Initial, EOF, Outcome[string]{Kind: Advance, Next: Initial}},
		{"exact beats fallback", eq, '>', Outcome[string]{Kind: Emit, Value: "Arrow", Consumed: true}},
		{"nested advance", eq, '=', Outcome[string]{Kind: Advance, Next: eqeq}},
		{"fallback", eq, ' ', Outcome[string]{Kind: Emit, Value: "Assign"}},
		{"fallback on eof", eqeq, EOF, Outcome[string]{Kind: Emit, Value: "Eq"}},
		{"deepest leaf", eqeq, '=', Outcome[string]{Kind: Emit, Value: "StrictEq", Consumed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.Lookup(tt.state, tt.char)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := tbl.Lookup(tt.state, tt.char)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestLookupNoTransition(t *testing.T) {
	tbl := compilePairs(t, []pair{{"{{", "DoubleBrace"}})

	o, err := tbl.Lookup(Initial, '{')
	require.NoError(t, err)
	require.Equal(t, Advance, o.Kind)

	_, err = tbl.Lookup(o.Next, EOF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoTransition))

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, o.Next, te.State)
	assert.Equal(t, "a", te.StateName)
	assert.Equal(t, EOF, te.Char)
	assert.Contains(t, te.Error(), "end of input")

	_, err = tbl.Lookup(o.Next, 'x')
	require.Error(t, err)
	assert.Contains(t, err.Error(), `'x'`)

	_, err = tbl.Lookup(State(42), 'x')
	assert.True(t, errors.Is(err, ErrNoTransition))
}

func TestStateReturnsCopy(t *testing.T) {
	tbl := compilePairs(t, symbolPatterns)
	eq := State(1)

	info := tbl.State(eq)
	require.NotNil(t, info.Fallback)
	assert.Equal(t, "Assign", *info.Fallback)
	*info.Fallback = "Changed"

	assert.Equal(t, "Assign", *tbl.State(eq).Fallback)
	o, err := tbl.Lookup(eq, ' ')
	require.NoError(t, err)
	assert.Equal(t, Outcome[string]{Kind: Emit, Value: "Assign"}, o)
}

func TestStateOutOfRange(t *testing.T) {
	tbl := compilePairs(t, symbolPatterns)

	for _, s := range []State{-1, 3, 99} {
		var info StateInfo[string]
		require.NotPanics(t, func() { info = tbl.State(s) })
		assert.Equal(t, tbl.StateName(s), info.Name)
		assert.Nil(t, info.Fallback)
	}
	assert.Equal(t, "State(99)", tbl.State(99).Name)
}

func TestEmptyPatternSet(t *testing.T) {
	tbl := Compile(trie.New[string]())
	assert.Equal(t, 1, tbl.NumStates())

	o, err := tbl.Lookup(Initial, 'a')
	require.NoError(t, err)
	assert.Equal(t, Outcome[string]{Kind: Advance, Next: Initial}, o)
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []pair
		input   string
		want    []string
		wantErr bool
	}{
		{"operators", symbolPatterns, "== = === =>", []string{"Eq", "Assign", "StrictEq", "Arrow"}, false},
		{"fallback then foreign", symbolPatterns, "=a", []string{"Assign"}, false},
		{"flush at end", symbolPatterns, "{} ==", []string{"Brace", "CloseBrace", "Eq"}, false},
		{"truncated", []pair{{"{{", "DoubleBrace"}}, "{{{", []string{"DoubleBrace"}, true},
		{"overlap long", []pair{{"{", "Single"}, {"{{", "Double"}}, "{{", []string{"Double"}, false},
		{"overlap short", []pair{{"{", "Single"}, {"{{", "Double"}}, "{x", []string{"Single"}, false},
		{"replayed char starts match", []pair{{"=", "Assign"}, {"==", "Eq"}, {"{", "Brace"}}, "={", []string{"Assign", "Brace"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := compilePairs(t, tt.pairs)
			got, err := run(tbl, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNoTransition))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEveryPatternMatchesItself(t *testing.T) {
	pairs := []pair{
		{"<", "Lt"}, {"<=", "Le"}, {"<<", "Shl"}, {"<<=", "ShlAssign"},
		{"...", "Ellipsis"}, {"..", "Range"}, {"->", "Arrow"}, {"-", "Minus"},
		{"→", "UnicodeArrow"}, {"::", "Scope"},
	}
	tbl := compilePairs(t, pairs)

	for _, p := range pairs {
		t.Run(p.pattern, func(t *testing.T) {
			got, err := run(tbl, p.pattern)
			require.NoError(t, err)
			assert.Equal(t, []string{p.value}, got)
		})
	}
}

func TestLastDuplicateWins(t *testing.T) {
	tbl := compilePairs(t, []pair{{"=", "First"}, {"==", "Eq"}, {"=", "Second"}})
	got, err := run(tbl, "= ==")
	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "Eq"}, got)
}

// Behavior is independent of insertion order: compare the emitted tokens of
// random inputs across shuffled pattern sets.
func TestCompileOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	alphabet := []rune("=<>!{} a")

	base := compilePairs(t, append(symbolPatterns, pair{"!=", "Ne"}, pair{"!==", "StrictNe"}, pair{"<=", "Le"}))

	for round := 0; round < 20; round++ {
		shuffled := append([]pair(nil), symbolPatterns...)
		shuffled = append(shuffled, pair{"!=", "Ne"}, pair{"!==", "StrictNe"}, pair{"<=", "Le"})
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		other := compilePairs(t, shuffled)

		for n := 0; n < 50; n++ {
			input := make([]rune, rng.Intn(12))
			for i := range input {
				input[i] = alphabet[rng.Intn(len(alphabet))]
			}
			wantOut, wantErr := run(base, string(input))
			gotOut, gotErr := run(other, string(input))
			assert.Equal(t, wantOut, gotOut, "input %q", string(input))
			assert.Equal(t, wantErr == nil, gotErr == nil, "input %q", string(input))
		}
	}
}
