package compiler

import (
	"fmt"
	"sort"

	"github.com/KromDaniel/symtrie/internal/codegen"
	"github.com/KromDaniel/symtrie/internal/trie"
	"github.com/pkg/errors"
)

// State identifies a compiled matcher state. Every trie node with at least
// one child gets a state; leaves are folded into Emit rules on their parent.
type State int32

// Initial is the state for "no characters matched yet". It exists even when
// the pattern set is empty.
const Initial State = 0

// EOF is the end-of-stream sentinel. It is never produced by ranging over a
// Go string, so it never matches an edge and forces the fallback rule.
const EOF rune = -1

// Kind tags the two shapes of an Outcome.
type Kind uint8

const (
	// Advance consumes the character and moves to Outcome.Next.
	Advance Kind = iota
	// Emit completes a match with Outcome.Value.
	Emit
)

func (k Kind) String() string {
	switch k {
	case Advance:
		return "Advance"
	case Emit:
		return "Emit"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Outcome is the result of a single matcher step.
//
// For Emit, Consumed reports whether the triggering character belongs to the
// match. When it is false the character must be offered again from Initial.
type Outcome[V any] struct {
	Kind     Kind
	Next     State
	Value    V
	Consumed bool
}

// ErrNoTransition is wrapped by every TransitionError.
var ErrNoTransition = errors.New("no transition")

// TransitionError reports a character that can neither continue, complete,
// nor fall back from a partial match.
type TransitionError struct {
	State     State
	StateName string
	Char      rune
}

func (e *TransitionError) Error() string {
	if e.Char == EOF {
		return fmt.Sprintf("no transition from state %s at end of input", e.StateName)
	}
	return fmt.Sprintf("no transition from state %s on %q", e.StateName, e.Char)
}

// Unwrap returns ErrNoTransition.
func (e *TransitionError) Unwrap() error {
	return ErrNoTransition
}

// Rule is a single compiled (state, char) entry, kept in emission order.
type Rule[V any] struct {
	From    State
	Char    rune
	Outcome Outcome[V]
}

// StateInfo describes a compiled state.
type StateInfo[V any] struct {
	Name   string
	Parent State
	Depth  int
	// Prefix is the literal text consumed to reach this state.
	Prefix string
	// Fallback, when set, is emitted (unconsumed) for any character without
	// an exact rule.
	Fallback    *V
	exact       map[rune]Outcome[V]
	orderedKeys []rune
}

// Table is the immutable compiled transition table.
type Table[V any] struct {
	states []StateInfo[V]
	rules  []Rule[V]
}

// Compile walks the trie depth-first, children in code point order, assigns
// a state to every internal node and emits all transition and fallback rules.
func Compile[V any](t *trie.Trie[V]) *Table[V] {
	tbl := &Table[V]{
		states: []StateInfo[V]{{
			Name:   codegen.InitialStateName,
			Parent: Initial,
			exact:  make(map[rune]Outcome[V]),
		}},
	}

	type frame struct {
		node  int
		state State
	}

	// Explicit stack. Each frame emits its own edges and queues children in
	// reverse so they are expanded in sibling order.
	stack := []frame{{node: trie.Root, state: Initial}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var pending []frame
		sibling := 0
		for _, edge := range t.Edges(f.node) {
			if t.IsLeaf(edge.Child) {
				// Leaves without a value cannot exist: only Insert creates
				// nodes and it always sets a value on the last one.
				if v, ok := t.Value(edge.Child); ok {
					tbl.addRule(f.state, edge.Char, Outcome[V]{Kind: Emit, Value: v, Consumed: true})
				}
				continue
			}

			sibling++
			parent := tbl.states[f.state]
			next := State(len(tbl.states))
			info := StateInfo[V]{
				Name:   codegen.ChildStateName(parent.Name, sibling),
				Parent: f.state,
				Depth:  parent.Depth + 1,
				Prefix: parent.Prefix + string(edge.Char),
				exact:  make(map[rune]Outcome[V]),
			}
			if v, ok := t.Value(edge.Child); ok {
				info.Fallback = &v
			}
			tbl.states = append(tbl.states, info)
			tbl.addRule(f.state, edge.Char, Outcome[V]{Kind: Advance, Next: next})
			pending = append(pending, frame{node: edge.Child, state: next})
		}

		for i := len(pending) - 1; i >= 0; i-- {
			stack = append(stack, pending[i])
		}
	}

	return tbl
}

func (t *Table[V]) addRule(from State, r rune, o Outcome[V]) {
	info := &t.states[from]
	if _, dup := info.exact[r]; !dup {
		info.orderedKeys = append(info.orderedKeys, r)
	}
	info.exact[r] = o
	t.rules = append(t.rules, Rule[V]{From: from, Char: r, Outcome: o})
}

// Lookup resolves (state, r) in fixed order: an exact rule wins; otherwise
// Initial absorbs the character with Advance(Initial); otherwise the state's
// fallback is emitted unconsumed; otherwise a *TransitionError is returned.
func (t *Table[V]) Lookup(s State, r rune) (Outcome[V], error) {
	if s < 0 || int(s) >= len(t.states) {
		return Outcome[V]{}, &TransitionError{State: s, StateName: fmt.Sprintf("State(%d)", s), Char: r}
	}

	info := &t.states[s]
	if o, ok := info.exact[r]; ok {
		return o, nil
	}
	if s == Initial {
		return Outcome[V]{Kind: Advance, Next: Initial}, nil
	}
	if info.Fallback != nil {
		return Outcome[V]{Kind: Emit, Value: *info.Fallback, Consumed: false}, nil
	}
	return Outcome[V]{}, &TransitionError{State: s, StateName: info.Name, Char: r}
}

// NumStates returns the number of states, Initial included.
func (t *Table[V]) NumStates() int {
	return len(t.states)
}

// State returns a copy of the description of state s. Like StateName it
// accepts any s; an unknown state only carries a "State(n)" name.
func (t *Table[V]) State(s State) StateInfo[V] {
	if s < 0 || int(s) >= len(t.states) {
		return StateInfo[V]{Name: t.StateName(s)}
	}
	info := t.states[s]
	info.exact, info.orderedKeys = nil, nil
	if info.Fallback != nil {
		v := *info.Fallback
		info.Fallback = &v
	}
	return info
}

// StateName returns the compiler-assigned name of s.
func (t *Table[V]) StateName(s State) string {
	if s < 0 || int(s) >= len(t.states) {
		return fmt.Sprintf("State(%d)", s)
	}
	return t.states[s].Name
}

// Rules returns the exact rules in emission order.
func (t *Table[V]) Rules() []Rule[V] {
	return t.rules
}

// StateRules returns the exact rules leaving s, sorted by character.
func (t *Table[V]) StateRules(s State) []Rule[V] {
	info := t.states[s]
	keys := append([]rune(nil), info.orderedKeys...)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rules := make([]Rule[V], 0, len(keys))
	for _, r := range keys {
		rules = append(rules, Rule[V]{From: s, Char: r, Outcome: info.exact[r]})
	}
	return rules
}

// NumFallbacks returns how many states carry a wildcard fallback.
func (t *Table[V]) NumFallbacks() int {
	n := 0
	for _, info := range t.states {
		if info.Fallback != nil {
			n++
		}
	}
	return n
}
