package symtrie

import (
	"github.com/KromDaniel/symtrie/internal/compiler"
	"github.com/KromDaniel/symtrie/internal/trie"
	"github.com/pkg/errors"
)

// State is a matcher state. The caller owns the current state between calls.
type State = compiler.State

// Kind tags an Outcome as Advance or Emit.
type Kind = compiler.Kind

// Outcome is the result of one matcher step.
type Outcome[V any] = compiler.Outcome[V]

// TransitionError reports a character that cannot continue, complete or fall
// back from the current partial match.
type TransitionError = compiler.TransitionError

const (
	// Initial is the state before any character of a match has been seen.
	Initial = compiler.Initial

	// EOF is the flush sentinel. Offer it once at end of input when the
	// current state is not Initial.
	EOF = compiler.EOF

	// Advance consumes the character and moves to Outcome.Next.
	Advance = compiler.Advance

	// Emit completes a match.
	Emit = compiler.Emit
)

var (
	// ErrEmptyPattern is returned for a pattern with no characters.
	ErrEmptyPattern = trie.ErrEmptyPattern

	// ErrNoTransition is wrapped by every *TransitionError.
	ErrNoTransition = compiler.ErrNoTransition
)

// Pattern maps a literal to the value emitted when it matches.
type Pattern[V any] struct {
	Literal string
	Value   V
}

// Matcher is a compiled, immutable pattern set. It is safe for concurrent
// use; all mutable state lives in the caller.
type Matcher[V any] struct {
	table *compiler.Table[V]
}

// Compile builds a Matcher from an ordered pattern set. A later pattern with
// the same literal overwrites an earlier one.
func Compile[V any](patterns []Pattern[V]) (*Matcher[V], error) {
	t := trie.New[V]()
	for i, p := range patterns {
		if err := t.Insert(p.Literal, p.Value); err != nil {
			return nil, errors.Wrapf(err, "pattern %d", i)
		}
	}
	return &Matcher[V]{table: compiler.Compile(t)}, nil
}

// MustCompile is like Compile but panics on error. It simplifies
// initialization of package-level matchers.
func MustCompile[V any](patterns []Pattern[V]) *Matcher[V] {
	m, err := Compile(patterns)
	if err != nil {
		panic("symtrie: " + err.Error())
	}
	return m
}

// Match advances the matcher by one character from state s.
//
// An exact rule always wins. Without one, Initial absorbs the character
// (Advance to Initial); a state that is itself a complete literal emits it
// with Consumed false; any other state returns a *TransitionError.
func (m *Matcher[V]) Match(s State, r rune) (Outcome[V], error) {
	return m.table.Lookup(s, r)
}

// Flush resolves a partial match at end of input. It returns ok false when
// s is Initial and there is nothing to flush.
func (m *Matcher[V]) Flush(s State) (value V, ok bool, err error) {
	if s == Initial {
		return value, false, nil
	}
	o, err := m.table.Lookup(s, EOF)
	if err != nil {
		return value, false, err
	}
	if o.Kind != Emit {
		return value, false, &TransitionError{State: s, StateName: m.table.StateName(s), Char: EOF}
	}
	return o.Value, true, nil
}

// NumStates returns the number of compiled states, Initial included.
func (m *Matcher[V]) NumStates() int {
	return m.table.NumStates()
}

// StateName returns the compiler-assigned name of s ("None" for Initial).
func (m *Matcher[V]) StateName(s State) string {
	return m.table.StateName(s)
}

// Prefix returns the literal text consumed to reach s.
func (m *Matcher[V]) Prefix(s State) string {
	if s < 0 || int(s) >= m.table.NumStates() {
		return ""
	}
	return m.table.State(s).Prefix
}
