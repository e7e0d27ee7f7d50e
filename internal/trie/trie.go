// Package trie implements the prefix tree that literal patterns are inserted
// into before state compilation.
//
// Nodes live in a flat arena and refer to each other by index, so the tree
// can be walked iteratively regardless of how deep the patterns go.
package trie

import (
	"sort"

	"github.com/pkg/errors"
)

// Root is the arena index of the root node. It always exists.
const Root = 0

// ErrEmptyPattern is returned when inserting a pattern with no characters.
var ErrEmptyPattern = errors.New("pattern cannot be empty")

// Node is a single arena slot.
type Node[V any] struct {
	children map[rune]int
	value    V
	hasValue bool
}

// Trie is an arena-backed prefix tree keyed by rune.
type Trie[V any] struct {
	nodes    []Node[V]
	patterns int
}

// New creates a trie holding only the root node.
func New[V any]() *Trie[V] {
	return &Trie[V]{nodes: []Node[V]{{}}}
}

// Insert walks pattern from the root, creating missing nodes, and stores
// value at the terminal node. A second insert of the same literal overwrites
// the earlier value.
func (t *Trie[V]) Insert(pattern string, value V) error {
	if pattern == "" {
		return ErrEmptyPattern
	}

	n := Root
	for _, r := range pattern {
		child, ok := t.nodes[n].children[r]
		if !ok {
			child = len(t.nodes)
			t.nodes = append(t.nodes, Node[V]{})
			if t.nodes[n].children == nil {
				t.nodes[n].children = make(map[rune]int)
			}
			t.nodes[n].children[r] = child
		}
		n = child
	}

	if !t.nodes[n].hasValue {
		t.patterns++
	}
	t.nodes[n].value = value
	t.nodes[n].hasValue = true
	return nil
}

// Len returns the number of arena nodes, root included.
func (t *Trie[V]) Len() int {
	return len(t.nodes)
}

// Patterns returns the number of distinct literals stored.
func (t *Trie[V]) Patterns() int {
	return t.patterns
}

// IsLeaf reports whether node n has no children.
func (t *Trie[V]) IsLeaf(n int) bool {
	return len(t.nodes[n].children) == 0
}

// Value returns the terminal value at node n, if any.
func (t *Trie[V]) Value(n int) (V, bool) {
	return t.nodes[n].value, t.nodes[n].hasValue
}

// Edge is an outgoing edge of a node.
type Edge struct {
	Char  rune
	Child int
}

// Edges returns the outgoing edges of node n sorted by code point.
func (t *Trie[V]) Edges(n int) []Edge {
	children := t.nodes[n].children
	edges := make([]Edge, 0, len(children))
	for r, child := range children {
		edges = append(edges, Edge{Char: r, Child: child})
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Char < edges[j].Char
	})
	return edges
}

// Lookup walks s from the root and returns the node it ends at.
func (t *Trie[V]) Lookup(s string) (int, bool) {
	n := Root
	for _, r := range s {
		child, ok := t.nodes[n].children[r]
		if !ok {
			return 0, false
		}
		n = child
	}
	return n, true
}

// Depth returns the length in runes of the longest stored path.
func (t *Trie[V]) Depth() int {
	type item struct{ node, depth int }
	deepest := 0
	stack := []item{{Root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.depth > deepest {
			deepest = it.depth
		}
		for _, child := range t.nodes[it.node].children {
			stack = append(stack, item{child, it.depth + 1})
		}
	}
	return deepest
}
