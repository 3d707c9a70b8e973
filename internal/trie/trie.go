package trie

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

/*
Arena-based Reversed Trie

Conversion rules are indexed by the part of their left template that ends
with the trigger character. Keys are stored reversed, trigger first, so the
lookup can start at the character that was just typed and walk backwards
through the text in front of it.

1. Layout:
	- All nodes live in one slice and are referenced by index (NodeIndex),
	  the root is index 0.
	- A node owns its children by rune and an ordered list of the rules
	  whose key ends at that node.

2. Lookup:
	- Every node reached during the backward walk that owns rules yields
	  candidates, so a short rule is found even when a longer rule shares
	  its suffix.
	- The collected indices are sorted so callers see declaration order.
*/

// NodeIndex represents the index of a trie node.
type NodeIndex int

// Arena is a memory pool that stores all trie nodes.
type Arena struct {
	nodes []arenaNode
}

type arenaNode struct {
	children map[rune]NodeIndex
	// rules lists, in insertion order, the rules whose key terminates here.
	rules []int
}

// NewArena creates a new arena holding only the root.
func NewArena() *Arena {
	arena := &Arena{
		nodes: make([]arenaNode, 0, 64),
	}
	arena.nodes = append(arena.nodes, arenaNode{
		children: make(map[rune]NodeIndex),
	})
	return arena
}

func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{
		children: make(map[rune]NodeIndex),
	})
	return idx
}

// Insert registers rule under key. The key is walked from its last rune to its first.
func (a *Arena) Insert(key []rune, rule int) {
	current := NodeIndex(0)

	for i := len(key) - 1; i >= 0; i-- {
		node := &a.nodes[current]
		childIdx, exists := node.children[key[i]]

		if !exists {
			childIdx = a.newNode()
			// newNode may have grown the slice, re-take the pointer
			a.nodes[current].children[key[i]] = childIdx
		}

		current = childIdx
	}

	a.nodes[current].rules = append(a.nodes[current].rules, rule)
}

// Lookup walks window backwards from its last rune and returns the rules of
// every node on the path, sorted ascending.
func (a *Arena) Lookup(window []rune) []int {
	var found []int
	current := NodeIndex(0)

	for i := len(window) - 1; i >= 0; i-- {
		child, ok := a.nodes[current].children[window[i]]
		if !ok {
			break
		}
		current = child
		found = append(found, a.nodes[current].rules...)
	}

	sort.Ints(found)
	return found
}

// Len returns the number of nodes, root included.
func (a *Arena) Len() int { return len(a.nodes) }

// Equal checks whether two tries are identical in structure and content.
func (a *Arena) Equal(b *Arena) bool {
	if len(a.nodes) != len(b.nodes) {
		return false
	}

	return a.equalNodes(NodeIndex(0), b, NodeIndex(0))
}

func (a *Arena) equalNodes(aIdx NodeIndex, b *Arena, bIdx NodeIndex) bool {
	nodeA := a.nodes[aIdx]
	nodeB := b.nodes[bIdx]

	if len(nodeA.rules) != len(nodeB.rules) || len(nodeA.children) != len(nodeB.children) {
		return false
	}
	for i := range nodeA.rules {
		if nodeA.rules[i] != nodeB.rules[i] {
			return false
		}
	}

	for _, key := range sortedKeys(nodeA.children) {
		childA := nodeA.children[key]
		childB, exists := nodeB.children[key]
		if !exists || !a.equalNodes(childA, b, childB) {
			return false
		}
	}

	return true
}

// DebugString returns a string representation of the trie for debugging purposes.
// Rule lists are printed in brackets, children as key(subtree).
func (a *Arena) DebugString() string {
	return a.debugStringNode(NodeIndex(0))
}

func (a *Arena) debugStringNode(idx NodeIndex) string {
	node := a.nodes[idx]
	var sb strings.Builder

	if len(node.rules) > 0 {
		sb.WriteString(fmt.Sprint(node.rules))
	}

	for _, key := range sortedKeys(node.children) {
		sb.WriteString(keyString(key))
		sb.WriteString("(")
		sb.WriteString(a.debugStringNode(node.children[key]))
		sb.WriteString(")")
	}

	return sb.String()
}

func sortedKeys(children map[rune]NodeIndex) []rune {
	keys := make([]rune, 0, len(children))
	for key := range children {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// keyString prints out-of-range marker runes as code points.
func keyString(r rune) string {
	if r > unicode.MaxRune || !utf8.ValidRune(r) {
		return fmt.Sprintf("<%X>", r)
	}
	return string(r)
}

// Trie wraps the arena with the index operations the rule set needs.
type Trie struct {
	arena *Arena
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{
		arena: NewArena(),
	}
}

// Build indexes keys[i] under rule index i.
func Build(keys [][]rune) *Trie {
	t := New()
	for i, key := range keys {
		t.Insert(key, i)
	}
	return t
}

// Insert registers rule under key.
func (t *Trie) Insert(key []rune, rule int) {
	t.arena.Insert(key, rule)
}

// Lookup returns the candidate rules for a window ending with the trigger.
func (t *Trie) Lookup(window []rune) []int {
	return t.arena.Lookup(window)
}

// Len returns the number of nodes in the trie.
func (t *Trie) Len() int { return t.arena.Len() }

// Equal checks whether two tries are identical in structure and content.
func (t *Trie) Equal(other *Trie) bool {
	return t.arena.Equal(other.arena)
}

// DebugString returns a string representation of the trie for debugging purposes.
func (t *Trie) DebugString() string {
	return t.arena.DebugString()
}
