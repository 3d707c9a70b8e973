package trie

import (
	"reflect"
	"testing"
	"unicode"
)

func TestEqCorrectness(t *testing.T) {
	tests := []struct {
		name     string
		setup    func() (*Trie, *Trie)
		expectEq bool
	}{
		{
			name: "identical_empty_tries",
			setup: func() (*Trie, *Trie) {
				return New(), New()
			},
			expectEq: true,
		},
		{
			name: "identical_single_key",
			setup: func() (*Trie, *Trie) {
				key := []rune("ab|")
				return Build([][]rune{key}), Build([][]rune{key})
			},
			expectEq: true,
		},
		{
			name: "identical_multiple_keys",
			setup: func() (*Trie, *Trie) {
				keys := [][]rune{[]rune("《《"), []rune("《"), []rune("。。")}
				return Build(keys), Build(keys)
			},
			expectEq: true,
		},
		{
			name: "different_keys",
			setup: func() (*Trie, *Trie) {
				return Build([][]rune{[]rune("abc")}), Build([][]rune{[]rune("abd")})
			},
			expectEq: false,
		},
		{
			name: "same_keys_different_rules",
			setup: func() (*Trie, *Trie) {
				t1, t2 := New(), New()
				t1.Insert([]rune("ab"), 0)
				t2.Insert([]rune("ab"), 1)
				return t1, t2
			},
			expectEq: false,
		},
		{
			name: "different_number_of_keys",
			setup: func() (*Trie, *Trie) {
				return Build([][]rune{[]rune("abc")}), Build([][]rune{[]rune("abc"), []rune("xyz")})
			},
			expectEq: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t1, t2 := tt.setup()

			if got := t1.Equal(t2); got != tt.expectEq {
				t.Errorf("Equal returned %v, expected %v", got, tt.expectEq)
			}
		})
	}
}

func TestDebugStringIsReversed(t *testing.T) {
	tr := Build([][]rune{
		[]rune("ab"),
		[]rune("cb"),
		[]rune("b"),
	})

	expected := "b([2]a([0])c([1]))"
	if got := tr.DebugString(); got != expected {
		t.Errorf("DebugString() = %q, expected %q", got, expected)
	}
}

func TestDebugStringMarker(t *testing.T) {
	marker := unicode.MaxRune + 2
	tr := Build([][]rune{{'(', marker}})

	expected := "<110001>(([0]))"
	if got := tr.DebugString(); got != expected {
		t.Errorf("DebugString() = %q, expected %q", got, expected)
	}
}

func TestLookup(t *testing.T) {
	keys := [][]rune{
		[]rune("《《"), // 0
		[]rune("《"),  // 1
		[]rune("。。"), // 2
		[]rune("\n》"), // 3
		[]rune("《"),  // 4, duplicate key keeps insertion order
	}
	tr := Build(keys)

	tests := []struct {
		name   string
		window string
		want   []int
	}{
		{"single trigger", "abc《", []int{1, 4}},
		{"longer rule shares suffix", "x《《", []int{0, 1, 4}},
		{"doubled full stop", "。。", []int{2}},
		{"single full stop", "a。", nil},
		{"line head", "foo\n》", []int{3}},
		{"not a trigger", "abc", nil},
		{"empty window", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Lookup([]rune(tt.window))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Lookup(%q) = %v, want %v", tt.window, got, tt.want)
			}
		})
	}
}

func TestLookupSortsByPriority(t *testing.T) {
	tr := New()
	// a longer key registered first must still come first
	tr.Insert([]rune("xab"), 0)
	tr.Insert([]rune("b"), 1)
	tr.Insert([]rune("ab"), 2)

	got := tr.Lookup([]rune("xab"))
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Lookup() = %v, want %v", got, want)
	}
}

func TestArenaSharesPrefixes(t *testing.T) {
	arena := NewArena()
	arena.Insert([]rune("cba"), 0)
	arena.Insert([]rune("dba"), 1)

	// root, a, b, c, d
	if arena.Len() != 5 {
		t.Errorf("Len() = %d, expected 5", arena.Len())
	}

	expected := "a(b(c([0])d([1])))"
	if got := arena.DebugString(); got != expected {
		t.Errorf("DebugString() = %q, expected %q", got, expected)
	}
}
