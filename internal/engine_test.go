package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
)

func newTestEngine(t testing.TB, source string, enc rule.Encoding) *Engine {
	t.Helper()
	e := NewEngine(zaptest.NewLogger(t), Settings{Encoding: enc})
	rs := e.Load(source)
	require.True(t, rs.Valid(), rs.Errors())
	return e
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil, Settings{})
	require.NotNil(t, e)
	require.NotNil(t, e.Rules())
	assert.True(t, e.Rules().Valid())
	assert.Empty(t, e.Rules().Rules)

	_, ok := e.Handle(tt.StringDocument("abc"), tt.Edit{From: 3, To: 3, Text: "d"})
	assert.False(t, ok, "an empty rule set passes everything through")
}

func TestEngineDoubleBracket(t *testing.T) {
	t.Parallel()

	for _, enc := range []rule.Encoding{rule.UTF8, rule.UTF16} {
		t.Run(enc.String(), func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t, rule.DefaultRules, enc)
			s := NewSession(e, "", 0)

			assert.True(t, s.Type('《'))
			assert.Equal(t, "《》", s.Text())
			assert.Equal(t, enc.StringLen("《"), s.Cursor())

			assert.True(t, s.Type('《'))
			assert.Equal(t, "<", s.Text())
			assert.Equal(t, 1, s.Cursor())
		})
	}
}

func TestEngineDeletePair(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, rule.DefaultRules, rule.UTF8)
	s := NewSession(e, "ab", 1)

	assert.True(t, s.Type('（'))
	assert.Equal(t, "a（）b", s.Text())
	assert.Equal(t, 4, s.Cursor())

	assert.True(t, s.Backspace())
	assert.Equal(t, "ab", s.Text())
	assert.Equal(t, 1, s.Cursor())

	assert.False(t, s.Backspace(), "deleting a plain character passes through")
	assert.Equal(t, "b", s.Text())
}

func TestEngineHandle(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, rule.DefaultRules, rule.UTF8)

	tests := []struct {
		name string
		doc  string
		edit tt.Edit
		want *tt.Change
	}{
		{
			name: "collapse doubled full stop",
			doc:  "end。",
			edit: tt.Edit{From: 6, To: 6, Text: "。"},
			want: &tt.Change{From: 3, To: 6, Insert: ".", Anchor: 4, Head: 4},
		},
		{
			name: "line head conversion",
			doc:  "a\n",
			edit: tt.Edit{From: 2, To: 2, Text: "》"},
			want: &tt.Change{From: 1, To: 2, Insert: "\n>", Anchor: 3, Head: 3},
		},
		{
			name: "line head rule needs a newline",
			doc:  "",
			edit: tt.Edit{From: 0, To: 0, Text: "》"},
		},
		{
			name: "side insert wraps the selection",
			doc:  "say hi",
			edit: tt.Edit{From: 4, To: 6, Text: "《"},
			want: &tt.Change{From: 4, To: 6, Insert: "《hi》", Anchor: 7, Head: 9},
		},
		{
			name: "replacing a selection with a plain character",
			doc:  "say hi",
			edit: tt.Edit{From: 4, To: 6, Text: "x"},
		},
		{
			name: "multi character insert",
			doc:  "",
			edit: tt.Edit{From: 0, To: 0, Text: "《《"},
		},
		{
			name: "multi character delete",
			doc:  "《》",
			edit: tt.Edit{From: 0, To: 6},
		},
		{
			name: "non trigger",
			doc:  "abc",
			edit: tt.Edit{From: 3, To: 3, Text: "d"},
		},
		{
			name: "edit past the end",
			doc:  "abc",
			edit: tt.Edit{From: 9, To: 9, Text: "《"},
		},
		{
			name: "inverted range",
			doc:  "abc",
			edit: tt.Edit{From: 2, To: 1},
		},
		{
			name: "empty edit",
			doc:  "abc",
			edit: tt.Edit{From: 1, To: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := e.Handle(tt.StringDocument(tc.doc), tc.edit)
			if tc.want == nil {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, *tc.want, got)
		})
	}
}

func TestEngineWindowIsBounded(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, "'ab|' -> 'X'", rule.UTF16)
	doc := tt.NewUTF16Document("😀😀😀a")

	c, ok := e.Handle(doc, tt.Edit{From: 7, To: 7, Text: "b"})
	require.True(t, ok)
	assert.Equal(t, tt.Change{From: 6, To: 7, Insert: "X", Anchor: 7, Head: 7}, c)
	assert.Equal(t, "😀😀😀X", doc.Apply(c).String())
}

func TestEngineUnicodeOffsets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		enc  rule.Encoding
		pos  int
		want tt.Change
	}{
		{rule.UTF8, 7, tt.Change{From: 4, To: 10, Insert: "<", Anchor: 5, Head: 5}},
		{rule.UTF16, 3, tt.Change{From: 2, To: 4, Insert: "<", Anchor: 3, Head: 3}},
	}

	for _, tc := range tests {
		t.Run(tc.enc.String(), func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t, rule.DefaultRules, tc.enc)
			s := NewSession(e, "😀《》", tc.pos)
			got, ok := e.Handle(s.Document(), tt.Edit{From: tc.pos, To: tc.pos, Text: "《"})
			require.True(t, ok)
			assert.Equal(t, tc.want, got)

			assert.True(t, s.Type('《'))
			assert.Equal(t, "😀<", s.Text())
		})
	}
}

func TestEngineInvalidRulesAreInert(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, "'a|' -> 'b'", rule.UTF8)
	_, ok := e.Handle(tt.StringDocument(""), tt.Edit{Text: "a"})
	require.True(t, ok)

	rs := e.Load("'a|' -> 'b'\n'c' -> 'd'")
	assert.False(t, rs.Valid())
	assert.Same(t, rs, e.Rules(), "invalid rule sets are still swapped in")

	_, ok = e.Handle(tt.StringDocument(""), tt.Edit{Text: "a"})
	assert.False(t, ok)
}

func TestEnginePriority(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, "'ab|' -> 'X'\n'b|' -> 'Y'", rule.UTF8)
	s := NewSession(e, "", 0)
	s.Replay("ab")
	assert.Equal(t, "X", s.Text())

	e = newTestEngine(t, "'b|' -> 'Y'\n'ab|' -> 'X'", rule.UTF8)
	s = NewSession(e, "", 0)
	s.Replay("ab")
	assert.Equal(t, "aY", s.Text())
}

func TestEngineLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.rules")
	require.NoError(t, os.WriteFile(path, []byte("'a|' -> 'b'\n"), 0o644))

	e := NewEngine(zaptest.NewLogger(t), Settings{BaseDir: dir})
	rs, err := e.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, rs.Rules, 1)
	assert.Same(t, rs, e.Rules())

	_, err = e.LoadFile(filepath.Join(dir, "missing.rules"))
	assert.Error(t, err)
	assert.Same(t, rs, e.Rules(), "a read failure keeps the active rule set")
}

func TestEngineImportRelativeToBaseDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sig.txt"), []byte("-- me"), 0o644))

	e := NewEngine(zaptest.NewLogger(t), Settings{BaseDir: dir})
	rs := e.Load("'sig|' -f 'sig.txt'")
	require.True(t, rs.Valid(), rs.Errors())

	s := NewSession(e, "si", 2)
	assert.True(t, s.Type('g'))
	assert.Equal(t, "-- me", s.Text())
	assert.Equal(t, 5, s.Cursor())
}

func TestHandleAll(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, "'ab|' -> 'XY|'", rule.UTF8)
	doc := tt.StringDocument("a a")

	t.Run("every edit rewrites", func(t *testing.T) {
		t.Parallel()
		changes, ok := e.HandleAll(doc, []tt.Edit{
			{From: 3, To: 3, Text: "b"},
			{From: 1, To: 1, Text: "b"},
		})
		require.True(t, ok)
		assert.Equal(t, []tt.Change{
			{From: 0, To: 1, Insert: "XY", Anchor: 2, Head: 2},
			{From: 2, To: 3, Insert: "XY", Anchor: 5, Head: 5},
		}, changes)

		out := doc
		for i := len(changes) - 1; i >= 0; i-- {
			out = out.Apply(changes[i])
		}
		assert.Equal(t, tt.StringDocument("XY XY"), out)
	})

	t.Run("one miss passes everything through", func(t *testing.T) {
		t.Parallel()
		_, ok := e.HandleAll(doc, []tt.Edit{
			{From: 1, To: 1, Text: "b"},
			{From: 3, To: 3, Text: "c"},
		})
		assert.False(t, ok)
	})

	t.Run("overlapping changes", func(t *testing.T) {
		t.Parallel()
		_, ok := e.HandleAll(doc, []tt.Edit{
			{From: 1, To: 1, Text: "b"},
			{From: 1, To: 1, Text: "b"},
		})
		assert.False(t, ok)
	})

	t.Run("no edits", func(t *testing.T) {
		t.Parallel()
		_, ok := e.HandleAll(doc, nil)
		assert.False(t, ok)
	})
}

func TestSingleRune(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  rune
		ok    bool
	}{
		{"a", 'a', true},
		{"《", '《', true},
		{"😀", '😀', true},
		{"�", '�', true},
		{"", 0, false},
		{"ab", 0, false},
		{"\xff", 0, false},
	}

	for _, tc := range tests {
		r, ok := singleRune(tc.input)
		assert.Equal(t, tc.ok, ok, "%q", tc.input)
		assert.Equal(t, tc.want, r, "%q", tc.input)
	}
}
