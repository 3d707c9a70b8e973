package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnoswap-labs/typetrans/rule"
)

func TestSessionReplay(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, rule.DefaultRules, rule.UTF8)

	tests := []struct {
		name     string
		keys     string
		text     string
		rewrites int
	}{
		{"auto pair then collapse", "《《", "<", 2},
		{"auto pair then delete", "《\b", "", 2},
		{"plain text", "abc", "abc", 0},
		{"backspace plain", "ab\b", "a", 0},
		{"inline code", "··", "``", 1},
		{"code block", "···", "```\n```", 2},
		{"expansion", "dpx", "don't panic", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewSession(e, "", 0)
			assert.Equal(t, tc.rewrites, s.Replay(tc.keys))
			assert.Equal(t, tc.text, s.Text())
		})
	}
}

func TestSessionSelection(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, rule.DefaultRules, rule.UTF16)
	s := NewSession(e, "x😀y", 0)
	s.Select(3, 1)

	from, to := s.Selection()
	assert.Equal(t, 1, from)
	assert.Equal(t, 3, to)

	assert.True(t, s.Type('￥'))
	assert.Equal(t, "x$😀$y", s.Text())
	from, to = s.Selection()
	assert.Equal(t, 2, from)
	assert.Equal(t, 4, to)

	assert.False(t, s.Backspace(), "deleting a selection passes through")
	assert.Equal(t, "x$$y", s.Text())
	assert.Equal(t, 2, s.Cursor())
}
