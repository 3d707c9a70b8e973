package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
)

func TestWindow(t *testing.T) {
	t.Parallel()

	text := "a😀《b》"

	tests := []struct {
		name          string
		enc           rule.Encoding
		pos           int
		before, after int
		pre, post     string
	}{
		{"utf8 middle", rule.UTF8, 8, 2, 2, "😀《", "b》"},
		{"utf8 clamps at the start", rule.UTF8, 1, 3, 1, "a", "😀"},
		{"utf8 clamps at the end", rule.UTF8, 9, 1, 3, "b", "》"},
		{"utf16 middle", rule.UTF16, 4, 2, 2, "😀《", "b》"},
		{"utf16 drops the split surrogate", rule.UTF16, 4, 1, 1, "《", "b"},
		{"nothing requested", rule.UTF8, 8, 0, 0, "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var doc tt.Document = tt.StringDocument(text)
			if tc.enc == rule.UTF16 {
				doc = tt.NewUTF16Document(text)
			}
			pre, post := window(doc, tc.enc, tc.pos, tc.before, tc.after)
			assert.Equal(t, tc.pre, string(pre))
			assert.Equal(t, tc.post, string(post))
		})
	}
}
