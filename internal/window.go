package internal

import (
	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
)

// window reads at most before characters ending at pos and at most after
// characters starting at pos. The document is sliced in code units, so the
// read is widened to the largest character size and then trimmed; a
// character cut in half by the widened read always falls outside the kept
// part.
func window(doc tt.Document, enc rule.Encoding, pos, before, after int) (pre, post []rune) {
	w := enc.MaxRuneLen()

	if before > 0 {
		start := pos - before*w
		if start < 0 {
			start = 0
		}
		pre = []rune(doc.Slice(start, pos))
		if len(pre) > before {
			pre = pre[len(pre)-before:]
		}
	}

	if after > 0 {
		end := pos + after*w
		if n := doc.Len(); end > n {
			end = n
		}
		post = []rune(doc.Slice(pos, end))
		if len(post) > after {
			post = post[:after]
		}
	}

	return pre, post
}
