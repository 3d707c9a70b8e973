package types

import (
	"go/token"
	"unicode/utf16"
)

// Issue is a rule-source diagnostic tied to a file position.
type Issue struct {
	Rule     string
	Filename string
	Message  string
	Note     string
	Start    token.Position
	End      token.Position
}

// Edit is a change the user is about to make: the range [From, To) of the
// current document is replaced by Text. Offsets are in the engine encoding.
type Edit struct {
	From int
	To   int
	Text string
}

// IsInsert reports whether the edit inserts text without removing any.
func (e Edit) IsInsert() bool { return e.From == e.To && e.Text != "" }

// IsDelete reports whether the edit removes text without inserting any.
func (e Edit) IsDelete() bool { return e.To > e.From && e.Text == "" }

// IsReplace reports whether the edit replaces a non-empty range.
func (e Edit) IsReplace() bool { return e.To > e.From && e.Text != "" }

// Change is the rewrite the host applies in place of the user's edit.
// [From, To) of the prior document is replaced by Insert, and the selection
// becomes [Anchor, Head] in the resulting document.
type Change struct {
	From   int
	To     int
	Insert string
	Anchor int
	Head   int
}

// Cursor returns the head of the resulting selection.
func (c Change) Cursor() int { return c.Head }

// Document gives the engine read access to the text around an edit.
type Document interface {
	// Len returns the document length in code units.
	Len() int
	// Slice returns the text in [from, to). Callers clamp the range.
	Slice(from, to int) string
}

// StringDocument is a Document measured in bytes.
type StringDocument string

func (d StringDocument) Len() int { return len(d) }

func (d StringDocument) Slice(from, to int) string {
	from, to = clamp(from, to, len(d))
	return string(d[from:to])
}

// Apply returns the document after c.
func (d StringDocument) Apply(c Change) StringDocument {
	from, to := clamp(c.From, c.To, len(d))
	return d[:from] + StringDocument(c.Insert) + d[to:]
}

// UTF16Document is a Document measured in UTF-16 code units.
type UTF16Document []uint16

// NewUTF16Document encodes s.
func NewUTF16Document(s string) UTF16Document {
	return UTF16Document(utf16.Encode([]rune(s)))
}

func (d UTF16Document) Len() int { return len(d) }

func (d UTF16Document) Slice(from, to int) string {
	from, to = clamp(from, to, len(d))
	return string(utf16.Decode(d[from:to]))
}

// Apply returns the document after c.
func (d UTF16Document) Apply(c Change) UTF16Document {
	from, to := clamp(c.From, c.To, len(d))
	ins := utf16.Encode([]rune(c.Insert))
	out := make(UTF16Document, 0, len(d)-(to-from)+len(ins))
	out = append(out, d[:from]...)
	out = append(out, ins...)
	return append(out, d[to:]...)
}

func (d UTF16Document) String() string {
	return string(utf16.Decode(d))
}

func clamp(from, to, n int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if to < 0 {
		to = 0
	}
	if from > to {
		from = to
	}
	return from, to
}
