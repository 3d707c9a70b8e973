package internal

import (
	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
)

// Backspace is the key Replay reads as a deletion of the character before
// the cursor.
const Backspace = '\b'

// Session replays keystrokes against a document the way a host editor
// would: every edit is offered to the engine first and applied as typed
// when the engine passes.
type Session struct {
	engine *Engine
	enc    rule.Encoding
	text   string
	anchor int
	head   int
}

// NewSession starts a session on text with the cursor at offset cursor.
func NewSession(e *Engine, text string, cursor int) *Session {
	return &Session{
		engine: e,
		enc:    e.Settings().Encoding,
		text:   text,
		anchor: cursor,
		head:   cursor,
	}
}

func (s *Session) Text() string { return s.text }

// Cursor returns the head of the selection.
func (s *Session) Cursor() int { return s.head }

// Selection returns the selected range, ordered.
func (s *Session) Selection() (from, to int) {
	if s.anchor <= s.head {
		return s.anchor, s.head
	}
	return s.head, s.anchor
}

// Select sets the selection to [anchor, head].
func (s *Session) Select(anchor, head int) {
	s.anchor, s.head = anchor, head
}

// Document returns the current text in the engine encoding.
func (s *Session) Document() tt.Document {
	if s.enc == rule.UTF16 {
		return tt.NewUTF16Document(s.text)
	}
	return tt.StringDocument(s.text)
}

func (s *Session) apply(c tt.Change) {
	switch d := s.Document().(type) {
	case tt.UTF16Document:
		s.text = d.Apply(c).String()
	case tt.StringDocument:
		s.text = string(d.Apply(c))
	}
	s.anchor, s.head = c.Anchor, c.Head
}

// Type types ch over the selection and reports whether a rule rewrote it.
func (s *Session) Type(ch rune) bool {
	from, to := s.Selection()
	edit := tt.Edit{From: from, To: to, Text: string(ch)}
	if c, ok := s.engine.Handle(s.Document(), edit); ok {
		s.apply(c)
		return true
	}
	end := from + s.enc.RuneLen(ch)
	s.apply(tt.Change{From: from, To: to, Insert: string(ch), Anchor: end, Head: end})
	return false
}

// Backspace deletes the selection, or the character before the cursor,
// and reports whether a rule rewrote the deletion.
func (s *Session) Backspace() bool {
	from, to := s.Selection()
	if from == to {
		if from == 0 {
			return false
		}
		before := []rune(s.Document().Slice(0, from))
		from -= s.enc.RuneLen(before[len(before)-1])
	}

	edit := tt.Edit{From: from, To: to}
	if c, ok := s.engine.Handle(s.Document(), edit); ok {
		s.apply(c)
		return true
	}
	s.apply(tt.Change{From: from, To: to, Anchor: from, Head: from})
	return false
}

// Replay feeds keys one at a time, Backspace included, and returns how
// many of them a rule rewrote.
func (s *Session) Replay(keys string) int {
	n := 0
	for _, ch := range keys {
		var hit bool
		if ch == Backspace {
			hit = s.Backspace()
		} else {
			hit = s.Type(ch)
		}
		if hit {
			n++
		}
	}
	return n
}
