package rule

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Encoding selects the code unit used for every document offset and span
// length the engine reports.
type Encoding int

const (
	// UTF8 measures offsets in bytes.
	UTF8 Encoding = iota
	// UTF16 measures offsets in UTF-16 code units, as CodeMirror and LSP hosts do.
	UTF16
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF16:
		return "utf-16"
	default:
		return "unknown"
	}
}

// ParseEncoding converts a configuration value into an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "utf-16", "utf16":
		return UTF16, nil
	default:
		return UTF8, fmt.Errorf("unknown encoding %q", s)
	}
}

// MaxRuneLen is the widest a single character can be in this encoding.
func (e Encoding) MaxRuneLen() int {
	if e == UTF16 {
		return 2
	}
	return utf8.UTFMax
}

// RuneLen returns the number of code units r occupies.
// Anchor and DeleteMarker never reach a document and have zero width.
func (e Encoding) RuneLen(r rune) int {
	if r == Anchor || r == DeleteMarker {
		return 0
	}
	if e == UTF16 {
		if n := utf16.RuneLen(r); n > 0 {
			return n
		}
		return 1
	}
	if n := utf8.RuneLen(r); n > 0 {
		return n
	}
	// invalid runes are written as U+FFFD
	return 3
}

// Len returns the number of code units rs occupies.
func (e Encoding) Len(rs []rune) int {
	n := 0
	for _, r := range rs {
		n += e.RuneLen(r)
	}
	return n
}

// StringLen returns the number of code units s occupies.
func (e Encoding) StringLen(s string) int {
	if e == UTF8 {
		return len(s)
	}
	n := 0
	for _, r := range s {
		n += e.RuneLen(r)
	}
	return n
}
