package rule

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// Anchor marks the cursor position inside a compiled template.
	// It lies outside the Unicode range so document text can never contain it.
	Anchor rune = unicode.MaxRune + 1
	// DeleteMarker stands for the deleted character in delete rules.
	DeleteMarker rune = unicode.MaxRune + 2
)

// Kind tells which arrow produced a conversion rule.
type Kind int

const (
	Insert Kind = iota // ->
	Delete             // -x
	Import             // -f
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "->"
	case Delete:
		return "-x"
	case Import:
		return "-f"
	default:
		return "Unknown"
	}
}

// ConvRule is one compiled insert, delete or import rule.
type ConvRule struct {
	Kind    Kind
	Left    []rune // contains exactly one Anchor; DeleteMarker precedes it for delete rules
	Right   []rune // zero or one Anchor
	Trigger rune
	Replace string // Right without its anchor, or imported file content
	Line    int

	ImportPath string

	lanchor int
	ranchor int

	// code-unit lengths in the rule set encoding
	BeforeTrigger int // Left[:lanchor-1]
	AfterAnchor   int // Left[lanchor+1:]
	CursorOffset  int // Right[:ranchor]
	DeleteLead    int // Left[:lanchor-2], delete rules only
	Deleted       int // Left[lanchor-2], delete rules only
}

// findOnlyAnchor returns the index of the single anchor in s,
// -1 when there is none and -2 when there are several.
func findOnlyAnchor(s []rune) int {
	res := -1
	for i, ch := range s {
		if ch != Anchor {
			continue
		}
		if res != -1 {
			return -2
		}
		res = i
	}
	return res
}

// newConvRule validates the anchors of left and right and builds the rule.
// For delete rules the marker is inserted in front of the left anchor.
func newConvRule(kind Kind, left, right []rune, enc Encoding) (*ConvRule, error) {
	lanchor := findOnlyAnchor(left)
	switch {
	case lanchor == -1:
		return nil, fmt.Errorf("expect one | on left side, found none")
	case lanchor == -2:
		return nil, fmt.Errorf("expect one | on left side, found multiple")
	case lanchor == 0:
		return nil, fmt.Errorf("invalid placement of | on left side, it can't be the first character")
	}

	ranchor := findOnlyAnchor(right)
	if ranchor == -2 {
		return nil, fmt.Errorf("expect at most one | on right side, found multiple")
	}

	if kind == Delete {
		marked := make([]rune, 0, len(left)+1)
		marked = append(marked, left[:lanchor]...)
		marked = append(marked, DeleteMarker)
		marked = append(marked, left[lanchor:]...)
		left = marked
		lanchor++
	}

	r := &ConvRule{
		Kind:    kind,
		Left:    left,
		Right:   right,
		Trigger: left[lanchor-1],
		lanchor: lanchor,
		ranchor: ranchor,
	}
	r.setReplace(right)
	r.measure(enc)
	return r, nil
}

func (r *ConvRule) setReplace(right []rune) {
	var sb strings.Builder
	for _, ch := range right {
		if ch != Anchor {
			sb.WriteRune(ch)
		}
	}
	r.Replace = sb.String()
}

// measure precomputes the code-unit lengths used for span arithmetic.
func (r *ConvRule) measure(enc Encoding) {
	r.BeforeTrigger = enc.Len(r.Left[:r.lanchor-1])
	r.AfterAnchor = enc.Len(r.Left[r.lanchor+1:])
	if r.ranchor >= 0 {
		r.CursorOffset = enc.Len(r.Right[:r.ranchor])
	} else {
		r.CursorOffset = enc.StringLen(r.Replace)
	}
	if r.Kind == Delete {
		r.DeleteLead = enc.Len(r.Left[:r.lanchor-2])
		r.Deleted = enc.RuneLen(r.Left[r.lanchor-2])
	}
}

// Valid reports whether the anchor invariants hold.
func (r *ConvRule) Valid() bool {
	if r == nil || r.lanchor < 1 || r.lanchor >= len(r.Left) || r.Left[r.lanchor] != Anchor {
		return false
	}
	if r.Kind == Delete && (r.lanchor < 2 || r.Left[r.lanchor-1] != DeleteMarker) {
		return false
	}
	return r.ranchor < len(r.Right)
}

// LeftAnchor returns the index of the anchor in Left.
func (r *ConvRule) LeftAnchor() int { return r.lanchor }

// RightAnchor returns the index of the anchor in Right, or -1.
func (r *ConvRule) RightAnchor() int { return r.ranchor }

// BeforeTriggerText is the context that must precede the trigger.
func (r *ConvRule) BeforeTriggerText() []rune { return r.Left[:r.lanchor-1] }

// AfterAnchorText is the context that must follow the trigger.
func (r *ConvRule) AfterAnchorText() []rune { return r.Left[r.lanchor+1:] }

// Key returns Left up to and including the trigger, the part indexed by the trie.
func (r *ConvRule) Key() []rune { return r.Left[:r.lanchor] }

// DeletedChar returns the character whose deletion fires a delete rule.
func (r *ConvRule) DeletedChar() rune {
	if r.Kind != Delete {
		return 0
	}
	return r.Left[r.lanchor-2]
}

// String renders the rule back in DSL form.
func (r *ConvRule) String() string {
	right := quote(r.Right)
	if r.Kind == Import {
		right = quote([]rune(r.ImportPath))
	}
	return fmt.Sprintf("%s %s %s", quote(r.Left), r.Kind, right)
}

// SideRule wraps an active selection with Left and Right when Trigger is typed.
type SideRule struct {
	Trigger rune
	Left    string
	Right   string
	Line    int
}

func (s SideRule) String() string {
	return fmt.Sprintf("%s -> %s + %s",
		quote([]rune{s.Trigger}), quote([]rune(s.Left)), quote([]rune(s.Right)))
}

// quote writes a template in DSL syntax, escaping what the scanner unescapes.
func quote(rs []rune) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, ch := range rs {
		switch ch {
		case Anchor:
			sb.WriteByte('|')
		case DeleteMarker:
			// virtual, implied by -x
		case '|':
			sb.WriteString(`\|`)
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(ch)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
