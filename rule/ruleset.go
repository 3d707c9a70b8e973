package rule

import (
	"fmt"

	"github.com/gnoswap-labs/typetrans/internal/trie"
)

// Diagnostic is a compile error attached to a line of the rule source.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// RuleSet is the immutable result of compiling one rule source.
// A rule set with diagnostics is inert: it never matches.
type RuleSet struct {
	Rules          []*ConvRule
	Sides          map[rune]SideRule
	InsertTriggers map[rune]struct{}
	DeleteTriggers map[rune]struct{}

	// LMax and RMax are the widest contexts, in characters, any rule needs
	// before its trigger and after its anchor.
	LMax int
	RMax int

	Diagnostics []Diagnostic
	Encoding    Encoding
	Imports     []string

	// HasImports is set as soon as a -f rule is compiled, whether or not
	// its file could be found.
	HasImports bool

	index *trie.Trie
}

func newRuleSet(enc Encoding) *RuleSet {
	return &RuleSet{
		Sides:          make(map[rune]SideRule),
		InsertTriggers: make(map[rune]struct{}),
		DeleteTriggers: make(map[rune]struct{}),
		Encoding:       enc,
	}
}

// Valid reports whether the rule set compiled without diagnostics.
func (rs *RuleSet) Valid() bool {
	return rs != nil && len(rs.Diagnostics) == 0
}

// Errors returns the diagnostics as display strings.
func (rs *RuleSet) Errors() []string {
	if rs == nil {
		return nil
	}
	errs := make([]string, 0, len(rs.Diagnostics))
	for _, d := range rs.Diagnostics {
		errs = append(errs, d.Error())
	}
	return errs
}

// Candidates returns, in priority order, the indices of the rules whose
// left side up to the trigger is a suffix of window. The last element of
// window must be the trigger.
func (rs *RuleSet) Candidates(window []rune) []int {
	if !rs.Valid() || rs.index == nil {
		return nil
	}
	return rs.index.Lookup(window)
}

// HasInsertTrigger reports whether typing ch can fire any rule.
func (rs *RuleSet) HasInsertTrigger(ch rune) bool {
	if !rs.Valid() {
		return false
	}
	_, ok := rs.InsertTriggers[ch]
	return ok
}

// HasDeleteTrigger reports whether deleting ch can fire any rule.
func (rs *RuleSet) HasDeleteTrigger(ch rune) bool {
	if !rs.Valid() {
		return false
	}
	_, ok := rs.DeleteTriggers[ch]
	return ok
}

// Side returns the wrap rule for ch.
func (rs *RuleSet) Side(ch rune) (SideRule, bool) {
	if !rs.Valid() {
		return SideRule{}, false
	}
	s, ok := rs.Sides[ch]
	return s, ok
}

func (rs *RuleSet) addConv(r *ConvRule) {
	rs.Rules = append(rs.Rules, r)
	if r.Kind == Delete {
		rs.DeleteTriggers[r.DeletedChar()] = struct{}{}
	} else {
		rs.InsertTriggers[r.Trigger] = struct{}{}
	}
	if l := r.lanchor - 1; l > rs.LMax {
		rs.LMax = l
	}
	if rr := len(r.Left) - 1 - r.lanchor; rr > rs.RMax {
		rs.RMax = rr
	}
}

func (rs *RuleSet) buildIndex() {
	keys := make([][]rune, len(rs.Rules))
	for i, r := range rs.Rules {
		keys[i] = r.Key()
	}
	rs.index = trie.Build(keys)
}

// IndexDebugString dumps the candidate index, for tests and the CLI.
func (rs *RuleSet) IndexDebugString() string {
	if rs == nil || rs.index == nil {
		return ""
	}
	return rs.index.DebugString()
}
