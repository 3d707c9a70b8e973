package internal

import "github.com/gnoswap-labs/typetrans/rule"

// Match returns the first rule, in declaration order, that converts input.
// input holds the text around the edit with the trigger at trigPos; for
// deletions the trigger is rule.DeleteMarker, placed right after the deleted
// character.
func Match(rs *rule.RuleSet, input []rune, trig rune, trigPos int) (*rule.ConvRule, bool) {
	if !rs.Valid() || trigPos < 0 || trigPos >= len(input) || input[trigPos] != trig {
		return nil, false
	}

	for _, idx := range rs.Candidates(input[:trigPos+1]) {
		r := rs.Rules[idx]
		if canConvert(r, input, trig, trigPos) {
			return r, true
		}
	}
	return nil, false
}

// canConvert confirms a candidate: same trigger, the text before the trigger
// ends with the rule's left context and the text after it starts with the
// rule's right context.
func canConvert(r *rule.ConvRule, input []rune, trig rune, trigPos int) bool {
	if !r.Valid() || r.Trigger != trig {
		return false
	}
	return suffixOf(r.BeforeTriggerText(), input[:trigPos]) &&
		prefixOf(r.AfterAnchorText(), input[trigPos+1:])
}

func prefixOf(s1, s2 []rune) bool {
	if len(s1) > len(s2) {
		return false
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			return false
		}
	}
	return true
}

func suffixOf(s1, s2 []rune) bool {
	if len(s1) > len(s2) {
		return false
	}
	for i, j := len(s1)-1, len(s2)-1; i >= 0; i, j = i-1, j-1 {
		if s1[i] != s2[j] {
			return false
		}
	}
	return true
}
