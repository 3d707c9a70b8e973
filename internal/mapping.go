package internal

import (
	"errors"
	"fmt"

	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
)

// ErrNegativeSpan is returned when a rule would rewrite text before the
// start of the document.
var ErrNegativeSpan = errors.New("replacement span starts before the document")

// MapToChange turns a matched rule into the change to apply to the document
// as it was before the user's edit.
//
// For insert and import rules pos is where the trigger would have been
// inserted. For delete rules pos is the offset of the deleted character.
// All offsets and lengths are code units of the rule set encoding, and the
// cursor is reported as an absolute offset in the resulting document.
func MapToChange(r *rule.ConvRule, pos int) (tt.Change, error) {
	var from, to int
	switch r.Kind {
	case rule.Delete:
		from = pos - r.DeleteLead
		to = pos + r.Deleted + r.AfterAnchor
	case rule.Insert, rule.Import:
		from = pos - r.BeforeTrigger
		to = pos + r.AfterAnchor
	default:
		return tt.Change{}, fmt.Errorf("unknown rule kind %d", r.Kind)
	}

	if from < 0 {
		return tt.Change{}, fmt.Errorf("%w: line %d maps to [%d, %d)", ErrNegativeSpan, r.Line, from, to)
	}

	cursor := from + r.CursorOffset
	return tt.Change{
		From:   from,
		To:     to,
		Insert: r.Replace,
		Anchor: cursor,
		Head:   cursor,
	}, nil
}
