package internal

import (
	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
)

// SideInsert wraps the selection [from, to) holding selected with the
// side rule's text. The wrapped text stays selected.
func SideInsert(s rule.SideRule, selected string, from, to int, enc rule.Encoding) tt.Change {
	anchor := from + enc.StringLen(s.Left)
	return tt.Change{
		From:   from,
		To:     to,
		Insert: s.Left + selected + s.Right,
		Anchor: anchor,
		Head:   anchor + enc.StringLen(selected),
	}
}
