// Package internal provides the runtime side of typetrans: it turns a
// single-character edit into the rewrite a conversion rule asks for.
//
// Key components:
//
// Engine: holds the active rule set as an immutable snapshot and classifies
// each edit. A typed character goes through the insert rules, a deleted
// character through the delete rules, and a character typed over a
// selection through the side rules.
//
// Match: confirms the candidates the rule set index returns for the text
// around the edit. The first rule in declaration order wins.
//
// MapToChange: converts a matched rule into a Change over the document as
// it was before the edit, with the new cursor position.
//
// Cache: keeps compiled rule sets so switching profiles does not recompile.
//
// The engine can also follow a rules file on disk and reload it on save.
//
// Usage:
//
//	engine := internal.NewEngine(logger, internal.Settings{Encoding: rule.UTF16})
//	if rs := engine.Load(source); !rs.Valid() {
//	    // report rs.Diagnostics
//	}
//
//	change, ok := engine.Handle(doc, types.Edit{From: 3, To: 3, Text: "《"})
//	if ok {
//	    // apply change instead of the edit
//	}
//
// This package is intended for internal use and should not be imported by
// external packages; use the transform package instead.
package internal
