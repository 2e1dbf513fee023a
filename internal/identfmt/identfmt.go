// Package identfmt turns the grammar's user-facing names (nonterminal,
// terminal, and class-field names) into the exported Go identifiers
// internal/emit writes into generated source: spec §6's "every generated
// parse_<StartNt> function" and "every class field becomes an exported Go
// struct field" both need a name transform that is stable across runs and
// safe for identifiers made of arbitrary grammar-author text.
//
// Grounded on golang.org/x/text's cases package, which the teacher pulls
// in (go.mod) for locale-aware casing; we pin language.Und (und: root
// locale) throughout, since grammar identifiers are not natural-language
// text and a dynamic locale would make casing output non-deterministic
// across environments.
package identfmt

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// ExportedIdent converts an arbitrary grammar identifier (nonterminal,
// terminal, or field name) into an exported Go identifier: it splits on
// runs of non-letter/digit characters and underscores, title-cases each
// resulting word, and joins them with no separator, e.g. "list_of-items"
// becomes "ListOfItems". An empty or all-separator input yields "X" so
// that callers never hand a blank name to a Go source template.
func ExportedIdent(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return "X"
	}

	var b strings.Builder
	for _, w := range words {
		b.WriteString(titleCaser.String(w))
	}

	out := b.String()
	if out == "" {
		return "X"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}
	return out
}

// UnexportedIdent is ExportedIdent with its first rune lower-cased, for
// local variable names internal/emit generates (e.g. a parse function's
// stack-value locals).
func UnexportedIdent(name string) string {
	exported := ExportedIdent(name)
	r := []rune(exported)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// FuncName returns the exported Go function name for the parse entry point
// of the given start nonterminal name: "Parse" followed by its
// ExportedIdent, e.g. "ParseExpr" for "Expr".
func FuncName(startNonterminal string) string {
	return "Parse" + ExportedIdent(startNonterminal)
}

func splitWords(name string) []string {
	var words []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	prevLower := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && prevLower {
				flush()
			}
			cur.WriteRune(r)
			prevLower = unicode.IsLower(r)
		default:
			flush()
			prevLower = false
		}
	}
	flush()

	return words
}
