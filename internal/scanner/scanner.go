// Package scanner is a reference collaborator: a minimal hand-rolled
// lexer satisfying internal/glr's Scanner interface (spec §6), sufficient
// to tokenize the EBNF examples in spec.md §8; internal/gparse uses it as
// its grammar-file lexer. It is not a mandated implementation — any Scanner
// works with internal/glr.Parser.
//
// Grounded on the teacher's internal/ictiobus/lex package: a regex-pattern-
// per-token-class lexer tried in priority order, simplified from lex's
// lazy/state-machine/class-registration machinery (built for a
// general-purpose target language lexer) down to the single flat
// maximal-munch loop this generator's reference scanner needs.
package scanner

import (
	"regexp"
	"sort"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/glr"
)

// Rule is one recognition rule: pat is matched anchored at the current
// input position; the longest match across all rules wins, ties broken by
// Priority (lower wins), mirroring the teacher's "patterns tried in
// registration order" behavior but made well-defined under ambiguous
// pattern overlap instead of relying on map iteration order.
type Rule struct {
	Terminal bnf.TerminalID
	Pattern  string
	Skip     bool // true for whitespace/comments: matched and discarded, no token produced
	Priority int

	compiled *regexp.Regexp
}

// Scanner is a rule-driven lexer over an in-memory input string.
type Scanner struct {
	input string
	pos   int
	line  int
	col   int

	rules []Rule

	// ValueFunc optionally converts a matched rune span into the Token's
	// Value, e.g. parsing an ID lexeme into a string or a NUM lexeme into
	// an int. Nil means no value (punctuation-like terminals).
	ValueFunc func(terminal bnf.TerminalID, lexeme string) interface{}
}

// New compiles rules and returns a Scanner over input. Rules are sorted by
// (longest static prefix irrelevant — matching is by regexp match length
// at scan time) Priority ascending for tie-breaking only.
func New(input string, rules []Rule) (*Scanner, error) {
	compiled := make([]Rule, len(rules))
	copy(compiled, rules)
	for i := range compiled {
		re, err := regexp.Compile(`\A(?:` + compiled[i].Pattern + `)`)
		if err != nil {
			return nil, ebnferrors.IllegalState("compiling scanner rule %d: %s", i, err)
		}
		compiled[i].compiled = re
	}
	sort.SliceStable(compiled, func(i, j int) bool { return compiled[i].Priority < compiled[j].Priority })

	return &Scanner{input: input, line: 1, col: 1, rules: compiled}, nil
}

// Scan implements glr.Scanner.
func (s *Scanner) Scan() (glr.Token, error) {
	for {
		if s.pos >= len(s.input) {
			return glr.Token{Terminal: glr.EOF, Pos: s.pos_()}, nil
		}

		rest := s.input[s.pos:]

		bestLen := -1
		var best *Rule
		for i := range s.rules {
			loc := s.rules[i].compiled.FindStringIndex(rest)
			if loc == nil {
				continue
			}
			if loc[1] > bestLen {
				bestLen = loc[1]
				best = &s.rules[i]
			}
		}

		if best == nil {
			return glr.Token{Pos: s.pos_()}, ebnferrors.New(ebnferrors.KindRuntimeLexical, s.pos_(), "no rule matches input at %q", previewRunes(rest, 16))
		}

		lexeme := rest[:bestLen]
		startPos := s.pos_()
		s.advance(lexeme)

		if best.Skip {
			continue
		}

		var val interface{}
		if s.ValueFunc != nil {
			val = s.ValueFunc(best.Terminal, lexeme)
		}
		return glr.Token{Terminal: best.Terminal, Pos: startPos, Value: val}, nil
	}
}

func (s *Scanner) pos_() ebnferrors.Pos {
	return ebnferrors.Pos{Line: s.line, Column: s.col}
}

func (s *Scanner) advance(lexeme string) {
	for _, r := range lexeme {
		if r == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
	}
	s.pos += len(lexeme)
}

func previewRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
