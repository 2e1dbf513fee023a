package glr

import (
	"fmt"
	"testing"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/stretchr/testify/assert"
)

// sliceScanner replays a fixed token sequence, then EOF forever.
type sliceScanner struct {
	toks []Token
	pos  int
}

func (s *sliceScanner) Scan() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{Terminal: EOF}, nil
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func buildAcceptsABGrammar(t *testing.T) (*lrgen.Table, bnf.TerminalID, bnf.TerminalID) {
	t.Helper()
	g := bnf.NewGrammar()
	pair := g.AddNonterminal("N_Pair", 0)
	a := g.AddNamedTerminal("a", 0)
	b := g.AddNamedTerminal("b", 0)
	g.AddProduction(pair, []bnf.Symbol{
		{Kind: bnf.SymTerminal, Terminal: a},
		{Kind: bnf.SymTerminal, Terminal: b},
	}, bnf.Action{Kind: bnf.ActionVoid})

	table := lrgen.Generate(g, pair)
	return table, a, b
}

func Test_Parser_acceptsValidInput(t *testing.T) {
	// setup
	table, a, b := buildAcceptsABGrammar(t)
	scanner := &sliceScanner{toks: []Token{
		{Terminal: a, Value: "a"},
		{Terminal: b, Value: "b"},
	}}
	p := NewParser(table, scanner)

	// execute
	result, err := p.Parse()

	// assert
	if assert.NoError(t, err) {
		assert.NotNil(t, result)
		result.Release()
	}
}

func Test_Parser_rejectsInputWithNoShift(t *testing.T) {
	// setup
	table, _, b := buildAcceptsABGrammar(t)
	scanner := &sliceScanner{toks: []Token{
		{Terminal: b, Value: "b"}, // grammar requires a then b, not bare b
	}}
	p := NewParser(table, scanner)

	// execute
	result, err := p.Parse()

	// assert
	assert.Nil(t, result)
	var synErr *SyntaxError
	assert.ErrorAs(t, err, &synErr)
}

func Test_Parser_rejectsTruncatedInput(t *testing.T) {
	// setup
	table, a, _ := buildAcceptsABGrammar(t)
	scanner := &sliceScanner{toks: []Token{
		{Terminal: a, Value: "a"},
		// missing b, straight to EOF
	}}
	p := NewParser(table, scanner)

	// execute
	result, err := p.Parse()

	// assert
	assert.Nil(t, result)
	var synErr *SyntaxError
	assert.ErrorAs(t, err, &synErr)
}

func Test_Parser_propagatesLexicalError(t *testing.T) {
	// setup
	table, _, _ := buildAcceptsABGrammar(t)
	scanner := &erroringScanner{}
	p := NewParser(table, scanner)

	// execute
	result, err := p.Parse()

	// assert
	assert.Nil(t, result)
	var lexErr *LexicalError
	assert.ErrorAs(t, err, &lexErr)
}

type erroringScanner struct{}

func (s *erroringScanner) Scan() (Token, error) {
	return Token{Pos: ebnferrors.Pos{Line: 1, Column: 1}}, fmt.Errorf("bad byte")
}

func Test_Parser_ambiguousGrammarKeepsMultipleTopsAlive(t *testing.T) {
	// setup: classic dangling-else ambiguity, both parses of
	// "if if other else other" must remain viable through the reduce
	// sweep rather than erroring out at table-build or parse time.
	g := bnf.NewGrammar()
	stmt := g.AddNonterminal("N_Stmt", 0)
	ifTerm := g.AddNamedTerminal("if", 0)
	elseTerm := g.AddNamedTerminal("else", 0)
	otherTerm := g.AddNamedTerminal("other", 0)

	g.AddProduction(stmt, []bnf.Symbol{
		{Kind: bnf.SymTerminal, Terminal: ifTerm},
		{Kind: bnf.SymNonterminal, Nonterminal: stmt},
	}, bnf.Action{Kind: bnf.ActionVoid})
	g.AddProduction(stmt, []bnf.Symbol{
		{Kind: bnf.SymTerminal, Terminal: ifTerm},
		{Kind: bnf.SymNonterminal, Nonterminal: stmt},
		{Kind: bnf.SymTerminal, Terminal: elseTerm},
		{Kind: bnf.SymNonterminal, Nonterminal: stmt},
	}, bnf.Action{Kind: bnf.ActionVoid})
	g.AddProduction(stmt, []bnf.Symbol{
		{Kind: bnf.SymTerminal, Terminal: otherTerm},
	}, bnf.Action{Kind: bnf.ActionVoid})

	table := lrgen.Generate(g, stmt)
	assert.NotEmpty(t, table.Conflicts)

	scanner := &sliceScanner{toks: []Token{
		{Terminal: ifTerm}, {Terminal: ifTerm}, {Terminal: otherTerm},
		{Terminal: elseTerm}, {Terminal: otherTerm},
	}}
	p := NewParser(table, scanner)

	// execute
	result, err := p.Parse()

	// assert: GLR explores both attachment branches and still accepts.
	if assert.NoError(t, err) {
		assert.NotNil(t, result)
		result.Release()
	}
}
