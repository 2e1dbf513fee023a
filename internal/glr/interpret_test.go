package glr

import (
	"testing"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_Materialize_simpleArithmetic builds S1's shape (Expr -> Expr '+'
// Term | Term ; Term -> NUMBER) with real Actions and checks that
// Materialize folds the scanned NUMBER values into the expected
// left-to-right list via ActionFirstList/ActionNextList, a stand-in for
// the real accumulator a generated facade's caller would build with
// ActionClass instead.
func Test_Materialize_simpleArithmetic(t *testing.T) {
	// setup
	g := bnf.NewGrammar()
	term := g.AddNonterminal("N_Term", 0)
	num := g.AddNamedTerminal("NUMBER", 0)
	g.AddProduction(term, []bnf.Symbol{{Kind: bnf.SymTerminal, Terminal: num}},
		bnf.Action{Kind: bnf.ActionCopy, SourceIndex: 0})

	expr := g.AddNonterminal("N_Expr", 0)
	plus := g.InternStringTerminal("+", 0)
	g.AddProduction(expr, []bnf.Symbol{{Kind: bnf.SymNonterminal, Nonterminal: term}},
		bnf.Action{Kind: bnf.ActionFirstList, SourceIndex: 0})
	g.AddProduction(expr, []bnf.Symbol{
		{Kind: bnf.SymNonterminal, Nonterminal: expr},
		{Kind: bnf.SymTerminal, Terminal: plus},
		{Kind: bnf.SymNonterminal, Nonterminal: term},
	}, bnf.Action{Kind: bnf.ActionNextList, SourceIndex: 0, SepIndex: -1, ElemIndex: 2})

	table := lrgen.Generate(g, expr)

	scanner := &sliceScanner{toks: []Token{
		{Terminal: num, Value: 1},
		{Terminal: plus},
		{Terminal: num, Value: 2},
		{Terminal: plus},
		{Terminal: num, Value: 3},
	}}

	p := NewParser(table, scanner)

	// execute
	result, err := p.Parse()
	require.NoError(t, err)
	defer result.Release()

	val, err := result.Materialize()

	// assert
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2, 3}, val)
}

// Test_Materialize_classFields checks ActionClass field assembly.
func Test_Materialize_classFields(t *testing.T) {
	// setup: N_Pair -> A B, folded into {"first": .., "second": ..}
	g := bnf.NewGrammar()
	a := g.AddNamedTerminal("A", 0)
	b := g.AddNamedTerminal("B", 0)
	pair := g.AddNonterminal("N_Pair", 0)
	g.AddProduction(pair, []bnf.Symbol{
		{Kind: bnf.SymTerminal, Terminal: a},
		{Kind: bnf.SymTerminal, Terminal: b},
	}, bnf.Action{
		Kind: bnf.ActionClass,
		Fields: []bnf.ClassField{
			{Name: "first", ElementIndex: 0},
			{Name: "second", ElementIndex: 1},
		},
	})

	table := lrgen.Generate(g, pair)

	scanner := &sliceScanner{toks: []Token{
		{Terminal: a, Value: "x"},
		{Terminal: b, Value: "y"},
	}}
	p := NewParser(table, scanner)

	// execute
	result, err := p.Parse()
	require.NoError(t, err)
	defer result.Release()

	val, err := result.Materialize()

	// assert
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"first": "x", "second": "y"}, val)
}

