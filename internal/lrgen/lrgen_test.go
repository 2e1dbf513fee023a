package lrgen

import (
	"testing"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIfElseGrammar builds a tiny dangling-else-shaped grammar, the
// textbook source of a deliberate shift/reduce conflict:
//
//	Stmt -> if Stmt | if Stmt else Stmt | other ;
func buildIfElseGrammar(t *testing.T) (*bnf.Grammar, bnf.NonterminalID) {
	t.Helper()
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

	return g, stmt
}

func Test_Generate_retainsShiftReduceConflictInsteadOfRejecting(t *testing.T) {
	// setup
	g, stmt := buildIfElseGrammar(t)

	// execute
	table := Generate(g, stmt)

	// assert: somewhere in the table a state both shifts "else" and
	// reduces, the dangling-else conflict, and it must survive into
	// Conflicts rather than cause an error return.
	sawShiftReduce := false
	for _, c := range table.Conflicts {
		if c.Kind == ConflictShiftReduce {
			sawShiftReduce = true
		}
	}
	assert.True(t, sawShiftReduce)
}

func Test_Conflict_Describe_namesShiftTerminalAndRules(t *testing.T) {
	// setup
	g, stmt := buildIfElseGrammar(t)
	table := Generate(g, stmt)

	var sr Conflict
	for _, c := range table.Conflicts {
		if c.Kind == ConflictShiftReduce {
			sr = c
			break
		}
	}
	require.NotZero(t, len(sr.Prods))

	// execute
	desc := sr.Describe(g)

	// assert
	assert.Contains(t, desc, "shift/reduce")
	assert.Contains(t, desc, "else")
}

func Test_Table_Render_includesStateNumbersAndSymbolNames(t *testing.T) {
	// setup
	g, stmt := buildIfElseGrammar(t)
	table := Generate(g, stmt)

	// execute
	out := table.Render()

	// assert
	assert.Contains(t, out, "state")
	assert.Contains(t, out, "if")
	assert.Contains(t, out, "else")
}

func Test_Generate_acceptStateReachedOnAugmentedProd(t *testing.T) {
	// setup
	g, stmt := buildIfElseGrammar(t)

	// execute
	table := Generate(g, stmt)

	// assert
	assert.NotEmpty(t, table.AcceptStates)
	assert.Equal(t, bnf.ActionAccept, g.Productions[table.AugmentedProd].Action.Kind)
}

func Test_Generate_gotoIsDeterministicPerNonterminal(t *testing.T) {
	// setup
	g, stmt := buildIfElseGrammar(t)

	// execute
	table := Generate(g, stmt)

	// assert: every recorded goto is a single target state, never a list,
	// since GOTO is a function of (state, nonterminal) even when ACTION
	// has conflicts.
	for _, gotoRow := range table.Gotos {
		for _, target := range gotoRow {
			assert.GreaterOrEqual(t, target, 0)
		}
	}
}

func Test_Generate_simpleGrammarHasNoConflicts(t *testing.T) {
	// setup: Pair -> a b ; has exactly one parse per input, no conflicts.
	g := bnf.NewGrammar()
	pair := g.AddNonterminal("N_Pair", 0)
	a := g.AddNamedTerminal("a", 0)
	b := g.AddNamedTerminal("b", 0)
	g.AddProduction(pair, []bnf.Symbol{
		{Kind: bnf.SymTerminal, Terminal: a},
		{Kind: bnf.SymTerminal, Terminal: b},
	}, bnf.Action{Kind: bnf.ActionVoid})

	// execute
	table := Generate(g, pair)

	// assert
	assert.Empty(t, table.Conflicts)
}
