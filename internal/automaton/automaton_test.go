package automaton

import (
	"testing"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/stretchr/testify/assert"
)

// buildTestGrammar builds the classic two-rule grammar used throughout the
// teacher's own automaton tests (S -> C C ; C -> c C | d ;), augmented with
// a S' -> S start production, entirely through bnf.Grammar's own builder
// methods rather than a text-format parser (internal/convert is the only
// producer of bnf.Grammar values in the real pipeline).
func buildTestGrammar(t *testing.T) (*bnf.Grammar, bnf.NonterminalID, bnf.ProductionID) {
	t.Helper()
	g := bnf.NewGrammar()

	s := g.AddNonterminal("N_S", 0)
	c := g.AddNonterminal("N_C", 0)
	sAug := g.AddNonterminal("N_S_Prime", 0)

	cTerm := g.AddNamedTerminal("c", 0)
	dTerm := g.AddNamedTerminal("d", 0)

	g.AddProduction(s, []bnf.Symbol{
		{Kind: bnf.SymNonterminal, Nonterminal: c},
		{Kind: bnf.SymNonterminal, Nonterminal: c},
	}, bnf.Action{Kind: bnf.ActionVoid})

	g.AddProduction(c, []bnf.Symbol{
		{Kind: bnf.SymTerminal, Terminal: cTerm},
		{Kind: bnf.SymNonterminal, Nonterminal: c},
	}, bnf.Action{Kind: bnf.ActionVoid})
	g.AddProduction(c, []bnf.Symbol{
		{Kind: bnf.SymTerminal, Terminal: dTerm},
	}, bnf.Action{Kind: bnf.ActionVoid})

	augProd := g.AddProduction(sAug, []bnf.Symbol{
		{Kind: bnf.SymNonterminal, Nonterminal: s},
	}, bnf.Action{Kind: bnf.ActionAccept})

	return g, sAug, augProd
}

func Test_Closure_addsAllProductionsOfLeadingNonterminal(t *testing.T) {
	// setup
	g, _, augProd := buildTestGrammar(t)
	kernel := NewItemSet()
	kernel.Add(g, Item{Prod: augProd, Dot: 0})

	// execute
	closed := Closure(g, kernel)

	// assert: closure of [S' -> . S] must pull in both S and C productions
	assert.Len(t, closed.Items(), 4)
}

func Test_Goto_advancesDotAndRecloses(t *testing.T) {
	// setup
	g, _, augProd := buildTestGrammar(t)
	kernel := NewItemSet()
	kernel.Add(g, Item{Prod: augProd, Dot: 0})
	closed := Closure(g, kernel)

	cNT := g.Nonterminals[2].ID // N_C (index 0 is NewGrammar's A_Empty)

	// execute
	next := Goto(g, closed, bnf.Symbol{Kind: bnf.SymNonterminal, Nonterminal: cNT})

	// assert: on C, S -> C . C should be present, plus C's own productions
	// reopened for the second C.
	found := false
	for _, it := range next.Items() {
		if it.Prod == 1 && it.Dot == 1 {
			found = true
		}
	}
	assert.True(t, found)
}

func Test_BuildCollection_isDenseAndDeterministic(t *testing.T) {
	// setup
	g, _, augProd := buildTestGrammar(t)

	// execute
	coll1 := BuildCollection(g, Item{Prod: augProd, Dot: 0})
	coll2 := BuildCollection(g, Item{Prod: augProd, Dot: 0})

	// assert: same grammar produces the same state count and start id
	// across independent runs (spec §4.5 "deterministic ordering").
	assert.Equal(t, len(coll1.States), len(coll2.States))
	assert.Equal(t, coll1.Start, coll2.Start)
	assert.Equal(t, 0, coll1.Start)

	for i, st := range coll1.States {
		assert.Equal(t, i, st.ID)
	}
}

func Test_BuildCollection_reducingStateHasNoTransitions(t *testing.T) {
	// setup
	g, _, augProd := buildTestGrammar(t)

	// execute
	coll := BuildCollection(g, Item{Prod: augProd, Dot: 0})

	// assert: at least one state (C -> d .) has items all at end and no
	// outgoing transitions.
	sawReduceOnly := false
	for _, st := range coll.States {
		allAtEnd := true
		for _, it := range st.Items.Items() {
			if !it.AtEnd(g) {
				allAtEnd = false
			}
		}
		if allAtEnd && len(st.Transitions) == 0 {
			sawReduceOnly = true
		}
	}
	assert.True(t, sawReduceOnly)
}
