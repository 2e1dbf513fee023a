package bnf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewGrammar_hasEmptyNonterminal(t *testing.T) {
	// setup
	g := NewGrammar()

	// assert
	nt := g.Nonterminals[g.EmptyNonterminal]
	assert.Equal(t, "A_Empty", nt.Name)
	assert.Len(t, nt.Productions, 1)
	assert.Equal(t, ActionVoid, g.Productions[nt.Productions[0]].Action.Kind)
}

func Test_InternStringTerminal_dedupesByContent(t *testing.T) {
	// setup
	g := NewGrammar()

	// execute
	a := g.InternStringTerminal("if", 0)
	b := g.InternStringTerminal("if", 0)
	c := g.InternStringTerminal("+", 0)

	// assert
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, g.Terminals[a].IsKeywordLike)
	assert.False(t, g.Terminals[c].IsKeywordLike)
}

func Test_NewAuxName_isDenseAndPrefixed(t *testing.T) {
	// setup
	g := NewGrammar()

	// execute
	a := g.NewAuxName()
	b := g.NewAuxName()

	// assert
	assert.Equal(t, "A_1", a)
	assert.Equal(t, "A_2", b)
}

func Test_AddProduction_registersOnHead(t *testing.T) {
	// setup
	g := NewGrammar()
	nt := g.AddNonterminal("N_Foo", 0)

	// execute
	id := g.AddProduction(nt, nil, Action{Kind: ActionVoid})

	// assert
	assert.Contains(t, g.Nonterminals[nt].Productions, id)
}
