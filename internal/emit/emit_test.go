package emit

import (
	"strings"
	"testing"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Source_emitsOneFuncPerStart(t *testing.T) {
	g := bnf.NewGrammar()
	num := g.AddNamedTerminal("NUMBER", 0)
	term := g.AddNonterminal("N_Term", 0)
	g.AddProduction(term, []bnf.Symbol{{Kind: bnf.SymTerminal, Terminal: num}}, bnf.Action{Kind: bnf.ActionCopy, SourceIndex: 0})

	result := &Result{Tables: map[string]*lrgen.Table{
		"Term": lrgen.Generate(g, term),
	}}

	src, err := Source("generated", result)
	require.NoError(t, err)

	text := string(src)
	assert.Contains(t, text, "package generated")
	assert.Contains(t, text, "func ParseTerm(scanner glr.Scanner)")
	assert.Contains(t, text, "DO NOT EDIT")
	assert.True(t, strings.Contains(text, "mustLoadTable("))
}
