package fingerprint

import (
	"testing"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/gentypes"
	"github.com/dekarrin/syngen/internal/lrgen"
)

func buildTable() *lrgen.Table {
	g := bnf.NewGrammar()
	types := gentypes.NewTable()
	intType := types.PrimitiveUser("int").ID()

	num := g.AddNamedTerminal("NUMBER", intType)
	term := g.AddNonterminal("N_Term", intType)
	g.AddProduction(term, []bnf.Symbol{{Kind: bnf.SymTerminal, Terminal: num}}, bnf.Action{Kind: bnf.ActionCopy, SourceIndex: 0, Type: intType})

	return lrgen.Generate(g, term)
}

func Test_Of_deterministicAcrossRuns(t *testing.T) {
	a := Of(buildTable())
	b := Of(buildTable())

	if a != b {
		t.Errorf("Of produced different digests for structurally identical tables: %x != %x", a, b)
	}
}

func Test_Of_changesWithGrammar(t *testing.T) {
	t1 := buildTable()

	g2 := bnf.NewGrammar()
	types := gentypes.NewTable()
	strType := types.PrimitiveUser("string").ID()
	name := g2.AddNamedTerminal("NAME", strType)
	nt := g2.AddNonterminal("N_Term", strType)
	g2.AddProduction(nt, []bnf.Symbol{{Kind: bnf.SymTerminal, Terminal: name}}, bnf.Action{Kind: bnf.ActionCopy, SourceIndex: 0, Type: strType})
	t2 := lrgen.Generate(g2, nt)

	if Of(t1) == Of(t2) {
		t.Errorf("Of produced the same digest for two structurally different tables")
	}
}
