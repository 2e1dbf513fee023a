package dump

import (
	"testing"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/fingerprint"
	"github.com/dekarrin/syngen/internal/gentypes"
	"github.com/dekarrin/syngen/internal/lrgen"
)

func buildTable(t *testing.T) *lrgen.Table {
	t.Helper()

	g := bnf.NewGrammar()
	types := gentypes.NewTable()
	intType := types.PrimitiveUser("int").ID()

	num := g.AddNamedTerminal("NUMBER", intType)
	plus := g.InternStringTerminal("+", intType)
	term := g.AddNonterminal("N_Term", intType)
	g.AddProduction(term, []bnf.Symbol{{Kind: bnf.SymTerminal, Terminal: num}}, bnf.Action{Kind: bnf.ActionCopy, SourceIndex: 0, Type: intType})

	expr := g.AddNonterminal("N_Expr", intType)
	g.AddProduction(expr, []bnf.Symbol{
		{Kind: bnf.SymNonterminal, Nonterminal: expr},
		{Kind: bnf.SymTerminal, Terminal: plus},
		{Kind: bnf.SymNonterminal, Nonterminal: term},
	}, bnf.Action{Kind: bnf.ActionResultAnd, SourceIndex: 0, Type: intType})
	g.AddProduction(expr, []bnf.Symbol{{Kind: bnf.SymNonterminal, Nonterminal: term}}, bnf.Action{Kind: bnf.ActionCopy, SourceIndex: 0, Type: intType})

	return lrgen.Generate(g, expr)
}

func Test_WriteRead_roundTrip(t *testing.T) {
	orig := buildTable(t)

	data := Write(orig)
	loaded, err := Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if fingerprint.Of(orig) != fingerprint.Of(loaded) {
		t.Errorf("round-tripped table has a different fingerprint than the original")
	}

	if len(loaded.Grammar.Nonterminals) != len(orig.Grammar.Nonterminals) {
		t.Errorf("nonterminal count mismatch: got %d, want %d", len(loaded.Grammar.Nonterminals), len(orig.Grammar.Nonterminals))
	}
	if len(loaded.Collection.States) != len(orig.Collection.States) {
		t.Errorf("state count mismatch: got %d, want %d", len(loaded.Collection.States), len(orig.Collection.States))
	}
	if loaded.Collection.Start != orig.Collection.Start {
		t.Errorf("start state mismatch: got %d, want %d", loaded.Collection.Start, orig.Collection.Start)
	}
}
