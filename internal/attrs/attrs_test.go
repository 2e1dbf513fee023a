package attrs

import (
	"testing"

	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/stretchr/testify/assert"
)

func ident(name string) ast.Ident { return ast.Ident{Name: name} }

func Test_Analyzer_classMeaningFromTwoAttrs(t *testing.T) {
	// setup: @Pair : kind=ID value=ID ;
	arena := ast.NewArena()
	arena.AddTerminal(ast.TerminalDecl{Name: ident("ID")})

	refA := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(refA).Name = "ID"
	namedA := arena.NewExpr(ast.KindNameElement, ast.Pos{})
	arena.Expr(namedA).Name = "kind"
	arena.Expr(namedA).Sub = []ast.ExprID{refA}

	refB := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(refB).Name = "ID"
	namedB := arena.NewExpr(ast.KindNameElement, ast.Pos{})
	arena.Expr(namedB).Name = "value"
	arena.Expr(namedB).Sub = []ast.ExprID{refB}

	and := arena.NewExpr(ast.KindAnd, ast.Pos{})
	arena.Expr(and).Sub = []ast.ExprID{namedA, namedB}

	arena.AddNonterminal(ast.NonterminalDecl{Name: ident("Pair"), IsStart: true, Body: and})

	an := New(arena)

	// execute
	err := an.Run()

	// assert
	assert.NoError(t, err)
	assert.Equal(t, MeaningClass, an.Table.Meanings[and])
	assert.False(t, an.Table.Conversions[and].IsPartClass)
}

func Test_Analyzer_thisMeaning(t *testing.T) {
	// setup: @Wrap : this=ID ;
	arena := ast.NewArena()
	arena.AddTerminal(ast.TerminalDecl{Name: ident("ID")})

	ref := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(ref).Name = "ID"
	this := arena.NewExpr(ast.KindThisElement, ast.Pos{})
	arena.Expr(this).Sub = []ast.ExprID{ref}
	and := arena.NewExpr(ast.KindAnd, ast.Pos{})
	arena.Expr(and).Sub = []ast.ExprID{this}

	arena.AddNonterminal(ast.NonterminalDecl{Name: ident("Wrap"), IsStart: true, Body: and})

	an := New(arena)

	// execute
	err := an.Run()

	// assert
	assert.NoError(t, err)
	assert.Equal(t, MeaningThis, an.Table.Meanings[and])
}

func Test_Analyzer_attrThisConflict(t *testing.T) {
	// setup: @Bad : this=ID kind=ID ;
	arena := ast.NewArena()
	arena.AddTerminal(ast.TerminalDecl{Name: ident("ID")})

	ref1 := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(ref1).Name = "ID"
	this := arena.NewExpr(ast.KindThisElement, ast.Pos{})
	arena.Expr(this).Sub = []ast.ExprID{ref1}

	ref2 := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(ref2).Name = "ID"
	named := arena.NewExpr(ast.KindNameElement, ast.Pos{})
	arena.Expr(named).Name = "kind"
	arena.Expr(named).Sub = []ast.ExprID{ref2}

	and := arena.NewExpr(ast.KindAnd, ast.Pos{})
	arena.Expr(and).Sub = []ast.ExprID{this, named}

	arena.AddNonterminal(ast.NonterminalDecl{Name: ident("Bad"), IsStart: true, Body: and})

	an := New(arena)

	// execute
	err := an.Run()

	// assert
	assert.Error(t, err)
	var ebErr *ebnferrors.Error
	assert.ErrorAs(t, err, &ebErr)
	assert.Equal(t, ebnferrors.KindAttrThisConflict, ebErr.Kind)
}

func Test_Analyzer_duplicateAttribute(t *testing.T) {
	// setup: @Bad : kind=ID kind=ID ;
	arena := ast.NewArena()
	arena.AddTerminal(ast.TerminalDecl{Name: ident("ID")})

	mkNamed := func() ast.ExprID {
		ref := arena.NewExpr(ast.KindNameRef, ast.Pos{})
		arena.Expr(ref).Name = "ID"
		named := arena.NewExpr(ast.KindNameElement, ast.Pos{})
		arena.Expr(named).Name = "kind"
		arena.Expr(named).Sub = []ast.ExprID{ref}
		return named
	}

	and := arena.NewExpr(ast.KindAnd, ast.Pos{})
	arena.Expr(and).Sub = []ast.ExprID{mkNamed(), mkNamed()}

	arena.AddNonterminal(ast.NonterminalDecl{Name: ident("Bad"), IsStart: true, Body: and})

	an := New(arena)

	// execute
	err := an.Run()

	// assert
	assert.Error(t, err)
	var ebErr *ebnferrors.Error
	assert.ErrorAs(t, err, &ebErr)
	assert.Equal(t, ebnferrors.KindDuplicateAttribute, ebErr.Kind)
}

func Test_Analyzer_nestedMultiAttrAndBecomesPartClass(t *testing.T) {
	// setup: @Outer : head=ID body=({kind=ID value=ID}) ;
	arena := ast.NewArena()
	arena.AddTerminal(ast.TerminalDecl{Name: ident("ID")})

	refHead := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(refHead).Name = "ID"
	head := arena.NewExpr(ast.KindNameElement, ast.Pos{})
	arena.Expr(head).Name = "head"
	arena.Expr(head).Sub = []ast.ExprID{refHead}

	refK := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(refK).Name = "ID"
	k := arena.NewExpr(ast.KindNameElement, ast.Pos{})
	arena.Expr(k).Name = "kind"
	arena.Expr(k).Sub = []ast.ExprID{refK}

	refV := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(refV).Name = "ID"
	v := arena.NewExpr(ast.KindNameElement, ast.Pos{})
	arena.Expr(v).Name = "value"
	arena.Expr(v).Sub = []ast.ExprID{refV}

	inner := arena.NewExpr(ast.KindAnd, ast.Pos{})
	arena.Expr(inner).Sub = []ast.ExprID{k, v}

	innerNamed := arena.NewExpr(ast.KindNameElement, ast.Pos{})
	arena.Expr(innerNamed).Name = "body"
	arena.Expr(innerNamed).Sub = []ast.ExprID{inner}

	outer := arena.NewExpr(ast.KindAnd, ast.Pos{})
	arena.Expr(outer).Sub = []ast.ExprID{head, innerNamed}

	arena.AddNonterminal(ast.NonterminalDecl{Name: ident("Outer"), IsStart: true, Body: outer})

	an := New(arena)

	// execute
	err := an.Run()

	// assert
	assert.NoError(t, err)
	assert.True(t, an.Table.Conversions[inner].IsPartClass)
}
