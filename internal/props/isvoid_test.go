package props

import (
	"testing"

	"github.com/dekarrin/syngen/internal/ast"
	"github.com/stretchr/testify/assert"
)

// buildBareTerminalGrammar builds: @Start : ID ; with ID carrying no typed
// token, so Start's body is a single void NameRef.
func buildBareTerminalGrammar() *ast.Arena {
	arena := ast.NewArena()
	arena.AddTerminal(ast.TerminalDecl{Name: ast.Ident{Name: "ID"}})

	ref := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(ref).Name = "ID"

	arena.AddNonterminal(ast.NonterminalDecl{Name: ast.Ident{Name: "Start"}, IsStart: true, Body: ref})
	return arena
}

func Test_IsVoid_bareTerminalIsVoid(t *testing.T) {
	// setup
	arena := buildBareTerminalGrammar()
	engine := New[bool](arena, IsVoidAccessor{Arena: arena}, IsVoidCalculator{})

	// execute
	err := engine.Run()

	// assert
	assert.NoError(t, err)
	v, ok := IsVoidAccessor{Arena: arena}.GetNT(0)
	assert.True(t, ok)
	assert.True(t, v)
}

func Test_IsVoid_nameElementOverVoidIsError(t *testing.T) {
	// setup
	arena := ast.NewArena()
	arena.AddTerminal(ast.TerminalDecl{Name: ast.Ident{Name: "ID"}})

	ref := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(ref).Name = "ID"

	named := arena.NewExpr(ast.KindNameElement, ast.Pos{})
	arena.Expr(named).Name = "kind"
	arena.Expr(named).Sub = []ast.ExprID{ref}

	arena.AddNonterminal(ast.NonterminalDecl{Name: ast.Ident{Name: "Start"}, IsStart: true, Body: named})

	engine := New[bool](arena, IsVoidAccessor{Arena: arena}, IsVoidCalculator{})

	// execute
	err := engine.Run()

	// assert
	assert.Error(t, err)
}

func Test_IsVoid_typedTerminalIsNotVoid(t *testing.T) {
	// setup
	arena := ast.NewArena()
	arena.AddTerminal(ast.TerminalDecl{
		Name:      ast.Ident{Name: "NUMBER"},
		TokenType: &ast.TypeRef{Name: ast.Ident{Name: "int"}},
	})

	ref := arena.NewExpr(ast.KindNameRef, ast.Pos{})
	arena.Expr(ref).Name = "NUMBER"

	arena.AddNonterminal(ast.NonterminalDecl{Name: ast.Ident{Name: "Start"}, IsStart: true, Body: ref})

	engine := New[bool](arena, IsVoidAccessor{Arena: arena}, IsVoidCalculator{})

	// execute
	err := engine.Run()

	// assert
	assert.NoError(t, err)
	v, ok := IsVoidAccessor{Arena: arena}.GetNT(0)
	assert.True(t, ok)
	assert.False(t, v)
}
