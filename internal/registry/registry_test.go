package registry

import (
	"testing"

	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/stretchr/testify/assert"
)

func ident(name string) ast.Ident {
	return ast.Ident{Name: name}
}

func Test_RegisterTerminal_duplicateAcrossNamespaces(t *testing.T) {
	// setup
	arena := ast.NewArena()
	reg := New(arena)

	_, err := reg.RegisterTerminal(ast.TerminalDecl{Name: ident("ID")})
	assert.NoError(t, err)

	// execute
	_, err = reg.RegisterNonterminal(ast.NonterminalDecl{Name: ident("ID")})

	// assert
	assert.Error(t, err)
	var ebErr *ebnferrors.Error
	assert.ErrorAs(t, err, &ebErr)
	assert.Equal(t, ebnferrors.KindDuplicateName, ebErr.Kind)
}

func Test_RegisterTerminal_withTokenType_createsPrimitive(t *testing.T) {
	// setup
	arena := ast.NewArena()
	reg := New(arena)

	// execute
	_, err := reg.RegisterTerminal(ast.TerminalDecl{
		Name:      ident("NUMBER"),
		TokenType: &ast.TypeRef{Name: ident("int")},
	})
	assert.NoError(t, err)

	typ, err := reg.ResolveType(ident("int"))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "int", typ.Name)
}

func Test_RegisterCustomTokenType_onlyOnce(t *testing.T) {
	// setup
	arena := ast.NewArena()
	reg := New(arena)

	assert.NoError(t, reg.RegisterCustomTokenType(ast.CustomTokenTypeDecl{Type: ast.TypeRef{Name: ident("str")}}))

	// execute
	err := reg.RegisterCustomTokenType(ast.CustomTokenTypeDecl{Type: ast.TypeRef{Name: ident("str")}})

	// assert
	assert.Error(t, err)
	var ebErr *ebnferrors.Error
	assert.ErrorAs(t, err, &ebErr)
	assert.Equal(t, ebnferrors.KindDuplicateCustomTokenType, ebErr.Kind)
}

func Test_ResolveSymbol(t *testing.T) {
	// setup
	arena := ast.NewArena()
	reg := New(arena)
	_, err := reg.RegisterTerminal(ast.TerminalDecl{Name: ident("ID")})
	assert.NoError(t, err)
	_, err = reg.RegisterNonterminal(ast.NonterminalDecl{Name: ident("Expr")})
	assert.NoError(t, err)
	assert.NoError(t, reg.RegisterTypeDecl(ast.TypeDecl{Name: ident("Name")}))

	// execute + assert: terminal
	sym, err := reg.ResolveSymbol(ident("ID"))
	assert.NoError(t, err)
	assert.Equal(t, SymbolTerminal, sym.Kind)

	// execute + assert: nonterminal
	sym, err = reg.ResolveSymbol(ident("Expr"))
	assert.NoError(t, err)
	assert.Equal(t, SymbolNonterminal, sym.Kind)

	// execute + assert: a type name is not a symbol
	_, err = reg.ResolveSymbol(ident("Name"))
	assert.Error(t, err)
	var ebErr *ebnferrors.Error
	assert.ErrorAs(t, err, &ebErr)
	assert.Equal(t, ebnferrors.KindNameIsType, ebErr.Kind)

	// execute + assert: unknown name
	_, err = reg.ResolveSymbol(ident("Bogus"))
	assert.Error(t, err)
	assert.ErrorAs(t, err, &ebErr)
	assert.Equal(t, ebnferrors.KindUnknownName, ebErr.Kind)
}

func Test_ResolveType_tokenAsTypeFails(t *testing.T) {
	// setup
	arena := ast.NewArena()
	reg := New(arena)
	_, err := reg.RegisterTerminal(ast.TerminalDecl{Name: ident("ID")})
	assert.NoError(t, err)

	// execute
	_, err = reg.ResolveType(ident("ID"))

	// assert
	assert.Error(t, err)
	var ebErr *ebnferrors.Error
	assert.ErrorAs(t, err, &ebErr)
	assert.Equal(t, ebnferrors.KindTokenAsType, ebErr.Kind)
}

func Test_ResolveType_implicitBareClass(t *testing.T) {
	// setup
	arena := ast.NewArena()
	reg := New(arena)

	// execute
	typ, err := reg.ResolveType(ident("Name"))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "Name", typ.Name)
}

func Test_ResolveType_implicitNonterminalClass(t *testing.T) {
	// setup
	arena := ast.NewArena()
	reg := New(arena)
	_, err := reg.RegisterNonterminal(ast.NonterminalDecl{Name: ident("Expr")})
	assert.NoError(t, err)

	// execute
	typ, err := reg.ResolveType(ident("Expr"))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "Expr", typ.NonterminalName)
}
