// Package registry implements spec §4.1, the Name & Type Registry: three
// disjoint namespaces (symbol names, type names, and the type-declaration
// namespace) with duplicate detection spanning all three, plus the two
// resolution operations (resolve_symbol, resolve_type) every later pass
// relies on.
//
// The registry holds only name -> handle mappings; it does not own the
// underlying declarations or types, which live in the ast.Arena and
// gentypes.Table it was built against (spec §4.1 "The registry does not
// own the declarations; it holds handles into the arena").
package registry

import (
	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/gentypes"
)

// SymbolKind discriminates the result of resolve_symbol.
type SymbolKind int

const (
	SymbolTerminal SymbolKind = iota
	SymbolNonterminal
)

// SymbolRef is the handle returned by ResolveSymbol: either a terminal or a
// nonterminal, per spec §3's "(symbol-name -> TerminalDecl|NonterminalDecl)"
// namespace.
type SymbolRef struct {
	Kind        SymbolKind
	Terminal    ast.TerminalID
	Nonterminal ast.NonterminalID
}

// namespace identifies which of the three disjoint namespaces a name
// currently occupies, for the cross-namespace duplicate check spec §4.1
// requires ("Duplicate detection considers all three namespaces").
type namespace int

const (
	nsNone namespace = iota
	nsTerminal
	nsNonterminal
	nsType
)

// Registry is the mutable name/type table built up as declarations are
// registered, then queried by every later pass to resolve references.
type Registry struct {
	arena *ast.Arena

	names map[string]namespace
	terms map[string]ast.TerminalID
	nts   map[string]ast.NonterminalID
	types map[string]gentypes.ID // type-name -> Type, across primitives and classes

	typeDeclared map[string]bool // type-name -> has a TypeDecl/TerminalDecl/CustomTokenTypeDecl been seen

	customTokenType *gentypes.ID
}

// New creates a Registry bound to arena. The Registry creates types through
// arena.Types as declarations are registered.
func New(arena *ast.Arena) *Registry {
	return &Registry{
		arena:        arena,
		names:        map[string]namespace{},
		terms:        map[string]ast.TerminalID{},
		nts:          map[string]ast.NonterminalID{},
		types:        map[string]gentypes.ID{},
		typeDeclared: map[string]bool{},
	}
}

func (r *Registry) checkUnused(name ast.Ident) error {
	if _, ok := r.names[name.Name]; ok {
		return ebnferrors.New(ebnferrors.KindDuplicateName, name.Pos, "name %q is already declared", name.Name)
	}
	return nil
}

// RegisterTerminal implements spec §4.1's register_terminal: fails with
// DuplicateName if the name collides in any namespace; if decl carries a
// typed-token annotation, a primitive type of that name is created or
// fetched.
func (r *Registry) RegisterTerminal(decl ast.TerminalDecl) (ast.TerminalID, error) {
	if err := r.checkUnused(decl.Name); err != nil {
		return 0, err
	}

	id := r.arena.AddTerminal(decl)
	r.names[decl.Name.Name] = nsTerminal
	r.terms[decl.Name.Name] = id

	if decl.TokenType != nil {
		typ := r.arena.Types.PrimitiveUser(decl.TokenType.Name.Name)
		r.types[decl.TokenType.Name.Name] = typ.ID()
		r.typeDeclared[decl.TokenType.Name.Name] = true
	}

	return id, nil
}

// RegisterNonterminal implements register_nonterminal: a symmetric
// duplication check with no type side-effect.
func (r *Registry) RegisterNonterminal(decl ast.NonterminalDecl) (ast.NonterminalID, error) {
	if err := r.checkUnused(decl.Name); err != nil {
		return 0, err
	}

	id := r.arena.AddNonterminal(decl)
	r.names[decl.Name.Name] = nsNonterminal
	r.nts[decl.Name.Name] = id

	return id, nil
}

// RegisterTypeDecl implements register_type_decl: a symmetric duplication
// check over all namespaces, creating a primitive type bound to the name if
// not already present.
func (r *Registry) RegisterTypeDecl(decl ast.TypeDecl) error {
	if err := r.checkUnused(decl.Name); err != nil {
		return err
	}

	typ := r.arena.Types.PrimitiveUser(decl.Name.Name)
	r.names[decl.Name.Name] = nsType
	r.types[decl.Name.Name] = typ.ID()
	r.typeDeclared[decl.Name.Name] = true
	r.arena.TypeDecls = append(r.arena.TypeDecls, decl)

	return nil
}

// RegisterCustomTokenType implements register_custom_token_type: fails with
// DuplicateCustomTokenType if called twice; otherwise binds the single
// "string-literal type" slot (spec §3 "The string-literal-token type").
func (r *Registry) RegisterCustomTokenType(decl ast.CustomTokenTypeDecl) error {
	if r.customTokenType != nil {
		return ebnferrors.New(ebnferrors.KindDuplicateCustomTokenType, decl.Pos,
			"a custom string-literal token type has already been declared")
	}

	typ := r.arena.Types.PrimitiveUser(decl.Type.Name.Name)
	id := typ.ID()
	r.customTokenType = &id
	r.arena.CustomTokenType = &decl
	r.types[decl.Type.Name.Name] = id
	r.typeDeclared[decl.Type.Name.Name] = true

	return nil
}

// StringLiteralTokenType returns the type assigned to string-literal
// tokens: either the custom type bound by RegisterCustomTokenType, or the
// void type if none was declared (spec §3).
func (r *Registry) StringLiteralTokenType() gentypes.Type {
	if r.customTokenType != nil {
		return r.arena.Types.Get(*r.customTokenType)
	}
	return r.arena.Types.Void()
}

// ResolveSymbol implements resolve_symbol: fails with NameIsType if the
// name resolves to a type, or UnknownName otherwise.
func (r *Registry) ResolveSymbol(name ast.Ident) (SymbolRef, error) {
	switch r.names[name.Name] {
	case nsTerminal:
		return SymbolRef{Kind: SymbolTerminal, Terminal: r.terms[name.Name]}, nil
	case nsNonterminal:
		return SymbolRef{Kind: SymbolNonterminal, Nonterminal: r.nts[name.Name]}, nil
	case nsType:
		return SymbolRef{}, ebnferrors.New(ebnferrors.KindNameIsType, name.Pos,
			"%q names a type, not a terminal or nonterminal", name.Name)
	default:
		return SymbolRef{}, ebnferrors.New(ebnferrors.KindUnknownName, name.Pos,
			"unknown name %q", name.Name)
	}
}

// ResolveType implements resolve_type: returns an existing primitive type,
// an implicit nonterminal class type (created lazily), or an implicit bare
// class type. Fails with TokenAsType if the name is a terminal.
func (r *Registry) ResolveType(name ast.Ident) (gentypes.Type, error) {
	switch r.names[name.Name] {
	case nsTerminal:
		return gentypes.Type{}, ebnferrors.New(ebnferrors.KindTokenAsType, name.Pos,
			"%q names a token, which cannot be used as a type", name.Name)
	case nsType:
		return r.arena.Types.Get(r.types[name.Name]), nil
	case nsNonterminal:
		// An un-declared type whose name matches a nonterminal resolves to
		// that nonterminal's implicit class type.
		return r.arena.Types.ClassForNonterminal(name.Name), nil
	default:
		// Not declared anywhere yet: treat as an implicit bare class type,
		// per spec §4.1 ("an implicit bare class type").
		typ := r.arena.Types.ClassByName(name.Name)
		r.names[name.Name] = nsType
		r.types[name.Name] = typ.ID()
		return typ, nil
	}
}
