package ast

import "github.com/dekarrin/syngen/internal/gentypes"

// TerminalID and NonterminalID are dense, stable handles assigned in
// declaration order during registration (spec §3 invariants: "Every
// symbol... has a dense index < total-symbol-count").
type TerminalID int
type NonterminalID int

// TerminalDecl is `token NAME [{T}];` or the custom string-literal form
// `token "" {T};` (spec §3, §6).
type TerminalDecl struct {
	ID ID

	Name Ident

	// TokenType is the optional typed-token annotation `{T}`. Nil means the
	// terminal carries no value (e.g. punctuation like '+').
	TokenType *TypeRef

	Index int
}

// NonterminalDecl is `[@]NAME [{T}] : expr ;` (spec §3, §6). The `@`
// prefix marks it as a start symbol.
type NonterminalDecl struct {
	ID ID

	Name Ident

	IsStart bool

	// ExplicitType is the optional `{T}` annotation naming the
	// nonterminal's production type explicitly.
	ExplicitType *TypeRef

	Body ExprID

	Index int
}

// TypeDecl is a bare `type NAME;` declaration.
type TypeDecl struct {
	Name Ident
}

// CustomTokenTypeDecl is `token "" {T};`, which designates T as the type
// of string-literal tokens appearing directly in productions (spec §4.1
// "register_custom_token_type"). At most one may appear in a grammar.
type CustomTokenTypeDecl struct {
	Type TypeRef
	Pos  Pos
}

// ID is a polymorphic handle distinguishing which of the three
// dense-indexed namespaces (terminal, nonterminal, neither) a declaration
// belongs to, mirroring spec §4.1's "symbol-name -> TerminalDecl |
// NonterminalDecl" namespace.
type ID struct {
	IsTerminal    bool
	IsNonterminal bool
	Terminal      TerminalID
	Nonterminal   NonterminalID
}

// NonterminalExtension is the per-nonterminal analysis slot of spec §3
// ("A NonterminalExtension holds..."). It lives in a parallel array in the
// Arena, indexed by NonterminalID, rather than embedded in NonterminalDecl,
// so that declaration data (read during parsing, immutable afterward) and
// analysis data (written incrementally pass by pass) don't share a struct.
type NonterminalExtension struct {
	// ExplicitType caches the resolved Type for NonterminalDecl.ExplicitType,
	// once name resolution has run.
	ExplicitType         gentypes.ID
	ExplicitTypeResolved bool

	// ClassType is the nonterminal's implicit class type, created lazily
	// the first time a Class-meaning AND under this nonterminal needs one.
	ClassType      gentypes.ID
	ClassTypeSet   bool

	GeneralType      gentypes.GeneralType
	GeneralTypeSet   bool

	ConcreteType    gentypes.ID
	ConcreteTypeSet bool

	IsVoid    bool
	IsVoidSet bool

	// Visiting marks a nonterminal as being computed during the property
	// engine's root phase, so that a recursive reference into it can be
	// detected and routed to the calculator's Recursion hook instead of
	// looping forever (spec §4.2 "Algorithm — root phase").
	Visiting bool
}

// ExprExtension is the per-expression analysis slot of spec §3 ("A
// SyntaxExpressionExtension holds..."), minus the Conversion and
// enclosing-AND-attribute-reference fields, which are owned by the
// internal/attrs package (see its doc comment) to avoid an import cycle
// between ast and attrs while keeping every property indexed by the same
// ExprID.
type ExprExtension struct {
	GeneralType    gentypes.GeneralType
	GeneralTypeSet bool

	ConcreteType    gentypes.ID
	ConcreteTypeSet bool

	// ExpectedType is pushed down from context (e.g. the cast target of an
	// enclosing Cast, or the common parent type requested when merging Or
	// alternatives) so concrete-type inference can resolve ambiguous casts
	// (spec §4.2 "concrete-type").
	ExpectedType    gentypes.ID
	ExpectedTypeSet bool

	IsVoid    bool
	IsVoidSet bool
}

// Arena owns every AST node, extension record, and (transitively, via
// gentypes.Table and later bnf.Grammar) every type, symbol, production, and
// LR state allocated during one generator run (spec §3 "Lifecycle"). It is
// passed from pass to pass by pointer; no node is ever copied or freed
// individually, and the arena's lifetime is exactly one run.
type Arena struct {
	Types *gentypes.Table

	Terminals    []TerminalDecl
	Nonterminals []NonterminalDecl

	NonterminalExt []NonterminalExtension

	exprs   []Expr
	ExprExt []ExprExtension

	TypeDecls       []TypeDecl
	CustomTokenType *CustomTokenTypeDecl
}

// NewArena creates an empty Arena with its type table pre-seeded (spec §3
// "the three synthetic primitives... are always pre-registered").
func NewArena() *Arena {
	return &Arena{Types: gentypes.NewTable()}
}

// NewExpr allocates a fresh Expr in the arena and returns its ExprID. The
// Sub/Const/CastType fields of the returned node are left at zero value for
// the caller to fill in; this mirrors the arena-builder pattern used
// throughout the pipeline's lowering passes, where a node's shape is fixed
// up in-place immediately after allocation.
func (a *Arena) NewExpr(kind ExprKind, pos Pos) ExprID {
	id := ExprID(len(a.exprs))
	a.exprs = append(a.exprs, Expr{ID: id, Kind: kind, Pos: pos, Separator: NoExpr})
	a.ExprExt = append(a.ExprExt, ExprExtension{})
	return id
}

// Expr returns a pointer to the node for id, so callers can both read and
// mutate it in place (e.g. to append children after allocation).
func (a *Arena) Expr(id ExprID) *Expr {
	return &a.exprs[id]
}

// NumExprs returns the number of expression nodes allocated so far, i.e.
// one past the highest valid ExprID — used by passes that allocate a
// parallel array sized to match (spec invariant 2, "Index density").
func (a *Arena) NumExprs() int {
	return len(a.exprs)
}

// AddTerminal registers decl's storage in the arena and assigns it a dense
// TerminalID equal to its declaration-order position, per spec §3's
// density invariant. It does not perform duplicate-name checking; that is
// internal/registry's job (spec §4.1).
func (a *Arena) AddTerminal(decl TerminalDecl) TerminalID {
	id := TerminalID(len(a.Terminals))
	decl.Index = int(id)
	decl.ID = ID{IsTerminal: true, Terminal: id}
	a.Terminals = append(a.Terminals, decl)
	return id
}

// AddNonterminal registers decl and allocates its extension-record slot.
func (a *Arena) AddNonterminal(decl NonterminalDecl) NonterminalID {
	id := NonterminalID(len(a.Nonterminals))
	decl.Index = int(id)
	decl.ID = ID{IsNonterminal: true, Nonterminal: id}
	a.Nonterminals = append(a.Nonterminals, decl)
	a.NonterminalExt = append(a.NonterminalExt, NonterminalExtension{})
	return id
}

// Nonterminal looks up a nonterminal declaration by name. The second
// return value is false if no such nonterminal has been declared.
func (a *Arena) Nonterminal(name string) (NonterminalDecl, bool) {
	for i := range a.Nonterminals {
		if a.Nonterminals[i].Name.Name == name {
			return a.Nonterminals[i], true
		}
	}
	return NonterminalDecl{}, false
}

// Terminal looks up a terminal declaration by name.
func (a *Arena) Terminal(name string) (TerminalDecl, bool) {
	for i := range a.Terminals {
		if a.Terminals[i].Name.Name == name {
			return a.Terminals[i], true
		}
	}
	return TerminalDecl{}, false
}
