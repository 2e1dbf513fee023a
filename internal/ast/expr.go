package ast

import (
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/gentypes"
)

// Pos is re-exported from ebnferrors so that ast callers don't need to
// import that package just to read a node's source position.
type Pos = ebnferrors.Pos

// ExprID is a dense, stable handle to an Expr stored in an Arena. It is the
// index a pass uses to look up that node's extension-record slot in any of
// the parallel arrays (props, attrs) keyed by ExprID, per the Design Notes
// §9 recommendation to replace cyclic per-node pointers with stable ids.
type ExprID int

// NoExpr is the sentinel ExprID meaning "no such child", used for the
// optional separator of a loop body and the optional cast-type annotation.
const NoExpr ExprID = -1

// ExprKind discriminates the SyntaxExpression union of spec §3.
type ExprKind int

const (
	KindEmpty ExprKind = iota
	KindOr
	KindAnd
	KindNameElement // name=sub
	KindThisElement // this=sub
	KindNameRef     // reference to a terminal or nonterminal by name
	KindStringLiteral
	KindCast // {T}(sub)
	KindZeroOne
	KindZeroMany
	KindOneMany
	KindConst // <const-expr>
)

func (k ExprKind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindOr:
		return "Or"
	case KindAnd:
		return "And"
	case KindNameElement:
		return "NameElement"
	case KindThisElement:
		return "ThisElement"
	case KindNameRef:
		return "NameRef"
	case KindStringLiteral:
		return "StringLiteral"
	case KindCast:
		return "Cast"
	case KindZeroOne:
		return "ZeroOne"
	case KindZeroMany:
		return "ZeroMany"
	case KindOneMany:
		return "OneMany"
	case KindConst:
		return "Const"
	default:
		return "Unknown"
	}
}

// Expr is a single node of the grammar's syntax-expression tree (spec §3
// "SyntaxExpression"). Rather than ten variant structs behind an interface,
// the Design Notes §9 guidance ("use a single sum-type per family; replace
// visitor double-dispatch with a match expression") is taken literally: one
// struct, a Kind tag, and the union of fields any variant needs. Passes
// switch on Kind instead of double-dispatching through a visitor.
//
// Field usage by Kind:
//
//   - KindEmpty: no other fields.
//   - KindOr: Sub holds the alternatives. CastType may name an explicit
//     type annotation on the parenthesized group, e.g. "{T}(a | b)".
//   - KindAnd: Sub holds the sequence elements in order. CastType may name
//     an explicit class type, e.g. "{Name}(kind=ID name=ID)".
//   - KindNameElement: Name is the bound attribute name; Sub[0] is the
//     bound sub-expression.
//   - KindThisElement: Sub[0] is the bound sub-expression.
//   - KindNameRef: Name is the referenced terminal/nonterminal name.
//   - KindStringLiteral: Name is the literal's content (without quotes).
//   - KindCast: CastType names the target type; Sub[0] is the source
//     expression.
//   - KindZeroOne: Sub[0] is the optional sub-expression.
//   - KindZeroMany, KindOneMany: Sub[0] is the loop body; Separator is
//     NoExpr unless the loop has a "(body : sep)*" / "(body : sep)+" form.
//   - KindConst: Const holds the embedded literal or native-call value.
type Expr struct {
	ID       ExprID
	Kind     ExprKind
	Pos      Pos
	Sub      []ExprID
	Separator ExprID
	Name     string
	CastType *TypeRef
	Const    *ConstExpr
}

// TypeRef is a reference to a type by name, as it appears in a cast
// annotation, an explicit nonterminal type, or a terminal's typed-token
// annotation.
type TypeRef struct {
	Name Ident
}

// ConstKind discriminates the embedded-literal union (spec §6 "<const>
// embeddings for integer/string/boolean/native-call literals").
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstStr
	ConstNative
)

// ConstExpr is the value carried by a KindConst node.
type ConstExpr struct {
	Kind    ConstKind
	IntVal  int
	BoolVal bool
	StrVal  string
	Native  *NativeExpr

	// Type is filled in once the const's primitive type is known: one of
	// the three synthetic const_int/const_bool/const_str types for
	// literals, or a user-declared type for a native call (spec §9 "Native
	// constant expressions... contributes no semantics to the generator
	// except type-tagging").
	Type gentypes.ID
}

// NativeRefKind discriminates a member-access step in a NativeExpr's
// reference chain.
type NativeRefKind int

const (
	NativeDot   NativeRefKind = iota // .field
	NativeArrow                      // ->field
)

// NativeRef is one `.name` or `->name` step of a native expression's
// reference chain.
type NativeRef struct {
	Kind NativeRefKind
	Name string
}

// NativeExpr is a passthrough embedding of a target-language expression
// (spec §9 "Native constant expressions"): a qualifier list (e.g.
// `Namespace::func`), a base name, a reference chain of `.`/`->` accesses,
// and an optional argument list of further const expressions. The
// generator does not interpret this beyond type-tagging it; it is
// reproduced verbatim for the emitter.
type NativeExpr struct {
	Qualifiers []string
	Base       string
	Chain      []NativeRef
	Args       []ExprID // each element must itself be a KindConst node
}
