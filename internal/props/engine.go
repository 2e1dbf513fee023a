// Package props is the generic two-phase property-propagation engine of
// spec §4.2: a single root-phase/deep-phase fixed-point calculator reused
// by three concrete passes (is-void, general-type, concrete-type), each of
// which differs only in how it folds the shapes of the expression tree
// into a value.
//
// Grounded on the structure of the teacher's translation.SDD attribute
// binding engine (itself a propagation engine, but over parse trees rather
// than over the grammar's own AST) and on
// original_source/syn/core/ebnf_bld_property.h, which names this same
// root-phase/deep-phase split.
package props

import (
	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/attrs"
	"github.com/dekarrin/syngen/internal/gentypes"
)

// Accessor is spec §4.2's PropertyAccessor: get/set the property on a
// nonterminal, and set it on an expression node. There is no GetExpr
// because, per spec, only the nonterminal-level value is ever read back
// during computation (an expression's computed value is only ever written,
// in the deep phase).
type Accessor[V any] interface {
	GetNT(id ast.NonterminalID) (V, bool)
	SetNT(id ast.NonterminalID, v V)
	SetExpr(id ast.ExprID, v V)
}

// Calculator is spec §4.2's PropertyCalculator: one method per AST shape
// the engine can fold over. Each concrete pass (is-void, general-type,
// concrete-type) is a Calculator[V] for its own V. Positions are passed
// explicitly to each method rather than tracked via a field the engine
// mutates out-of-band, so that a Calculator stays a plain value with no
// hidden state to get out of sync with the node currently being visited.
type Calculator[V any] interface {
	// Or merges the values of the alternatives of an Or expression.
	Or(pos ast.Pos, alts []V) (V, error)

	// PrimitiveType is the value of a reference to (or cast onto) a
	// primitive type.
	PrimitiveType(t gentypes.Type) V

	// NonterminalClassType is the value of an AND that becomes a Class
	// using its owning nonterminal's implicit class type.
	NonterminalClassType(nt ast.NonterminalID) V

	// NameClassType is the value of an AND that becomes a Class using an
	// explicit or bare-referenced class type.
	NameClassType(t gentypes.Type) V

	// VoidType is the value of the Empty expression or a Void-meaning AND.
	VoidType() V

	// NameElement is the value of a name= or this= binding around sub.
	NameElement(pos ast.Pos, attrName string, sub V) (V, error)

	// Loop is the value of a ZeroOne/ZeroMany/OneMany wrapping body.
	Loop(body V) V

	// Const is the value of an embedded <const> literal.
	Const(c *ast.ConstExpr) V

	// AndAsClass is the value of a Class-meaning AND with no explicit
	// type, given the values of its elements in order.
	AndAsClass(nt ast.NonterminalID, elems []V) V

	// AndWithExplicitType is the value of an AND carrying an explicit
	// `{T}` cast, given the values of its elements.
	AndWithExplicitType(pos ast.Pos, t gentypes.Type, elems []V) (V, error)

	// Cast is the value of a {T}(sub) cast expression.
	Cast(pos ast.Pos, target gentypes.Type, source V) (V, error)

	// Recursion is invoked in the root phase when computing nonterminal nt
	// re-enters nt itself before nt's value has been stored; the
	// calculator decides the defaulted value used to break the cycle.
	Recursion(nt ast.NonterminalID) V
}

// Engine runs one property pass to a fixed point over every nonterminal
// and expression in arena, per spec §4.2's root-phase/deep-phase
// algorithm.
type Engine[V any] struct {
	Arena *ast.Arena
	Acc   Accessor[V]
	Calc  Calculator[V]

	// Attrs is optional. When set (as the pipeline facade does, once
	// verify_attributes has run), an AND node's own AndMeaning decides its
	// shape: Void yields VoidType(), This yields the value already folded
	// for its this= element, and only a Class-meaning AND reaches
	// AndAsClass. When nil, every implicit AND is folded via AndAsClass
	// (the behavior every pre-existing unit test in this package and in
	// internal/convert's test suite was written against), which is exact
	// for a Class-meaning AND and merely an approximation for Void/This
	// ones — acceptable for package-local tests that never nest such an
	// AND inside an Or against a differently-typed alternative.
	Attrs *attrs.Table

	visiting []bool
}

// New creates an Engine for the given arena, accessor, and calculator,
// with Attrs left nil (see the Attrs field doc). Callers driving the full
// pipeline (package syngen) set Attrs after construction, once
// attrs.Analyzer.Run has populated it.
func New[V any](arena *ast.Arena, acc Accessor[V], calc Calculator[V]) *Engine[V] {
	return &Engine[V]{Arena: arena, Acc: acc, Calc: calc}
}

// Run executes the root phase followed by the deep phase.
func (e *Engine[V]) Run() error {
	e.visiting = make([]bool, len(e.Arena.Nonterminals))

	// Root phase: for each declared nonterminal in declaration order, skip
	// if already set; otherwise mark visiting, compute via the expression
	// visitor, then store.
	for i := range e.Arena.Nonterminals {
		nt := ast.NonterminalID(i)
		if _, ok := e.Acc.GetNT(nt); ok {
			continue
		}
		if err := e.computeNT(nt); err != nil {
			return err
		}
	}

	// Deep phase: walk every expression subtree and write each node's
	// property; nonterminal references now simply read the precomputed
	// value.
	for i := range e.Arena.Nonterminals {
		nt := ast.NonterminalID(i)
		if _, err := e.evalDeep(nt, e.Arena.Nonterminals[i].Body); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine[V]) computeNT(nt ast.NonterminalID) error {
	e.visiting[nt] = true
	v, err := e.evalRoot(nt, e.Arena.Nonterminals[nt].Body)
	e.visiting[nt] = false
	if err != nil {
		return err
	}
	e.Acc.SetNT(nt, v)
	return nil
}

// evalRoot computes the value of expr without writing any expression-level
// results, recursing into not-yet-computed nonterminals as needed and
// invoking Calc.Recursion on a cycle. owner is the nonterminal whose body
// is being walked, threaded through (rather than recovered by searching
// the arena) so Class-meaning ANDs know which nonterminal's implicit class
// type to synthesize against.
func (e *Engine[V]) evalRoot(owner ast.NonterminalID, id ast.ExprID) (V, error) {
	expr := e.Arena.Expr(id)

	switch expr.Kind {
	case ast.KindNameRef:
		return e.evalNameRef(expr)
	default:
		return e.evalShape(owner, expr, e.evalRoot)
	}
}

// evalDeep computes expr's value and writes it via Acc.SetExpr for every
// node, reading (never recursing into) nonterminal references.
func (e *Engine[V]) evalDeep(owner ast.NonterminalID, id ast.ExprID) (V, error) {
	expr := e.Arena.Expr(id)

	var v V
	var err error
	if expr.Kind == ast.KindNameRef {
		v, err = e.evalNameRefDeep(expr)
	} else {
		v, err = e.evalShape(owner, expr, e.evalDeep)
	}
	if err != nil {
		return v, err
	}
	e.Acc.SetExpr(id, v)
	return v, nil
}

func (e *Engine[V]) evalNameRef(expr *ast.Expr) (V, error) {
	nt, ok := e.Arena.Nonterminal(expr.Name)
	if !ok {
		// A terminal reference: its value comes from its typed-token
		// annotation if any, else void.
		return e.terminalRefValue(expr), nil
	}

	id := ast.NonterminalID(nt.Index)
	if v, ok := e.Acc.GetNT(id); ok {
		return v, nil
	}
	if e.visiting[id] {
		return e.Calc.Recursion(id), nil
	}
	if err := e.computeNT(id); err != nil {
		var zero V
		return zero, err
	}
	v, _ := e.Acc.GetNT(id)
	return v, nil
}

func (e *Engine[V]) evalNameRefDeep(expr *ast.Expr) (V, error) {
	nt, ok := e.Arena.Nonterminal(expr.Name)
	if !ok {
		return e.terminalRefValue(expr), nil
	}
	v, _ := e.Acc.GetNT(ast.NonterminalID(nt.Index))
	return v, nil
}

func (e *Engine[V]) terminalRefValue(expr *ast.Expr) V {
	term, ok := e.Arena.Terminal(expr.Name)
	if !ok || term.TokenType == nil {
		return e.Calc.VoidType()
	}
	return e.Calc.PrimitiveType(e.Arena.Types.PrimitiveUser(term.TokenType.Name.Name))
}

// evalShape dispatches every non-NameRef expression shape to the matching
// Calculator method, recursing via eval (either evalRoot or evalDeep,
// supplied by the caller so that root-phase recursion never writes
// per-node results). owner is threaded straight through to recursive eval
// calls and handed to AndAsClass directly, rather than recovered after the
// fact by searching the arena for whichever nonterminal's body contains
// this node.
func (e *Engine[V]) evalShape(owner ast.NonterminalID, expr *ast.Expr, eval func(ast.NonterminalID, ast.ExprID) (V, error)) (V, error) {
	switch expr.Kind {
	case ast.KindEmpty:
		return e.Calc.VoidType(), nil

	case ast.KindOr:
		alts := make([]V, len(expr.Sub))
		for i, sub := range expr.Sub {
			v, err := eval(owner, sub)
			if err != nil {
				var zero V
				return zero, err
			}
			alts[i] = v
		}
		return e.Calc.Or(expr.Pos, alts)

	case ast.KindAnd:
		elems := make([]V, len(expr.Sub))
		for i, sub := range expr.Sub {
			v, err := eval(owner, sub)
			if err != nil {
				var zero V
				return zero, err
			}
			elems[i] = v
		}
		if expr.CastType != nil {
			typ := e.resolvedType(expr.CastType)
			return e.Calc.AndWithExplicitType(expr.Pos, typ, elems)
		}
		if e.Attrs != nil {
			switch e.Attrs.Meanings[expr.ID] {
			case attrs.MeaningVoid:
				return e.Calc.VoidType(), nil
			case attrs.MeaningThis:
				for i, sub := range expr.Sub {
					if e.Attrs.Conversions[sub].Kind == attrs.ConvThis {
						return elems[i], nil
					}
				}
				var zero V
				return zero, nil
			}
		}
		return e.Calc.AndAsClass(owner, elems), nil

	case ast.KindNameElement:
		sub, err := eval(owner, expr.Sub[0])
		if err != nil {
			var zero V
			return zero, err
		}
		return e.Calc.NameElement(expr.Pos, expr.Name, sub)

	case ast.KindThisElement:
		return eval(owner, expr.Sub[0])

	case ast.KindStringLiteral:
		return e.Calc.PrimitiveType(e.stringLiteralType()), nil

	case ast.KindCast:
		src, err := eval(owner, expr.Sub[0])
		if err != nil {
			var zero V
			return zero, err
		}
		typ := e.resolvedType(expr.CastType)
		return e.Calc.Cast(expr.Pos, typ, src)

	case ast.KindZeroOne, ast.KindZeroMany, ast.KindOneMany:
		body, err := eval(owner, expr.Sub[0])
		if err != nil {
			var zero V
			return zero, err
		}
		return e.Calc.Loop(body), nil

	case ast.KindConst:
		return e.Calc.Const(expr.Const), nil

	default:
		var zero V
		return zero, nil
	}
}

// resolvedType is a seam the concrete passes override behavior through by
// supplying their own gentypes lookups; the generic engine only needs to
// turn a TypeRef into a gentypes.Type, which for any already-declared type
// name is a pure lookup with no propagation concerns, so it is safe to do
// directly against the arena's type table here rather than thread a
// registry through the engine.
func (e *Engine[V]) resolvedType(ref *ast.TypeRef) gentypes.Type {
	return e.arenaLookupType(ref.Name.Name)
}

func (e *Engine[V]) arenaLookupType(name string) gentypes.Type {
	if nt, ok := e.Arena.Nonterminal(name); ok {
		return e.Arena.Types.ClassForNonterminal(nt.Name.Name)
	}
	return e.Arena.Types.ClassByName(name)
}

func (e *Engine[V]) stringLiteralType() gentypes.Type {
	// The string-literal-token type is void unless a custom token type was
	// registered; callers that need the exact registry-backed value
	// (spec §4.1) set it on the arena at conversion time via
	// Arena.CustomTokenType.
	if e.Arena.CustomTokenType != nil {
		return e.Arena.Types.PrimitiveUser(e.Arena.CustomTokenType.Type.Name.Name)
	}
	return e.Arena.Types.Void()
}
