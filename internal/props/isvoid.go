package props

import (
	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/gentypes"
)

// IsVoidAccessor stores the is-void flag directly on the arena's extension
// records, per spec §3's NonterminalExtension/SyntaxExpressionExtension
// "is-void flag" fields.
type IsVoidAccessor struct {
	Arena *ast.Arena
}

func (a IsVoidAccessor) GetNT(id ast.NonterminalID) (bool, bool) {
	ext := a.Arena.NonterminalExt[id]
	return ext.IsVoid, ext.IsVoidSet
}

func (a IsVoidAccessor) SetNT(id ast.NonterminalID, v bool) {
	a.Arena.NonterminalExt[id].IsVoid = v
	a.Arena.NonterminalExt[id].IsVoidSet = true
}

func (a IsVoidAccessor) SetExpr(id ast.ExprID, v bool) {
	a.Arena.ExprExt[id].IsVoid = v
	a.Arena.ExprExt[id].IsVoidSet = true
}

// IsVoidCalculator implements Calculator[bool], spec §4.2's is-void pass:
// void propagates upward; a=E with void E is a VoidAssignedToAttribute
// error; a loop retains its body's voidness; casting a void source, or
// casting to a void target, is an error.
type IsVoidCalculator struct{}

func (IsVoidCalculator) Or(pos ast.Pos, alts []bool) (bool, error) {
	for _, a := range alts {
		if !a {
			return false, nil
		}
	}
	return true, nil
}

func (IsVoidCalculator) PrimitiveType(t gentypes.Type) bool {
	return t.General() == gentypes.GeneralVoid
}

func (IsVoidCalculator) NonterminalClassType(nt ast.NonterminalID) bool { return false }

func (IsVoidCalculator) NameClassType(t gentypes.Type) bool { return false }

func (IsVoidCalculator) VoidType() bool { return true }

func (IsVoidCalculator) NameElement(pos ast.Pos, attrName string, sub bool) (bool, error) {
	if sub {
		return false, ebnferrors.New(ebnferrors.KindVoidAssignedToAttribute, pos,
			"cannot assign a void expression to attribute %q", attrName)
	}
	return false, nil
}

func (IsVoidCalculator) Loop(body bool) bool { return body }

func (IsVoidCalculator) Const(c *ast.ConstExpr) bool { return false }

func (IsVoidCalculator) AndAsClass(nt ast.NonterminalID, elems []bool) bool { return false }

func (IsVoidCalculator) AndWithExplicitType(pos ast.Pos, t gentypes.Type, elems []bool) (bool, error) {
	return false, nil
}

func (IsVoidCalculator) Cast(pos ast.Pos, target gentypes.Type, source bool) (bool, error) {
	if target.General() == gentypes.GeneralVoid {
		return false, ebnferrors.New(ebnferrors.KindVoidCastTarget, pos,
			"cannot cast to void type %q", target.Name)
	}
	if source {
		return false, ebnferrors.New(ebnferrors.KindVoidCastSource, pos,
			"cannot cast a void expression to %q", target.Name)
	}
	return false, nil
}

func (IsVoidCalculator) Recursion(nt ast.NonterminalID) bool { return false }
