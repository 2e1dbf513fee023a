package props

import (
	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/gentypes"
)

// GeneralTypeAccessor stores the general-type category on the arena's
// extension records.
type GeneralTypeAccessor struct {
	Arena *ast.Arena
}

func (a GeneralTypeAccessor) GetNT(id ast.NonterminalID) (gentypes.GeneralType, bool) {
	ext := a.Arena.NonterminalExt[id]
	return ext.GeneralType, ext.GeneralTypeSet
}

func (a GeneralTypeAccessor) SetNT(id ast.NonterminalID, v gentypes.GeneralType) {
	a.Arena.NonterminalExt[id].GeneralType = v
	a.Arena.NonterminalExt[id].GeneralTypeSet = true
}

func (a GeneralTypeAccessor) SetExpr(id ast.ExprID, v gentypes.GeneralType) {
	a.Arena.ExprExt[id].GeneralType = v
	a.Arena.ExprExt[id].GeneralTypeSet = true
}

// GeneralTypeCalculator implements Calculator[gentypes.GeneralType], spec
// §4.2's general-type pass: a coarsened category computed ahead of full
// concrete-type inference, used to reject cross-category casts before the
// more expensive concrete pass runs.
type GeneralTypeCalculator struct{}

// Or merges two alternatives: a void alternative yields to a non-void one
// (an Or where one branch is unreachable/empty still has the other
// branch's type); two non-void alternatives must agree in general
// category, else IncompatibleAltTypes.
func (GeneralTypeCalculator) Or(pos ast.Pos, alts []gentypes.GeneralType) (gentypes.GeneralType, error) {
	result := gentypes.GeneralVoid
	seen := false
	for _, a := range alts {
		if a == gentypes.GeneralVoid {
			continue
		}
		if !seen {
			result = a
			seen = true
			continue
		}
		if a != result {
			return gentypes.GeneralVoid, ebnferrors.New(ebnferrors.KindIncompatibleAltTypes, pos,
				"incompatible alternative types: %s and %s", result, a)
		}
	}
	return result, nil
}

func (GeneralTypeCalculator) PrimitiveType(t gentypes.Type) gentypes.GeneralType {
	return t.General()
}

func (GeneralTypeCalculator) NonterminalClassType(nt ast.NonterminalID) gentypes.GeneralType {
	return gentypes.GeneralClass
}

func (GeneralTypeCalculator) NameClassType(t gentypes.Type) gentypes.GeneralType {
	return gentypes.GeneralClass
}

func (GeneralTypeCalculator) VoidType() gentypes.GeneralType { return gentypes.GeneralVoid }

func (GeneralTypeCalculator) NameElement(pos ast.Pos, attrName string, sub gentypes.GeneralType) (gentypes.GeneralType, error) {
	return sub, nil
}

func (GeneralTypeCalculator) Loop(body gentypes.GeneralType) gentypes.GeneralType {
	return gentypes.GeneralArray
}

func (GeneralTypeCalculator) Const(c *ast.ConstExpr) gentypes.GeneralType {
	return gentypes.GeneralPrimitive
}

func (GeneralTypeCalculator) AndAsClass(nt ast.NonterminalID, elems []gentypes.GeneralType) gentypes.GeneralType {
	return gentypes.GeneralClass
}

func (GeneralTypeCalculator) AndWithExplicitType(pos ast.Pos, t gentypes.Type, elems []gentypes.GeneralType) (gentypes.GeneralType, error) {
	return t.General(), nil
}

// Cast rejects any cast that crosses general categories (Class<->Primitive,
// etc.), deferring everything else to the concrete-type pass.
func (GeneralTypeCalculator) Cast(pos ast.Pos, target gentypes.Type, source gentypes.GeneralType) (gentypes.GeneralType, error) {
	targetGeneral := target.General()
	if source != gentypes.GeneralVoid && targetGeneral != gentypes.GeneralVoid && source != targetGeneral {
		return gentypes.GeneralVoid, ebnferrors.New(ebnferrors.KindIncompatibleCast, pos,
			"cannot cast %s expression to %s type %q", source, targetGeneral, target.Name)
	}
	return targetGeneral, nil
}

func (GeneralTypeCalculator) Recursion(nt ast.NonterminalID) gentypes.GeneralType {
	return gentypes.GeneralClass
}
