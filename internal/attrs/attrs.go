// Package attrs implements spec §4.3, the Attribute-Scope Analyzer: for
// every AND expression it decides the node's AndMeaning (Void/This/Class)
// and installs a Conversion strategy on every contained expression, ready
// for internal/convert to lower in §4.4.
//
// Grounded on original_source/syn/core/ebnf_bld_attrs.cpp for the exact
// error conditions and on original_source/syn/core/conversion.h /
// conversion_builder.h for the Conversion family's shape.
package attrs

import (
	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/gentypes"
)

// AndMeaning is the fixed classification of an AND expression, spec §3's
// "exactly one of {no attribute binding, single this= binding, one or more
// name= bindings}".
type AndMeaning int

const (
	MeaningVoid AndMeaning = iota
	MeaningThis
	MeaningClass
)

func (m AndMeaning) String() string {
	switch m {
	case MeaningVoid:
		return "Void"
	case MeaningThis:
		return "This"
	case MeaningClass:
		return "Class"
	default:
		return "Unknown"
	}
}

// ConversionKind discriminates the Conversion union, one variant per
// expression shape the converter (§4.4) needs a distinct lowering strategy
// for (spec §4.3 "Concrete variants mirror the expression shapes").
type ConversionKind int

const (
	ConvEmpty ConversionKind = iota
	ConvConst
	ConvCast
	ConvThis
	ConvName
	ConvString
	ConvZeroOne
	ConvZeroMany
	ConvOneMany
	ConvOr
	ConvAnd
)

// Conversion is a single flattened sum type over the trait-object family
// spec §4.3 describes (to_nt/to_pr/to_sym), following the same
// single-sum-type-per-family pattern as ast.Expr: one Kind tag and the
// union of fields any variant needs, rather than ten implementations of a
// Conversion interface.
type Conversion struct {
	Kind ConversionKind

	// Meaning is set for ConvAnd: which of Void/This/Class this AND
	// resolved to.
	Meaning AndMeaning

	// AttrName is set for ConvName: the bound attribute name.
	AttrName string

	// ClassType is the class type an And/PartClass conversion produces.
	// For a Class-meaning AND with no explicit type, this is the owning
	// nonterminal's implicit class type; for a nested AND flattened into
	// its parent, this is a freshly-tagged PartClassType (spec §4.3
	// "Part-class tags are freshly numbered from a global counter").
	ClassType gentypes.ID

	// IsPartClass marks a nested AND (itself with more than one attribute)
	// that is flattened into its enclosing class rather than becoming a
	// standalone Class-meaning AND of its own (spec §4.3 "child sub-ANDs
	// with more than one attribute become part-classes").
	IsPartClass bool
}

// Table holds one Conversion per expression node plus one AndMeaning per
// AND node, indexed by ast.ExprID — a parallel array kept alongside
// ast.Arena's ExprExt rather than folded into it, per ast's own doc
// comment explaining the split avoids an ast<->attrs import cycle.
type Table struct {
	Conversions []Conversion
	Meanings    map[ast.ExprID]AndMeaning

	partClassCounter int
}

// NewTable allocates a Table sized to arena's current expression count.
func NewTable(arena *ast.Arena) *Table {
	return &Table{
		Conversions: make([]Conversion, arena.NumExprs()),
		Meanings:    map[ast.ExprID]AndMeaning{},
	}
}

func (t *Table) nextPartClassType(types *gentypes.Table, ownerName string) gentypes.Type {
	t.partClassCounter++
	name := ownerName + "$part" + itoa(t.partClassCounter)
	return types.ClassByName(name)
}

// itoa avoids importing strconv just for this one call site's small
// non-negative counter.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[i:])
}

// scope accumulates the attribute references and this-binding seen so far
// in the enclosing AND currently being analyzed, per spec §4.3's
// "and_attributes"/"and_result" bottom-up collection.
type scope struct {
	attrNames map[string]ast.Pos
	attrOrder []string
	thisSeen  bool
	thisPos   ast.Pos
}

func newScope() *scope {
	return &scope{attrNames: map[string]ast.Pos{}}
}

// Analyzer runs the attribute-scope analysis over every nonterminal's
// body in arena.
type Analyzer struct {
	Arena *ast.Arena
	Table *Table
}

// New creates an Analyzer for arena, allocating its Table.
func New(arena *ast.Arena) *Analyzer {
	return &Analyzer{Arena: arena, Table: NewTable(arena)}
}

// Run analyzes every declared nonterminal's body.
func (a *Analyzer) Run() error {
	for i := range a.Arena.Nonterminals {
		nt := &a.Arena.Nonterminals[i]
		if _, err := a.walk(ast.NonterminalID(i), nt.Body, false, false); err != nil {
			return err
		}
	}
	return nil
}

// walk analyzes expr, returning the scope contribution it makes to its
// parent AND (if any): the attribute/this references it contains that
// have not already been consumed by a nested AND of their own. dead marks
// that expr's value, if any, is discarded by its context (spec §4.3
// "UseOfDeadValue"). nested marks that expr sits inside another AND's
// element list, which is what distinguishes a part-class sub-AND from a
// nonterminal's own governing AND (spec §4.3 "child sub-ANDs... become
// part-classes").
func (a *Analyzer) walk(nt ast.NonterminalID, id ast.ExprID, dead, nested bool) (*scope, error) {
	expr := a.Arena.Expr(id)

	switch expr.Kind {
	case ast.KindEmpty:
		a.Table.Conversions[id] = Conversion{Kind: ConvEmpty}
		return newScope(), nil

	case ast.KindStringLiteral:
		a.Table.Conversions[id] = Conversion{Kind: ConvString}
		return newScope(), nil

	case ast.KindConst:
		if dead {
			return nil, ebnferrors.New(ebnferrors.KindUseOfDeadValue, expr.Pos,
				"const expression's value is unused here")
		}
		a.Table.Conversions[id] = Conversion{Kind: ConvConst}
		return newScope(), nil

	case ast.KindNameRef:
		return newScope(), nil

	case ast.KindCast:
		if dead {
			return nil, ebnferrors.New(ebnferrors.KindUseOfDeadValue, expr.Pos,
				"cast expression's value is unused here")
		}
		if _, err := a.walk(nt, expr.Sub[0], false, nested); err != nil {
			return nil, err
		}
		a.Table.Conversions[id] = Conversion{Kind: ConvCast}
		return newScope(), nil

	case ast.KindThisElement:
		if dead {
			return nil, ebnferrors.New(ebnferrors.KindUseOfDeadValue, expr.Pos,
				"this= binding is unused here")
		}
		if _, err := a.walk(nt, expr.Sub[0], false, nested); err != nil {
			return nil, err
		}
		a.Table.Conversions[id] = Conversion{Kind: ConvThis}
		sc := newScope()
		sc.thisSeen = true
		sc.thisPos = expr.Pos
		return sc, nil

	case ast.KindNameElement:
		if dead {
			return nil, ebnferrors.New(ebnferrors.KindUseOfDeadValue, expr.Pos,
				"attribute binding is unused here")
		}
		if _, err := a.walk(nt, expr.Sub[0], false, nested); err != nil {
			return nil, err
		}
		a.Table.Conversions[id] = Conversion{Kind: ConvName, AttrName: expr.Name}
		sc := newScope()
		sc.attrNames[expr.Name] = expr.Pos
		sc.attrOrder = append(sc.attrOrder, expr.Name)
		return sc, nil

	case ast.KindZeroOne, ast.KindZeroMany, ast.KindOneMany:
		if _, err := a.walk(nt, expr.Sub[0], false, nested); err != nil {
			return nil, err
		}
		if expr.Separator != ast.NoExpr {
			// A loop's separator is a syntactic marker whose value is
			// always discarded by the converter's lowering, regardless of
			// what it is bound to.
			if _, err := a.walk(nt, expr.Separator, true, nested); err != nil {
				return nil, err
			}
		}
		kind := ConvZeroOne
		switch expr.Kind {
		case ast.KindZeroMany:
			kind = ConvZeroMany
		case ast.KindOneMany:
			kind = ConvOneMany
		}
		a.Table.Conversions[id] = Conversion{Kind: kind}
		return newScope(), nil

	case ast.KindOr:
		for _, sub := range expr.Sub {
			if _, err := a.walk(nt, sub, dead, nested); err != nil {
				return nil, err
			}
		}
		a.Table.Conversions[id] = Conversion{Kind: ConvOr}
		return newScope(), nil

	case ast.KindAnd:
		return a.walkAnd(nt, id, expr, dead, nested)

	default:
		return newScope(), nil
	}
}

func (a *Analyzer) walkAnd(nt ast.NonterminalID, id ast.ExprID, expr *ast.Expr, dead, nested bool) (*scope, error) {
	merged := newScope()

	for _, sub := range expr.Sub {
		subExpr := a.Arena.Expr(sub)
		childDead := dead && subExpr.Kind != ast.KindAnd

		childScope, err := a.walk(nt, sub, childDead, true)
		if err != nil {
			return nil, err
		}

		if subExpr.Kind == ast.KindAnd {
			// A nested AND establishes its own scope; its attrs/this have
			// already been consumed into its own Conversion and do not
			// propagate to this enclosing scope, except that a conflict
			// discovered while building it has already returned an error.
			continue
		}

		if childScope.thisSeen {
			if len(merged.attrOrder) > 0 {
				return nil, ebnferrors.New(ebnferrors.KindAttrThisConflict, childScope.thisPos,
					"cannot mix an attribute binding with this= in the same sequence")
			}
			if merged.thisSeen {
				return nil, ebnferrors.New(ebnferrors.KindDuplicateThis, childScope.thisPos,
					"more than one this= binding in the same sequence")
			}
			merged.thisSeen = true
			merged.thisPos = childScope.thisPos
		}

		for _, name := range childScope.attrOrder {
			if merged.thisSeen {
				return nil, ebnferrors.New(ebnferrors.KindAttrThisConflict, childScope.attrNames[name],
					"cannot mix an attribute binding with this= in the same sequence")
			}
			if _, dup := merged.attrNames[name]; dup {
				return nil, ebnferrors.New(ebnferrors.KindDuplicateAttribute, childScope.attrNames[name],
					"attribute %q is already bound in this sequence", name)
			}
			merged.attrNames[name] = childScope.attrNames[name]
			merged.attrOrder = append(merged.attrOrder, name)
		}
	}

	if merged.thisSeen && expr.CastType != nil {
		return nil, ebnferrors.New(ebnferrors.KindThisWithExplicitType, merged.thisPos,
			"a sequence with an explicit type cannot also bind this=")
	}

	meaning := MeaningVoid
	switch {
	case merged.thisSeen:
		meaning = MeaningThis
	case len(merged.attrOrder) > 0:
		meaning = MeaningClass
	}
	a.Table.Meanings[id] = meaning

	conv := Conversion{Kind: ConvAnd, Meaning: meaning}
	if meaning == MeaningClass {
		switch {
		case expr.CastType != nil:
			conv.ClassType = a.resolvedCastType(expr.CastType)
		case nested && len(merged.attrOrder) > 1:
			// A sub-AND nested inside another AND's element list, with more
			// than one attribute of its own, is flattened into its parent
			// as a part-class rather than becoming a full standalone class
			// (spec §4.3 "child sub-ANDs with more than one attribute
			// become part-classes"); its type is a freshly-tagged
			// PartClassType rather than the owning nonterminal's class.
			conv.IsPartClass = true
			conv.ClassType = a.Table.nextPartClassType(a.Arena.Types, a.Arena.Nonterminals[nt].Name.Name).ID()
		default:
			conv.ClassType = a.Arena.Types.ClassForNonterminal(a.Arena.Nonterminals[nt].Name.Name).ID()
		}
	}
	a.Table.Conversions[id] = conv

	return merged, nil
}

func (a *Analyzer) resolvedCastType(ref *ast.TypeRef) gentypes.ID {
	if nt, ok := a.Arena.Nonterminal(ref.Name.Name); ok {
		return a.Arena.Types.ClassForNonterminal(nt.Name.Name).ID()
	}
	return a.Arena.Types.ClassByName(ref.Name.Name).ID()
}
