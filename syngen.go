// Package syngen is the pipeline facade of spec §2 "Control flow": it
// drives the five core subsystems (name/type resolution, attribute-scope
// analysis, property propagation, EBNF→BNF lowering, LR(0) table
// construction) over an already-built ast.Arena in the exact order spec.md
// §2 names, stopping at the first error with no partial output (spec §7).
//
// The grammar-file lexer/parser that produces the Arena in the first
// place is an external collaborator (spec §1 "out of scope"); this
// repository ships internal/scanner as a reference Scanner for it, but
// Generate itself only ever sees the already-built ast.Arena and
// registry.Registry, whichever collaborator built them.
package syngen

import (
	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/attrs"
	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/convert"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/dekarrin/syngen/internal/props"
	"github.com/dekarrin/syngen/internal/recursion"
	"github.com/dekarrin/syngen/internal/registry"
)

// Result is the output of one full pipeline run: the lowered BNF grammar
// and one LR(0) table per declared start nonterminal, matching spec §6's
// "a parser facade exposing one parse_<StartNt> function per start
// nonterminal" — this package stops short of emitting that facade as
// source text, which is internal/emit's job.
type Result struct {
	Grammar *bnf.Grammar
	Tables  map[string]*lrgen.Table
}

// Generate runs spec §2's control flow over arena: resolve_name_references,
// verify_attributes, calculate_is_void, verify_recursion,
// calculate_general_types, calculate_types, convert, then one LR-generate
// per start nonterminal. arena and reg must come from the same sequence of
// Register* calls, so ResolveNames can re-validate every reference the
// registry resolved at registration time (spec §4.1).
//
// Each pass is a hard prerequisite of the next (spec §2); Generate returns
// on the first error, emitting nothing, per spec §7's "pipeline terminates
// at the first error... No partial output is written."
func Generate(arena *ast.Arena, reg *registry.Registry) (*Result, error) {
	if err := ResolveNames(arena, reg); err != nil {
		return nil, err
	}

	attrTable := attrs.New(arena)
	if err := attrTable.Run(); err != nil {
		return nil, err
	}

	isVoid := props.New[bool](arena, props.IsVoidAccessor{Arena: arena}, props.IsVoidCalculator{})
	isVoid.Attrs = attrTable.Table
	if err := isVoid.Run(); err != nil {
		return nil, err
	}

	if err := recursion.Verify(arena); err != nil {
		return nil, err
	}

	generalType := props.New(arena, props.GeneralTypeAccessor{Arena: arena}, props.GeneralTypeCalculator{})
	generalType.Attrs = attrTable.Table
	if err := generalType.Run(); err != nil {
		return nil, err
	}

	concreteType := props.New(arena, props.ConcreteTypeAccessor{Arena: arena}, props.ConcreteTypeCalculator{Arena: arena})
	concreteType.Attrs = attrTable.Table
	if err := concreteType.Run(); err != nil {
		return nil, err
	}

	conv := convert.New(arena, attrTable.Table)
	if err := conv.Run(); err != nil {
		return nil, err
	}

	tables := map[string]*lrgen.Table{}
	for i := range arena.Nonterminals {
		nt := &arena.Nonterminals[i]
		if !nt.IsStart {
			continue
		}
		start := conv.BnfNonterminal(ast.NonterminalID(i))
		tables[nt.Name.Name] = lrgen.Generate(conv.Grammar, start)
	}
	if len(tables) == 0 {
		return nil, ebnferrors.IllegalState("grammar declares no start nonterminal (spec §3: \"every start nonterminal receives an augmented nonterminal\")")
	}

	return &Result{Grammar: conv.Grammar, Tables: tables}, nil
}

// ResolveNames implements spec §4 "resolve_name_references": it walks
// every nonterminal body and every cast/explicit-type annotation in the
// arena, re-running registry.Registry's resolution operations over each
// reference to surface DuplicateName/UnknownName/NameIsType/TokenAsType
// errors before any property pass assumes the tree is well-formed.
func ResolveNames(arena *ast.Arena, reg *registry.Registry) error {
	for i := range arena.Nonterminals {
		nt := &arena.Nonterminals[i]
		if nt.ExplicitType != nil {
			if _, err := reg.ResolveType(nt.ExplicitType.Name); err != nil {
				return err
			}
		}
		if err := resolveExpr(arena, reg, nt.Body); err != nil {
			return err
		}
	}
	return nil
}

func resolveExpr(arena *ast.Arena, reg *registry.Registry, id ast.ExprID) error {
	if id == ast.NoExpr {
		return nil
	}
	expr := arena.Expr(id)

	switch expr.Kind {
	case ast.KindNameRef:
		if _, err := reg.ResolveSymbol(ast.Ident{Name: expr.Name, Pos: expr.Pos}); err != nil {
			return err
		}
	case ast.KindCast:
		if _, err := reg.ResolveType(expr.CastType.Name); err != nil {
			return err
		}
	}

	if expr.CastType != nil && expr.Kind != ast.KindCast {
		// Parenthesized group with an explicit type annotation, e.g.
		// "{T}(a | b)" on an Or/And node.
		if _, err := reg.ResolveType(expr.CastType.Name); err != nil {
			return err
		}
	}

	for _, sub := range expr.Sub {
		if err := resolveExpr(arena, reg, sub); err != nil {
			return err
		}
	}
	return resolveExpr(arena, reg, expr.Separator)
}
