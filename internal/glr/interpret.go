package glr

import (
	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/ebnferrors"
)

// Materialize walks the accepted parse forest rooted at r and reconstructs
// the semantic value spec §4.4's lowering rules describe: each reduce
// node's bnf.Action is applied to its already-materialized element
// values, recursively, bottom-up. This is the "generated target code"
// Parser's doc comment defers value assembly to — it lives here rather
// than in internal/emit's generated source because only this package can
// walk the stack-graph node chain (node is unexported, by design: spec §9
// asks for the GLR stack graph itself, not its internals, to be the
// public surface).
//
// Materialize does not call Release; the caller still owns r and must
// Release it once the returned value (and anything reachable from it) is
// no longer needed.
func (r *Result) Materialize() (interface{}, error) {
	return materialize(r.node, r.grammar)
}

func materialize(n *node, g *bnf.Grammar) (interface{}, error) {
	switch n.variant {
	case variantValue:
		if n.value == nil {
			return nil, nil
		}
		return n.value.v, nil

	case variantNonterminal:
		prod := g.Productions[n.reduceProd]
		length := len(prod.Elements)

		values := make([]interface{}, length)
		cur := n.subElementsHead
		for i := length - 1; i >= 0; i-- {
			v, err := materialize(cur, g)
			if err != nil {
				return nil, err
			}
			values[i] = v
			cur = cur.prev
		}

		return applyAction(prod.Action, values)

	default:
		return nil, ebnferrors.IllegalState("Materialize reached a start node mid-production")
	}
}

// applyAction interprets a single bnf.Action over the already-materialized
// values of its production's elements (spec §4.4's action taxonomy).
func applyAction(a bnf.Action, values []interface{}) (interface{}, error) {
	switch a.Kind {
	case bnf.ActionVoid:
		return nil, nil

	case bnf.ActionConst:
		switch a.ConstKind {
		case 0: // ast.ConstInt
			return a.ConstIntVal, nil
		case 1: // ast.ConstBool
			return a.ConstBoolVal, nil
		case 2: // ast.ConstStr
			return a.ConstStrVal, nil
		default: // ast.ConstNative: contributes no semantics of its own
			return nil, nil
		}

	case bnf.ActionCast:
		// A cast is a compile-time-only type refinement; interface{}
		// already carries the dynamic value untouched.
		return values[a.SourceIndex], nil

	case bnf.ActionCopy:
		return values[a.SourceIndex], nil

	case bnf.ActionResultAnd:
		return values[a.SourceIndex], nil

	case bnf.ActionClass, bnf.ActionPartClass:
		fields := map[string]interface{}{}
		for _, f := range a.Fields {
			fields[f.Name] = values[f.ElementIndex]
		}
		for _, idx := range a.PartClasses {
			if part, ok := values[idx].(map[string]interface{}); ok {
				for k, v := range part {
					fields[k] = v
				}
			}
		}
		// SubClasses elements are nested class-meaning ANDs with no
		// name= attribute of their own; they contribute no named field
		// and are not folded in here.
		return fields, nil

	case bnf.ActionFirstList:
		return []interface{}{values[a.SourceIndex]}, nil

	case bnf.ActionNextList:
		list, _ := values[a.SourceIndex].([]interface{})
		out := append(append([]interface{}{}, list...), values[a.ElemIndex])
		return out, nil

	case bnf.ActionAccept:
		return values[a.SourceIndex], nil

	default:
		return nil, ebnferrors.IllegalState("unknown action kind %d", a.Kind)
	}
}
