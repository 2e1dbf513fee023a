// Package recursion implements spec §4 pipeline step "verify_recursion":
// the check that a nonterminal cannot reach itself through a path that
// passes through a loop body (spec §3 invariants, "Loop expressions cannot
// produce Void transitively through recursion" and §8 scenario S5).
//
// Ordinary self-recursion (spec §8 S4, "this"-rebinding through parens) is
// legal and is exactly what internal/props's Recursion hook defaults for;
// this package only rejects the narrower case where at least one edge of
// the cycle is a loop body, since an LR(0)/GLR table has no trouble with
// the former but a loop whose body recurses into itself with no
// intervening token has no base case to terminate expansion on.
package recursion

import (
	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/ebnferrors"
)

// edge is one nonterminal-to-nonterminal reachability step discovered while
// walking a body expression.
type edge struct {
	to          ast.NonterminalID
	throughLoop bool
}

// Verify walks every declared nonterminal's body and rejects any cycle that
// includes at least one loop-body edge, per spec §4 "verify_recursion".
func Verify(arena *ast.Arena) error {
	graph := make([][]edge, len(arena.Nonterminals))
	for i, nt := range arena.Nonterminals {
		graph[i] = collectEdges(arena, nt.Body, false, nil)
	}

	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(arena.Nonterminals))
	var path []ast.NonterminalID
	var pathLoop []bool // pathLoop[i] is whether the edge leaving path[i] crossed a loop

	var visit func(n ast.NonterminalID) error
	visit = func(n ast.NonterminalID) error {
		color[n] = gray
		path = append(path, n)

		for _, e := range graph[n] {
			pathLoop = append(pathLoop, e.throughLoop)

			if color[e.to] == gray {
				idx := indexOf(path, e.to)
				cycleThroughLoop := e.throughLoop
				for i := idx; i < len(pathLoop); i++ {
					if pathLoop[i] {
						cycleThroughLoop = true
					}
				}
				pathLoop = pathLoop[:len(pathLoop)-1]
				if cycleThroughLoop {
					chain := append(append([]ast.NonterminalID{}, path[idx:]...), e.to)
					path = path[:len(path)-1]
					color[n] = black
					return ebnferrors.RecursionThroughLoop(arena.Nonterminals[chain[0]].Name.Pos, names(arena, chain))
				}
				continue
			}

			if color[e.to] == white {
				if err := visit(e.to); err != nil {
					return err
				}
			}
			pathLoop = pathLoop[:len(pathLoop)-1]
		}

		path = path[:len(path)-1]
		color[n] = black
		return nil
	}

	for i := range arena.Nonterminals {
		if color[i] == white {
			if err := visit(ast.NonterminalID(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func indexOf(path []ast.NonterminalID, n ast.NonterminalID) int {
	for i, p := range path {
		if p == n {
			return i
		}
	}
	return 0
}

func names(arena *ast.Arena, path []ast.NonterminalID) []string {
	out := make([]string, len(path))
	for i, id := range path {
		out[i] = arena.Nonterminals[id].Name.Name
	}
	return out
}

// collectEdges walks expr's shape, recording one edge per nonterminal
// reference reachable without crossing into a nested nonterminal's own
// body (that nonterminal gets its own top-level collectEdges call from
// Verify), tagging each edge with whether it was reached through a loop
// body anywhere on the path from the owning nonterminal's root.
func collectEdges(arena *ast.Arena, id ast.ExprID, throughLoop bool, out []edge) []edge {
	if id == ast.NoExpr {
		return out
	}
	expr := arena.Expr(id)
	switch expr.Kind {
	case ast.KindNameRef:
		if nt, ok := arena.Nonterminal(expr.Name); ok {
			out = append(out, edge{to: ast.NonterminalID(nt.Index), throughLoop: throughLoop})
		}
		return out
	case ast.KindZeroMany, ast.KindOneMany:
		out = collectEdges(arena, expr.Sub[0], true, out)
		out = collectEdges(arena, expr.Separator, true, out)
		return out
	default:
		for _, sub := range expr.Sub {
			out = collectEdges(arena, sub, throughLoop, out)
		}
		return out
	}
}
