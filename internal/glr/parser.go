// Package glr implements the runtime GLR parsing core of spec §4.6: a
// reference-counted stack-graph, a per-token reduce-to-fixpoint-then-shift
// cycle, and acceptance detection. The parse loop itself only carries
// opaque scanned values through the pool; semantic value reconstruction is
// kept apart from it, in Result.Materialize (interpret.go), which applies
// each production's bnf.Action to an accepted parse.
//
// Grounded on the teacher's parse.lrParser.Parse (Algorithm 4.44, the
// textbook single-stack LR driver) generalized from one stack top to a set
// of stack tops and from a Shift/Reduce/Accept switch to the
// reduce-to-fixpoint sweep spec §4.6 describes; the reference-counting
// discipline follows Design Notes §9's "cascading drop as an explicit
// worklist" guidance, implemented in node.go.
package glr

import (
	"fmt"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/lrgen"
)

// Parser runs the GLR algorithm against a single lrgen.Table, one token
// stream at a time (spec §5 "per-parse pool lifetime").
type Parser struct {
	Table   *lrgen.Table
	Scanner Scanner

	pool  *valuePool
	trace func(string)
}

// NewParser creates a Parser reading from scanner against table.
func NewParser(table *lrgen.Table, scanner Scanner) *Parser {
	return &Parser{Table: table, Scanner: scanner, pool: newValuePool()}
}

// RegisterTraceListener installs a hook invoked synchronously, on the
// parsing goroutine, with a description of each stack-graph transition
// (spec §5 "[ADDED] internal/glr exposes an optional trace hook"),
// grounded on the teacher's notifyTrace/notifyStatePush/notifyStatePeek
// family.
func (p *Parser) RegisterTraceListener(fn func(string)) {
	p.trace = fn
}

func (p *Parser) notify(format string, args ...interface{}) {
	if p.trace != nil {
		p.trace(fmt.Sprintf(format, args...))
	}
}

// Result wraps one accepted stack-graph node. The caller owns the
// reference it holds and must call Release once done inspecting it, or
// the reference counts of the node (and of everything it transitively
// keeps alive through prev/subElementsHead) never drop back to zero.
type Result struct {
	node    *node
	grammar *bnf.Grammar
}

// Release drops the Result's reference to its accepted node.
func (r *Result) Release() {
	release(r.node)
}

// Parse runs the GLR algorithm to completion: it reduces every stack top
// to a fixpoint, then shifts the current token, alternating until either a
// top is found in an accepting state at end of input (success) or no
// branch survives (SyntaxError), or the scanner itself reports a
// LexicalError.
func (p *Parser) Parse() (*Result, error) {
	start := &node{state: p.Table.Collection.Start, variant: variantStart}
	retain(start)
	tops := []*node{start}

	tok, err := p.Scanner.Scan()
	if err != nil {
		p.releaseAll(tops)
		return nil, &LexicalError{Pos: tok.Pos, Err: err}
	}

	for {
		tops = p.reduceToFixpoint(tops)

		if tok.Terminal == EOF {
			for _, top := range tops {
				if p.Table.AcceptStates[top.state] {
					result := &Result{node: retain(top), grammar: p.Table.Grammar}
					p.releaseAll(tops)
					return result, nil
				}
			}
			p.releaseAll(tops)
			return nil, &SyntaxError{Pos: tok.Pos}
		}

		newTops := p.shift(tops, tok)
		p.releaseAll(tops)
		if len(newTops) == 0 {
			return nil, &SyntaxError{Pos: tok.Pos}
		}
		tops = newTops

		tok, err = p.Scanner.Scan()
		if err != nil {
			p.releaseAll(tops)
			return nil, &LexicalError{Pos: tok.Pos, Err: err}
		}
	}
}

func (p *Parser) releaseAll(nodes []*node) {
	for _, n := range nodes {
		release(n)
	}
}

// reduceToFixpoint implements spec §4.6 step 1: repeatedly, for every
// stack top not yet examined, apply every reduce available in its state
// by walking back over the production's elements to find the anchor node,
// then goto-ing the anchor's state on the reduced nonterminal. The result
// is added as a new top. Accept items are detected separately, by the
// caller checking AcceptStates once input is exhausted, not spawned as a
// further reduction here. The sweep repeats until a full pass adds
// nothing new.
func (p *Parser) reduceToFixpoint(tops []*node) []*node {
	all := append([]*node{}, tops...)
	examined := map[*node]bool{}

	changed := true
	for changed {
		changed = false
		for _, top := range all {
			if examined[top] {
				continue
			}
			examined[top] = true

			for _, prodID := range p.Table.Reduces[top.state] {
				prod := p.Table.Grammar.Productions[prodID]
				length := len(prod.Elements)

				anchor := top
				for i := 0; i < length; i++ {
					anchor = anchor.prev
				}

				gotoState, ok := p.Table.Gotos[anchor.state][prod.Head]
				if !ok {
					continue
				}

				n := &node{
					prev:            anchor,
					state:           gotoState,
					variant:         variantNonterminal,
					reduceProd:      prodID,
					subElementsHead: top,
				}
				retain(n)
				retain(anchor)
				retain(top)

				p.notify("reduce: state %d via production %d -> goto state %d", top.state, int(prodID), gotoState)

				all = append(all, n)
				changed = true
			}
		}
	}

	return all
}

// shift implements spec §4.6 step 3: for each current top, for each shift
// on tok's terminal in the top's state, create a new top pointing at the
// shift target.
func (p *Parser) shift(tops []*node, tok Token) []*node {
	var newTops []*node
	seen := map[*node]bool{}

	for _, top := range tops {
		if seen[top] {
			continue
		}
		seen[top] = true

		next, ok := p.Table.Shifts[top.state][tok.Terminal]
		if !ok {
			continue
		}

		var val *value
		if tok.Value != nil {
			val = p.pool.alloc(tok.Value)
		}

		n := &node{prev: top, state: next, variant: variantValue, value: val}
		retain(n)
		retain(top)

		p.notify("shift: state %d on terminal %d -> state %d", top.state, int(tok.Terminal), next)

		newTops = append(newTops, n)
	}

	return newTops
}
