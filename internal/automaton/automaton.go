// Package automaton builds the canonical collection of LR(0) item sets
// (spec §4.5) that internal/lrgen turns into a shift/goto/reduce table.
//
// Grounded on the teacher's internal/ictiobus/automaton package: its
// DFA[E]/NFA[E] closure-then-collect shape is ported here generalized to
// LR(0) items over bnf.Grammar and simplified to retain every conflicting
// transition rather than merging/rejecting them the way NewLALR1ViablePrefixDFA
// does for LALR(1) — a GLR table wants every branch preserved, not resolved.
package automaton

import (
	"strings"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/util"
)

// Item is a single LR(0) item: a production together with a dot position
// marking how much of its right-hand side has been recognized.
type Item struct {
	Prod bnf.ProductionID
	Dot  int
}

// AtEnd reports whether the dot has reached the end of prod's elements,
// i.e. this item is a candidate for reduction.
func (it Item) AtEnd(g *bnf.Grammar) bool {
	return it.Dot >= len(g.Productions[it.Prod].Elements)
}

// NextSymbol returns the symbol immediately after the dot and true, or the
// zero Symbol and false if the item is already at its end.
func (it Item) NextSymbol(g *bnf.Grammar) (bnf.Symbol, bool) {
	elems := g.Productions[it.Prod].Elements
	if it.Dot >= len(elems) {
		return bnf.Symbol{}, false
	}
	return elems[it.Dot], true
}

// Advance returns the item with its dot moved one position to the right.
func (it Item) Advance() Item {
	return Item{Prod: it.Prod, Dot: it.Dot + 1}
}

// String renders it as "N_Foo -> A . B C" for use as a dense, comparable
// set-membership key, mirroring grammar.LR0Item.String in the teacher.
func (it Item) String(g *bnf.Grammar) string {
	prod := g.Productions[it.Prod]
	var sb strings.Builder
	sb.WriteString(g.Nonterminals[prod.Head].Name)
	sb.WriteString(" -> ")
	for i, sym := range prod.Elements {
		if i == it.Dot {
			sb.WriteString(". ")
		}
		sb.WriteString(symbolName(g, sym))
		sb.WriteRune(' ')
	}
	if it.Dot >= len(prod.Elements) {
		sb.WriteString(".")
	}
	return strings.TrimRight(sb.String(), " ")
}

func symbolName(g *bnf.Grammar, sym bnf.Symbol) string {
	if sym.Kind == bnf.SymNonterminal {
		return g.Nonterminals[sym.Nonterminal].Name
	}
	return g.Terminals[sym.Terminal].Name
}

// ItemSet is an unordered, deduplicated collection of items, identified by
// the sorted concatenation of its members' String keys (the same
// canonical-key approach as the teacher's util.SVSet.StringOrdered, used
// throughout automaton.go/dfa.go to give every state a stable, comparable
// name).
type ItemSet struct {
	items map[string]Item
}

// NewItemSet creates an empty ItemSet.
func NewItemSet() *ItemSet {
	return &ItemSet{items: map[string]Item{}}
}

// Add inserts it into the set if not already present.
func (s *ItemSet) Add(g *bnf.Grammar, it Item) {
	s.items[it.String(g)] = it
}

// Items returns the set's members in no particular order.
func (s *ItemSet) Items() []Item {
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out
}

// Key returns the canonical, order-independent identity of the set: its
// members' String keys sorted and joined, so two ItemSets with the same
// members always produce the same Key regardless of insertion order.
func (s *ItemSet) Key(g *bnf.Grammar) string {
	keys := util.OrderedKeys(s.items)
	return strings.Join(keys, "\n")
}

// Closure computes the LR(0) closure of a kernel item set: repeatedly add,
// for every item with the dot immediately before a nonterminal N, one item
// per production of N with its dot at position 0, until no new items are
// added (spec §4.5 "item pre-computation... closure").
func Closure(g *bnf.Grammar, kernel *ItemSet) *ItemSet {
	result := NewItemSet()
	for _, it := range kernel.Items() {
		result.Add(g, it)
	}

	changed := true
	for changed {
		changed = false
		for _, it := range result.Items() {
			sym, ok := it.NextSymbol(g)
			if !ok || sym.Kind != bnf.SymNonterminal {
				continue
			}
			for _, prodID := range g.Nonterminals[sym.Nonterminal].Productions {
				newItem := Item{Prod: prodID, Dot: 0}
				key := newItem.String(g)
				if _, ok := result.items[key]; !ok {
					result.Add(g, newItem)
					changed = true
				}
			}
		}
	}

	return result
}

// Goto computes the item set reached from a (closed) item set on symbol
// sym: every item with the dot immediately before sym, advanced one
// position, then closed.
func Goto(g *bnf.Grammar, from *ItemSet, sym bnf.Symbol) *ItemSet {
	kernel := NewItemSet()
	for _, it := range from.Items() {
		next, ok := it.NextSymbol(g)
		if !ok || next != sym {
			continue
		}
		kernel.Add(g, it.Advance())
	}
	if len(kernel.items) == 0 {
		return kernel
	}
	return Closure(g, kernel)
}

// State is one node of the canonical LR(0) collection: a closed item set
// plus its outgoing transitions, keyed by symbol.
type State struct {
	ID          int
	Items       *ItemSet
	Transitions map[bnf.Symbol]int
}

// Collection is the canonical collection of LR(0) item sets (spec §4.5
// "canonical state-set construction"), with states numbered densely from
// Start in a deterministic discovery order.
type Collection struct {
	States []State
	Start  int
}

// BuildCollection constructs the canonical LR(0) collection starting from
// the single kernel item {start}, with transitions discovered in a fixed,
// deterministic symbol order (all nonterminals by id, then all terminals
// by id) so that two runs over the same grammar produce identical state
// numbering (spec §4.5 "deterministic ordering").
func BuildCollection(g *bnf.Grammar, start Item) *Collection {
	startKernel := NewItemSet()
	startKernel.Add(g, start)
	startSet := Closure(g, startKernel)

	coll := &Collection{}
	keyToID := map[string]int{}

	addState := func(items *ItemSet) int {
		key := items.Key(g)
		if id, ok := keyToID[key]; ok {
			return id
		}
		id := len(coll.States)
		keyToID[key] = id
		coll.States = append(coll.States, State{ID: id, Items: items, Transitions: map[bnf.Symbol]int{}})
		return id
	}

	coll.Start = addState(startSet)

	symbols := allSymbols(g)

	frontier := []int{coll.Start}
	for len(frontier) > 0 {
		stateID := frontier[0]
		frontier = frontier[1:]

		for _, sym := range symbols {
			next := Goto(g, coll.States[stateID].Items, sym)
			if len(next.items) == 0 {
				continue
			}
			key := next.Key(g)
			_, existed := keyToID[key]
			nextID := addState(next)
			coll.States[stateID].Transitions[sym] = nextID
			if !existed {
				frontier = append(frontier, nextID)
			}
		}
	}

	return coll
}

// allSymbols returns every grammar symbol in a fixed, deterministic order:
// all nonterminals by dense id, then all terminals by dense id.
func allSymbols(g *bnf.Grammar) []bnf.Symbol {
	syms := make([]bnf.Symbol, 0, len(g.Nonterminals)+len(g.Terminals))
	for i := range g.Nonterminals {
		syms = append(syms, bnf.Symbol{Kind: bnf.SymNonterminal, Nonterminal: bnf.NonterminalID(i)})
	}
	for i := range g.Terminals {
		syms = append(syms, bnf.Symbol{Kind: bnf.SymTerminal, Terminal: bnf.TerminalID(i)})
	}
	return syms
}
