// Package lrgen assembles the canonical LR(0) shift/goto/reduce table (spec
// §4.5) from a bnf.Grammar, deliberately retaining every shift/reduce and
// reduce/reduce conflict instead of resolving or rejecting them: the GLR
// runtime core (internal/glr) is the thing that explores every retained
// branch, so this package's job stops at "build the table and report what
// it found", not "pick a winner".
//
// Grounded on parse/clr1.go's constructCanonicalLR1ParseTable for the
// augmentation-then-closure-then-table shape, adapted to LR(0) (no
// lookahead column) and to collect rather than error out of conflicts.
package lrgen

import (
	"fmt"
	"strconv"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/syngen/internal/automaton"
	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/util"
)

// ConflictKind discriminates the two conflict shapes an LR(0) table can
// contain once resolution is deliberately skipped.
type ConflictKind int

const (
	ConflictShiftReduce ConflictKind = iota
	ConflictReduceReduce
)

// Conflict records one state where more than one action is available,
// preserved rather than resolved (spec §4.5 "no conflict resolution").
type Conflict struct {
	Kind     ConflictKind
	State    int
	Terminal bnf.TerminalID // only meaningful for ConflictShiftReduce
	Prods    []bnf.ProductionID
}

// Describe renders a human-readable summary of the conflict's competing
// productions, e.g. "reduce/reduce in state 3 between rule 2, rule 5, and
// rule 7" or "shift/reduce on PLUS in state 6 between rule 1 and rule 4".
func (c Conflict) Describe(g *bnf.Grammar) string {
	names := make([]string, len(c.Prods))
	for i, pid := range c.Prods {
		names[i] = fmt.Sprintf("rule %d", pid)
	}
	list := util.MakeTextList(names)

	if c.Kind == ConflictShiftReduce {
		return fmt.Sprintf("shift/reduce on %s in state %d between %s", g.Terminals[c.Terminal].Name, c.State, list)
	}
	return fmt.Sprintf("reduce/reduce in state %d between %s", c.State, list)
}

// Table is the canonical LR(0) table: deterministic GOTO on nonterminals
// and shift targets on terminals, plus the unconditional (lookahead-free)
// set of reductions available in each state.
type Table struct {
	Grammar    *bnf.Grammar
	Collection *automaton.Collection

	// AugmentedStart and AugmentedProd are the synthetic S' nonterminal and
	// S' -> S production added by Generate; AugmentedProd is never listed
	// in Reduces, a parse accepts in a state holding its completed item
	// (see AcceptStates).
	AugmentedStart bnf.NonterminalID
	AugmentedProd  bnf.ProductionID

	// Shifts[state][terminal] is the deterministic state reached by
	// shifting terminal from state, absent if no such transition exists.
	Shifts map[int]map[bnf.TerminalID]int

	// Gotos[state][nonterminal] is the deterministic state reached after
	// reducing to nonterminal while in state.
	Gotos map[int]map[bnf.NonterminalID]int

	// Reduces[state] lists every production reducible in state. In LR(0)
	// this set applies regardless of the next input terminal, so a state
	// with more than one entry here is, by construction, a reduce/reduce
	// conflict (spec §4.5) rather than something requiring a lookahead
	// computation to detect.
	Reduces map[int][]bnf.ProductionID

	// AcceptStates marks every state containing the completed augmented
	// item S' -> S ., where the runtime accepts instead of reducing.
	AcceptStates map[int]bool

	Conflicts []Conflict
}

// Generate augments g with a fresh S' -> start production, builds the
// canonical LR(0) collection, and assembles the shift/goto/reduce table,
// collecting (never rejecting) every conflict it finds along the way.
func Generate(g *bnf.Grammar, start bnf.NonterminalID) *Table {
	startName := g.Nonterminals[start].Name
	sPrime := g.AddNonterminal(startName+"_Prime", g.Nonterminals[start].Type)
	augProd := g.AddProduction(sPrime,
		[]bnf.Symbol{{Kind: bnf.SymNonterminal, Nonterminal: start}},
		bnf.Action{Kind: bnf.ActionAccept, SourceIndex: 0})

	coll := automaton.BuildCollection(g, automaton.Item{Prod: augProd, Dot: 0})

	t := &Table{
		Grammar:        g,
		Collection:     coll,
		AugmentedStart: sPrime,
		AugmentedProd:  augProd,
		Shifts:         map[int]map[bnf.TerminalID]int{},
		Gotos:          map[int]map[bnf.NonterminalID]int{},
		Reduces:        map[int][]bnf.ProductionID{},
		AcceptStates:   map[int]bool{},
	}

	for _, st := range coll.States {
		for sym, next := range st.Transitions {
			if sym.Kind == bnf.SymTerminal {
				if t.Shifts[st.ID] == nil {
					t.Shifts[st.ID] = map[bnf.TerminalID]int{}
				}
				t.Shifts[st.ID][sym.Terminal] = next
			} else {
				if t.Gotos[st.ID] == nil {
					t.Gotos[st.ID] = map[bnf.NonterminalID]int{}
				}
				t.Gotos[st.ID][sym.Nonterminal] = next
			}
		}

		for _, it := range st.Items.Items() {
			if !it.AtEnd(g) {
				continue
			}
			if it.Prod == augProd {
				t.AcceptStates[st.ID] = true
				continue
			}
			t.Reduces[st.ID] = append(t.Reduces[st.ID], it.Prod)
		}
	}

	t.Conflicts = t.findConflicts()

	return t
}

// findConflicts scans the assembled table for every shift/reduce and
// reduce/reduce conflict, reporting rather than resolving them.
func (t *Table) findConflicts() []Conflict {
	var out []Conflict

	for state, prods := range t.Reduces {
		if len(prods) > 1 {
			out = append(out, Conflict{Kind: ConflictReduceReduce, State: state, Prods: prods})
		}

		if len(prods) == 0 {
			continue
		}
		for term := range t.Shifts[state] {
			out = append(out, Conflict{Kind: ConflictShiftReduce, State: state, Terminal: term, Prods: prods})
		}
	}

	return out
}

// Render lays the table out as a state-by-symbol grid, one row per state
// and one column per terminal (shift/reduce action) then per nonterminal
// (goto target), for human inspection on the command line.
//
// Grounded on the teacher's internal/ictiobus/parse/clr1.go table
// renderer, which builds the same kind of row/column grid and hands it to
// rosed.Edit("").InsertTableOpts rather than hand-aligning columns.
func (t *Table) Render() string {
	g := t.Grammar

	header := []string{"state"}
	for _, term := range g.Terminals {
		header = append(header, term.Name)
	}
	for _, nt := range g.Nonterminals {
		header = append(header, nt.Name)
	}

	data := [][]string{header}
	for state := 0; state < len(t.Collection.States); state++ {
		row := []string{strconv.Itoa(state)}

		for termID := range g.Terminals {
			cell := ""
			if next, ok := t.Shifts[state][bnf.TerminalID(termID)]; ok {
				cell = "s" + strconv.Itoa(next)
			}
			if len(t.Reduces[state]) > 0 {
				if cell != "" {
					cell += "/"
				}
				cell += "r"
			}
			row = append(row, cell)
		}

		for ntID := range g.Nonterminals {
			cell := ""
			if next, ok := t.Gotos[state][bnf.NonterminalID(ntID)]; ok {
				cell = strconv.Itoa(next)
			}
			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
