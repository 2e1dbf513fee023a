// Package dump implements `syngen --dump-tables`/`--load-tables` (spec §6
// domain stack): a binary snapshot of a generated lrgen.Table that can be
// written to disk and read back without re-running the pipeline, useful
// for internal/debugsrv and internal/replshell inspecting a prior run.
//
// Grounded on the teacher's internal/tunascript/binary.go, which defines
// its own length-prefixed MarshalBinary/UnmarshalBinary pair for AST
// nodes and feeds them through github.com/dekarrin/rezi's EncBinary/
// DecBinary wrappers (see server/dao/sqlite/sqlite.go's
// convertToDB_GameStatePtr); File follows the same division of labor:
// File does the structural encode/decode by hand, rezi supplies the
// outer framing and the entry point callers use.
package dump

import (
	"encoding/binary"
	"fmt"

	"github.com/dekarrin/rezi"
	"github.com/dekarrin/syngen/internal/automaton"
	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/gentypes"
	"github.com/dekarrin/syngen/internal/lrgen"
)

// File is the on-disk snapshot of one generated table: the lowered
// grammar it was built from plus the table's shift/goto/reduce entries.
// Grammar.Nonterminals/Terminals/Productions are rebuilt in full since
// internal/emit and internal/fingerprint both need the Action payloads,
// not just the automaton shape.
type File struct {
	Table *lrgen.Table
}

// Write returns the rezi-framed binary encoding of t, suitable for
// writing to a `--dump-tables` output file.
func Write(t *lrgen.Table) []byte {
	return rezi.EncBinary(&File{Table: t})
}

// Read decodes a File previously produced by Write. The returned Table's
// Grammar is reconstructed as a fresh *bnf.Grammar; it shares no memory
// with whatever Grammar produced the original dump.
func Read(data []byte) (*lrgen.Table, error) {
	var f File
	if _, err := rezi.DecBinary(data, &f); err != nil {
		return nil, fmt.Errorf("decode table dump: %w", err)
	}
	return f.Table, nil
}

// MarshalBinary implements encoding.BinaryMarshaler, the interface
// rezi.EncBinary requires of its argument.
func (f *File) MarshalBinary() ([]byte, error) {
	var buf []byte
	buf = appendGrammar(buf, f.Table.Grammar)
	buf = appendInt(buf, int(f.Table.AugmentedStart))
	buf = appendInt(buf, int(f.Table.AugmentedProd))
	buf = appendTableBody(buf, f.Table)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, the interface
// rezi.DecBinary requires of its argument.
func (f *File) UnmarshalBinary(data []byte) error {
	g, rest, err := readGrammar(data)
	if err != nil {
		return err
	}

	augStart, rest, err := readInt(rest)
	if err != nil {
		return fmt.Errorf("read augmented start: %w", err)
	}
	augProd, rest, err := readInt(rest)
	if err != nil {
		return fmt.Errorf("read augmented production: %w", err)
	}

	t := &lrgen.Table{
		Grammar:        g,
		AugmentedStart: bnf.NonterminalID(augStart),
		AugmentedProd:  bnf.ProductionID(augProd),
	}
	if err := readTableBody(rest, t); err != nil {
		return err
	}

	f.Table = t
	return nil
}

func appendInt(buf []byte, n int) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(int64(n)))
	return append(buf, b[:]...)
}

func readInt(data []byte) (int, []byte, error) {
	if len(data) < 8 {
		return 0, nil, fmt.Errorf("unexpected end of data reading int")
	}
	n := int(int64(binary.LittleEndian.Uint64(data[:8])))
	return n, data[8:], nil
}

func appendBool(buf []byte, b bool) []byte {
	if b {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func readBool(data []byte) (bool, []byte, error) {
	if len(data) < 1 {
		return false, nil, fmt.Errorf("unexpected end of data reading bool")
	}
	return data[0] != 0, data[1:], nil
}

func appendStr(buf []byte, s string) []byte {
	buf = appendInt(buf, len(s))
	return append(buf, s...)
}

func readStr(data []byte) (string, []byte, error) {
	n, rest, err := readInt(data)
	if err != nil {
		return "", nil, fmt.Errorf("read string length: %w", err)
	}
	if len(rest) < n {
		return "", nil, fmt.Errorf("unexpected end of data reading string")
	}
	return string(rest[:n]), rest[n:], nil
}

func appendGrammar(buf []byte, g *bnf.Grammar) []byte {
	buf = appendInt(buf, len(g.Nonterminals))
	for _, nt := range g.Nonterminals {
		buf = appendStr(buf, nt.Name)
		buf = appendInt(buf, int(nt.Type))
		buf = appendInt(buf, len(nt.Productions))
		for _, p := range nt.Productions {
			buf = appendInt(buf, int(p))
		}
	}

	buf = appendInt(buf, len(g.Terminals))
	for _, term := range g.Terminals {
		buf = appendStr(buf, term.Name)
		buf = appendInt(buf, int(term.Kind))
		buf = appendStr(buf, term.Literal)
		buf = appendBool(buf, term.IsKeywordLike)
		buf = appendInt(buf, int(term.Type))
	}

	buf = appendInt(buf, len(g.Productions))
	for _, p := range g.Productions {
		buf = appendInt(buf, int(p.Head))
		buf = appendInt(buf, len(p.Elements))
		for _, sym := range p.Elements {
			buf = appendInt(buf, int(sym.Kind))
			buf = appendInt(buf, int(sym.Nonterminal))
			buf = appendInt(buf, int(sym.Terminal))
		}
		buf = appendAction(buf, p.Action)
	}

	buf = appendInt(buf, int(g.EmptyNonterminal))
	return buf
}

func appendAction(buf []byte, a bnf.Action) []byte {
	buf = appendInt(buf, int(a.Kind))
	buf = appendInt(buf, int(a.Type))
	buf = appendInt(buf, a.ConstKind)
	buf = appendInt(buf, a.ConstIntVal)
	buf = appendBool(buf, a.ConstBoolVal)
	buf = appendStr(buf, a.ConstStrVal)
	buf = appendInt(buf, a.SourceIndex)
	buf = appendInt(buf, a.SepIndex)
	buf = appendInt(buf, a.ElemIndex)

	buf = appendInt(buf, len(a.Fields))
	for _, f := range a.Fields {
		buf = appendStr(buf, f.Name)
		buf = appendInt(buf, f.ElementIndex)
	}
	buf = appendInt(buf, len(a.PartClasses))
	for _, i := range a.PartClasses {
		buf = appendInt(buf, i)
	}
	buf = appendInt(buf, len(a.SubClasses))
	for _, i := range a.SubClasses {
		buf = appendInt(buf, i)
	}
	return buf
}

func readGrammar(data []byte) (*bnf.Grammar, []byte, error) {
	g := &bnf.Grammar{}
	rest := data

	ntCount, rest, err := readInt(rest)
	if err != nil {
		return nil, nil, fmt.Errorf("read nonterminal count: %w", err)
	}
	for i := 0; i < ntCount; i++ {
		var name string
		var typ, prodCount int
		if name, rest, err = readStr(rest); err != nil {
			return nil, nil, err
		}
		if typ, rest, err = readInt(rest); err != nil {
			return nil, nil, err
		}
		if prodCount, rest, err = readInt(rest); err != nil {
			return nil, nil, err
		}
		nt := bnf.Nonterminal{ID: bnf.NonterminalID(i), Name: name, Type: gentypes.ID(typ)}
		for j := 0; j < prodCount; j++ {
			var p int
			if p, rest, err = readInt(rest); err != nil {
				return nil, nil, err
			}
			nt.Productions = append(nt.Productions, bnf.ProductionID(p))
		}
		g.Nonterminals = append(g.Nonterminals, nt)
	}

	termCount, rest, err := readInt(rest)
	if err != nil {
		return nil, nil, fmt.Errorf("read terminal count: %w", err)
	}
	for i := 0; i < termCount; i++ {
		var name, literal string
		var kind, typ int
		var keywordLike bool
		if name, rest, err = readStr(rest); err != nil {
			return nil, nil, err
		}
		if kind, rest, err = readInt(rest); err != nil {
			return nil, nil, err
		}
		if literal, rest, err = readStr(rest); err != nil {
			return nil, nil, err
		}
		if keywordLike, rest, err = readBool(rest); err != nil {
			return nil, nil, err
		}
		if typ, rest, err = readInt(rest); err != nil {
			return nil, nil, err
		}
		g.Terminals = append(g.Terminals, bnf.Terminal{
			ID: bnf.TerminalID(i), Name: name, Kind: bnf.TerminalKind(kind),
			Literal: literal, IsKeywordLike: keywordLike, Type: gentypes.ID(typ),
		})
	}

	prodCount, rest, err := readInt(rest)
	if err != nil {
		return nil, nil, fmt.Errorf("read production count: %w", err)
	}
	for i := 0; i < prodCount; i++ {
		var head, elemCount int
		if head, rest, err = readInt(rest); err != nil {
			return nil, nil, err
		}
		if elemCount, rest, err = readInt(rest); err != nil {
			return nil, nil, err
		}
		elems := make([]bnf.Symbol, elemCount)
		for j := 0; j < elemCount; j++ {
			var kind, nt, term int
			if kind, rest, err = readInt(rest); err != nil {
				return nil, nil, err
			}
			if nt, rest, err = readInt(rest); err != nil {
				return nil, nil, err
			}
			if term, rest, err = readInt(rest); err != nil {
				return nil, nil, err
			}
			elems[j] = bnf.Symbol{Kind: bnf.SymbolKind(kind), Nonterminal: bnf.NonterminalID(nt), Terminal: bnf.TerminalID(term)}
		}
		var action bnf.Action
		if action, rest, err = readAction(rest); err != nil {
			return nil, nil, err
		}
		g.Productions = append(g.Productions, bnf.Production{ID: bnf.ProductionID(i), Head: bnf.NonterminalID(head), Elements: elems, Action: action})
	}

	empty, rest, err := readInt(rest)
	if err != nil {
		return nil, nil, fmt.Errorf("read empty nonterminal id: %w", err)
	}
	g.EmptyNonterminal = bnf.NonterminalID(empty)

	return g, rest, nil
}

func readAction(data []byte) (bnf.Action, []byte, error) {
	var a bnf.Action
	rest := data
	var err error

	var kind, typ int
	if kind, rest, err = readInt(rest); err != nil {
		return a, nil, err
	}
	if typ, rest, err = readInt(rest); err != nil {
		return a, nil, err
	}
	a.Kind = bnf.ActionKind(kind)
	a.Type = gentypes.ID(typ)

	if a.ConstKind, rest, err = readInt(rest); err != nil {
		return a, nil, err
	}
	if a.ConstIntVal, rest, err = readInt(rest); err != nil {
		return a, nil, err
	}
	if a.ConstBoolVal, rest, err = readBool(rest); err != nil {
		return a, nil, err
	}
	if a.ConstStrVal, rest, err = readStr(rest); err != nil {
		return a, nil, err
	}
	if a.SourceIndex, rest, err = readInt(rest); err != nil {
		return a, nil, err
	}
	if a.SepIndex, rest, err = readInt(rest); err != nil {
		return a, nil, err
	}
	if a.ElemIndex, rest, err = readInt(rest); err != nil {
		return a, nil, err
	}

	fieldCount, rest, err := readInt(rest)
	if err != nil {
		return a, nil, err
	}
	for i := 0; i < fieldCount; i++ {
		var name string
		var idx int
		if name, rest, err = readStr(rest); err != nil {
			return a, nil, err
		}
		if idx, rest, err = readInt(rest); err != nil {
			return a, nil, err
		}
		a.Fields = append(a.Fields, bnf.ClassField{Name: name, ElementIndex: idx})
	}

	partCount, rest, err := readInt(rest)
	if err != nil {
		return a, nil, err
	}
	for i := 0; i < partCount; i++ {
		var idx int
		if idx, rest, err = readInt(rest); err != nil {
			return a, nil, err
		}
		a.PartClasses = append(a.PartClasses, idx)
	}

	subCount, rest, err := readInt(rest)
	if err != nil {
		return a, nil, err
	}
	for i := 0; i < subCount; i++ {
		var idx int
		if idx, rest, err = readInt(rest); err != nil {
			return a, nil, err
		}
		a.SubClasses = append(a.SubClasses, idx)
	}

	return a, rest, nil
}

func appendTableBody(buf []byte, t *lrgen.Table) []byte {
	buf = appendInt(buf, len(t.Collection.States))
	for _, st := range t.Collection.States {
		buf = appendInt(buf, st.ID)

		shifts := t.Shifts[st.ID]
		buf = appendInt(buf, len(shifts))
		for term, next := range shifts {
			buf = appendInt(buf, int(term))
			buf = appendInt(buf, next)
		}

		gotos := t.Gotos[st.ID]
		buf = appendInt(buf, len(gotos))
		for nt, next := range gotos {
			buf = appendInt(buf, int(nt))
			buf = appendInt(buf, next)
		}

		reduces := t.Reduces[st.ID]
		buf = appendInt(buf, len(reduces))
		for _, p := range reduces {
			buf = appendInt(buf, int(p))
		}

		buf = appendBool(buf, t.AcceptStates[st.ID])
	}
	return buf
}

func readTableBody(data []byte, t *lrgen.Table) error {
	stateCount, rest, err := readInt(data)
	if err != nil {
		return fmt.Errorf("read state count: %w", err)
	}

	t.Shifts = map[int]map[bnf.TerminalID]int{}
	t.Gotos = map[int]map[bnf.NonterminalID]int{}
	t.Reduces = map[int][]bnf.ProductionID{}
	t.AcceptStates = map[int]bool{}

	coll := &automatonCollectionBuilder{}

	for i := 0; i < stateCount; i++ {
		var id int
		if id, rest, err = readInt(rest); err != nil {
			return err
		}
		coll.addState(id)

		var shiftCount int
		if shiftCount, rest, err = readInt(rest); err != nil {
			return err
		}
		shifts := map[bnf.TerminalID]int{}
		for j := 0; j < shiftCount; j++ {
			var term, next int
			if term, rest, err = readInt(rest); err != nil {
				return err
			}
			if next, rest, err = readInt(rest); err != nil {
				return err
			}
			shifts[bnf.TerminalID(term)] = next
		}
		if len(shifts) > 0 {
			t.Shifts[id] = shifts
		}

		var gotoCount int
		if gotoCount, rest, err = readInt(rest); err != nil {
			return err
		}
		gotos := map[bnf.NonterminalID]int{}
		for j := 0; j < gotoCount; j++ {
			var nt, next int
			if nt, rest, err = readInt(rest); err != nil {
				return err
			}
			if next, rest, err = readInt(rest); err != nil {
				return err
			}
			gotos[bnf.NonterminalID(nt)] = next
		}
		if len(gotos) > 0 {
			t.Gotos[id] = gotos
		}

		var reduceCount int
		if reduceCount, rest, err = readInt(rest); err != nil {
			return err
		}
		var reduces []bnf.ProductionID
		for j := 0; j < reduceCount; j++ {
			var p int
			if p, rest, err = readInt(rest); err != nil {
				return err
			}
			reduces = append(reduces, bnf.ProductionID(p))
		}
		if len(reduces) > 0 {
			t.Reduces[id] = reduces
		}

		var accept bool
		if accept, rest, err = readBool(rest); err != nil {
			return err
		}
		if accept {
			t.AcceptStates[id] = true
		}
	}

	t.Collection = coll.build()
	return nil
}

// automatonCollectionBuilder reconstructs the minimal automaton.Collection
// shape dump needs (state IDs in discovery order) without recomputing
// item-set closures, which the dump format does not preserve: a loaded
// Table's Collection.States[i].Items is always nil, since nothing
// downstream of a load (internal/emit, internal/fingerprint,
// internal/debugsrv) inspects raw items, only the Shifts/Gotos/Reduces
// tables this file already restores in full.
type automatonCollectionBuilder struct {
	ids []int
}

func (b *automatonCollectionBuilder) addState(id int) {
	b.ids = append(b.ids, id)
}

func (b *automatonCollectionBuilder) build() *automaton.Collection {
	coll := &automaton.Collection{}
	for _, id := range b.ids {
		coll.States = append(coll.States, automaton.State{ID: id})
	}
	// BuildCollection always discovers the start state first (automaton.go's
	// addState(startSet) happens before the BFS frontier loop), so state 0
	// is the start state in every table this package ever dumps.
	coll.Start = 0
	return coll
}
