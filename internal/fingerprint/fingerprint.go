// Package fingerprint computes a stable content hash over a generated
// lrgen.Table, for `syngen --fingerprint` (spec §6 domain stack): two
// generator runs over byte-identical grammar source must produce the same
// fingerprint regardless of process or machine, and any change to the
// grammar or to the generator's lowering/table-construction logic that
// changes the emitted table must change it.
//
// Grounded on golang.org/x/crypto/blake2b, one of the teacher's go.mod
// dependencies (pulled in there for bcrypt's sibling package); blake2b is
// used here directly rather than through bcrypt because a fingerprint
// needs a fast, deterministic digest, not a slow password hash.
package fingerprint

import (
	"encoding/binary"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/lrgen"
	"golang.org/x/crypto/blake2b"
)

// Size is the digest length in bytes, blake2b-256.
const Size = 32

// Of hashes the structural content of t: its grammar's nonterminals,
// terminals, and productions (including each production's Action), plus
// the table's shift/goto/reduce entries, in the arena's dense-id order
// (spec invariant: all id assignment is deterministic, so iterating
// Nonterminals/Terminals/Productions/Collection.States by index already
// visits them in a stable, reproducible order without needing to sort by
// name first).
func Of(t *lrgen.Table) [Size]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 with a nil key only fails for an invalid key
		// length, which nil never triggers.
		panic(err)
	}

	writeGrammar(h, t.Grammar)
	writeTable(h, t)

	var out [Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeUint(h interface{ Write([]byte) (int, error) }, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(n)))
	h.Write(buf[:])
}

func writeStr(h interface{ Write([]byte) (int, error) }, s string) {
	writeUint(h, len(s))
	h.Write([]byte(s))
}

func writeGrammar(h interface{ Write([]byte) (int, error) }, g *bnf.Grammar) {
	writeUint(h, len(g.Nonterminals))
	for _, nt := range g.Nonterminals {
		writeStr(h, nt.Name)
		writeUint(h, int(nt.Type))
	}

	writeUint(h, len(g.Terminals))
	for _, term := range g.Terminals {
		writeStr(h, term.Name)
		writeUint(h, int(term.Kind))
		writeStr(h, term.Literal)
		writeUint(h, int(term.Type))
	}

	writeUint(h, len(g.Productions))
	for _, p := range g.Productions {
		writeUint(h, int(p.Head))
		writeUint(h, len(p.Elements))
		for _, sym := range p.Elements {
			writeUint(h, int(sym.Kind))
			writeUint(h, int(sym.Nonterminal))
			writeUint(h, int(sym.Terminal))
		}
		writeAction(h, p.Action)
	}
}

func writeAction(h interface{ Write([]byte) (int, error) }, a bnf.Action) {
	writeUint(h, int(a.Kind))
	writeUint(h, int(a.Type))
	writeUint(h, a.ConstKind)
	writeUint(h, a.ConstIntVal)
	if a.ConstBoolVal {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	writeStr(h, a.ConstStrVal)
	writeUint(h, a.SourceIndex)
	writeUint(h, a.SepIndex)
	writeUint(h, a.ElemIndex)

	writeUint(h, len(a.Fields))
	for _, f := range a.Fields {
		writeStr(h, f.Name)
		writeUint(h, f.ElementIndex)
	}
	writeUint(h, len(a.PartClasses))
	for _, i := range a.PartClasses {
		writeUint(h, i)
	}
	writeUint(h, len(a.SubClasses))
	for _, i := range a.SubClasses {
		writeUint(h, i)
	}
}

func writeTable(h interface{ Write([]byte) (int, error) }, t *lrgen.Table) {
	writeUint(h, len(t.Collection.States))
	for _, st := range t.Collection.States {
		writeUint(h, st.ID)

		shifts := t.Shifts[st.ID]
		writeUint(h, len(shifts))
		for _, term := range sortedTerminalIDs(shifts) {
			writeUint(h, int(term))
			writeUint(h, shifts[term])
		}

		gotos := t.Gotos[st.ID]
		writeUint(h, len(gotos))
		for _, nt := range sortedNonterminalIDs(gotos) {
			writeUint(h, int(nt))
			writeUint(h, gotos[nt])
		}

		reduces := t.Reduces[st.ID]
		writeUint(h, len(reduces))
		for _, prod := range reduces {
			writeUint(h, int(prod))
		}

		if t.AcceptStates[st.ID] {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
}

func sortedTerminalIDs(m map[bnf.TerminalID]int) []bnf.TerminalID {
	out := make([]bnf.TerminalID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func sortedNonterminalIDs(m map[bnf.NonterminalID]int) []bnf.NonterminalID {
	out := make([]bnf.NonterminalID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
