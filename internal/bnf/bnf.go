// Package bnf holds the lowered grammar's data model (spec §4.4): BNF
// symbols, nonterminals, terminals, productions, and the per-production
// Action that tells the runtime how to reconstruct a value at reduce time.
//
// Grounded on the teacher's `ictiobus/grammar` package's "dense index,
// assigned at construction" discipline for symbol/production numbering,
// and on original_source/syn/core/converter.cpp for the action taxonomy.
package bnf

import "github.com/dekarrin/syngen/internal/gentypes"

// SymbolKind discriminates a BnfSymbol: BNF has exactly two symbol kinds,
// same as the source grammar, but every BNF nonterminal is synthetic or a
// thin wrapper over a user nonterminal/terminal.
type SymbolKind int

const (
	SymNonterminal SymbolKind = iota
	SymTerminal
)

// NonterminalID and TerminalID are dense indices into Grammar.Nonterminals
// and Grammar.Terminals respectively, assigned in allocation order.
type NonterminalID int
type TerminalID int

// Symbol is a single element of a production's right-hand side.
type Symbol struct {
	Kind        SymbolKind
	Nonterminal NonterminalID
	Terminal    TerminalID
}

// Nonterminal is a BNF nonterminal. Name carries the `N_`/`A_` prefix
// convention spec §4.4 assigns: `N_` for a direct image of a user
// nonterminal, `A_` plus a dense index for every synthesized auxiliary
// (OR/loop/optional/cast helper).
type Nonterminal struct {
	ID   NonterminalID
	Name string

	// Type is the single concrete type every production attached to this
	// nonterminal must produce (spec §4.4 "this keeps every nonterminal
	// single-typed").
	Type gentypes.ID

	Productions []ProductionID
}

// TerminalKind discriminates the two ways a BNF terminal can arise.
type TerminalKind int

const (
	TermNamed  TerminalKind = iota // from a TerminalDecl, prefix T_
	TermString                     // from a deduplicated string literal
)

// Terminal is a BNF terminal.
type Terminal struct {
	ID   TerminalID
	Name string
	Kind TerminalKind

	// Literal is the string-literal content for a TermString terminal.
	Literal string

	// IsKeywordLike is true iff Literal is a valid identifier, spec §4.4's
	// "flagged is_keyword_like iff the literal is a valid identifier".
	IsKeywordLike bool

	Type gentypes.ID
}

// ProductionID is a dense index into Grammar.Productions.
type ProductionID int

// Production is a single BNF rule `Head -> Elements...` carrying the
// Action that reconstructs its value.
type Production struct {
	ID       ProductionID
	Head     NonterminalID
	Elements []Symbol
	Action   Action
}

// ActionKind discriminates the Action union (spec §4.4's lowering rules).
type ActionKind int

const (
	ActionVoid ActionKind = iota
	ActionConst
	ActionCast
	ActionCopy
	ActionResultAnd
	ActionClass
	ActionPartClass
	ActionFirstList
	ActionNextList
	ActionAccept
)

func (k ActionKind) String() string {
	switch k {
	case ActionVoid:
		return "Void"
	case ActionConst:
		return "Const"
	case ActionCast:
		return "Cast"
	case ActionCopy:
		return "Copy"
	case ActionResultAnd:
		return "ResultAnd"
	case ActionClass:
		return "Class"
	case ActionPartClass:
		return "PartClass"
	case ActionFirstList:
		return "FirstList"
	case ActionNextList:
		return "NextList"
	case ActionAccept:
		return "Accept"
	default:
		return "Unknown"
	}
}

// ClassField is one named attribute of a Class/PartClass action, giving
// the element index within the production whose value it takes.
type ClassField struct {
	Name         string
	ElementIndex int
}

// Action is a single flattened sum type over spec §4.4's action
// taxonomy — same single-sum-type-per-family pattern used for ast.Expr
// and attrs.Conversion.
//
// Field usage by Kind:
//   - ActionVoid, ActionAccept: no other fields.
//   - ActionConst: ConstIntVal/ConstBoolVal/ConstStrVal/ConstKind per the
//     literal kind; Type is the literal's primitive type.
//   - ActionCast: SourceIndex names the single element being cast; Type is
//     the cast's target type.
//   - ActionCopy: SourceIndex names the single element whose value is
//     copied through unchanged.
//   - ActionResultAnd: SourceIndex names the this= or sole-attribute
//     element whose value becomes the production's result.
//   - ActionClass, ActionPartClass: Type is the class type; Fields holds
//     the named attributes; PartClasses/SubClasses hold the element
//     indices of any nested part-class/sub-class elements folded in.
//   - ActionFirstList: SourceIndex names the single element starting the
//     list.
//   - ActionNextList: SourceIndex names the list-so-far element;
//     SepIndex is >=0 when a separator element is present; ElemIndex
//     names the newly appended element.
type Action struct {
	Kind ActionKind
	Type gentypes.ID

	ConstKind    int
	ConstIntVal  int
	ConstBoolVal bool
	ConstStrVal  string

	SourceIndex int
	SepIndex    int
	ElemIndex   int

	Fields      []ClassField
	PartClasses []int
	SubClasses  []int
}

// Grammar is the full lowered BNF grammar, owned by a single conversion
// run (spec §4.4 "Data it allocates").
type Grammar struct {
	Nonterminals []Nonterminal
	Terminals    []Terminal
	Productions  []Production

	// EmptyNonterminal is the shared `A_Empty -> ε` nonterminal every
	// Void-meaning auxiliary reuses (spec §4.4 "One shared empty
	// nonterminal").
	EmptyNonterminal NonterminalID

	stringTerms map[string]TerminalID
	auxCounter  int
}

// NewGrammar allocates an empty Grammar with its shared empty nonterminal
// pre-registered. Its type is gentypes.ID(0), relying on the convention
// (gentypes.NewTable's doc comment) that the void type is always interned
// first and so always holds id 0 in whichever Table the caller pairs with
// this Grammar.
func NewGrammar() *Grammar {
	g := &Grammar{stringTerms: map[string]TerminalID{}}
	empty := g.AddNonterminal("A_Empty", gentypes.ID(0))
	g.Productions = append(g.Productions, Production{
		ID:       ProductionID(len(g.Productions)),
		Head:     empty,
		Elements: nil,
		Action:   Action{Kind: ActionVoid},
	})
	g.Nonterminals[empty].Productions = append(g.Nonterminals[empty].Productions, g.Productions[len(g.Productions)-1].ID)
	g.EmptyNonterminal = empty
	return g
}

// AddNonterminal allocates a new BNF nonterminal with the given name and
// type, returning its dense id.
func (g *Grammar) AddNonterminal(name string, typ gentypes.ID) NonterminalID {
	id := NonterminalID(len(g.Nonterminals))
	g.Nonterminals = append(g.Nonterminals, Nonterminal{ID: id, Name: name, Type: typ})
	return id
}

// NewAuxName returns the next `A_<n>` auxiliary nonterminal name, dense
// and stable within this Grammar's lifetime (spec §4.4 "prefix A_, dense
// index").
func (g *Grammar) NewAuxName() string {
	g.auxCounter++
	return "A_" + itoa(g.auxCounter)
}

// AddNamedTerminal registers a BNF terminal backed by a user TerminalDecl.
func (g *Grammar) AddNamedTerminal(name string, typ gentypes.ID) TerminalID {
	id := TerminalID(len(g.Terminals))
	g.Terminals = append(g.Terminals, Terminal{ID: id, Name: "T_" + name, Kind: TermNamed, Type: typ})
	return id
}

// InternStringTerminal returns the (possibly newly-created) terminal for
// a string literal, deduplicated by content (spec §4.4 "deduplicated by
// content").
func (g *Grammar) InternStringTerminal(literal string, typ gentypes.ID) TerminalID {
	if id, ok := g.stringTerms[literal]; ok {
		return id
	}
	id := TerminalID(len(g.Terminals))
	g.Terminals = append(g.Terminals, Terminal{
		ID:            id,
		Name:          `T_str_` + itoa(int(id)),
		Kind:          TermString,
		Literal:       literal,
		IsKeywordLike: isValidIdentifier(literal),
		Type:          typ,
	})
	g.stringTerms[literal] = id
	return id
}

// AddProduction appends a new production to the grammar and registers it
// on its head nonterminal.
func (g *Grammar) AddProduction(head NonterminalID, elements []Symbol, action Action) ProductionID {
	id := ProductionID(len(g.Productions))
	g.Productions = append(g.Productions, Production{ID: id, Head: head, Elements: elements, Action: action})
	g.Nonterminals[head].Productions = append(g.Nonterminals[head].Productions, id)
	return id
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	digits := [20]byte{}
	i := len(digits)
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		digits[i] = '-'
	}
	return string(digits[i:])
}
