// Package gentypes is the type system of spec §3: a tagged union over
// {PrimitiveType, ClassType, VoidType, ArrayType}, plus the coarser
// GeneralType used to validate cast compatibility ahead of the full
// concrete-type pass (spec §4.2).
//
// Types are interned: two requests for the same primitive or the same
// nonterminal-backed class type return the same Type value (by ID), so
// that callers can compare types with ==.
package gentypes

import "fmt"

// Kind discriminates the Type union.
type Kind int

const (
	KindVoid Kind = iota
	KindPrimitive
	KindClass
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindPrimitive:
		return "primitive"
	case KindClass:
		return "class"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// GeneralType is the coarsened categorization of a Type used by the
// general-type propagation pass (spec §4.2) to reject cross-category casts
// (Class↔Primitive etc.) before the full concrete-type inference runs.
type GeneralType int

const (
	GeneralVoid GeneralType = iota
	GeneralPrimitive
	GeneralArray
	GeneralClass
)

func (g GeneralType) String() string {
	switch g {
	case GeneralVoid:
		return "Void"
	case GeneralPrimitive:
		return "Primitive"
	case GeneralArray:
		return "Array"
	case GeneralClass:
		return "Class"
	default:
		return "Unknown"
	}
}

// ID is a dense, stable handle to an interned Type. It is what the arena
// (internal/ast) actually stores on extension records, per the Design
// Notes §9 recommendation to key everything by dense id rather than by
// pointer.
type ID int

// Type is one member of the tagged union described in spec §3.
//
//   - KindVoid: no other fields meaningful.
//   - KindPrimitive: Name is the declared name (including the three
//     synthetic names const_int/const_bool/const_str); System is true for
//     those three only. Types registered by a `token NAME {T}` or
//     `type NAME` declaration come from PrimitiveUser and have System false.
//   - KindClass: Name is either a user type name, or, for an implicit
//     nonterminal class type, the name of the nonterminal it was created
//     for (NonterminalName is then non-empty).
//   - KindArray: Element is the ID of the element type.
type Type struct {
	id     ID
	Kind   Kind
	Name   string
	System bool

	// NonterminalName is set when this ClassType was created implicitly
	// from a nonterminal's body rather than declared with `type NAME;`.
	NonterminalName string

	Element ID // valid only when Kind == KindArray
}

// ID returns the interned handle for this type.
func (t Type) ID() ID { return t.id }

// General returns the GeneralType category of t.
func (t Type) General() GeneralType {
	switch t.Kind {
	case KindVoid:
		return GeneralVoid
	case KindPrimitive:
		return GeneralPrimitive
	case KindArray:
		return GeneralArray
	case KindClass:
		return GeneralClass
	default:
		return GeneralVoid
	}
}

func (t Type) String() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindArray:
		return "[]" + fmt.Sprintf("<type %d>", t.Element)
	default:
		return t.Name
	}
}

// The three synthetic primitive names that are always pre-registered, per
// spec §3.
const (
	ConstInt  = "const_int"
	ConstBool = "const_bool"
	ConstStr  = "const_str"
)

// Table is the interning store for Types: the registry's type namespace
// delegates here for actual Type creation and lookup, keeping "is this
// name already a type" (registry concern, spec §4.1) separate from "what
// is the canonical Type value for this name" (this package's concern).
type Table struct {
	types     []Type
	byKey     map[string]ID // primitive/class lookup key -> ID
	voidID    ID
	arrayByEl map[ID]ID
}

// NewTable creates a Table with the void type and the three synthetic
// const_* primitives pre-registered, as spec §3 requires.
func NewTable() *Table {
	t := &Table{
		byKey:     map[string]ID{},
		arrayByEl: map[ID]ID{},
	}
	t.voidID = t.intern(Type{Kind: KindVoid, Name: "void"}, "")
	t.PrimitiveSystem(ConstInt)
	t.PrimitiveSystem(ConstBool)
	t.PrimitiveSystem(ConstStr)
	return t
}

func (t *Table) intern(typ Type, key string) ID {
	id := ID(len(t.types))
	typ.id = id
	t.types = append(t.types, typ)
	if key != "" {
		t.byKey[key] = id
	}
	return id
}

// Void returns the singleton void type.
func (t *Table) Void() Type { return t.types[t.voidID] }

// Get resolves an ID to its Type. Panics if id is out of range, which would
// indicate a dangling handle (an arena bug, not user input).
func (t *Table) Get(id ID) Type {
	return t.types[id]
}

func primKey(system bool, name string) string {
	if system {
		return "sys:" + name
	}
	return "usr:" + name
}

// PrimitiveUser creates-or-fetches a user-declared primitive type of the
// given name (from `token NAME {T}` or `type NAME;`, spec §4.1).
func (t *Table) PrimitiveUser(name string) Type {
	return t.primitive(false, name)
}

// PrimitiveSystem creates-or-fetches a built-in primitive type, used for
// the three const_* synthetic types.
func (t *Table) PrimitiveSystem(name string) Type {
	return t.primitive(true, name)
}

func (t *Table) primitive(system bool, name string) Type {
	key := primKey(system, name)
	if id, ok := t.byKey[key]; ok {
		return t.types[id]
	}
	id := t.intern(Type{Kind: KindPrimitive, Name: name, System: system}, key)
	return t.types[id]
}

// ClassByName creates-or-fetches a bare class type declared by `type
// NAME;` or referenced as an explicit AND type, keyed by name alone (spec
// §4.1 "an implicit bare class type").
func (t *Table) ClassByName(name string) Type {
	key := "cls:" + name
	if id, ok := t.byKey[key]; ok {
		return t.types[id]
	}
	id := t.intern(Type{Kind: KindClass, Name: name}, key)
	return t.types[id]
}

// ClassForNonterminal creates-or-fetches the implicit class type synthesized
// for a nonterminal that produces a Class-meaning AND with no explicit type
// (spec §4.1 "an implicit nonterminal class type (created lazily)").
func (t *Table) ClassForNonterminal(ntName string) Type {
	key := "ntcls:" + ntName
	if id, ok := t.byKey[key]; ok {
		return t.types[id]
	}
	id := t.intern(Type{Kind: KindClass, Name: ntName, NonterminalName: ntName}, key)
	return t.types[id]
}

// Array creates-or-fetches the array type whose element type is el.
func (t *Table) Array(el ID) Type {
	if id, ok := t.arrayByEl[el]; ok {
		return t.types[id]
	}
	id := ID(len(t.types))
	typ := Type{id: id, Kind: KindArray, Element: el}
	t.types = append(t.types, typ)
	t.arrayByEl[el] = id
	return typ
}

// Equal reports whether two Types are the same interned type.
func Equal(a, b Type) bool {
	return a.id == b.id
}

// AssignableCast reports whether casting general-type `from` to
// general-type `to` is permitted by spec §4.2: casts between different
// general categories are rejected outright (e.g. Class↔Primitive); the
// finer-grained subclass/equal check happens later, in the concrete-type
// pass (spec §4.4 "implicit cast insertion").
func AssignableCast(from, to GeneralType) bool {
	if from == GeneralVoid || to == GeneralVoid {
		return false
	}
	return from == to
}
