// Package ebnferrors is the error taxonomy of the generator pipeline (spec
// §7). Every error carries the (file, line, column) of the offending
// grammar construct, and every generator error is fatal to the run: the
// pipeline stops at the first one found and emits no output, so the
// taxonomy exists to make *which* invariant was violated legible to an
// operator, not to support recovery.
//
// The split between a short Kind and a longer, position-qualified Error()
// message follows the same shape as tunaq's internal/tqerrors: a technical
// message for logs plus an Unwrap chain to whatever caused it.
package ebnferrors

import "fmt"

// Pos is a source position: the file a grammar construct came from and its
// line/column within that file. Every user-visible token in the grammar
// carries one (spec §3 "Identifiers and positions").
type Pos struct {
	File   string
	Line   int
	Column int
}

// String renders the position as "file:line:col", or "line:col" if File is
// empty (as it is for positions synthesized during generation rather than
// read from source).
func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Kind identifies which taxonomy entry of spec §7 an error belongs to.
type Kind int

const (
	// CLI errors.
	KindMissingArgument Kind = iota
	KindUnknownOption
	KindDuplicatedOption

	// Lexical / syntactic errors of the meta-grammar.
	KindLexical
	KindSyntax

	// Name errors.
	KindDuplicateName
	KindUnknownName
	KindNameIsType
	KindTokenAsType
	KindDuplicateCustomTokenType

	// Attribute errors.
	KindAttrThisConflict
	KindDuplicateAttribute
	KindDuplicateThis
	KindVoidAssignedToAttribute
	KindUseOfDeadValue
	KindThisWithExplicitType
	KindNestedAndHasExplicitType

	// Type errors.
	KindVoidCastSource
	KindVoidCastTarget
	KindIncompatibleCast
	KindIncompatibleAltTypes
	KindNonClassExplicitType
	KindUndefinedExpressionType

	// Recursion errors.
	KindRecursionThroughLoop

	// Runtime errors.
	KindRuntimeLexical
	KindRuntimeSyntax

	// Internal invariant breach; always a generator bug, never user input.
	KindIllegalState
)

var kindNames = map[Kind]string{
	KindMissingArgument:          "MissingArgument",
	KindUnknownOption:            "UnknownOption",
	KindDuplicatedOption:         "DuplicatedOption",
	KindLexical:                  "LexicalError",
	KindSyntax:                   "SyntaxError",
	KindDuplicateName:            "DuplicateName",
	KindUnknownName:              "UnknownName",
	KindNameIsType:               "NameIsType",
	KindTokenAsType:              "TokenAsType",
	KindDuplicateCustomTokenType: "DuplicateCustomTokenType",
	KindAttrThisConflict:         "AttrThisConflict",
	KindDuplicateAttribute:       "DuplicateAttribute",
	KindDuplicateThis:            "DuplicateThis",
	KindVoidAssignedToAttribute:  "VoidAssignedToAttribute",
	KindUseOfDeadValue:           "UseOfDeadValue",
	KindThisWithExplicitType:     "ThisWithExplicitType",
	KindNestedAndHasExplicitType: "NestedAndHasExplicitType",
	KindVoidCastSource:           "VoidCastSource",
	KindVoidCastTarget:           "VoidCastTarget",
	KindIncompatibleCast:         "IncompatibleCast",
	KindIncompatibleAltTypes:     "IncompatibleAltTypes",
	KindNonClassExplicitType:     "NonClassExplicitType",
	KindUndefinedExpressionType:  "UndefinedExpressionType",
	KindRecursionThroughLoop:     "RecursionThroughLoop",
	KindRuntimeLexical:           "LexicalError",
	KindRuntimeSyntax:            "SyntaxError",
	KindIllegalState:             "IllegalState",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownError"
}

// Error is a single taxonomy entry: a Kind, the position it occurred at, a
// human-readable message, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Pos     Pos
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 && e.Pos.File == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind at the given position.
func New(kind Kind, pos Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind at the given position that wraps
// cause.
func Wrap(cause error, kind Kind, pos Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// RecursionThroughLoop reports a loop body (ZeroMany/OneMany) whose
// voidness depends on a cycle back through itself, which spec §3 forbids:
// "Loop expressions cannot produce Void transitively through recursion."
// path is the chain of nonterminal names that closes the cycle, e.g.
// ["A", "B", "A"].
func RecursionThroughLoop(pos Pos, path []string) *Error {
	chain := path[0]
	for _, p := range path[1:] {
		chain += " → " + p
	}
	return New(KindRecursionThroughLoop, pos, "recursion through a loop body: %s", chain)
}

// IllegalState reports a broken internal invariant: a generator bug, not a
// bad grammar. There is no position to attach since the break was detected
// by an assertion deep in a pass, not at a user-visible token.
func IllegalState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindIllegalState, Message: fmt.Sprintf(format, args...)}
}
