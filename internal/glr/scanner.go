package glr

import (
	"fmt"

	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/ebnferrors"
)

// EOF is the sentinel terminal id a Scanner returns once input is
// exhausted (spec §6 "token == EOF signals end of input").
const EOF bnf.TerminalID = -1

// Token is one scanned unit: the BNF terminal it matches, its position,
// and (for a valued terminal) the scanned value, opaque to the parser
// core and handed to the value pool unexamined.
type Token struct {
	Terminal bnf.TerminalID
	Pos      ebnferrors.Pos
	Value    interface{}
}

// Scanner is the runtime's sole input abstraction (spec §6): repeatedly
// called for the next token until it returns EOF or an error. A lexical
// error is reported as a LexicalError, not a second return channel, so
// that Parse's error path is uniform.
type Scanner interface {
	Scan() (Token, error)
}

// SyntaxError is raised when no shift applies to the current token from
// any surviving stack top, or when input ends with no top in an accepting
// state (spec §6 "ParseError kinds: SyntaxError { position }").
type SyntaxError struct {
	Pos ebnferrors.Pos
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error", e.Pos)
}

// LexicalError wraps a Scanner-reported lexical failure (spec §6
// "LexicalError { position }").
type LexicalError struct {
	Pos ebnferrors.Pos
	Err error
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%s: lexical error: %s", e.Pos, e.Err)
}

func (e *LexicalError) Unwrap() error {
	return e.Err
}
