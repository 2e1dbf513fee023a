package ast

import "github.com/dekarrin/syngen/internal/ebnferrors"

// Ident is a "syntax-string" (spec §3): an identifier as it appeared in
// source, paired with the position it appeared at so every later error
// message can point back at it.
type Ident struct {
	Name string
	Pos  ebnferrors.Pos
}

func (id Ident) String() string {
	return id.Name
}
