// Package gparse is the grammar-file frontend spec §1 names only by the
// interface it must expose ("a token stream producing (kind, optional
// value) pairs; a lexical-error channel") and otherwise treats as an
// external collaborator. cmd/syngen still needs a concrete one to turn a
// `.ebnf` source file into the ast.Arena and registry.Registry that
// syngen.Generate consumes, so this package provides a reference
// implementation covering the common surface: terminal/type declarations
// and nonterminal bodies built from Or, And, NameElement, NameRef,
// StringLiteral, and the `?`/`*`/`+` postfix loop operators. Cast
// annotations, ThisElement, and Const literals are intentionally left to
// a richer frontend — this one exists so the pipeline has *a* working
// entry point, not to be the final word on meta-grammar syntax.
//
// Grounded on internal/scanner for tokenizing (reused directly: a
// hand-rolled lexer's pattern-table shape is exactly as suited to this
// meta-grammar as to a generated one) and on the teacher's
// internal/ictiobus recursive-descent style for the parser on top of it.
package gparse

import (
	"github.com/dekarrin/syngen/internal/ast"
	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/glr"
	"github.com/dekarrin/syngen/internal/registry"
	"github.com/dekarrin/syngen/internal/scanner"
)

// Token kinds for the bootstrap lexer, reusing bnf.TerminalID only
// because internal/scanner.Rule is typed against it — these never flow
// into a bnf.Grammar the way a generated parser's terminals do.
const (
	tokIdent bnf.TerminalID = iota
	tokString
	tokAt
	tokColon
	tokSemi
	tokPipe
	tokQuestion
	tokStar
	tokPlus
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokEquals
	tokKwToken
	tokKwType
)

var lexRules = []scanner.Rule{
	{Terminal: tokKwToken, Pattern: `token\b`, Priority: 0},
	{Terminal: tokKwType, Pattern: `type\b`, Priority: 0},
	{Terminal: tokIdent, Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Priority: 1},
	{Terminal: tokString, Pattern: `"(\\.|[^"\\])*"`, Priority: 0},
	{Terminal: tokAt, Pattern: `@`, Priority: 0},
	{Terminal: tokColon, Pattern: `:`, Priority: 0},
	{Terminal: tokSemi, Pattern: `;`, Priority: 0},
	{Terminal: tokPipe, Pattern: `\|`, Priority: 0},
	{Terminal: tokQuestion, Pattern: `\?`, Priority: 0},
	{Terminal: tokStar, Pattern: `\*`, Priority: 0},
	{Terminal: tokPlus, Pattern: `\+`, Priority: 0},
	{Terminal: tokLParen, Pattern: `\(`, Priority: 0},
	{Terminal: tokRParen, Pattern: `\)`, Priority: 0},
	{Terminal: tokLBrace, Pattern: `\{`, Priority: 0},
	{Terminal: tokRBrace, Pattern: `\}`, Priority: 0},
	{Terminal: tokEquals, Pattern: `=`, Priority: 0},
	{Pattern: `//[^\n]*`, Skip: true, Priority: 0},
	{Pattern: `\s+`, Skip: true, Priority: 0},
}

// Parse reads src (named file for diagnostics) and builds an Arena and
// Registry ready for syngen.Generate, or the first ebnferrors.Error
// encountered.
func Parse(file, src string) (*ast.Arena, *registry.Registry, error) {
	sc, err := scanner.New(src, lexRules)
	if err != nil {
		return nil, nil, ebnferrors.IllegalState("compile bootstrap lexer rules: %s", err)
	}
	sc.ValueFunc = func(terminal bnf.TerminalID, lexeme string) interface{} {
		switch terminal {
		case tokString:
			return lexeme[1 : len(lexeme)-1]
		case tokIdent:
			return lexeme
		default:
			return nil
		}
	}

	p := &parser{file: file, sc: sc, arena: ast.NewArena()}
	p.reg = registry.New(p.arena)
	if err := p.advance(); err != nil {
		return nil, nil, err
	}

	for p.tok.Terminal != glr.EOF {
		if err := p.declaration(); err != nil {
			return nil, nil, err
		}
	}

	return p.arena, p.reg, nil
}

type parser struct {
	file  string
	sc    *scanner.Scanner
	arena *ast.Arena
	reg   *registry.Registry
	tok   glr.Token
}

func (p *parser) pos() ast.Pos {
	pos := p.tok.Pos
	pos.File = p.file
	return pos
}

func (p *parser) advance() error {
	tok, err := p.sc.Scan()
	if err != nil {
		return ebnferrors.New(ebnferrors.KindLexical, p.pos(), "%s", err.Error())
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(term bnf.TerminalID, what string) (string, error) {
	if p.tok.Terminal != term {
		return "", ebnferrors.New(ebnferrors.KindSyntax, p.pos(), "expected %s", what)
	}
	var text string
	if s, ok := p.tok.Value.(string); ok {
		text = s
	}
	if err := p.advance(); err != nil {
		return "", err
	}
	return text, nil
}

func (p *parser) declaration() error {
	switch p.tok.Terminal {
	case tokKwToken:
		return p.tokenDecl()
	case tokKwType:
		return p.typeDecl()
	default:
		return p.nonterminalDecl()
	}
}

func (p *parser) tokenDecl() error {
	if err := p.advance(); err != nil {
		return err
	}
	name, err := p.expect(tokIdent, "terminal name")
	if err != nil {
		return err
	}
	decl := ast.TerminalDecl{Name: ast.Ident{Name: name, Pos: p.pos()}}

	if p.tok.Terminal == tokLBrace {
		typeName, err := p.bracedType()
		if err != nil {
			return err
		}
		decl.TokenType = &ast.TypeRef{Name: ast.Ident{Name: typeName, Pos: p.pos()}}
	}

	if _, err := p.expect(tokSemi, `";"`); err != nil {
		return err
	}

	if _, err := p.reg.RegisterTerminal(decl); err != nil {
		return err
	}
	return nil
}

func (p *parser) typeDecl() error {
	if err := p.advance(); err != nil {
		return err
	}
	name, err := p.expect(tokIdent, "type name")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokSemi, `";"`); err != nil {
		return err
	}
	return p.reg.RegisterTypeDecl(ast.TypeDecl{Name: ast.Ident{Name: name, Pos: p.pos()}})
}

func (p *parser) bracedType() (string, error) {
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return "", err
	}
	name, err := p.expect(tokIdent, "type name")
	if err != nil {
		return "", err
	}
	if _, err := p.expect(tokRBrace, `"}"`); err != nil {
		return "", err
	}
	return name, nil
}

func (p *parser) nonterminalDecl() error {
	isStart := false
	if p.tok.Terminal == tokAt {
		isStart = true
		if err := p.advance(); err != nil {
			return err
		}
	}

	name, err := p.expect(tokIdent, "nonterminal name")
	if err != nil {
		return err
	}

	decl := ast.NonterminalDecl{Name: ast.Ident{Name: name, Pos: p.pos()}, IsStart: isStart}
	if p.tok.Terminal == tokLBrace {
		typeName, err := p.bracedType()
		if err != nil {
			return err
		}
		decl.ExplicitType = &ast.TypeRef{Name: ast.Ident{Name: typeName, Pos: p.pos()}}
	}

	if _, err := p.expect(tokColon, `":"`); err != nil {
		return err
	}

	body, err := p.orExpr()
	if err != nil {
		return err
	}
	decl.Body = body

	if _, err := p.expect(tokSemi, `";"`); err != nil {
		return err
	}

	_, err = p.reg.RegisterNonterminal(decl)
	return err
}

func (p *parser) orExpr() (ast.ExprID, error) {
	pos := p.pos()
	first, err := p.andExpr()
	if err != nil {
		return ast.NoExpr, err
	}

	alts := []ast.ExprID{first}
	for p.tok.Terminal == tokPipe {
		if err := p.advance(); err != nil {
			return ast.NoExpr, err
		}
		next, err := p.andExpr()
		if err != nil {
			return ast.NoExpr, err
		}
		alts = append(alts, next)
	}

	if len(alts) == 1 {
		return alts[0], nil
	}

	id := p.arena.NewExpr(ast.KindOr, pos)
	p.arena.Expr(id).Sub = alts
	return id, nil
}

func (p *parser) andExpr() (ast.ExprID, error) {
	pos := p.pos()
	var elems []ast.ExprID

	for p.startsElement() {
		el, err := p.postfix()
		if err != nil {
			return ast.NoExpr, err
		}
		elems = append(elems, el)
	}

	if len(elems) == 0 {
		return ast.NoExpr, ebnferrors.New(ebnferrors.KindSyntax, pos, "expected at least one element")
	}
	if len(elems) == 1 {
		return elems[0], nil
	}

	id := p.arena.NewExpr(ast.KindAnd, pos)
	p.arena.Expr(id).Sub = elems
	return id, nil
}

func (p *parser) startsElement() bool {
	switch p.tok.Terminal {
	case tokIdent, tokString, tokLParen:
		return true
	default:
		return false
	}
}

func (p *parser) postfix() (ast.ExprID, error) {
	pos := p.pos()
	base, err := p.primary()
	if err != nil {
		return ast.NoExpr, err
	}

	switch p.tok.Terminal {
	case tokQuestion:
		if err := p.advance(); err != nil {
			return ast.NoExpr, err
		}
		id := p.arena.NewExpr(ast.KindZeroOne, pos)
		p.arena.Expr(id).Sub = []ast.ExprID{base}
		return id, nil
	case tokStar:
		if err := p.advance(); err != nil {
			return ast.NoExpr, err
		}
		id := p.arena.NewExpr(ast.KindZeroMany, pos)
		p.arena.Expr(id).Sub = []ast.ExprID{base}
		return id, nil
	case tokPlus:
		if err := p.advance(); err != nil {
			return ast.NoExpr, err
		}
		id := p.arena.NewExpr(ast.KindOneMany, pos)
		p.arena.Expr(id).Sub = []ast.ExprID{base}
		return id, nil
	default:
		return base, nil
	}
}

func (p *parser) primary() (ast.ExprID, error) {
	pos := p.pos()

	switch p.tok.Terminal {
	case tokString:
		text := p.tok.Value.(string)
		if err := p.advance(); err != nil {
			return ast.NoExpr, err
		}
		id := p.arena.NewExpr(ast.KindStringLiteral, pos)
		p.arena.Expr(id).Name = text
		return id, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return ast.NoExpr, err
		}
		inner, err := p.orExpr()
		if err != nil {
			return ast.NoExpr, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return ast.NoExpr, err
		}
		return inner, nil

	case tokIdent:
		name := p.tok.Value.(string)
		if err := p.advance(); err != nil {
			return ast.NoExpr, err
		}
		if p.tok.Terminal == tokEquals {
			if err := p.advance(); err != nil {
				return ast.NoExpr, err
			}
			sub, err := p.postfix()
			if err != nil {
				return ast.NoExpr, err
			}
			id := p.arena.NewExpr(ast.KindNameElement, pos)
			node := p.arena.Expr(id)
			node.Name = name
			node.Sub = []ast.ExprID{sub}
			return id, nil
		}
		id := p.arena.NewExpr(ast.KindNameRef, pos)
		p.arena.Expr(id).Name = name
		return id, nil

	default:
		return ast.NoExpr, ebnferrors.New(ebnferrors.KindSyntax, pos, "unexpected token in expression")
	}
}
