// Package replshell is `syngen --repl`'s interactive diagnostic shell
// (spec §6 domain stack): the operator types a terminal-name sequence per
// line, `go-shellquote` splits it into fields the same way a shell splits
// arguments (each field is NAME or NAME=value, so a quoted field such as
// `ID="foo bar"` carries one value-bearing token), and the whole line is
// parsed by the GLR runtime as one input, printing the materialized value
// or the parse error. The `:trace` meta-command toggles echoing of the
// parser's trace hook messages.
//
// Grounded on the teacher's cmd/tqi/main.go readline-vs-direct-input
// selection and internal/input.InteractiveCommandReader for the
// readline.Instance setup/teardown shape, generalized from "read one game
// command line" to "read one scripted token sequence".
package replshell

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/syngen/internal/bnf"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/dekarrin/syngen/internal/glr"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/google/uuid"
	shellquote "github.com/kballard/go-shellquote"
)

// Shell is one interactive diagnostic session over a single loaded
// table, identified by a session id the same way the teacher tags a
// server session with google/uuid.
type Shell struct {
	rl      *readline.Instance
	table   *lrgen.Table
	out     io.Writer
	session uuid.UUID

	byName map[string]bnf.TerminalID
	trace  bool
}

// New creates a Shell over table. The returned Shell must have Close
// called on it before disposal.
func New(table *lrgen.Table, out io.Writer) (*Shell, error) {
	sessionID := uuid.New()
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "syngen[" + sessionID.String()[:8] + "]> ",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	byName := map[string]bnf.TerminalID{}
	for _, t := range table.Grammar.Terminals {
		byName[t.Name] = t.ID
	}

	return &Shell{rl: rl, table: table, out: out, session: sessionID, byName: byName}, nil
}

// Close tears down the Shell's readline resources.
func (s *Shell) Close() error {
	return s.rl.Close()
}

// Run reads scripted token-sequence lines until EOF (Ctrl-D) or a
// `:quit` meta-command.
func (s *Shell) Run() error {
	fmt.Fprintf(s.out, "session %s ready; type a terminal-name sequence, or :help\n", s.session)

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if s.handleMeta(line) {
				return nil
			}
			continue
		}

		s.step(line)
	}
}

// handleMeta tokenizes and executes a `:`-prefixed meta-command and
// reports whether the session should end.
func (s *Shell) handleMeta(line string) (quit bool) {
	fields, err := shellquote.Split(line[1:])
	if err != nil || len(fields) == 0 {
		fmt.Fprintf(s.out, "malformed meta-command: %s\n", line)
		return false
	}

	switch fields[0] {
	case "quit", "q", "exit":
		return true
	case "trace":
		s.trace = !s.trace
		fmt.Fprintf(s.out, "trace: %v\n", s.trace)
	case "terminals":
		for name := range s.byName {
			fmt.Fprintln(s.out, " ", name)
		}
	case "help":
		fmt.Fprintln(s.out, "meta-commands: :trace  :terminals  :quit  :help")
	default:
		fmt.Fprintf(s.out, "unknown meta-command %q\n", fields[0])
	}
	return false
}

// step shellquote-splits line into a terminal-name sequence (each field
// optionally followed by a `=value` suffix for a valued terminal), feeds
// it through a scriptedScanner, and prints the parse outcome.
func (s *Shell) step(line string) {
	fields, err := shellquote.Split(line)
	if err != nil {
		fmt.Fprintf(s.out, "malformed token sequence: %v\n", err)
		return
	}

	sc := &scriptedScanner{}
	for _, f := range fields {
		name, value, hasValue := strings.Cut(f, "=")
		id, ok := s.byName[name]
		if !ok {
			fmt.Fprintf(s.out, "unknown terminal %q (see :terminals)\n", name)
			return
		}
		tok := glr.Token{Terminal: id}
		if hasValue {
			tok.Value = parseScalar(value)
		}
		sc.tokens = append(sc.tokens, tok)
	}

	p := glr.NewParser(s.table, sc)
	if s.trace {
		p.RegisterTraceListener(func(msg string) {
			fmt.Fprintf(s.out, "  [trace] %s\n", msg)
		})
	}

	result, err := p.Parse()
	if err != nil {
		fmt.Fprintf(s.out, "parse error: %v\n", err)
		return
	}
	defer result.Release()

	value, err := result.Materialize()
	if err != nil {
		fmt.Fprintf(s.out, "materialize error: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "=> %#v\n", value)
}

// parseScalar interprets a REPL-typed value field as an int when it
// parses as one, else passes it through as a string; the scripted
// scanner has no grammar-specific value-parsing rules to defer to.
func parseScalar(raw string) interface{} {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

// scriptedScanner replays a fixed token sequence typed at the REPL,
// standing in for a real lexer the way the spec's `shift ID "foo bar"`
// example implies: one shell line is one fully-formed token script, not
// raw grammar source text.
type scriptedScanner struct {
	tokens []glr.Token
	pos    int
}

func (s *scriptedScanner) Scan() (glr.Token, error) {
	if s.pos >= len(s.tokens) {
		return glr.Token{Terminal: glr.EOF, Pos: ebnferrors.Pos{}}, nil
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}
