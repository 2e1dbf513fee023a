// Package emit renders a generated syngen.Result as Go source: spec §6's
// "a parser facade exposing one parse_<StartNt> function per start
// nonterminal", each one a thin wrapper around internal/glr's runtime
// core with its internal/dump-encoded table baked in as a base64
// constant.
//
// Grounded on other_examples' nihei9/vartan driver/template.go.go, which
// renders its own generated driver through text/template and then
// reformats the result with go/format.Source before writing it out; this
// package follows the same two-step shape (fill a template, then gofmt
// it) rather than hand-assembling strings, since position/spacing
// mistakes in hand-built source are exactly what go/format exists to
// paper over.
package emit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"go/format"
	"text/template"

	"github.com/dekarrin/syngen/internal/dump"
	"github.com/dekarrin/syngen/internal/identfmt"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/dekarrin/syngen/internal/util"
)

// Result is the minimal view of a generator run emit needs: one named
// lrgen.Table per start nonterminal. syngen.Result satisfies this
// directly (its Tables field has the same shape), but emit does not
// import package syngen, to keep the dependency arrow pointing from the
// facade down to emit rather than back up.
type Result struct {
	Tables map[string]*lrgen.Table
}

type templateData struct {
	Package string
	Parsers []parserData
}

type parserData struct {
	StartName string
	FuncName  string
	VarName   string
	TableB64  string
}

// Source renders pkgName's generated parser facade for every table in
// result, sorted by start-nonterminal name for reproducible output, and
// returns it gofmt'd. An error here is always either a template/encoding
// bug (never a user-facing condition) or, from go/format.Source, a sign
// that the rendered template itself produced invalid Go — both are
// reported rather than panicked so a caller (cmd/syngen) can surface
// them as a normal pipeline failure.
func Source(pkgName string, result *Result) ([]byte, error) {
	names := util.OrderedKeys(result.Tables)

	data := templateData{Package: pkgName}
	for _, name := range names {
		table := result.Tables[name]
		encoded := base64.StdEncoding.EncodeToString(dump.Write(table))
		data.Parsers = append(data.Parsers, parserData{
			StartName: name,
			FuncName:  identfmt.FuncName(name),
			VarName:   "table" + identfmt.ExportedIdent(name),
			TableB64:  encoded,
		})
	}

	tmpl, err := template.New("facade").Parse(facadeTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse facade template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render facade template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gofmt generated facade: %w", err)
	}
	return formatted, nil
}

const facadeTemplate = `// Code generated by syngen. DO NOT EDIT.

package {{.Package}}

import (
	"encoding/base64"

	"github.com/dekarrin/syngen/internal/dump"
	"github.com/dekarrin/syngen/internal/glr"
	"github.com/dekarrin/syngen/internal/lrgen"
)

func mustLoadTable(b64 string) *lrgen.Table {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		panic("syngen: corrupt embedded table: " + err.Error())
	}
	table, err := dump.Read(raw)
	if err != nil {
		panic("syngen: corrupt embedded table: " + err.Error())
	}
	return table
}

{{range .Parsers}}
var {{.VarName}} = mustLoadTable("{{.TableB64}}")

// {{.FuncName}} parses a {{.StartName}} from scanner and returns the
// reconstructed semantic value.
func {{.FuncName}}(scanner glr.Scanner) (interface{}, error) {
	p := glr.NewParser({{.VarName}}, scanner)
	result, err := p.Parse()
	if err != nil {
		return nil, err
	}
	defer result.Release()
	return result.Materialize()
}
{{end}}
`
