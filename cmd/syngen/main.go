/*
Syngen reads an EBNF grammar file and generates a Go parser facade for it:
name/type resolution, attribute-scope analysis, property propagation,
EBNF->BNF lowering, and LR(0) table construction, followed by rendering
one Parse<StartNt> function per start nonterminal.

Usage:

	syngen [flags]
	syngen --serve [flags]
	syngen --repl [flags]

The flags are:

	-v, --version
		Give the current version of syngen and then exit.

	-g, --grammar FILE
		Read the input grammar from FILE.

	-c, --config FILE
		Read additional options from a TOML config file. Defaults to
		"syngen.toml" in the current directory; missing is not an error.

	--package NAME
		Go package name for the generated source. Defaults to "generated".

	-o, --out FILE
		Write generated Go source to FILE. Defaults to "parser.go".

	--fingerprint
		Print each generated table's content fingerprint.

	--dump-tables FILE
		Write a binary snapshot of every generated table to FILE.

	--load-tables FILE
		Load a binary table snapshot instead of analyzing --grammar.

	--serve
		Start the HTTP diagnostic server (see internal/debugsrv) over the
		generated tables instead of writing source.

	--serve-addr ADDRESS
		Listen address for --serve. Defaults to "localhost:8080".

	--repl
		Start the interactive diagnostic shell (see internal/replshell)
		over the generated tables instead of writing source.

	-V, --verbose
		Print each generated table's rendering to stderr and retain 256
		diagnostic events instead of 64. Debug-level log lines are written
		to stderr with or without this flag.
*/
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dekarrin/syngen/internal/cliopts"
	"github.com/dekarrin/syngen/internal/debugsrv"
	"github.com/dekarrin/syngen/internal/dump"
	"github.com/dekarrin/syngen/internal/emit"
	"github.com/dekarrin/syngen/internal/fingerprint"
	"github.com/dekarrin/syngen/internal/gendiag"
	"github.com/dekarrin/syngen/internal/gparse"
	"github.com/dekarrin/syngen/internal/lrgen"
	"github.com/dekarrin/syngen/internal/replshell"
	"github.com/dekarrin/syngen"
	"github.com/dekarrin/syngen/internal/util"
	"github.com/dekarrin/syngen/internal/version"
)

const (
	// ExitSuccess indicates a successful run.
	ExitSuccess = iota

	// ExitUsageError indicates a problem with CLI flags or config.
	ExitUsageError

	// ExitGenerateError indicates the grammar pipeline itself failed.
	ExitGenerateError

	// ExitIOError indicates a problem reading or writing a file.
	ExitIOError
)

var returnCode = ExitSuccess

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	fs := cliopts.NewFlagSet("syngen")
	opts, err := fs.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n%s", err.Error(), fs.Usage())
		returnCode = ExitUsageError
		return
	}

	if opts.Version {
		fmt.Printf("%s\n", version.Current)
		return
	}

	retention := 256
	if !opts.Verbose {
		retention = 64
	}
	log := gendiag.New(os.Stderr, retention)

	tables, err := loadTables(opts, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGenerateError
		return
	}

	if opts.Fingerprint {
		for _, name := range sortedNames(tables) {
			sum := fingerprint.Of(tables[name])
			fmt.Printf("%s: %x\n", name, sum[:])
		}
	}

	if opts.DumpTables != "" {
		if err := writeDump(opts.DumpTables, tables); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
		log.Infof("dump", "wrote table snapshot to %s", opts.DumpTables)
	}

	switch {
	case opts.Serve:
		runServe(opts, tables, log)
	case opts.Repl:
		runRepl(tables)
	default:
		if err := writeSource(opts, tables); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}
		log.Infof("emit", "wrote generated parser facade to %s", opts.Out)
	}
}

// loadTables resolves the set of generated tables either from
// --load-tables (a prior internal/dump snapshot, skipping analysis
// entirely) or by reading --grammar through gparse and running the full
// syngen.Generate pipeline over it.
func loadTables(opts cliopts.Options, log *gendiag.Logger) (map[string]*lrgen.Table, error) {
	if opts.LoadTables != "" {
		raw, err := os.ReadFile(opts.LoadTables)
		if err != nil {
			return nil, fmt.Errorf("read table snapshot: %w", err)
		}
		table, err := dump.Read(raw)
		if err != nil {
			return nil, fmt.Errorf("decode table snapshot: %w", err)
		}
		log.Infof("dump", "loaded table snapshot from %s", opts.LoadTables)
		return map[string]*lrgen.Table{"Start": table}, nil
	}

	src, err := os.ReadFile(opts.Grammar)
	if err != nil {
		return nil, fmt.Errorf("read grammar file: %w", err)
	}

	log.Infof("gparse", "parsing grammar %s", opts.Grammar)
	arena, reg, err := gparse.Parse(opts.Grammar, string(src))
	if err != nil {
		return nil, err
	}

	log.Infof("syngen", "running generator pipeline")
	result, err := syngen.Generate(arena, reg)
	if err != nil {
		return nil, err
	}

	for _, name := range sortedNames(result.Tables) {
		table := result.Tables[name]
		log.Infof("lrgen", "built table for start nonterminal %s (%d conflicts preserved)", name, len(table.Conflicts))
		for _, c := range table.Conflicts {
			log.Debugf("lrgen", "%s: %s", name, c.Describe(table.Grammar))
		}
		if opts.Verbose {
			fmt.Fprintf(os.Stderr, "%s table:\n%s\n", name, table.Render())
		}
	}

	return result.Tables, nil
}

// writeDump snapshots one table to path. internal/dump's File wraps a
// single *lrgen.Table (spec §6 "an opaque snapshot for diffing"), so a
// grammar with multiple start nonterminals only snapshots the
// alphabetically first one; --load-tables has the same one-table
// limitation on the way back in.
func writeDump(path string, tables map[string]*lrgen.Table) error {
	names := sortedNames(tables)
	if len(names) == 0 {
		return fmt.Errorf("no tables to dump")
	}
	return os.WriteFile(path, dump.Write(tables[names[0]]), 0o644)
}

func writeSource(opts cliopts.Options, tables map[string]*lrgen.Table) error {
	src, err := emit.Source(opts.Package, &emit.Result{Tables: tables})
	if err != nil {
		return fmt.Errorf("render generated source: %w", err)
	}
	return os.WriteFile(opts.Out, src, 0o644)
}

func runServe(opts cliopts.Options, tables map[string]*lrgen.Table, log *gendiag.Logger) {
	srv := debugsrv.New(tables, log)

	tok, err := srv.IssueToken(24 * time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: issue bearer token: %s\n", err.Error())
		returnCode = ExitGenerateError
		return
	}
	fmt.Fprintf(os.Stderr, "bearer token (keep secret): %s\n", tok)
	fmt.Fprintf(os.Stderr, "listening on %s\n", opts.ServeAddr)

	if err := http.ListenAndServe(opts.ServeAddr, srv.Router()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGenerateError
	}
}

func runRepl(tables map[string]*lrgen.Table) {
	names := sortedNames(tables)
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "ERROR: no tables loaded")
		returnCode = ExitGenerateError
		return
	}

	sh, err := replshell.New(tables[names[0]], os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGenerateError
		return
	}
	defer sh.Close()

	if err := sh.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitGenerateError
	}
}

func sortedNames(tables map[string]*lrgen.Table) []string {
	return util.OrderedKeys(tables)
}
