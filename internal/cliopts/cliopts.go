// Package cliopts is `syngen`'s command-line/config surface (spec §6
// ambient stack): flag parsing in the teacher's cmd/tqi/main.go style
// (pflag.*P vars, held on a FlagSet instance and copied into Options by
// Parse), plus an optional `syngen.toml` config file that flag values
// override, following the layering every 12-factor-style CLI in the
// ecosystem uses (env/file defaults, flags win).
package cliopts

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/syngen/internal/ebnferrors"
	"github.com/spf13/pflag"
)

// Options is the fully resolved set of options a syngen invocation runs
// with, after merging (in increasing precedence) compiled-in defaults,
// an optional TOML config file, and command-line flags.
type Options struct {
	// Version, if true, tells main to print the version string and exit
	// without running the pipeline (spec §6 "-v, --version" is implied
	// ambient CLI surface, same shape as tqi's -v/--version).
	Version bool `toml:"-"`

	// Grammar is the path to the input grammar source file.
	Grammar string `toml:"grammar"`

	// Package is the Go package name internal/emit writes into generated
	// source's `package` clause.
	Package string `toml:"package"`

	// Out is the path internal/emit's generated source is written to.
	Out string `toml:"out"`

	// Fingerprint, if true, prints each generated table's
	// internal/fingerprint digest instead of (or alongside) generating
	// source.
	Fingerprint bool `toml:"fingerprint"`

	// DumpTables, if non-empty, is the path internal/dump's binary
	// snapshot of every generated table is written to.
	DumpTables string `toml:"dump_tables"`

	// LoadTables, if non-empty, skips grammar analysis entirely and
	// loads a prior internal/dump snapshot instead (spec §6
	// "--load-tables").
	LoadTables string `toml:"load_tables"`

	// Serve, if true, starts internal/debugsrv instead of (or after)
	// generating.
	Serve bool `toml:"-"`

	// ServeAddr is the listen address internal/debugsrv binds to.
	ServeAddr string `toml:"serve_addr"`

	// Repl, if true, starts internal/replshell instead of (or after)
	// generating.
	Repl bool `toml:"-"`

	// Verbose makes main print each generated table's rendering to stderr
	// and retain 256 internal/gendiag Events instead of 64. It does not
	// filter log lines: debug-level lines are written either way.
	Verbose bool `toml:"-"`
}

// defaults returns the compiled-in Options every run starts from, before
// any config file or flag is applied.
func defaults() Options {
	return Options{
		Package:   "generated",
		Out:       "parser.go",
		ServeAddr: "localhost:8080",
	}
}

// FlagSet is the set of pflag-bound variables a command's main wires
// directly to the flags it parses, mirroring cmd/tqi/main.go's
// package-level `pflag.StringP`-style declarations but scoped to one
// struct instance instead of global vars, so tests can construct one
// without touching the process-wide pflag.CommandLine set.
type FlagSet struct {
	flags *pflag.FlagSet

	version     *bool
	configFile  *string
	grammar     *string
	pkg         *string
	out         *string
	fingerprint *bool
	dumpTables  *string
	loadTables  *string
	serve       *bool
	serveAddr   *string
	repl        *bool
	verbose     *bool
}

// NewFlagSet declares every syngen flag on a fresh pflag.FlagSet named
// name, ready for Parse.
func NewFlagSet(name string) *FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	return &FlagSet{
		flags:       fs,
		version:     fs.BoolP("version", "v", false, "Print the generator version and exit"),
		configFile:  fs.StringP("config", "c", "syngen.toml", "Path to a TOML config file; missing is not an error"),
		grammar:     fs.StringP("grammar", "g", "", "Path to the input grammar source file"),
		pkg:         fs.String("package", "", "Go package name for generated source"),
		out:         fs.StringP("out", "o", "", "Output path for generated Go source"),
		fingerprint: fs.Bool("fingerprint", false, "Print each generated table's content fingerprint"),
		dumpTables:  fs.String("dump-tables", "", "Write a binary table snapshot to this path"),
		loadTables:  fs.String("load-tables", "", "Load a binary table snapshot instead of analyzing the grammar"),
		serve:       fs.Bool("serve", false, "Start the HTTP diagnostic server instead of generating"),
		serveAddr:   fs.String("serve-addr", "", "Listen address for --serve"),
		repl:        fs.Bool("repl", false, "Start the interactive diagnostic shell instead of generating"),
		verbose:     fs.BoolP("verbose", "V", false, "Print each generated table to stderr and retain more diagnostic events"),
	}
}

// Parse parses args (conventionally os.Args[1:]) against fs, then
// resolves Options by layering compiled-in defaults, the config file
// named by --config (if it exists), and the parsed flags, in that
// precedence order.
func (fs *FlagSet) Parse(args []string) (Options, error) {
	if err := fs.flags.Parse(args); err != nil {
		return Options{}, ebnferrors.New(ebnferrors.KindUnknownOption, ebnferrors.Pos{}, "%s", err.Error())
	}

	opts := defaults()

	if data, err := os.ReadFile(*fs.configFile); err == nil {
		if _, err := toml.Decode(string(data), &opts); err != nil {
			return Options{}, ebnferrors.New(ebnferrors.KindUnknownOption, ebnferrors.Pos{}, "parse config file %s: %s", *fs.configFile, err.Error())
		}
	}

	opts.Version = *fs.version
	if *fs.grammar != "" {
		opts.Grammar = *fs.grammar
	}
	if *fs.pkg != "" {
		opts.Package = *fs.pkg
	}
	if *fs.out != "" {
		opts.Out = *fs.out
	}
	opts.Fingerprint = opts.Fingerprint || *fs.fingerprint
	if *fs.dumpTables != "" {
		opts.DumpTables = *fs.dumpTables
	}
	if *fs.loadTables != "" {
		opts.LoadTables = *fs.loadTables
	}
	opts.Serve = opts.Serve || *fs.serve
	if *fs.serveAddr != "" {
		opts.ServeAddr = *fs.serveAddr
	}
	opts.Repl = opts.Repl || *fs.repl
	opts.Verbose = opts.Verbose || *fs.verbose

	if !opts.Version && opts.LoadTables == "" && opts.Grammar == "" {
		return Options{}, ebnferrors.New(ebnferrors.KindMissingArgument, ebnferrors.Pos{}, "missing required --grammar FILE")
	}

	return opts, nil
}

// Usage returns the flag usage text for fs; it writes nothing itself.
func (fs *FlagSet) Usage() string {
	return fs.flags.FlagUsages()
}
