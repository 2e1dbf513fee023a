package cliopts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_flagsOverrideDefaults(t *testing.T) {
	fs := NewFlagSet("syngen")
	opts, err := fs.Parse([]string{
		"--config", filepath.Join(t.TempDir(), "missing.toml"),
		"--grammar", "grammar.ebnf",
		"--package", "mygrammar",
		"--verbose",
	})

	require.NoError(t, err)
	assert.Equal(t, "grammar.ebnf", opts.Grammar)
	assert.Equal(t, "mygrammar", opts.Package)
	assert.Equal(t, "parser.go", opts.Out) // default untouched
	assert.True(t, opts.Verbose)
}

func Test_Parse_configFileFillsUnsetFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "syngen.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
grammar = "from-config.ebnf"
package = "fromconfig"
`), 0o644))

	fs := NewFlagSet("syngen")
	opts, err := fs.Parse([]string{"--config", cfgPath})

	require.NoError(t, err)
	assert.Equal(t, "from-config.ebnf", opts.Grammar)
	assert.Equal(t, "fromconfig", opts.Package)
}

func Test_Parse_flagWinsOverConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "syngen.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`grammar = "from-config.ebnf"`), 0o644))

	fs := NewFlagSet("syngen")
	opts, err := fs.Parse([]string{"--config", cfgPath, "--grammar", "from-flag.ebnf"})

	require.NoError(t, err)
	assert.Equal(t, "from-flag.ebnf", opts.Grammar)
}

func Test_Parse_missingGrammarIsAnError(t *testing.T) {
	fs := NewFlagSet("syngen")
	_, err := fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})

	assert.Error(t, err)
}

func Test_Parse_versionSkipsGrammarRequirement(t *testing.T) {
	fs := NewFlagSet("syngen")
	opts, err := fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "--version"})

	require.NoError(t, err)
	assert.True(t, opts.Version)
}
