package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against home with stdin and returns the
// combined output.
func execute(t *testing.T, home, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--home", home, "--no-color"))
	err := root.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, home, stdin string, args ...string) string {
	t.Helper()
	out, err := execute(t, home, stdin, args...)
	require.NoError(t, err, out)
	return out
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "flagwise")
	assert.Contains(t, buf.String(), "red flags")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "flagwise", cmd.Use)

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"init", "analyze", "journal", "chat", "explore", "assess", "library", "settings", "progress", "insights"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestVersionFlag(t *testing.T) {
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), Version)
}

func TestInitCommand(t *testing.T) {
	home := t.TempDir()

	out := mustExecute(t, home, "", "init")
	assert.Contains(t, out, "config.yaml")
	assert.FileExists(t, home+"/config.yaml")

	_, err := execute(t, home, "", "init")
	assert.ErrorContains(t, err, "already exists")

	mustExecute(t, home, "", "init", "--force")
}

func TestBrokenConfigFailsFast(t *testing.T) {
	home := t.TempDir()
	mustExecute(t, home, "", "init")
	require.NoError(t, writeFile(home+"/config.yaml", "storage_timeout: 1m\n"))

	_, err := execute(t, home, "", "journal", "list")
	assert.ErrorContains(t, err, "load config")
}
