package codedemo

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/demokit/pkg/demokit"
	"github.com/randalmurphal/demokit/pkg/demokit/config"
)

// newScriptedCodeDemo builds a code demo reading responses from script and
// writing to the returned buffer.
func newScriptedCodeDemo(t *testing.T, engine Engine, script string, opts ...Option) (*CodeDemo, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	opts = append(opts, WithDemoOptions(
		demokit.WithInput(strings.NewReader(script)),
		demokit.WithOutput(out),
	))
	cd, err := NewCodeDemo("CodeDemo", engine, opts...)
	require.NoError(t, err)
	return cd, out
}

func TestNewCodeDemo(t *testing.T) {
	cd, err := NewCodeDemo("CodeDemo", NewExprEngine())
	require.NoError(t, err)

	assert.Equal(t, "CodeDemo", cd.Name())
	assert.Equal(t, DefaultSetup("//"), cd.Config().Setup)
	assert.Equal(t, DefaultCommands("//"), cd.Commands())
	assert.Equal(t, []string{demokit.SiteSetup, SiteCommands}, cd.Sites())
	assert.Equal(t, DefaultCommandPrompt, cd.Config().Prompt(SiteCommands))
	assert.Equal(t, defaultHelp, cd.Config().Help)
}

func TestNewCodeDemo_NilEngine(t *testing.T) {
	_, err := NewCodeDemo("CodeDemo", nil)
	assert.ErrorIs(t, err, ErrNilEngine)
}

func TestNewCodeDemo_CustomConfig(t *testing.T) {
	cfg := config.Default("CodeDemo")
	cfg.Setup = "x = 1"
	cfg.Commands = []string{"x + 1"}

	cd, err := NewCodeDemo("CodeDemo", NewExprEngine(), WithConfig(cfg))
	require.NoError(t, err)

	assert.Equal(t, "x = 1", cd.Config().Setup)
	assert.Equal(t, []string{"x + 1"}, cd.Commands())
	// Defaults still fill what the configuration leaves blank.
	assert.Equal(t, DefaultCommandPrompt, cd.Config().Prompt(SiteCommands))
}

// TestCodeDemo_RegistrySurface verifies the options a code demo installs on
// top of the base surface.
func TestCodeDemo_RegistrySurface(t *testing.T) {
	cd, err := NewCodeDemo("CodeDemo", NewExprEngine())
	require.NoError(t, err)

	reg := cd.Registry()
	for _, key := range []string{"h", "c", "o", "r", "q", demokit.Wildcard} {
		assert.True(t, reg.Contains(demokit.SiteSetup, key), "setup %q", key)
	}
	for _, key := range []string{"c", "o", "r", "q", demokit.Wildcard} {
		assert.True(t, reg.Contains(SiteCommands, key), "commands %q", key)
	}
}

// TestCodeDemo_Run walks the whole flow: the setup response seeds the
// namespace, a snippet index evaluates that snippet, and q quits.
func TestCodeDemo_Run(t *testing.T) {
	cd, out := newScriptedCodeDemo(t, NewJSEngine(), "go\n2\nq\n")

	require.NoError(t, cd.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Welcome to CodeDemo!")
	assert.Contains(t, output, "Setup:")
	assert.Contains(t, output, ">>> foo = 1 + 1")
	assert.Contains(t, output, DefaultCommandPrompt)
	assert.Contains(t, output, ">>> foo + bar  // Operations will print their result.")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "Goodbye!")
}

// TestCodeDemo_Run_AllSnippets verifies the "a" response executes every
// snippet against the shared namespace.
func TestCodeDemo_Run_AllSnippets(t *testing.T) {
	cd, out := newScriptedCodeDemo(t, NewJSEngine(), "go\na\nq\n")

	require.NoError(t, cd.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "go was your response")
	assert.Contains(t, output, "12")
	// eggs = spam + 5 prints the assigned value.
	assert.Contains(t, output, "19")
}

func TestCodeDemo_Run_InvalidIndex(t *testing.T) {
	cd, out := newScriptedCodeDemo(t, NewJSEngine(), "go\n9\n0\nq\n")

	require.NoError(t, cd.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Invalid index. Please try again.")
	assert.Contains(t, output, ">>> 1  // Comments will be removed.")
}

// TestCodeDemo_Run_SnippetListing verifies the commands site prints the
// snippets as numbered options before prompting.
func TestCodeDemo_Run_SnippetListing(t *testing.T) {
	cd, out := newScriptedCodeDemo(t, NewJSEngine(), "go\nq\n")

	require.NoError(t, cd.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "0: 1  // Comments will be removed.")
	assert.Contains(t, output, "a: Execute all of the above.")
	assert.Contains(t, output, "q: Quit.")
}

func TestCodeDemo_Execute(t *testing.T) {
	cd, out := newScriptedCodeDemo(t, NewExprEngine(), "")

	cd.Execute([]string{"x = 2 * 3  // Comments will be removed."}, true)
	cd.Execute([]string{"x + 1"}, false)

	output := out.String()
	assert.Contains(t, output, ">>> x = 2 * 3  // Comments will be removed.")
	assert.Contains(t, output, "6\n")
	assert.Contains(t, output, "7\n")
	assert.NotContains(t, output, ">>> x + 1")
}

// TestCodeDemo_Execute_Error verifies snippet errors print and do not stop
// execution of the remaining snippets.
func TestCodeDemo_Execute_Error(t *testing.T) {
	cd, out := newScriptedCodeDemo(t, NewExprEngine(), "")

	cd.Execute([]string{"unknownvariable + 1", "1 + 1"}, false)

	output := out.String()
	assert.Contains(t, output, "unknown")
	assert.Contains(t, output, "2\n")
}

func TestCodeDemo_PrintSetup(t *testing.T) {
	cd, out := newScriptedCodeDemo(t, NewJSEngine(), "")

	cd.PrintSetup()

	output := out.String()
	assert.Contains(t, output, "Setup:")
	assert.Contains(t, output, ">>> // Setup code here.")
	assert.Contains(t, output, ">>> spam = 14")
}

func TestStripComment(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"trailing comment", "foo + bar  // result", "foo + bar"},
		{"comment only", "// nothing here", ""},
		{"no comment", "foo + bar", "foo + bar"},
		{"trailing whitespace", "foo \t", "foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripComment(tt.line, "//"))
		})
	}
}

func TestCommandsIsolation(t *testing.T) {
	cd, err := NewCodeDemo("CodeDemo", NewExprEngine())
	require.NoError(t, err)

	commands := cd.Commands()
	commands[0] = "mutated"
	assert.NotEqual(t, "mutated", cd.Commands()[0])
}
