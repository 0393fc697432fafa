package codedemo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/randalmurphal/demokit/pkg/demokit"
	"github.com/randalmurphal/demokit/pkg/demokit/config"
)

// SiteCommands is the site where a code demo prompts for a snippet index.
const SiteCommands = "commands"

// DefaultCommandPrompt is the prompt used at the commands site when the
// configuration has no text for it.
const DefaultCommandPrompt = "Choose a command: "

// defaultHelp is the help text of a plain code demo.
const defaultHelp = "CodeDemo improves a plain demo with commands: a set " +
	"of code snippets the user can select from and view the result of " +
	"evaluating against a shared namespace."

// DefaultSetup returns the demonstration setup code, commented with the
// engine's line-comment marker.
func DefaultSetup(commentPrefix string) string {
	return strings.Join([]string{
		commentPrefix + " Setup code here.",
		"foo = 1 + 1",
		"bar = 5 * 2",
		"spam = 14",
	}, "\n")
}

// DefaultCommands returns the demonstration snippets, commented with the
// engine's line-comment marker.
func DefaultCommands(commentPrefix string) []string {
	return []string{
		"1  " + commentPrefix + " Comments will be removed.",
		`response + " was your response"  ` + commentPrefix + " Variables are stored in memory.",
		"foo + bar  " + commentPrefix + " Operations will print their result.",
		"eggs = spam + 5  " + commentPrefix + " Assignments will print the assigned value.",
		"spam / 0  " + commentPrefix + " Errors will get printed too!",
	}
}

// CodeDemo is a demo that walks two sites: "setup", where any response runs
// the setup code through the engine, and "commands", where the user picks a
// snippet by index (or "a" for all of them) and sees it evaluated.
//
// Example:
//
//	demo, err := codedemo.NewCodeDemo("CodeDemo", codedemo.NewJSEngine())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = demo.Run(context.Background())
type CodeDemo struct {
	*demokit.Demo

	engine   Engine
	setup    string
	commands []string
}

// settings collects construction options before the demo is assembled.
type settings struct {
	cfg      config.Config
	haveCfg  bool
	demoOpts []demokit.DemoOption
}

// Option configures a code demo at construction.
type Option func(*settings)

// WithConfig sets the display configuration, including the setup code and
// command snippets. Without it the demonstration defaults are used.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) {
		s.cfg = cfg
		s.haveCfg = true
	}
}

// WithDemoOptions passes options through to the underlying demo
// (input, output, transcript store).
func WithDemoOptions(opts ...demokit.DemoOption) Option {
	return func(s *settings) {
		s.demoOpts = append(s.demoOpts, opts...)
	}
}

// NewCodeDemo creates a code demo named name, evaluating with engine.
func NewCodeDemo(name string, engine Engine, opts ...Option) (*CodeDemo, error) {
	s, err := applySettings(name, engine, opts)
	if err != nil {
		return nil, err
	}
	if s.cfg.Help == "" {
		s.cfg.Help = defaultHelp
	}

	cd := &CodeDemo{
		engine:   engine,
		setup:    s.cfg.Setup,
		commands: append([]string(nil), s.cfg.Commands...),
	}

	reg := demokit.BaseRegistry()
	if err := cd.register(reg); err != nil {
		return nil, err
	}

	demoOpts := append(s.demoOpts,
		demokit.WithConfig(s.cfg),
		demokit.WithRegistry(reg),
		demokit.WithSites(demokit.SiteSetup, SiteCommands),
		demokit.WithListing(SiteCommands, cd.commandEntries()...),
	)
	cd.Demo, err = demokit.NewDemo(name, demoOpts...)
	if err != nil {
		return nil, err
	}
	return cd, nil
}

// applySettings resolves construction options and fills snippet defaults.
func applySettings(name string, engine Engine, opts []Option) (settings, error) {
	if engine == nil {
		return settings{}, ErrNilEngine
	}

	s := settings{cfg: config.Default(name)}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	if s.cfg.Setup == "" {
		s.cfg.Setup = DefaultSetup(engine.CommentPrefix())
	}
	if len(s.cfg.Commands) == 0 {
		s.cfg.Commands = DefaultCommands(engine.CommentPrefix())
	}
	if s.cfg.Prompts == nil {
		s.cfg.Prompts = make(map[string]string)
	}
	if s.cfg.Prompts[SiteCommands] == "" {
		s.cfg.Prompts[SiteCommands] = DefaultCommandPrompt
	}
	return s, nil
}

// register installs the code-demo options on top of the base surface.
func (cd *CodeDemo) register(reg *demokit.Registry) error {
	printSetup := func(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
		cd.PrintSetup()
		return demokit.SignalContinue, nil
	}

	regs := []error{
		reg.Register(demokit.SiteSetup, "c", printSetup,
			demokit.WithDescription("Setup code."),
			demokit.WithRetry(), demokit.WithNewline()),

		// Any response at the setup site runs the setup code.
		reg.Register(demokit.SiteSetup, demokit.Wildcard, cd.setupCallback,
			demokit.WithOverwrite()),

		reg.Register(SiteCommands, "c", printSetup,
			demokit.WithDescription("Setup code."),
			demokit.WithRetry(), demokit.WithNewline()),

		reg.Register(SiteCommands, "o",
			func(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
				ctx.Host().PrintOptions(inv.Site)
				return demokit.SignalContinue, nil
			},
			demokit.WithDescription("Options."),
			demokit.WithRetry(), demokit.WithNewline()),

		reg.Register(SiteCommands, "r",
			func(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
				return demokit.SignalRestart, nil
			},
			demokit.WithDescription("Restart."), demokit.WithNewline()),

		reg.Register(SiteCommands, "q",
			func(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
				return demokit.SignalQuit, nil
			},
			demokit.WithDescription("Quit."), demokit.WithNewline()),

		reg.Register(SiteCommands, demokit.Wildcard, cd.commandsCallback,
			demokit.WithRetry()),
	}
	return errors.Join(regs...)
}

// setupCallback seeds the namespace with the user's response, runs the setup
// code, and prints it.
func (cd *CodeDemo) setupCallback(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
	if err := cd.engine.Set("response", inv.Response); err != nil {
		return demokit.SignalContinue, err
	}
	if err := cd.engine.Setup(cd.setup); err != nil {
		return demokit.SignalContinue, err
	}
	cd.Printer().Gap()
	cd.PrintSetup()
	return demokit.SignalContinue, nil
}

// commandsCallback resolves the response to one snippet (by index) or all
// of them ("a") and executes it. Anything else re-prompts.
func (cd *CodeDemo) commandsCallback(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
	switch {
	case inv.Response == "a":
		cd.Execute(cd.commands, true)
	default:
		index, err := strconv.Atoi(inv.Response)
		if err != nil || index < 0 || index >= len(cd.commands) {
			cd.Printer().Notice("Invalid index. Please try again.")
			return demokit.SignalRetry, nil
		}
		cd.Execute(cd.commands[index:index+1], true)
	}
	return demokit.SignalContinue, nil
}

// commandEntries builds listing rows for the snippets: their indexes, then
// "a" for all of them. Multi-line snippets indent their continuation lines.
func (cd *CodeDemo) commandEntries() []demokit.OptionEntry {
	entries := make([]demokit.OptionEntry, 0, len(cd.commands)+1)
	for i, command := range cd.commands {
		entries = append(entries, demokit.OptionEntry{
			Key:         strconv.Itoa(i),
			Description: strings.Join(strings.Split(command, "\n"), "\n    "),
		})
	}
	entries = append(entries, demokit.OptionEntry{
		Key:         "a",
		Description: "Execute all of the above.",
	})
	return entries
}

// Engine returns the demo's evaluation engine.
func (cd *CodeDemo) Engine() Engine {
	return cd.engine
}

// Commands returns the demo's command snippets.
func (cd *CodeDemo) Commands() []string {
	return append([]string(nil), cd.commands...)
}

// PrintSetup prints the setup code as an interpreter session.
func (cd *CodeDemo) PrintSetup() {
	cd.Printer().Text("Setup:")
	cd.printIn(cd.setup)
	cd.Printer().Gap()
}

// Execute evaluates each snippet and prints its result or error. Comments
// are stripped before evaluation; deliberate snippet errors print and never
// end the session. When echo is set, each snippet is printed as an
// interpreter session line first.
func (cd *CodeDemo) Execute(snippets []string, echo bool) {
	for _, snippet := range snippets {
		if echo {
			cd.printIn(snippet)
		}

		code := cd.stripComments(snippet)
		if strings.TrimSpace(code) == "" {
			cd.Printer().Gap()
			continue
		}

		value, err := cd.engine.Eval(code)
		if err != nil {
			cd.Printer().Error(evalErrorText(err))
			cd.Printer().Gap()
			continue
		}
		if value != nil {
			cd.printOut(value)
		}
		cd.Printer().Gap()
	}
}

// printIn prints code the way an interpreter echoes it: ">>> " for
// top-level lines, "... " for indented continuation lines.
func (cd *CodeDemo) printIn(code string) {
	for _, line := range strings.Split(code, "\n") {
		prefix := ">>> "
		if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			prefix = "... "
		}
		cd.Printer().Snippet(prefix, line)
	}
}

// printOut prints an evaluation result.
func (cd *CodeDemo) printOut(value any) {
	cd.Printer().Text("%v", value)
}

// stripComments removes line comments from every line of code.
func (cd *CodeDemo) stripComments(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = stripComment(line, cd.engine.CommentPrefix())
	}
	return strings.Join(lines, "\n")
}

// stripComment removes a line comment and trailing whitespace from line.
func stripComment(line, prefix string) string {
	if i := strings.Index(line, prefix); i >= 0 {
		line = line[:i]
	}
	return strings.TrimRight(line, " \t")
}

// evalErrorText formats an evaluation failure the way an interpreter would,
// without the snippet the engine already echoed.
func evalErrorText(err error) string {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return fmt.Sprintf("%v", evalErr.Err)
	}
	return err.Error()
}
