package codedemo

import (
	"errors"
	"io"
	"strings"

	"github.com/randalmurphal/demokit/pkg/demokit"
)

// SiteSandbox is the locked site every sandbox shell line dispatches through.
const SiteSandbox = "sandbox"

// sandboxHelp is the help text of a sandbox demo.
const sandboxHelp = "SandboxDemo extends CodeDemo with a shell in which " +
	"the user can experiment with the namespace that has been set up."

// SandboxDemo extends CodeDemo with sandbox mode: an interactive shell that
// evaluates whatever the user types against the engine's namespace until
// they enter quit().
//
// The shell dispatches every line through the locked "sandbox" site. Its
// single option holds the site lock, so it claims any line and no further
// options can be registered there.
type SandboxDemo struct {
	*CodeDemo
}

// NewSandboxDemo creates a sandbox demo named name, evaluating with engine.
func NewSandboxDemo(name string, engine Engine, opts ...Option) (*SandboxDemo, error) {
	opts = append(opts, func(s *settings) {
		if s.cfg.Help == "" {
			s.cfg.Help = sandboxHelp
		}
	})

	cd, err := NewCodeDemo(name, engine, opts...)
	if err != nil {
		return nil, err
	}
	sd := &SandboxDemo{CodeDemo: cd}

	regs := []error{
		sd.Registry().Register(SiteCommands, "s", sd.sandboxCallback,
			demokit.WithDescription("Sandbox mode."), demokit.WithRetry()),
		sd.Registry().Register(SiteSandbox, "shell", sd.evalLine,
			demokit.WithLock()),
	}
	if err := errors.Join(regs...); err != nil {
		return nil, err
	}
	return sd, nil
}

// sandboxCallback runs the shell: read a line, dispatch it through the
// locked sandbox site, repeat until quit() or EOF. Afterwards the commands
// listing is reprinted and the commands site re-prompts.
func (sd *SandboxDemo) sandboxCallback(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
	p := sd.Printer()
	p.Text("Switched to sandbox mode.")
	p.Text("Use quit() to leave sandbox mode.")
	p.Gap()

	for {
		line, err := sd.readBlock()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return demokit.SignalContinue, err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "quit()" {
			break
		}
		if trimmed == "" {
			continue
		}
		if _, err := sd.Registry().Call(ctx, SiteSandbox, line); err != nil {
			return demokit.SignalContinue, err
		}
	}

	p.Text("Leaving sandbox mode.")
	p.Gap()
	sd.PrintOptions(inv.Site)
	return demokit.SignalContinue, nil
}

// evalLine is the sandbox site's lock option: it receives every shell line
// as the response and evaluates it without echoing.
func (sd *SandboxDemo) evalLine(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
	sd.Execute([]string{inv.Response}, false)
	return demokit.SignalContinue, nil
}

// readBlock reads one shell entry, continuing across lines while brackets
// are unbalanced. Continuation lines prompt with "... " and join with
// newlines.
func (sd *SandboxDemo) readBlock() (string, error) {
	p := sd.Printer()
	p.Prompt(">>> ")
	line, err := sd.ReadLine()
	if err != nil {
		return "", err
	}

	lines := []string{line}
	depth := bracketDepth(line)
	for depth > 0 {
		p.Prompt("... ")
		next, err := sd.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		lines = append(lines, next)
		depth += bracketDepth(next)
	}
	return strings.Join(lines, "\n"), nil
}

// bracketDepth returns the net bracket nesting introduced by line.
func bracketDepth(line string) int {
	depth := 0
	for _, r := range line {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth
}
