package demokit

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// Color functions used when rendering demo output.
var (
	colorLightCyan   = color.LightCyan.Sprintf
	colorLightGreen  = color.LightGreen.Sprintf
	colorLightYellow = color.LightYellow.Sprintf
	colorRed         = color.Red.Sprintf
)

// helpWidth is the wrap column for help text.
const helpWidth = 60

// Printer renders demo output: the intro banner, prompts, option listings,
// and help text. Color is enabled only when the destination is a terminal.
type Printer struct {
	w       io.Writer
	colored bool
}

// NewPrinter creates a printer writing to w.
// Color is enabled when w is a terminal file descriptor.
func NewPrinter(w io.Writer) *Printer {
	colored := false
	if f, ok := w.(*os.File); ok {
		colored = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{w: w, colored: colored}
}

// NewColorPrinter creates a printer with color forced on.
// Useful for tests and writers that are not files.
func NewColorPrinter(w io.Writer) *Printer {
	return &Printer{w: w, colored: true}
}

func (p *Printer) printf(colorize func(string, ...any) string, format string, args ...any) {
	if p.colored {
		fmt.Fprint(p.w, colorize(format, args...))
		return
	}
	fmt.Fprintf(p.w, format, args...)
}

// Intro prints the session banner followed by a blank line.
func (p *Printer) Intro(text string) {
	p.printf(colorLightCyan, "%s\n\n", text)
}

// Prompt prints a prompt without a trailing newline.
func (p *Printer) Prompt(text string) {
	p.printf(colorLightGreen, "%s", text)
}

// Gap prints the blank-line separator required by newline-flagged options.
func (p *Printer) Gap() {
	fmt.Fprintln(p.w)
}

// Text prints plain output followed by a newline.
func (p *Printer) Text(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Notice prints an informational message (restart, quit, retry texts).
func (p *Printer) Notice(text string) {
	if text == "" {
		return
	}
	p.printf(colorLightYellow, "%s\n", text)
}

// Error prints an error message.
func (p *Printer) Error(text string) {
	p.printf(colorRed, "%s\n", text)
}

// OptionEntry is one row of an option listing.
type OptionEntry struct {
	// Key is the response the user types.
	Key string
	// Description is the display text; rows with an empty description are
	// still listed when the key came from the caller, but options without
	// descriptions are filtered out before reaching the printer.
	Description string
}

// OptionList prints an aligned listing of the available responses.
//
//	Options:
//	   h: Help.
//	   o: Options.
//	   *: Any response.
func (p *Printer) OptionList(entries []OptionEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(p.w, "Options:")

	width := 0
	for _, e := range entries {
		if len(e.Key) > width {
			width = len(e.Key)
		}
	}
	for _, e := range entries {
		key := e.Key
		if p.colored {
			key = colorLightGreen("%s", key)
		}
		fmt.Fprintf(p.w, "%*s%s: %s\n", width+2-len(e.Key), "", key, e.Description)
	}
	fmt.Fprintln(p.w)
}

// Help prints the bordered help panel with text wrapped at 60 columns.
//
//	~~~~~~~~~~~~
//	Help
//	~~~~~~~~~~~~
//
//	<wrapped text>
//	~~~~~~~~~~~~
func (p *Printer) Help(title, text string) {
	border := strings.Repeat("~", helpWidth)
	fmt.Fprintln(p.w, border)
	if p.colored {
		fmt.Fprintln(p.w, colorLightCyan("%s", title))
	} else {
		fmt.Fprintln(p.w, title)
	}
	fmt.Fprintln(p.w, border)
	fmt.Fprintln(p.w)
	for _, line := range wrapLines(text, helpWidth) {
		fmt.Fprintln(p.w, line)
	}
	fmt.Fprintln(p.w, border)
	fmt.Fprintln(p.w)
}

// Snippet prints one line of code output, prefixed like a shell session.
func (p *Printer) Snippet(prefix, line string) {
	if p.colored {
		fmt.Fprintf(p.w, "%s%s\n", colorLightGreen("%s", prefix), line)
	} else {
		fmt.Fprintf(p.w, "%s%s\n", prefix, line)
	}
}

// wrapLines word-wraps text at width, preserving blank lines and leading
// whitespace of each paragraph line.
func wrapLines(text string, width int) []string {
	var out []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		words := strings.Fields(line)
		current := indent
		for _, word := range words {
			if current != indent && len(current)+1+len(word) > width {
				out = append(out, current)
				current = indent
			}
			if current == indent {
				current += word
			} else {
				current += " " + word
			}
		}
		if current != indent {
			out = append(out, current)
		}
	}
	return out
}
