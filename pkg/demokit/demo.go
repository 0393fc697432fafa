package demokit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/randalmurphal/demokit/pkg/demokit/config"
	"github.com/randalmurphal/demokit/pkg/demokit/observability"
	"github.com/randalmurphal/demokit/pkg/demokit/template"
	"github.com/randalmurphal/demokit/pkg/demokit/transcript"
	"go.opentelemetry.io/otel/trace"
)

// SiteSetup is the default (and usually only) site of a plain demo.
const SiteSetup = "setup"

// Demo hosts an interactive session: it owns the registry, the reader the
// responses come from, the printer the output goes to, and the display
// configuration. A demo walks its site sequence, prompting at each site and
// dispatching the response through the registry until a callback quits.
//
// Demos compose instead of subclassing: a variant takes a Copy() of another
// demo's registry and overrides individual keys with WithOverwrite().
//
// Example:
//
//	demo, err := demokit.NewDemo("Demo",
//	    demokit.WithRegistry(demokit.BaseRegistry()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = demo.Run(context.Background())
type Demo struct {
	name     string
	cfg      config.Config
	registry *Registry
	reader   *bufio.Reader
	printer  *Printer
	store    transcript.Store
	sites    []string
	listings map[string][]OptionEntry
}

// DemoOption configures a demo at construction.
type DemoOption func(*Demo)

// WithConfig sets the display configuration. Defaults are applied to empty
// texts; the config's name is overridden by the demo's name.
func WithConfig(cfg config.Config) DemoOption {
	return func(d *Demo) {
		d.cfg = cfg
	}
}

// WithRegistry sets the dispatch registry. The demo takes ownership; pass a
// Copy() if the registry is shared.
func WithRegistry(reg *Registry) DemoOption {
	return func(d *Demo) {
		d.registry = reg
	}
}

// WithInput sets the reader responses are read from. Default: os.Stdin.
func WithInput(r io.Reader) DemoOption {
	return func(d *Demo) {
		d.reader = bufio.NewReader(r)
	}
}

// WithOutput sets the writer demo output goes to. Default: os.Stdout.
func WithOutput(w io.Writer) DemoOption {
	return func(d *Demo) {
		d.printer = NewPrinter(w)
	}
}

// WithPrinter sets the printer directly, overriding WithOutput.
func WithPrinter(p *Printer) DemoOption {
	return func(d *Demo) {
		d.printer = p
	}
}

// WithTranscriptStore sets the transcript store. The run loop appends one
// entry per dispatch. Append failures are logged, never fatal.
func WithTranscriptStore(store transcript.Store) DemoOption {
	return func(d *Demo) {
		d.store = store
	}
}

// WithSites sets the site sequence the run loop walks. Default: ["setup"].
func WithSites(sites ...string) DemoOption {
	return func(d *Demo) {
		d.sites = append([]string(nil), sites...)
	}
}

// WithListing adds extra entries to site's option listing, printed ahead of
// the registered options. Code demos use this to list their numbered
// snippets alongside the single wildcard option that handles them.
func WithListing(site string, entries ...OptionEntry) DemoOption {
	return func(d *Demo) {
		if d.listings == nil {
			d.listings = make(map[string][]OptionEntry)
		}
		d.listings[site] = append(d.listings[site], entries...)
	}
}

// NewDemo creates a demo named name.
//
// Without options the demo reads os.Stdin, writes os.Stdout, walks the
// single site "setup", and starts from an empty registry. Fails with a
// *ValidationError when name is blank.
func NewDemo(name string, opts ...DemoOption) (*Demo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Err: config.ErrNoName}
	}

	d := &Demo{
		name:  name,
		cfg:   config.Default(name),
		sites: []string{SiteSetup},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	d.cfg.Name = name
	d.cfg = d.cfg.ApplyDefaults()
	if err := d.cfg.Validate(); err != nil {
		return nil, &ValidationError{Field: "config", Value: name, Err: err}
	}
	if d.registry == nil {
		d.registry = NewRegistry()
	}
	if d.reader == nil {
		d.reader = bufio.NewReader(os.Stdin)
	}
	if d.printer == nil {
		d.printer = NewPrinter(os.Stdout)
	}
	return d, nil
}

// Name returns the demo's display name.
func (d *Demo) Name() string {
	return d.name
}

// Registry returns the demo's dispatch registry.
func (d *Demo) Registry() *Registry {
	return d.registry
}

// Config returns the demo's display configuration.
func (d *Demo) Config() config.Config {
	return d.cfg
}

// Printer returns the demo's printer, for callbacks that produce output.
func (d *Demo) Printer() *Printer {
	return d.printer
}

// Sites returns the site sequence the run loop walks.
func (d *Demo) Sites() []string {
	return append([]string(nil), d.sites...)
}

// expand substitutes config template variables into text.
// Unknown placeholders are kept as-is.
func (d *Demo) expand(text string) string {
	return template.MustExpand(text, d.cfg.TemplateVars())
}

// PrintIntro prints the session banner.
func (d *Demo) PrintIntro() {
	d.printer.Intro(d.expand(d.cfg.Intro))
}

// PrintHelp prints the bordered help panel.
func (d *Demo) PrintHelp() {
	d.printer.Help("Help", d.expand(d.cfg.Help))
}

// PrintOptions prints the listing of site's described options in
// registration order, after any extra entries added with WithListing.
// Options without a description are omitted.
func (d *Demo) PrintOptions(site string) {
	opts := d.registry.Options(site)
	entries := make([]OptionEntry, 0, len(d.listings[site])+len(opts))
	entries = append(entries, d.listings[site]...)
	for _, opt := range opts {
		if opt.Description == "" {
			continue
		}
		entries = append(entries, OptionEntry{
			Key:         opt.Key,
			Description: d.expand(opt.Description),
		})
	}
	d.printer.OptionList(entries)
}

// hasListing reports whether site has anything to show in an option listing.
func (d *Demo) hasListing(site string) bool {
	if len(d.listings[site]) > 0 {
		return true
	}
	for _, opt := range d.registry.Options(site) {
		if opt.Description != "" {
			return true
		}
	}
	return false
}

// read obtains one response for site: the designated input function when one
// exists, otherwise the default prompt-and-readline.
func (d *Demo) read(ctx Context, site string) (string, error) {
	fn, err := d.registry.InputFor(site)
	if err != nil {
		if !errors.Is(err, ErrNoInput) {
			return "", err
		}
		fn = d.defaultInput(site)
	}
	return fn(ctx)
}

// defaultInput prompts with the site's configured text and reads one line.
func (d *Demo) defaultInput(site string) InputFunc {
	return func(ctx Context) (string, error) {
		d.printer.Prompt(d.expand(d.cfg.Prompt(site)))
		return d.ReadLine()
	}
}

// ReadLine reads one line from the demo's reader, with the trailing newline
// stripped. Returns io.EOF when the reader is exhausted; a final unterminated
// line is returned without error first.
func (d *Demo) ReadLine() (string, error) {
	line, err := d.reader.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

// Run walks the demo's site sequence: prompt, read a response, dispatch it
// through the registry, and act on the returned signal. SignalRetry
// re-prompts the same site, SignalRestart rewinds to the first site,
// SignalQuit ends the session, and SignalContinue advances to the next site.
// A session also ends when the last site continues past the end of the
// sequence, or when the reader reaches EOF.
//
// Unknown responses print the configured retry text and re-prompt. Every
// re-prompt of one site counts against the retry limit (default 100,
// WithMaxRetries); exceeding it fails with *MaxRetriesError. Callback errors
// end the session wrapped in *DispatchError.
//
// Example:
//
//	err := demo.Run(ctx,
//	    demokit.WithMaxRetries(10),
//	    demokit.WithObservabilityLogger(logger))
func (d *Demo) Run(ctx context.Context, opts ...RunOption) (runErr error) {
	if ctx == nil {
		return ErrNilContext
	}
	if len(d.sites) == 0 {
		return ErrNoSites
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	dc := asDispatchContext(ctx).withHost(d)
	sessionID := dc.sessionID

	startTime := time.Now()
	observability.LogSessionStart(cfg.logger, sessionID)

	var tracingCtx context.Context = dc
	var sessionSpan trace.Span
	if cfg.tracingEnabled {
		tracingCtx, sessionSpan = cfg.spans.StartSessionSpan(dc, d.name, sessionID)
		defer func() {
			cfg.spans.EndSpanWithError(sessionSpan, runErr)
		}()
	}

	dispatches := 0
	lastSite := ""
	runErr = d.runSites(tracingCtx, dc, &cfg, &dispatches, &lastSite)

	duration := time.Since(startTime)
	cfg.metrics.RecordSession(dc, runErr == nil, duration)

	durationMs := float64(duration.Milliseconds())
	if runErr != nil {
		observability.LogSessionError(cfg.logger, sessionID, runErr, durationMs, lastSite)
	} else {
		observability.LogSessionComplete(cfg.logger, sessionID, durationMs, dispatches)
	}
	return runErr
}

// runSites executes the prompt/dispatch loop over the site sequence.
// tracingCtx carries span context; dc is the dispatch context template.
func (d *Demo) runSites(tracingCtx context.Context, dc *dispatchContext, cfg *runConfig, dispatches *int, lastSite *string) error {
	d.PrintIntro()

	i := 0
	for i < len(d.sites) {
		site := d.sites[i]
		*lastSite = site

		sig, err := d.runSite(tracingCtx, dc, cfg, site, dispatches)
		if err != nil {
			return err
		}

		switch sig {
		case SignalRestart:
			d.printer.Notice(d.expand(d.cfg.RestartText))
			i = 0
		case SignalQuit:
			d.printer.Notice(d.expand(d.cfg.QuitText))
			return nil
		default:
			i++
		}
	}

	d.printer.Notice(d.expand(d.cfg.QuitText))
	return nil
}

// runSite prompts one site until a dispatch yields a non-retry signal.
// The site's option listing is printed before the first prompt. Returns the
// signal that moves the loop, or the error that ends the session.
func (d *Demo) runSite(tracingCtx context.Context, dc *dispatchContext, cfg *runConfig, site string, dispatches *int) (Signal, error) {
	if d.hasListing(site) {
		d.PrintOptions(site)
	}

	for attempt := 1; ; attempt++ {
		if attempt > cfg.maxRetries {
			return SignalContinue, &MaxRetriesError{Site: site, Max: cfg.maxRetries}
		}

		select {
		case <-dc.Done():
			return SignalContinue, dc.Err()
		default:
		}

		siteCtx := dc.withSite(site, attempt)
		observability.LogPrompt(cfg.logger, site, attempt)

		response, err := d.read(siteCtx, site)
		if err != nil {
			// Exhausted input ends the session the way quitting does.
			if errors.Is(err, io.EOF) {
				return SignalQuit, nil
			}
			return SignalContinue, fmt.Errorf("site %s: reading response: %w", site, err)
		}

		opt, err := d.registry.Resolve(site, response)
		if err != nil {
			observability.LogUnknownResponse(cfg.logger, site, response)
			cfg.metrics.RecordUnknownResponse(siteCtx, site)
			d.printer.Notice(d.expand(d.cfg.RetryText))
			continue
		}

		if opt.Newline {
			d.printer.Gap()
		}

		sig, err := d.dispatch(tracingCtx, siteCtx, cfg, site, response, opt)
		if err != nil {
			return sig, err
		}
		*dispatches++

		if sig == SignalRetry {
			continue
		}
		return sig, nil
	}
}

// dispatch invokes one matched option with timing, metrics, tracing, and
// transcript recording. Panicking callbacks are recovered into ordinary
// dispatch errors.
func (d *Demo) dispatch(tracingCtx context.Context, siteCtx Context, cfg *runConfig, site, response string, opt *Option) (sig Signal, err error) {
	dispatchCtx := tracingCtx
	var span trace.Span
	if cfg.tracingEnabled {
		dispatchCtx, span = cfg.spans.StartDispatchSpan(tracingCtx, site)
	}

	start := time.Now()

	func() {
		defer func() {
			if r := recover(); r != nil {
				sig = SignalContinue
				err = fmt.Errorf("callback panic: %v\n%s", r, debug.Stack())
			}
		}()
		sig, err = opt.Invoke(siteCtx, site, response)
	}()

	duration := time.Since(start)
	cfg.metrics.RecordDispatch(dispatchCtx, site, opt.Key, duration, err)
	if cfg.tracingEnabled {
		cfg.spans.EndSpanWithError(span, err)
	}

	d.record(cfg, siteCtx, site, response, opt.Key, sig)

	if err != nil {
		observability.LogDispatchError(cfg.logger, site, opt.Key, err)
		return sig, &DispatchError{Site: site, Key: opt.Key, Err: err}
	}
	observability.LogDispatch(cfg.logger, site, opt.Key, sig.String(), float64(duration.Milliseconds()))
	return sig, nil
}

// record appends one transcript entry when a store is configured.
func (d *Demo) record(cfg *runConfig, ctx Context, site, response, key string, sig Signal) {
	if d.store == nil {
		return
	}
	entry := transcript.Entry{
		SessionID: ctx.SessionID(),
		Site:      site,
		Response:  response,
		Key:       key,
		Signal:    sig.String(),
	}
	if err := d.store.Append(entry); err != nil {
		observability.LogTranscriptError(cfg.logger, site, err)
	}
}

// BaseRegistry returns the standard option surface for the "setup" site:
// help, option listing, restart, quit, and a wildcard that echoes anything
// else. Copy it, add to it, or override individual keys with WithOverwrite().
func BaseRegistry() *Registry {
	reg := NewRegistry()

	// Registrations on a fresh registry only fail on malformed input.
	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("demokit: building base registry: %v", err))
		}
	}

	must(reg.Register(SiteSetup, "h",
		func(ctx Context, inv Invocation) (Signal, error) {
			ctx.Host().PrintHelp()
			return SignalContinue, nil
		},
		WithDescription("Help."), WithRetry(), WithNewline()))

	must(reg.Register(SiteSetup, "o",
		func(ctx Context, inv Invocation) (Signal, error) {
			ctx.Host().PrintOptions(inv.Site)
			return SignalContinue, nil
		},
		WithDescription("Options."), WithRetry(), WithNewline()))

	must(reg.Register(SiteSetup, "r",
		func(ctx Context, inv Invocation) (Signal, error) {
			return SignalRestart, nil
		},
		WithDescription("Restart."), WithNewline()))

	must(reg.Register(SiteSetup, "q",
		func(ctx Context, inv Invocation) (Signal, error) {
			return SignalQuit, nil
		},
		WithDescription("Quit."), WithNewline()))

	must(reg.Register(SiteSetup, Wildcard,
		func(ctx Context, inv Invocation) (Signal, error) {
			ctx.Host().Printer().Text("Your response, %q, wasn't recognized!", inv.Response)
			return SignalContinue, nil
		},
		WithRetry()))

	return reg
}
