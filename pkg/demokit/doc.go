/*
Package demokit provides a response-dispatch registry for interactive,
menu-driven command-line demos.

# Overview

demokit is a Go library for building demos that prompt a user, match the
typed response against a keyed set of options, and invoke the matched
callback. Options are grouped by site (an input-function identifier), so
one registry can drive several prompts with independent key spaces.

The library favors explicit construction over magic:
  - Builder-style registration with functional options
  - Control flow via returned signals, not panics
  - Deep registry copies for demo variants, not subclassing
  - OpenTelemetry integration for observability

# Basic Usage

Register options, build a demo, and run it:

	func greet(ctx demokit.Context, inv demokit.Invocation) (demokit.Signal, error) {
	    ctx.Host().Printer().Text("Hello!")
	    return demokit.SignalContinue, nil
	}

	func main() {
	    reg := demokit.BaseRegistry()
	    if err := reg.Register("setup", "g", greet,
	        demokit.WithDescription("Greet.")); err != nil {
	        log.Fatal(err)
	    }

	    demo, err := demokit.NewDemo("Demo", demokit.WithRegistry(reg))
	    if err != nil {
	        log.Fatal(err)
	    }
	    if err := demo.Run(context.Background()); err != nil {
	        log.Fatal(err)
	    }
	}

BaseRegistry supplies the standard surface at the "setup" site: h (help),
o (option listing), r (restart), q (quit), and a wildcard that echoes
unrecognized responses and re-prompts.

# Signals

Callbacks steer the run loop with their return value:

	SignalContinue  advance to the next site
	SignalRetry     re-prompt the same site
	SignalRestart   rewind to the first site
	SignalQuit      end the session

An option registered with WithRetry() yields SignalRetry after every
successful invocation regardless of what the callback returned.

# Variants

Derive one demo from another by copying its registry and overriding keys:

	derived := base.Registry().Copy()
	err := derived.Register("setup", "q", politeQuit,
	    demokit.WithDescription("Quit, politely."),
	    demokit.WithOverwrite())

Without WithOverwrite(), re-registering an existing key fails with
*DuplicateKeyError. Non-overridden keys keep the base behavior; the base
registry is never mutated.

# Locking

A site can hand everything to a single callback:

	err := reg.Register("sandbox", "shell", evalLine, demokit.WithLock())

A lock option claims every response at its site and receives the site
identifier as its input; the site accepts no further registrations
(*RegistrationError). SandboxDemo uses this for its read-eval loop.

# Observability

Enable logging, metrics, and tracing per session:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	err := demo.Run(ctx,
	    demokit.WithObservabilityLogger(logger),
	    demokit.WithMetrics(true),
	    demokit.WithTracing(true))

Logs include structured fields: session_id, site, key, duration_ms.
OpenTelemetry metrics: demokit.dispatch.count, demokit.dispatch.latency_ms, etc.
OpenTelemetry tracing: demokit.session > demokit.dispatch.{site} spans.

# Error Handling

Errors carry the site and key that failed:

	err := demo.Run(ctx)
	var dispatchErr *demokit.DispatchError
	if errors.As(err, &dispatchErr) {
	    log.Printf("option %q at site %s failed: %v",
	        dispatchErr.Key, dispatchErr.Site, dispatchErr.Err)
	}

Callback panics are recovered and surface as dispatch errors with a stack
trace. Registration problems are *ValidationError, *DuplicateKeyError, or
*RegistrationError; unmatched responses resolve to *UnknownOptionError.

# Thread Safety

  - Registry registration is NOT safe for concurrent use; build from one
    goroutine, then dispatch freely
  - Registry lookup and dispatch ARE safe for concurrent use
  - Context IS safe for concurrent use
  - Transcript store implementations are safe for concurrent use

# Subpackages

  - codedemo: demos that print and evaluate code snippets (goja, expr)
  - config: YAML/JSON demo configuration
  - observability: logging, metrics, and tracing helpers
  - template: ${var} expansion for display texts
  - transcript: session transcript storage (memory, SQLite)
*/
package demokit
