package demokit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/randalmurphal/demokit/pkg/demokit/transcript"
)

// Context provides dispatch context to callbacks and input functions.
// It extends context.Context with demokit-specific services and metadata.
//
// Context is immutable after creation. The run loop creates derived
// contexts per prompt with updated Site, Attempt, and enriched logger.
type Context interface {
	context.Context

	// Services

	// Logger returns the configured logger, enriched with session and site
	// context. Never returns nil - defaults to slog.Default() if not
	// configured.
	Logger() *slog.Logger

	// Host returns the demo instance that owns this dispatch, or nil when
	// dispatching outside a run loop (e.g. direct Registry.Call in tests).
	Host() *Demo

	// Transcript returns the transcript store, or nil if not configured.
	// Callbacks should check for nil before using.
	Transcript() transcript.Store

	// Metadata

	// SessionID returns the unique identifier for this demo session.
	// Auto-generated if not configured.
	SessionID() string

	// Site returns the input-function identifier currently being prompted.
	// Empty string before the run loop starts.
	Site() string

	// Attempt returns the re-prompt attempt number for the current site
	// (1 = first prompt).
	Attempt() int
}

// dispatchContext is the internal implementation of Context.
type dispatchContext struct {
	context.Context

	logger     *slog.Logger
	host       *Demo
	transcript transcript.Store
	sessionID  string
	site       string
	attempt    int
}

// Logger returns the configured logger.
func (c *dispatchContext) Logger() *slog.Logger {
	return c.logger
}

// Host returns the owning demo instance.
func (c *dispatchContext) Host() *Demo {
	return c.host
}

// Transcript returns the transcript store.
func (c *dispatchContext) Transcript() transcript.Store {
	return c.transcript
}

// SessionID returns the session identifier.
func (c *dispatchContext) SessionID() string {
	return c.sessionID
}

// Site returns the current site identifier.
func (c *dispatchContext) Site() string {
	return c.site
}

// Attempt returns the re-prompt attempt number.
func (c *dispatchContext) Attempt() int {
	return c.attempt
}

// ContextOption configures a Context.
type ContextOption func(*dispatchContext)

// WithLogger sets the logger for the context.
// The logger is enriched with session_id, site, and attempt during dispatch.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *dispatchContext) {
		c.logger = logger
	}
}

// WithTranscript sets the transcript store for the context.
// The run loop appends one entry per dispatch when a store is present.
func WithTranscript(store transcript.Store) ContextOption {
	return func(c *dispatchContext) {
		c.transcript = store
	}
}

// WithSessionID sets the session identifier for the context.
// If not set, a UUID is auto-generated.
func WithSessionID(id string) ContextOption {
	return func(c *dispatchContext) {
		c.sessionID = id
	}
}

// NewContext creates a dispatch context from a standard context.
//
// Example:
//
//	ctx := demokit.NewContext(context.Background(),
//	    demokit.WithLogger(myLogger),
//	    demokit.WithSessionID("session-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	dc := &dispatchContext{
		Context:   ctx,
		logger:    slog.Default(),
		sessionID: uuid.New().String(),
		attempt:   1,
	}

	for _, opt := range opts {
		opt(dc)
	}

	return dc
}

// withSite returns a derived context for one prompt at site.
// Used internally by the run loop.
func (c *dispatchContext) withSite(site string, attempt int) *dispatchContext {
	return &dispatchContext{
		Context:    c.Context,
		logger:     c.logger.With("session_id", c.sessionID, "site", site, "attempt", attempt),
		host:       c.host,
		transcript: c.transcript,
		sessionID:  c.sessionID,
		site:       site,
		attempt:    attempt,
	}
}

// withHost returns a derived context bound to the owning demo.
// Used internally by Demo.Run.
func (c *dispatchContext) withHost(d *Demo) *dispatchContext {
	clone := *c
	clone.host = d
	return &clone
}

// asDispatchContext adapts any Context (or plain context.Context) into the
// internal implementation so the run loop can derive per-site contexts.
func asDispatchContext(ctx context.Context) *dispatchContext {
	if dc, ok := ctx.(*dispatchContext); ok {
		return dc
	}
	if c, ok := ctx.(Context); ok {
		return &dispatchContext{
			Context:    ctx,
			logger:     c.Logger(),
			host:       c.Host(),
			transcript: c.Transcript(),
			sessionID:  c.SessionID(),
			site:       c.Site(),
			attempt:    c.Attempt(),
		}
	}
	return &dispatchContext{
		Context:   ctx,
		logger:    slog.Default(),
		sessionID: uuid.New().String(),
		attempt:   1,
	}
}
