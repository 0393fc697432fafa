package demokit

import (
	"log/slog"

	"github.com/randalmurphal/demokit/pkg/demokit/observability"
)

// registerConfig holds configuration collected from RegisterOptions.
type registerConfig struct {
	description string
	args        []any
	kwargs      map[string]any
	lock        bool
	retry       bool
	newline     bool
	overwrite   bool
}

// RegisterOption configures one registration.
// These replace the keyword arguments of a decorator-style registration:
// the builder call happens at construction time and leaves the callback
// unchanged, so ordinary function-reference semantics apply.
type RegisterOption func(*registerConfig)

// WithDescription sets the display text shown in option listings.
// Options without a description are not listed.
func WithDescription(desc string) RegisterOption {
	return func(c *registerConfig) {
		c.description = desc
	}
}

// WithArgs binds default positional arguments merged into every invocation.
func WithArgs(args ...any) RegisterOption {
	return func(c *registerConfig) {
		c.args = args
	}
}

// WithKwargs binds default named arguments merged into every invocation.
func WithKwargs(kwargs map[string]any) RegisterOption {
	return func(c *registerConfig) {
		c.kwargs = kwargs
	}
}

// WithLock marks the callback as the single discriminator for its site.
// The matched option receives the site identifier as its input, and the
// site accepts no further registrations once the option is inserted.
func WithLock() RegisterOption {
	return func(c *registerConfig) {
		c.lock = true
	}
}

// WithRetry instructs the caller to re-prompt the same site after the
// callback returns, regardless of its return value.
func WithRetry() RegisterOption {
	return func(c *registerConfig) {
		c.retry = true
	}
}

// WithNewline instructs the caller to print a blank line before invoking
// the callback.
func WithNewline() RegisterOption {
	return func(c *registerConfig) {
		c.newline = true
	}
}

// WithOverwrite permits replacing an existing key in the target site's set.
// Without it, re-registering a key fails with *DuplicateKeyError. This is
// how a derived registry built via Copy() overrides inherited options
// without silently shadowing them.
func WithOverwrite() RegisterOption {
	return func(c *registerConfig) {
		c.overwrite = true
	}
}

func applyRegisterOptions(opts []RegisterOption) registerConfig {
	var cfg registerConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// DefaultMaxRetries is the default re-prompt limit per site.
const DefaultMaxRetries = 100

// runConfig holds configuration for a demo session.
type runConfig struct {
	maxRetries     int
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	metricsEnabled bool
	tracingEnabled bool
}

// defaultRunConfig returns the default session configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxRetries: DefaultMaxRetries,
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
	}
}

// RunOption configures session behavior.
type RunOption func(*runConfig)

// WithMaxRetries sets the maximum number of re-prompts for a single site.
// Default: 100
//
// This prevents a retry option (or an unknown-response loop) from hanging a
// non-interactive session forever. Exceeding the limit ends the session
// with *MaxRetriesError.
func WithMaxRetries(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithObservabilityLogger sets the logger for session and dispatch events.
// Logs include structured fields: session_id, site, key, duration_ms.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for the session.
// Uses the global OTel meter provider.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		c.metricsEnabled = enabled
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry tracing for the session.
// Produces a session span with one child span per dispatch.
// Uses the global OTel tracer provider.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}
