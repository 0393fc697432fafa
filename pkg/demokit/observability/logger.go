// Package observability provides production-grade observability features
// for demokit: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds demokit context to a logger.
// Returns a new logger with session_id, site, and attempt fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "session-123", "setup", 1)
//	enriched.Info("prompting") // includes session_id, site, attempt
func EnrichLogger(logger *slog.Logger, sessionID, site string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("session_id", sessionID),
		slog.String("site", site),
		slog.Int("attempt", attempt),
	)
}

// LogSessionStart logs the start of a demo session.
func LogSessionStart(logger *slog.Logger, sessionID string) {
	if logger == nil {
		return
	}
	logger.Info("demo session starting",
		slog.String("session_id", sessionID),
	)
}

// LogSessionComplete logs successful demo session completion.
func LogSessionComplete(logger *slog.Logger, sessionID string, durationMs float64, dispatches int) {
	if logger == nil {
		return
	}
	logger.Info("demo session completed",
		slog.String("session_id", sessionID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("dispatches", dispatches),
	)
}

// LogSessionError logs demo session failure.
func LogSessionError(logger *slog.Logger, sessionID string, err error, durationMs float64, lastSite string) {
	if logger == nil {
		return
	}
	logger.Error("demo session failed",
		slog.String("session_id", sessionID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_site", lastSite),
	)
}

// LogPrompt logs that a site is about to prompt for input.
func LogPrompt(logger *slog.Logger, site string, attempt int) {
	if logger == nil {
		return
	}
	logger.Debug("prompting",
		slog.String("site", site),
		slog.Int("attempt", attempt),
	)
}

// LogDispatch logs a completed dispatch.
func LogDispatch(logger *slog.Logger, site, key, signal string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("dispatched",
		slog.String("site", site),
		slog.String("key", key),
		slog.String("signal", signal),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDispatchError logs a callback failure.
func LogDispatchError(logger *slog.Logger, site, key string, err error) {
	if logger == nil {
		return
	}
	logger.Error("dispatch failed",
		slog.String("site", site),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// LogUnknownResponse logs a response that matched no option.
func LogUnknownResponse(logger *slog.Logger, site, response string) {
	if logger == nil {
		return
	}
	logger.Debug("unknown response",
		slog.String("site", site),
		slog.String("response", response),
	)
}

// LogTranscriptError logs a transcript append failure (non-fatal).
func LogTranscriptError(logger *slog.Logger, site string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("transcript append failed",
		slog.String("site", site),
		slog.String("error", err.Error()),
	)
}
