// Package transcript provides persistent session transcript storage.
//
// A transcript records every dispatch a demo session performs: which site
// prompted, what the user answered, which option key handled it, and the
// signal the callback returned. Stores are optional; a demo without a store
// simply keeps no history.
package transcript

import (
	"errors"
	"time"
)

// Entry is one recorded dispatch.
type Entry struct {
	// SessionID identifies the demo session.
	SessionID string
	// Seq is the 1-based position of this entry within the session.
	Seq int
	// Site is the input-function identifier that prompted.
	Site string
	// Response is the raw user response.
	Response string
	// Key is the option key that handled the response.
	Key string
	// Signal is the string form of the signal the callback returned.
	Signal string
	// Timestamp is when the dispatch completed, in UTC.
	Timestamp time.Time
}

// Store persists session transcripts.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records one dispatch at the end of the session's transcript.
	// The store assigns Seq and Timestamp when they are zero.
	Append(entry Entry) error

	// List returns all entries for a session ordered by sequence.
	// Returns empty slice (not error) if the session has no entries.
	List(sessionID string) ([]Entry, error)

	// DeleteSession removes all entries for a session.
	// Returns nil if the session has no entries.
	DeleteSession(sessionID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for transcript operations.
var (
	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("transcript store closed")

	// ErrEmptySession indicates an entry or query without a session ID.
	ErrEmptySession = errors.New("session ID must not be empty")
)
