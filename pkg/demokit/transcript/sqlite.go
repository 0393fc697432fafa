package transcript

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists transcripts to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite transcript store.
// The path should be a file path (e.g., "./transcripts.db") or ":memory:"
// for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS transcript_entries (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			site TEXT NOT NULL,
			response TEXT NOT NULL,
			key TEXT NOT NULL,
			signal TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			PRIMARY KEY (session_id, seq)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transcript_session
		ON transcript_entries(session_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(entry Entry) error {
	if entry.SessionID == "" {
		return ErrEmptySession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	if entry.Seq > 0 {
		_, err := s.db.Exec(`
			INSERT INTO transcript_entries (session_id, seq, site, response, key, signal, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, entry.SessionID, entry.Seq, entry.Site, entry.Response, entry.Key,
			entry.Signal, timestamp.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("append entry: %w", err)
		}
		return nil
	}

	// Assign the next sequence number for the session.
	_, err := s.db.Exec(`
		INSERT INTO transcript_entries (session_id, seq, site, response, key, signal, timestamp)
		VALUES (
			?,
			COALESCE((SELECT MAX(seq) FROM transcript_entries WHERE session_id = ?), 0) + 1,
			?, ?, ?, ?, ?
		)
	`, entry.SessionID, entry.SessionID, entry.Site, entry.Response, entry.Key,
		entry.Signal, timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(sessionID string) ([]Entry, error) {
	if sessionID == "" {
		return nil, ErrEmptySession
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT session_id, seq, site, response, key, signal, timestamp
		FROM transcript_entries
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.SessionID, &e.Seq, &e.Site, &e.Response, &e.Key, &e.Signal, &ts); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// DeleteSession implements Store.
func (s *SQLiteStore) DeleteSession(sessionID string) error {
	if sessionID == "" {
		return ErrEmptySession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`
		DELETE FROM transcript_entries WHERE session_id = ?
	`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
