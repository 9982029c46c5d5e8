// Package state persists session history to SQLite. A session is written
// once, after it completes; the in-memory RunLog is the source of truth
// while a session runs.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/startrc/pkg/core"
)

// SQLiteStore implements core.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// New creates an unopened store.
func New(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the SQLite database at path. Use ":memory:" for an in-memory
// database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// SaveSession writes one completed session and all its log entries in a
// single transaction.
func (s *SQLiteStore) SaveSession(rec *core.SessionRecord, entries []core.EntryRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if rec.ID == "" {
		rec.ID = NewSessionID()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, dir, started_at, completed_at, successes, failures)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Dir, rec.StartedAt.UTC(), rec.CompletedAt.UTC(), rec.Successes, rec.Failures,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for _, e := range entries {
		_, err = tx.Exec(
			`INSERT INTO entries (session_id, seq, kind, name, elapsed_ms, message)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, e.Seq, string(e.Kind), e.Name, e.ElapsedMS, e.Message,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	s.logger.Debug("saved session", "id", rec.ID, "successes", rec.Successes, "failures", rec.Failures)
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(id string) (*core.SessionRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	row := s.db.QueryRow(
		`SELECT id, dir, started_at, completed_at, successes, failures
		 FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// GetLatestSession retrieves the most recently started session.
func (s *SQLiteStore) GetLatestSession() (*core.SessionRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	row := s.db.QueryRow(
		`SELECT id, dir, started_at, completed_at, successes, failures
		 FROM sessions ORDER BY started_at DESC, id DESC LIMIT 1`)
	return scanSession(row)
}

// ListSessions returns up to limit sessions, newest first.
func (s *SQLiteStore) ListSessions(limit int) ([]*core.SessionRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, dir, started_at, completed_at, successes, failures
		 FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []*core.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetEntries returns a session's log entries in append order.
func (s *SQLiteStore) GetEntries(sessionID string) ([]core.EntryRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT session_id, seq, kind, name, elapsed_ms, message
		 FROM entries WHERE session_id = ? ORDER BY kind ASC, seq ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var out []core.EntryRecord
	for rows.Next() {
		var e core.EntryRecord
		var kind string
		if err := rows.Scan(&e.SessionID, &e.Seq, &kind, &e.Name, &e.ElapsedMS, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Kind = core.EntryKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*core.SessionRecord, error) {
	var rec core.SessionRecord
	var started, completed time.Time
	err := row.Scan(&rec.ID, &rec.Dir, &started, &completed, &rec.Successes, &rec.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	rec.StartedAt = started
	rec.CompletedAt = completed
	return &rec, nil
}
