package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dms-go/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// StoredSession is one row of the sessions table.
type StoredSession struct {
	ServerURL string
	Token     string
	SavedAt   time.Time
}

// SessionDB keeps one bearer token per backend URL in SQLite.
type SessionDB struct {
	db   *sql.DB
	path string
}

// OpenSessionDB opens the database at path, creating and migrating it as
// needed. path can be a file path or ":memory:".
func OpenSessionDB(path string) (*SessionDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating session database: %w", err)
	}
	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("session database schema out of date: %w", err)
	}

	return &SessionDB{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// Session returns the session stored for serverURL, or nil.
func (s *SessionDB) Session(serverURL string) (*StoredSession, error) {
	row := s.db.QueryRow(
		"SELECT server_url, token, saved_at FROM sessions WHERE server_url = ?", serverURL)

	var out StoredSession
	var savedAt string
	if err := row.Scan(&out.ServerURL, &out.Token, &savedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing saved_at %q: %w", savedAt, err)
	}
	out.SavedAt = t
	return &out, nil
}

// SaveSession inserts or replaces the session for sess.ServerURL.
func (s *SessionDB) SaveSession(sess StoredSession) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (server_url, token, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(server_url) DO UPDATE SET
			token = excluded.token,
			saved_at = excluded.saved_at`,
		sess.ServerURL, sess.Token, sess.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// DeleteSession removes the session for serverURL. Deleting a missing row is not an error.
func (s *SessionDB) DeleteSession(serverURL string) error {
	if _, err := s.db.Exec("DELETE FROM sessions WHERE server_url = ?", serverURL); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *SessionDB) Path() string { return s.path }

func (s *SessionDB) Close() error {
	return s.db.Close()
}
