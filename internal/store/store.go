package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS activity_records (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		project       TEXT NOT NULL,
		type          TEXT NOT NULL,
		start_time    TEXT NOT NULL,
		end_time      TEXT NOT NULL,
		file          TEXT NOT NULL DEFAULT '',
		url           TEXT NOT NULL DEFAULT '',
		host          TEXT NOT NULL DEFAULT '',
		meeting_title TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_records_project ON activity_records(project);
	CREATE INDEX IF NOT EXISTS idx_records_start   ON activity_records(start_time);

	CREATE TABLE IF NOT EXISTS ignored_projects (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		project_name TEXT NOT NULL UNIQUE,
		ignored_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS project_names (
		project_name TEXT PRIMARY KEY,
		custom_name  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS project_clients (
		project_name TEXT PRIMARY KEY,
		client       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wrike_mappings (
		project_name TEXT PRIMARY KEY,
		wrike_id     TEXT NOT NULL,
		permalink    TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS url_patterns (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		project TEXT NOT NULL,
		pattern TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS meeting_patterns (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		project     TEXT NOT NULL,
		pattern     TEXT NOT NULL UNIQUE,
		auto_assign INTEGER NOT NULL DEFAULT 1,
		last_used   TEXT
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('idle_timeout',       '600'),
		('reporting_timezone', 'UTC'),
		('daily_target',       '28800'),
		('week_start',         'monday');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/devtrack/devtrack.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "devtrack", "devtrack.db"), nil
}
