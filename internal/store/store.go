package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database and hands out repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SessionRepo returns the durable session repository backed by this store.
func (s *Store) SessionRepo() *SessionRepo {
	return &SessionRepo{db: s.db}
}

// AttemptRepo returns the attempt log and history backed by this store.
func (s *Store) AttemptRepo() *AttemptRepo {
	return &AttemptRepo{db: s.db, seq: s.seq}
}

// TemplateRepo returns the template catalog backed by this store.
func (s *Store) TemplateRepo() *TemplateRepo {
	return &TemplateRepo{db: s.db}
}

// EventRepo returns the model-request event sink backed by this store.
func (s *Store) EventRepo() *EventRepo {
	return &EventRepo{db: s.db, seq: s.seq}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate creates the schema. Idempotent; every statement is IF NOT EXISTS.
func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			learner_id TEXT NOT NULL,
			template_id TEXT NOT NULL,
			narrative TEXT NOT NULL,
			hint TEXT NOT NULL DEFAULT '',
			equation TEXT NOT NULL DEFAULT '',
			answer INTEGER NOT NULL,
			topic INTEGER NOT NULL,
			difficulty INTEGER NOT NULL,
			bindings TEXT NOT NULL DEFAULT '{}',
			visual_metadata TEXT,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_learner_active
			ON sessions (learner_id, completed, expires_at)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			sequence INTEGER PRIMARY KEY,
			learner_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			template_id TEXT NOT NULL,
			topic INTEGER NOT NULL,
			difficulty INTEGER NOT NULL,
			equation TEXT NOT NULL DEFAULT '',
			answer INTEGER NOT NULL,
			expected INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			elapsed_sec INTEGER NOT NULL,
			hints_used INTEGER NOT NULL,
			reward INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_learner
			ON attempts (learner_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL DEFAULT '',
			narrative TEXT NOT NULL,
			hint TEXT NOT NULL DEFAULT '',
			equation TEXT NOT NULL DEFAULT '',
			variables TEXT NOT NULL,
			topics TEXT NOT NULL,
			difficulty INTEGER NOT NULL,
			quality REAL NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 1,
			visual_metadata TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS llm_requests (
			sequence INTEGER PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			latency_ms INTEGER NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. MATHQUEST_DB environment variable
// 2. $XDG_DATA_HOME/mathquest/mathquest.db
// 3. ~/.local/share/mathquest/mathquest.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MATHQUEST_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "mathquest", "mathquest.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
