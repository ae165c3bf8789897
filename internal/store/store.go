package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Table names shared by the SQL backends.
const (
	TableLearners  = "learners"
	TableInstances = "instances"
	TableRewards   = "reward_events"
)

// Store is the SQLite implementation of Repository. Queries are built with
// the ent SQL builder and run on database/sql.
type Store struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

var _ Repository = (*Store)(nil)

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer; a single connection keeps transactions
	// from tripping over each other's locks.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	ctx := context.Background()
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, b: entsql.Dialect(dialect.SQLite), seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS learners (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		document TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instances (
		id TEXT PRIMARY KEY,
		learner_id TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		template_id TEXT NOT NULL,
		status TEXT NOT NULL,
		document TEXT NOT NULL,
		enrolled_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (learner_id, template_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reward_events (
		sequence INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		learner_id TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		instance_id TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		item_key TEXT NOT NULL DEFAULT '',
		xp_delta INTEGER NOT NULL,
		achievements TEXT NOT NULL DEFAULT '[]',
		timestamp TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reward_events_learner ON reward_events (learner_id, sequence)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
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

// DefaultDBPath resolves the database file path in priority order:
// 1. SKILLPATH_DB environment variable
// 2. $XDG_DATA_HOME/skillpath/skillpath.db
// 3. ~/.local/share/skillpath/skillpath.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SKILLPATH_DB"); p != "" {
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

	p := filepath.Join(dataHome, "skillpath", "skillpath.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
