package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/askeland/mailfold/internal/config"
	"github.com/askeland/mailfold/internal/errors"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// SQLite is the Store implementation backed by a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// Open initializes the SQLite store at baseDir/mailfold.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.mailfold.
func Open(baseDir string) (*SQLite, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	dbPath := filepath.Join(baseDir, "mailfold.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return &SQLite{db: db}, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func (s *SQLite) ConfigurePool(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		s.db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		s.db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	row := s.db.QueryRowContext(ctx, "SELECT body FROM objects WHERE key = ?", key)
	if err := row.Scan(&body); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound(key)
		}
		return nil, errors.NewStorage("get", key, err)
	}
	return body, nil
}

// Put implements Store as an upsert.
func (s *SQLite) Put(ctx context.Context, key string, data []byte) error {
	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO objects (key, body, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, data, now, now)
	if err != nil {
		return errors.NewStorage("put", key, err)
	}
	return nil
}

// Exists implements Store.
func (s *SQLite) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	row := s.db.QueryRowContext(ctx, "SELECT 1 FROM objects WHERE key = ?", key)
	if err := row.Scan(&one); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.NewStorage("exists", key, err)
	}
	return true, nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM objects WHERE key LIKE ? ORDER BY key",
		prefix+"%")
	if err != nil {
		return nil, errors.NewStorage("list", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.NewStorage("list", prefix, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("list", prefix, err)
	}
	return keys, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := getUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS objects (
		  key        TEXT PRIMARY KEY,
		  body       BLOB NOT NULL,
		  created_at INTEGER NOT NULL,
		  updated_at INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

func getUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

func setUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
