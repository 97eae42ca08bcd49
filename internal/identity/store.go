// internal/identity/store.go
//
// Durable storage for the device's single identity slot.
// Responsibilities:
//   - Opening the SQLite database with safe defaults (WAL, busy timeout).
//   - Bootstrapping the one-table schema on open (idempotent).
//   - Read/Write/Clear of a single well-known key, full overwrite only.
//
// A Read failure (corrupt file, locked database) degrades to "absent":
// the client then behaves as if no identity was ever persisted instead
// of refusing to start.

package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// slotKey is the fixed name of the identity slot.
const slotKey = "user_uuid"

// Store is the persistence contract for the identity slot.
// Implementations hold at most one token.
type Store interface {
	// Read returns the persisted token, or ok=false if none is stored
	// (or storage is unavailable).
	Read(ctx context.Context) (token string, ok bool)

	// Write overwrites the slot with token.
	Write(ctx context.Context, token string) error

	// Clear empties the slot.
	Clear(ctx context.Context) error
}

// sqliteStore is a Store backed by a local SQLite file.
type sqliteStore struct {
	db *sql.DB
}

// OpenStore opens (and creates if missing) the identity database under
// dir and bootstraps its schema.
func OpenStore(dir string) (Store, error) {
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	dsn := filepath.Join(dir, "worldle.db")
	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS client_kv (
		name  TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Read(ctx context.Context) (string, bool) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM client_kv WHERE name=?`, slotKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		// Unreadable storage is treated as an empty slot.
		log.Warn().Err(err).Msg("identity slot unreadable, treating as absent")
		return "", false
	}
	return v, v != ""
}

func (s *sqliteStore) Write(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_kv(name, value) VALUES(?, ?)
		ON CONFLICT(name) DO UPDATE SET value=excluded.value`,
		slotKey, token)
	if err != nil {
		return fmt.Errorf("write identity slot: %w", err)
	}
	return nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM client_kv WHERE name=?`, slotKey); err != nil {
		return fmt.Errorf("clear identity slot: %w", err)
	}
	return nil
}
