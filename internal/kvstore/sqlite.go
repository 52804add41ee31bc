package kvstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on entries.updated_at
const currentSchemaVersion = 1

// SQLiteBackend stores one serialized value per (class, namespace) row in a
// SQLite database. Uses WAL mode for concurrent read access.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Load implements Backend.
func (b *SQLiteBackend) Load(ctx context.Context, class StorageClass, namespace string) ([]byte, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM entries WHERE class = ? AND namespace = ?`,
		string(class), namespace,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s/%s: %w", class, namespace, err)
	}
	return []byte(value), true, nil
}

// Save implements Backend. Uses an upsert so repeated saves replace the row.
// SQLITE_FULL is reported as a quota failure.
func (b *SQLiteBackend) Save(ctx context.Context, class StorageClass, namespace string, raw []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO entries (class, namespace, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(class, namespace) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`,
		string(class), namespace, string(raw), time.Now().UnixMilli(),
	)
	if err != nil {
		if isSQLiteFull(err) {
			return fmt.Errorf("save %s/%s: %w", class, namespace, ErrQuotaExceeded)
		}
		return fmt.Errorf("save %s/%s: %w", class, namespace, err)
	}
	return nil
}

// Remove implements Backend. Removing an absent row is a no-op.
func (b *SQLiteBackend) Remove(ctx context.Context, class StorageClass, namespace string) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM entries WHERE class = ? AND namespace = ?`,
		string(class), namespace,
	)
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", class, namespace, err)
	}
	return nil
}

// isSQLiteFull reports whether err is a SQLITE_FULL disk/quota failure.
func isSQLiteFull(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrFull
	}
	return false
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
		version = 1
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds an index on entries.updated_at for existing databases.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_entries_updated_at
		ON entries(updated_at)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}
