package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteOpTimeout = 5 * time.Second

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS client_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLite stores each key as one row.
type SQLite struct {
	db   *sql.DB
	path string
}

func OpenSQLite(path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate client_kv: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Get(key string, out any) (bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM client_kv WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query client_kv: %w", err)
	}
	return true, decode([]byte(value), out)
}

func (s *SQLite) Set(key string, value any) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	payload, err := encode(value)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)

	// Prefer UPDATE then INSERT to avoid relying on newer SQLite upsert syntax.
	result, err := s.db.ExecContext(ctx, `
		UPDATE client_kv
		SET value = ?, updated_at = ?
		WHERE key = ?
	`, string(payload), now, key)
	if err != nil {
		return fmt.Errorf("failed to update client_kv: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO client_kv (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, key, string(payload), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert client_kv: %w", err)
	}
	return nil
}

func (s *SQLite) Remove(key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM client_kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete client_kv: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
