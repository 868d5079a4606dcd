package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// KVRepository stores named JSON-encoded collections in a single table.
type KVRepository struct {
	conn *sql.DB
}

// NewKVRepository creates a repository backed by the given connection.
func NewKVRepository(conn *sql.DB) *KVRepository {
	return &KVRepository{conn: conn}
}

// Get returns the stored value for key. The second return reports whether
// the key exists.
func (r *KVRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.conn.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key, replacing any previous value.
func (r *KVRepository) Set(key, value string) error {
	_, err := r.conn.Exec(
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes key if present.
func (r *KVRepository) Delete(key string) error {
	if _, err := r.conn.Exec("DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
