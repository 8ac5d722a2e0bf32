package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// KV is a device-local durable key/value substrate grouped by namespace.
// Put replaces the whole namespace atomically.
type KV interface {
	Get(ctx context.Context, namespace string) (map[string]string, error)
	Put(ctx context.Context, namespace string, fields map[string]string) error
	Clear(ctx context.Context, namespace string) error
}

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
  namespace TEXT NOT NULL,
  key       TEXT NOT NULL,
  value     TEXT NOT NULL,
  PRIMARY KEY (namespace, key)
);`

// SQLiteKV stores namespaces in a single SQLite table.
type SQLiteKV struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite file at dsn.
// ":memory:" works for tests.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// one connection keeps ":memory:" a single database
	db.SetMaxOpenConns(1)
	kv, err := NewSQLiteKV(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return kv, nil
}

// NewSQLiteKV wraps db and makes sure the prefs table exists.
func NewSQLiteKV(ctx context.Context, db *sql.DB) (*SQLiteKV, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create prefs table: %w", err)
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Close() error { return s.db.Close() }

func (s *SQLiteKV) Get(ctx context.Context, namespace string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM prefs WHERE namespace = ?`, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefs[%s]: %w", namespace, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan prefs row: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prefs rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteKV) Put(ctx context.Context, namespace string, fields map[string]string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin prefs tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM prefs WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("failed to reset prefs[%s]: %w", namespace, err)
	}
	for k, v := range fields {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO prefs (namespace, key, value) VALUES (?, ?, ?)`, namespace, k, v); err != nil {
			return fmt.Errorf("failed to write prefs[%s.%s]: %w", namespace, k, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit prefs[%s]: %w", namespace, err)
	}
	return nil
}

func (s *SQLiteKV) Clear(ctx context.Context, namespace string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM prefs WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("failed to clear prefs[%s]: %w", namespace, err)
	}
	return nil
}

// MemoryKV is a process-local KV.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, namespace string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.data[namespace]))
	for k, v := range m.data[namespace] {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryKV) Put(_ context.Context, namespace string, fields map[string]string) error {
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	m.mu.Lock()
	m.data[namespace] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Clear(_ context.Context, namespace string) error {
	m.mu.Lock()
	delete(m.data, namespace)
	m.mu.Unlock()
	return nil
}
