package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects the SQL flavour spoken by SQLStore.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DBTX is the subset of database/sql used by SQLStore. *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlQueries struct {
	get  string
	set  string
	list string
}

var dialectQueries = map[Dialect]sqlQueries{
	DialectSQLite: {
		get: `SELECT value FROM kv_store WHERE key = ?`,
		set: `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		list: `SELECT key FROM kv_store WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key`,
	},
	DialectPostgres: {
		get: `SELECT value FROM kv_store WHERE key = $1`,
		set: `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		list: `SELECT key FROM kv_store WHERE starts_with(key, $1) ORDER BY key`,
	},
}

// SQLStore keeps values in the kv_store table of a SQLite or Postgres database.
// The table is created by the db package migrations.
type SQLStore struct {
	db      DBTX
	closer  func() error
	queries sqlQueries
}

// NewSQLStore returns a store over db. closer runs on Close and may be nil.
func NewSQLStore(db DBTX, dialect Dialect, closer func() error) (*SQLStore, error) {
	queries, ok := dialectQueries[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}

	return &SQLStore{db: db, closer: closer, queries: queries}, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, s.queries.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, readError("get", key, err)
	}

	return value, nil
}

// Set implements Store.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.queries.set, key, value); err != nil {
		return writeError("set", key, err)
	}
	return nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.list, prefix)
	if err != nil {
		return nil, readError("list", prefix, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, readError("list", prefix, err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, readError("list", prefix, err)
	}

	return keys, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
