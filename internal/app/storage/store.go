/*
Package storage is the key-value persistence boundary of the chat widget.

Every stateful component reads and writes through Store: a string-keyed byte store with
get, set and prefix listing. Backends exist for same-device storage (SQLite), remote
stores (Postgres, Redis, S3-compatible object storage) and memory. The core never knows
which one it talks to.

Failures are classified with ErrRead and ErrWrite so callers can apply their fail-open
policy without inspecting backend-specific errors. A missing key is ErrNotFound, which is
not a failure.
*/
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a key has no value.
	ErrNotFound = errors.New("storage: key not found")

	// ErrRead classifies every failed read or list.
	ErrRead = errors.New("storage: read failed")

	// ErrWrite classifies every failed write.
	ErrWrite = errors.New("storage: write failed")
)

// Store is a string-keyed value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// List returns every key starting with prefix, in ascending key order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}

func readError(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrRead, op, key, err)
}

func writeError(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrWrite, op, key, err)
}

// GetJSON loads key from s and decodes it into dst.
// An undecodable value is reported as ErrRead.
func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return readError("decode", key, err)
	}

	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return writeError("encode", key, err)
	}

	return s.Set(ctx, key, raw)
}
