package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"anonchat/internal/app/storage"
	"anonchat/internal/pkg/logx"
)

var errMissingID = errors.New("message has no id")

// DefaultFetchWindow is how many of the newest message keys one fetch reads.
// Message ids start with their millisecond timestamp, so key order follows send order.
const DefaultFetchWindow = 2 * MaxMessages

// Repository reads and writes messages in the shared store.
type Repository struct {
	store  storage.Store
	window int
}

// NewRepository returns a repository over store reading the newest window keys per fetch.
// A window of zero or less reads every message.
func NewRepository(store storage.Store, window int) *Repository {
	return &Repository{store: store, window: window}
}

// Save writes msg under its own key.
func (r *Repository) Save(ctx context.Context, msg Message) error {
	return storage.SetJSON(ctx, r.store, Key(msg.ID), msg)
}

// Fetch returns the stored messages in key order.
//
// Keys that disappear between list and get, and values that do not decode, are skipped.
// Any other read failure fails the whole fetch so a partial result is never taken as
// authoritative.
func (r *Repository) Fetch(ctx context.Context) ([]Message, error) {
	keys, err := r.store.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if r.window > 0 && len(keys) > r.window {
		keys = keys[len(keys)-r.window:]
	}

	messages := make([]Message, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load message: %w", err)
		}

		var msg Message
		if err := decode(raw, &msg); err != nil {
			logx.Warn("Skipping undecodable message", "key", key, "error", err.Error())
			continue
		}

		messages = append(messages, msg)
	}

	return messages, nil
}

func decode(raw []byte, msg *Message) error {
	if err := json.Unmarshal(raw, msg); err != nil {
		return err
	}

	if msg.ID == "" {
		return errMissingID
	}

	return nil
}
