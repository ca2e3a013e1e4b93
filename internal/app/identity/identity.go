/*
Package identity holds the pseudonymous identity of the local device.

An Identity is generated once, persisted in the same-device store under the "userId" and
"username" keys, and reused on every later start. It is constructed explicitly and passed
to the components that need it; nothing reads it from global state.
*/
package identity

import (
	"context"
	"errors"
	"strings"

	"anonchat/internal/app/storage"
	"anonchat/internal/pkg/logx"
	"anonchat/internal/pkg/randx"
)

const (
	// UserIDKey stores the device's user id.
	UserIDKey = "userId"

	// UsernameKey stores the device's display name.
	UsernameKey = "username"
)

// ErrInvalid is returned by New for an empty user id or username.
var ErrInvalid = errors.New("identity: user id and username must not be empty")

// Identity is the pseudonym a device chats under.
type Identity struct {

	// UserID is the random per-device id, e.g. "user_k3j9x0a1b".
	UserID string `json:"userId"`

	// Username is the display name shown next to messages, e.g. "Anonymous4821".
	Username string `json:"username"`
}

// New builds an Identity from known values.
func New(userID, username string) (Identity, error) {
	userID = strings.TrimSpace(userID)
	username = strings.TrimSpace(username)
	if userID == "" || username == "" {
		return Identity{}, ErrInvalid
	}

	return Identity{UserID: userID, Username: username}, nil
}

// Generate returns a fresh random Identity without persisting it.
func Generate() (Identity, error) {
	userID, err := randx.UserID()
	if err != nil {
		return Identity{}, err
	}

	username, err := randx.Username()
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: userID, Username: username}, nil
}

// LoadOrCreate returns the identity stored in store, generating and saving any missing part.
//
// Storage failures do not stop the device from chatting: an unreadable value is replaced by
// a generated one and a failed write is logged, leaving the identity valid for this process only.
// Stored values are trimmed; blank ones count as missing.
func LoadOrCreate(ctx context.Context, store storage.Store) (Identity, error) {
	generated, err := Generate()
	if err != nil {
		return Identity{}, err
	}

	userID := loadOrSave(ctx, store, UserIDKey, generated.UserID)
	username := loadOrSave(ctx, store, UsernameKey, generated.Username)

	return New(userID, username)
}

func loadOrSave(ctx context.Context, store storage.Store, key, fallback string) string {
	raw, err := store.Get(ctx, key)
	if err == nil && strings.TrimSpace(string(raw)) != "" {
		return string(raw)
	}

	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logx.Warn("Failed to read identity, using a new one", "key", key, "error", err.Error())
		return fallback
	}

	if err := store.Set(ctx, key, []byte(fallback)); err != nil {
		logx.Warn("Failed to persist identity", "key", key, "error", err.Error())
	}

	return fallback
}
