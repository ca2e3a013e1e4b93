/*
Package feed implements the shared message feed.

Messages live in the shared store, one key per message ("msg_<id>"), and are never edited
or deleted. Repository reads and writes them. View is the locally displayed window: the
last MaxMessages messages in timestamp order, plus messages this device sent that no poll
has returned yet.
*/
package feed

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"anonchat/internal/app/identity"
	"anonchat/internal/pkg/randx"
)

const (
	// KeyPrefix prefixes the storage key of every message.
	KeyPrefix = "msg_"

	// MaxMessages caps the displayed feed.
	MaxMessages = 50

	// MaxContentBytes caps the size of one message text.
	MaxContentBytes = 5000
)

var (
	// ErrEmptyMessage rejects a text that is empty after trimming whitespace.
	ErrEmptyMessage = errors.New("feed: message is empty")

	// ErrMessageTooLong rejects a text over MaxContentBytes.
	ErrMessageTooLong = errors.New("feed: message is too long")

	// ErrNoAccess rejects a send while access is not active.
	ErrNoAccess = errors.New("feed: chat access is not active")

	// ErrInvalidText rejects a text that is not valid UTF-8.
	ErrInvalidText = errors.New("feed: message is not valid UTF-8")
)

// Message is one chat message as stored in the shared store.
type Message struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Username string `json:"username"`
	UserID   string `json:"userId"`

	// Timestamp is the send time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// Key returns the storage key of the message with id.
func Key(id string) string {
	return KeyPrefix + id
}

// Validate checks that text may be sent while access is active or not.
func Validate(text string, active bool) error {
	trimmed := strings.TrimSpace(text)

	switch {
	case trimmed == "":
		return ErrEmptyMessage
	case len(trimmed) > MaxContentBytes:
		return ErrMessageTooLong
	case !utf8.ValidString(trimmed):
		return ErrInvalidText
	case !active:
		return ErrNoAccess
	}

	return nil
}

// NewMessage validates text and builds a message from author sent at now.
// The text is stored trimmed.
func NewMessage(author identity.Identity, text string, active bool, now time.Time) (Message, error) {
	if err := Validate(text, active); err != nil {
		return Message{}, err
	}

	id, err := randx.MessageID(now)
	if err != nil {
		return Message{}, err
	}

	return Message{
		ID:        id,
		Text:      strings.TrimSpace(text),
		Username:  author.Username,
		UserID:    author.UserID,
		Timestamp: now.UnixMilli(),
	}, nil
}
