package feed

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anonchat/internal/app/identity"
	"anonchat/internal/app/storage"
	"anonchat/internal/app/storage/storagetest"
)

var alice = identity.Identity{UserID: "user_alice0001", Username: "Anonymous1"}

func msgAt(id string, ts int64) Message {
	return Message{ID: id, Text: "hi " + id, Username: "Anonymous2", UserID: "user_other0002", Timestamp: ts}
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		active bool
		want   error
	}{
		{"ok", "hello", true, nil},
		{"empty", "", true, ErrEmptyMessage},
		{"whitespace", " \t\n ", true, ErrEmptyMessage},
		{"too long", strings.Repeat("a", MaxContentBytes+1), true, ErrMessageTooLong},
		{"at limit", strings.Repeat("a", MaxContentBytes), true, nil},
		{"invalid utf8", "\xff\xfe", true, ErrInvalidText},
		{"no access", "hello", false, ErrNoAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.text, tt.active)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewMessage(t *testing.T) {
	now := time.UnixMilli(1740830400123)

	msg, err := NewMessage(alice, "  hello world  ", true, now)
	require.NoError(t, err)

	assert.Equal(t, "hello world", msg.Text)
	assert.Equal(t, alice.UserID, msg.UserID)
	assert.Equal(t, alice.Username, msg.Username)
	assert.Equal(t, int64(1740830400123), msg.Timestamp)
	assert.True(t, strings.HasPrefix(msg.ID, "1740830400123_"), msg.ID)

	other, err := NewMessage(alice, "hello world", true, now)
	require.NoError(t, err)
	assert.NotEqual(t, msg.ID, other.ID)

	_, err = NewMessage(alice, "hello", false, now)
	assert.ErrorIs(t, err, ErrNoAccess)
}

func TestRepository_SaveAndFetch(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewRepository(store, 0)

	require.NoError(t, repo.Save(ctx, msgAt("2_b", 2)))
	require.NoError(t, repo.Save(ctx, msgAt("1_a", 1)))
	require.NoError(t, store.Set(ctx, "msg_broken", []byte("{not json")))
	require.NoError(t, store.Set(ctx, "msg_noid", []byte(`{"text":"x"}`)))
	require.NoError(t, store.Set(ctx, "userId", []byte("user_x")))

	messages, err := repo.Fetch(ctx)
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "1_a", messages[0].ID)
	assert.Equal(t, "2_b", messages[1].ID)
}

func TestRepository_FetchWindow(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewRepository(store, 3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Save(ctx, msgAt(fmt.Sprintf("%d_x", i), int64(i))))
	}

	messages, err := repo.Fetch(ctx)
	require.NoError(t, err)

	require.Len(t, messages, 3)
	assert.Equal(t, "3_x", messages[0].ID)
}

func TestRepository_FetchFailure(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewFaulty(nil)
	repo := NewRepository(store, 0)
	require.NoError(t, repo.Save(ctx, msgAt("1_a", 1)))

	store.FailReads(true)
	_, err := repo.Fetch(ctx)
	assert.ErrorIs(t, err, storage.ErrRead)

	store.FailWrites(true)
	assert.ErrorIs(t, repo.Save(ctx, msgAt("2_b", 2)), storage.ErrWrite)
}

func TestView_SortsStablyAndCaps(t *testing.T) {
	v := NewView(alice.UserID)

	var fetched []Message
	for i := 0; i < 60; i++ {
		fetched = append(fetched, msgAt(fmt.Sprintf("m%02d", i), int64(100-i)))
	}
	// Equal timestamps keep fetch order.
	fetched = append(fetched, msgAt("tie_a", 200), msgAt("tie_b", 200))

	v.Replace(fetched)
	entries := v.Entries()

	require.Len(t, entries, MaxMessages)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Timestamp, entries[i].Timestamp)
	}
	assert.Equal(t, []string{"tie_a", "tie_b"}, ids(entries)[MaxMessages-2:])
	assert.Equal(t, "m47", entries[0].ID)
}

func TestView_ReplaceIsIdempotent(t *testing.T) {
	v := NewView(alice.UserID)
	fetched := []Message{msgAt("b", 2), msgAt("a", 1), msgAt("c", 3)}

	v.Replace(fetched)
	first := v.Entries()

	v.Replace(fetched)
	assert.Equal(t, first, v.Entries())
	assert.Equal(t, []string{"a", "b", "c"}, ids(first))
}

func TestView_OptimisticAddAndConfirm(t *testing.T) {
	v := NewView(alice.UserID)
	v.Replace([]Message{msgAt("a", 1)})

	mine := Message{ID: "b", Text: "mine", UserID: alice.UserID, Username: alice.Username, Timestamp: 5}
	v.Add(mine)

	entries := v.Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Mine)
	assert.True(t, entries[1].Pending)
	assert.False(t, entries[0].Mine)

	// In flight and not yet visible remotely: stays pending.
	v.Replace([]Message{msgAt("a", 1)})
	assert.Equal(t, 1, v.PendingCount())

	v.MarkStored("b")
	v.Replace([]Message{msgAt("a", 1), mine})
	assert.Equal(t, 0, v.PendingCount())

	entries = v.Entries()
	require.Len(t, entries, 2)
	assert.False(t, entries[1].Pending)
	assert.True(t, entries[1].Mine)
}

func TestView_FailedSendIsRolledBackOnPoll(t *testing.T) {
	v := NewView(alice.UserID)
	v.Add(Message{ID: "x", Text: "lost", UserID: alice.UserID, Timestamp: 3})
	v.MarkFailed("x")

	entries := v.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Failed)

	v.Replace(nil)
	assert.Empty(t, v.Entries())
	assert.Equal(t, 0, v.PendingCount())
}

func TestView_StoredMessageOutsideFullWindowIsDropped(t *testing.T) {
	v := NewView(alice.UserID)
	v.Add(Message{ID: "old", UserID: alice.UserID, Timestamp: 1})
	v.MarkStored("old")

	var fetched []Message
	for i := 0; i < MaxMessages; i++ {
		fetched = append(fetched, msgAt(fmt.Sprintf("n%02d", i), int64(10+i)))
	}

	v.Replace(fetched)
	assert.Equal(t, 0, v.PendingCount())
	assert.Len(t, v.Entries(), MaxMessages)
}

func TestView_MarkUnknownIDIsNoop(t *testing.T) {
	v := NewView(alice.UserID)
	v.MarkFailed("nope")
	v.MarkStored("nope")
	assert.Empty(t, v.Entries())
}
