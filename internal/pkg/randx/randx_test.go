package randx

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserID_Shape(t *testing.T) {
	for range 50 {
		id, err := UserID()
		require.NoError(t, err)
		assert.True(t, IsValidUserID(id), id)
	}
}

func TestIsValidUserID_Rejects(t *testing.T) {
	for _, id := range []string{"", "user_", "user_ABCDEFGHI", "guest_abcdefghi", "user_abcdefgh", "user_abcdefghij"} {
		assert.False(t, IsValidUserID(id), id)
	}
}

func TestUsername_Range(t *testing.T) {
	for range 50 {
		name, err := Username()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(name, UsernamePrefix))

		n, err := strconv.Atoi(strings.TrimPrefix(name, UsernamePrefix))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, UsernameSpace)
	}
}

func TestMessageID_TimestampPrefixAndUniqueness(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	seen := make(map[string]struct{})

	for range 200 {
		id, err := MessageID(ts)
		require.NoError(t, err)

		prefix, suffix, ok := strings.Cut(id, "_")
		require.True(t, ok)
		assert.Equal(t, "1700000000123", prefix)
		assert.Len(t, suffix, MessageSuffixLength)

		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
