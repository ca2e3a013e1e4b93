package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anonchat/internal/app/storage"
	"anonchat/internal/app/storage/storagetest"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTick_CountsDownToExpired(t *testing.T) {
	for _, d := range []int{1, 2, 5, 60, 1800} {
		var timer Timer
		timer.Apply(Status{State: StateActive, Remaining: d})

		expiredOn := -1
		for i := 1; i <= d; i++ {
			if timer.Tick() {
				expiredOn = i
			}
			assert.GreaterOrEqual(t, timer.Remaining(), 0)
		}

		assert.Equal(t, d, expiredOn, "duration %d", d)
		assert.Equal(t, StateExpired, timer.State())
		assert.Equal(t, 0, timer.Remaining())

		// Further ticks change nothing.
		assert.False(t, timer.Tick())
		assert.Equal(t, 0, timer.Remaining())
	}
}

func TestTick_IgnoredOutsideActive(t *testing.T) {
	var timer Timer
	assert.False(t, timer.Tick())
	assert.Equal(t, StateUnknown, timer.State())
}

func TestApply_ZeroRemainingIsExpired(t *testing.T) {
	var timer Timer
	timer.Apply(Status{State: StateActive, Remaining: 0})
	assert.Equal(t, StateExpired, timer.State())
}

func TestGrant_OverridesAnyState(t *testing.T) {
	var timer Timer
	timer.Apply(Status{State: StateExpired})

	timer.Grant(time.Hour)
	assert.Equal(t, Status{State: StateActive, Remaining: 3600}, timer.Status())

	timer.Apply(Status{State: StateActive, Remaining: 10})
	timer.Grant(time.Hour)
	assert.Equal(t, 3600, timer.Remaining())
}

func storedGrant(t *testing.T, store storage.Store, userID string) Grant {
	t.Helper()

	var grant Grant
	require.NoError(t, storage.GetJSON(context.Background(), store, Key(userID), &grant))
	return grant
}

func TestInitialize_NoGrantReportsMissingWithoutWriting(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewFaulty(nil)
	grants := NewGrants(store, "user_new", WithClock(fixedClock(epoch)))

	st := grants.Initialize(ctx)

	assert.Equal(t, Status{State: StateActive, Remaining: 1800, Missing: true}, st)
	assert.Zero(t, store.Sets(), "the caller decides when the free grant is saved")

	var timer Timer
	timer.Apply(st)
	assert.Equal(t, Status{State: StateActive, Remaining: 1800}, timer.Status())
}

func TestInitialize_ValidGrantIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewFaulty(nil)

	require.NoError(t, storage.SetJSON(ctx, store, Key("user_a"), Grant{ExpiresAt: epoch.Add(10*time.Minute + 500*time.Millisecond).UnixMilli()}))
	setsBefore := store.Sets()

	grants := NewGrants(store, "user_a", WithClock(fixedClock(epoch)))

	first := grants.Initialize(ctx)
	second := grants.Initialize(ctx)

	assert.Equal(t, Status{State: StateActive, Remaining: 600}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, setsBefore, store.Sets(), "no new grant must be written")
}

func TestInitialize_ExpiredGrant(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewFaulty(nil)

	require.NoError(t, storage.SetJSON(ctx, store, Key("user_b"), Grant{ExpiresAt: epoch.UnixMilli() - 5000}))
	setsBefore := store.Sets()

	st := NewGrants(store, "user_b", WithClock(fixedClock(epoch))).Initialize(ctx)

	var timer Timer
	timer.Apply(st)

	assert.Equal(t, StateExpired, timer.State())
	assert.Equal(t, setsBefore, store.Sets())
}

func TestInitialize_ReadFailureFailsOpen(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewFaulty(nil)
	store.FailReads(true)

	st := NewGrants(store, "user_c", WithClock(fixedClock(epoch))).Initialize(ctx)

	assert.Equal(t, Status{State: StateActive, Remaining: 1800, FailedOpen: true}, st)
	assert.Zero(t, store.Sets(), "fail-open must not persist")
}

func TestInitialize_CorruptGrantFailsOpen(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, Key("user_e"), []byte("not json")))

	st := NewGrants(store, "user_e", WithFreeAccess(time.Minute)).Initialize(ctx)

	assert.Equal(t, Status{State: StateActive, Remaining: 60, FailedOpen: true}, st)
}

func TestSave_OverwritesPriorGrant(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewFaulty(nil)
	grants := NewGrants(store, "user_f", WithClock(fixedClock(epoch)))

	require.NoError(t, grants.Save(ctx, 30*time.Minute))
	require.NoError(t, grants.Save(ctx, time.Hour))
	assert.Equal(t, epoch.Add(time.Hour).UnixMilli(), storedGrant(t, store, "user_f").ExpiresAt)

	st := grants.Initialize(ctx)
	assert.Equal(t, Status{State: StateActive, Remaining: 3600}, st)

	store.FailWrites(true)
	assert.ErrorIs(t, grants.Save(ctx, time.Hour), storage.ErrWrite)
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{-1, "--:--"},
		{0, "0:00"},
		{9, "0:09"},
		{61, "1:01"},
		{1800, "30:00"},
		{3600, "60:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.seconds))
	}
}

func TestStatus_Display(t *testing.T) {
	assert.Equal(t, "--:--", Status{}.Display())
	assert.Equal(t, "0:00", Status{State: StateExpired}.Display())
	assert.Equal(t, "29:59", Status{State: StateActive, Remaining: 1799}.Display())
}

func TestState_MarshalText(t *testing.T) {
	text, err := StateActive.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "active", string(text))
}
