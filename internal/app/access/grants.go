package access

import (
	"context"
	"errors"
	"time"

	"anonchat/internal/app/storage"
	"anonchat/internal/pkg/logx"
)

// KeyPrefix prefixes the storage key of every AccessGrant.
const KeyPrefix = "chatAccess_"

// DefaultFreeAccess is the grant given to an identity seen for the first time.
const DefaultFreeAccess = 30 * time.Minute

// Grant is the persisted expiry of one identity's access.
type Grant struct {

	// ExpiresAt is the expiry as Unix milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// Key returns the storage key of userID's grant.
func Key(userID string) string {
	return KeyPrefix + userID
}

// Grants reads and writes the grant of one identity.
type Grants struct {
	store  storage.Store
	userID string
	free   time.Duration
	now    func() time.Time
}

// GrantsOption customizes Grants.
type GrantsOption func(*Grants)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) GrantsOption {
	return func(g *Grants) { g.now = now }
}

// WithFreeAccess replaces DefaultFreeAccess.
func WithFreeAccess(d time.Duration) GrantsOption {
	return func(g *Grants) { g.free = d }
}

// NewGrants returns the grant repository of userID.
func NewGrants(store storage.Store, userID string, opts ...GrantsOption) *Grants {
	g := &Grants{
		store:  store,
		userID: userID,
		free:   DefaultFreeAccess,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Initialize resolves the current access of the identity without writing anything.
//
// A missing grant yields a free grant's worth of access with Missing set; the caller decides
// whether to persist it with Save. A stored grant yields the whole seconds left until it
// expires, or Expired. Any storage failure fails open: the result is a free grant's worth of
// access that should not be persisted.
func (g *Grants) Initialize(ctx context.Context) Status {
	freeStatus := Status{State: StateActive, Remaining: int(g.free / time.Second)}

	var grant Grant
	err := storage.GetJSON(ctx, g.store, Key(g.userID), &grant)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		freeStatus.Missing = true
		return freeStatus

	case err != nil:
		logx.Warn("Failed to read access grant, failing open",
			"user_id", g.userID, "error", err.Error())
		freeStatus.FailedOpen = true
		return freeStatus
	}

	left := grant.ExpiresAt - g.now().UnixMilli()
	if left <= 0 {
		return Status{State: StateExpired}
	}

	return Status{State: StateActive, Remaining: int(left / 1000)}
}

// Save replaces the stored grant with one expiring d from now.
func (g *Grants) Save(ctx context.Context, d time.Duration) error {
	grant := Grant{ExpiresAt: g.now().Add(d).UnixMilli()}
	return storage.SetJSON(ctx, g.store, Key(g.userID), grant)
}
