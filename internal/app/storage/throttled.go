package storage

import (
	"context"
	"time"

	"anonchat/internal/pkg/limiter"
)

// Throttled wraps a remote Store with a per-operation token bucket and deadline.
// Every Get, Set and List first waits for a token from its own bucket; the wait and the
// call share one deadline of Timeout.
type Throttled struct {
	next    Store
	limits  *limiter.KeyedLimiter
	timeout time.Duration
}

// NewThrottled wraps next. A zero timeout disables the per-call deadline.
func NewThrottled(next Store, limits *limiter.KeyedLimiter, timeout time.Duration) *Throttled {
	return &Throttled{next: next, limits: limits, timeout: timeout}
}

func (t *Throttled) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if t.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
	}

	if err := t.limits.Wait(ctx, op); err != nil {
		cancel()
		return nil, nil, err
	}

	return ctx, cancel, nil
}

// Get implements Store.
func (t *Throttled) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel, err := t.begin(ctx, "get")
	if err != nil {
		return nil, readError("get", key, err)
	}
	defer cancel()

	return t.next.Get(ctx, key)
}

// Set implements Store.
func (t *Throttled) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel, err := t.begin(ctx, "set")
	if err != nil {
		return writeError("set", key, err)
	}
	defer cancel()

	return t.next.Set(ctx, key, value)
}

// List implements Store.
func (t *Throttled) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel, err := t.begin(ctx, "list")
	if err != nil {
		return nil, readError("list", prefix, err)
	}
	defer cancel()

	return t.next.List(ctx, prefix)
}

// Close stops the limiter cleanup loop and closes the wrapped store.
func (t *Throttled) Close() error {
	t.limits.Stop()
	return t.next.Close()
}
