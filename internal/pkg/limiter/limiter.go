/*
Package limiter provides keyed token-bucket rate limiting.

Each key gets its own rate.Limiter, created on first use. A background loop evicts
limiters whose bucket has refilled completely, so idle keys do not accumulate.
The storage layer uses it to keep remote backends within their request quotas.
*/
package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"anonchat/internal/pkg/logx"
)

// DefaultCleanupInterval is how often idle limiters are evicted.
const DefaultCleanupInterval = 3 * time.Minute

// KeyedLimiter hands out one token bucket per key.
type KeyedLimiter struct {
	// mu protects limits.
	mu sync.RWMutex

	// limits maps a key to its token bucket.
	limits map[string]*rate.Limiter

	// r is the refill rate shared by every bucket.
	r rate.Limit

	// b is the bucket size shared by every bucket.
	b int

	stop     chan struct{}
	stopOnce sync.Once
}

// NewKeyedLimiter creates a KeyedLimiter with rate r and burst b and starts its cleanup loop.
// Call Stop to end the loop.
func NewKeyedLimiter(r rate.Limit, b int, cleanupInterval time.Duration) *KeyedLimiter {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	l := &KeyedLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
		stop:   make(chan struct{}),
	}

	go l.cleanupLoop(cleanupInterval)

	return l
}

// Get returns the limiter for key, creating it with double-checked locking.
func (l *KeyedLimiter) Get(key string) *rate.Limiter {
	l.mu.RLock()
	lim, exists := l.limits[key]
	l.mu.RUnlock()

	if exists {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lim, exists = l.limits[key]
	if !exists {
		lim = rate.NewLimiter(l.r, l.b)
		l.limits[key] = lim
	}

	return lim
}

// Wait blocks until key has a token or ctx is done.
func (l *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return l.Get(key).Wait(ctx)
}

// Len returns the number of live limiters.
func (l *KeyedLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.limits)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *KeyedLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *KeyedLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := l.evictIdle(time.Now())
			if removed > 0 {
				logx.Debug("Rate limiter cleanup evicted idle keys", "removed", removed, "remaining", l.Len())
			}
		case <-l.stop:
			return
		}
	}
}

// evictIdle removes every limiter whose bucket is full at now and returns how many were removed.
func (l *KeyedLimiter) evictIdle(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, lim := range l.limits {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(l.limits, key)
			removed++
		}
	}

	return removed
}
