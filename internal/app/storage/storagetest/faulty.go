// Package storagetest provides a storage.Store with switchable failures for tests.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"anonchat/internal/app/storage"
)

// ErrInjected is the cause wrapped into every injected failure.
var ErrInjected = errors.New("injected failure")

// Faulty wraps a Store and fails the operations whose switch is on.
type Faulty struct {
	storage.Store

	mu       sync.Mutex
	failGet  bool
	failSet  bool
	failList bool

	gets atomic.Int64
	sets atomic.Int64
}

// NewFaulty wraps next, or a fresh MemoryStore when next is nil.
func NewFaulty(next storage.Store) *Faulty {
	if next == nil {
		next = storage.NewMemoryStore()
	}
	return &Faulty{Store: next}
}

// FailReads switches Get and List failures.
func (f *Faulty) FailReads(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet, f.failList = on, on
}

// FailWrites switches Set failures.
func (f *Faulty) FailWrites(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = on
}

// Gets returns how many Get calls reached the wrapper.
func (f *Faulty) Gets() int64 { return f.gets.Load() }

// Sets returns how many Set calls reached the wrapper.
func (f *Faulty) Sets() int64 { return f.sets.Load() }

func (f *Faulty) switches() (get, set, list bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failGet, f.failSet, f.failList
}

// Get implements storage.Store.
func (f *Faulty) Get(ctx context.Context, key string) ([]byte, error) {
	f.gets.Add(1)
	if fail, _, _ := f.switches(); fail {
		return nil, errors.Join(storage.ErrRead, ErrInjected)
	}
	return f.Store.Get(ctx, key)
}

// Set implements storage.Store.
func (f *Faulty) Set(ctx context.Context, key string, value []byte) error {
	f.sets.Add(1)
	if _, fail, _ := f.switches(); fail {
		return errors.Join(storage.ErrWrite, ErrInjected)
	}
	return f.Store.Set(ctx, key, value)
}

// List implements storage.Store.
func (f *Faulty) List(ctx context.Context, prefix string) ([]string, error) {
	if _, _, fail := f.switches(); fail {
		return nil, errors.Join(storage.ErrRead, ErrInjected)
	}
	return f.Store.List(ctx, prefix)
}
