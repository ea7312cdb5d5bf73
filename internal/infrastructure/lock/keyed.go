// Package lock provides per-key mutual exclusion used to serialize
// version numbering per order. Two implementations exist: an in-process
// mutex map for single-instance deployments and a Redis lease for
// multi-process ones.
package lock

import (
	"context"
	"sync"
)

// Keyed serializes critical sections per key. Acquire blocks until the
// key's lock is held or ctx is done; the returned release function must
// be called exactly once.
type Keyed interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Mutex is an in-process Keyed implementation. Entries are reference
// counted and removed once the last holder releases, so the map does not
// grow with the number of distinct keys ever seen.
type Mutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewMutex creates an in-process keyed mutex
func NewMutex() *Mutex {
	return &Mutex{entries: make(map[string]*lockEntry)}
}

// Acquire implements Keyed. The in-process lock ignores ctx cancellation
// while blocked; critical sections here are short.
func (m *Mutex) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok {
		entry = &lockEntry{}
		m.entries[key] = entry
	}
	entry.refs++
	m.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			entry.mu.Unlock()
			m.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(m.entries, key)
			}
			m.mu.Unlock()
		})
	}
	return release, nil
}
