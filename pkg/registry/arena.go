// Package registry provides id allocation with soft deletion for the mock
// service's entity collections. Ids are array positions: strictly increasing
// from zero, never reused, with tombstoned slots kept in place so later ids
// keep their meaning.
package registry

import "sync"

// Arena allocates stable integer ids for values of type T and supports soft
// deletion. A tombstoned id behaves exactly like an id that was never
// allocated: Get reports it as absent and ForEachLive skips it.
type Arena[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
}

type slot[T any] struct {
	value T
	live  bool
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Allocate reserves the next id and stores the value built for it. The build
// function receives the id so the record can carry it; the record only
// becomes visible to other goroutines once build has returned, so no
// partially-constructed record is ever observable.
func (a *Arena[T]) Allocate(build func(id int) T) (int, T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := len(a.slots)
	v := build(id)
	a.slots = append(a.slots, slot[T]{value: v, live: true})
	return id, v
}

// Get returns the live value for id. The second return is false for ids that
// were never allocated and for tombstoned ids alike.
func (a *Arena[T]) Get(id int) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 0 || id >= len(a.slots) || !a.slots[id].live {
		var zero T
		return zero, false
	}
	return a.slots[id].value, true
}

// Tombstone soft-deletes id. The slot is never reused. Returns false when id
// is not live.
func (a *Arena[T]) Tombstone(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id < 0 || id >= len(a.slots) || !a.slots[id].live {
		return false
	}
	var zero T
	a.slots[id] = slot[T]{value: zero, live: false}
	return true
}

// ForEachLive visits live values in id order. Returning false from fn stops
// the walk. The arena lock is held for the duration, so fn must not call
// back into the arena.
func (a *Arena[T]) ForEachLive(fn func(id int, v T) bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for id, s := range a.slots {
		if !s.live {
			continue
		}
		if !fn(id, s.value) {
			return
		}
	}
}

// Len reports how many ids have been allocated, including tombstones.
func (a *Arena[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.slots)
}
