// Copyright (c) 2025 Versus App.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package battle

import "sync"

// lockTable hands out one mutex per battle id so that read-modify-write
// sequences (accept-then-threshold, upload-then-completeness) execute as a
// single atomic unit per battle. Entries are reference counted and removed
// when the last holder releases, so the table does not grow with the
// number of battles ever seen.
type lockTable struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{entries: make(map[string]*lockEntry)}
}

// lock blocks until the per-battle mutex is held and returns the release
// function. Callers must invoke the returned func exactly once.
func (t *lockTable) lock(id string) (unlock func()) {
	t.mu.Lock()
	e, ok := t.entries[id]
	if !ok {
		e = &lockEntry{}
		t.entries[id] = e
	}
	e.refs++
	t.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		t.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(t.entries, id)
		}
		t.mu.Unlock()
	}
}
