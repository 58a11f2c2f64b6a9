package swipe

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

// profileLocks serializes writes per profile. Swipe actions read, mutate and
// write back quota counters and relationship sets with no store-side locking,
// so two concurrent Likes from the same actor (e.g. two devices) could race
// past the duplicate check; a per-profile mutex makes each actor's writes
// single-file within this process.
type profileLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newProfileLocks() *profileLocks {
	return &profileLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *profileLocks) lockFor(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// Lock acquires the lock for one profile. Returns the unlock func.
func (l *profileLocks) Lock(id uuid.UUID) func() {
	m := l.lockFor(id)
	m.Lock()
	return m.Unlock
}

// LockPair acquires both profiles' locks in a stable order so concurrent
// A-likes-B and B-likes-A cannot deadlock.
func (l *profileLocks) LockPair(a, b uuid.UUID) func() {
	if a == b {
		return l.Lock(a)
	}
	first, second := a, b
	if bytes.Compare(b[:], a[:]) < 0 {
		first, second = b, a
	}
	m1 := l.lockFor(first)
	m2 := l.lockFor(second)
	m1.Lock()
	m2.Lock()
	return func() {
		m2.Unlock()
		m1.Unlock()
	}
}
