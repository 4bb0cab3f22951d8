package sessions

import "sync"

// Locker hands out per-session mutexes so chat turns on one session
// serialize while other sessions proceed concurrently. Entries are
// reference-counted and dropped once released, keeping the map bounded
// by the number of in-flight sessions.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{entries: make(map[string]*lockEntry)}
}

// Acquire blocks until the session lock is held and returns the release
// function. The lock is not reentrant.
func (l *Locker) Acquire(sessionID string) func() {
	l.mu.Lock()
	e, ok := l.entries[sessionID]
	if !ok {
		e = &lockEntry{}
		l.entries[sessionID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, sessionID)
		}
		l.mu.Unlock()
	}
}
