package relay

import "sync"

// LaneLock serializes turns per contact while letting different contacts
// proceed in parallel. A global mutex guards the lane map; each lane has
// its own mutex and is removed once nobody holds or waits on it.
type LaneLock struct {
	mu    sync.Mutex
	lanes map[string]*lane
}

type lane struct {
	mu   sync.Mutex
	refs int
}

// NewLaneLock creates a ready-to-use LaneLock.
func NewLaneLock() *LaneLock {
	return &LaneLock{lanes: make(map[string]*lane)}
}

// Acquire locks the lane for contactID, creating it if needed.
// The caller must call Release with the same key when done.
func (l *LaneLock) Acquire(contactID string) {
	l.mu.Lock()
	ln, ok := l.lanes[contactID]
	if !ok {
		ln = &lane{}
		l.lanes[contactID] = ln
	}
	ln.refs++
	l.mu.Unlock()

	// Lock outside the global mutex so other contacts are not blocked.
	ln.mu.Lock()
}

// Release unlocks the lane for contactID.
func (l *LaneLock) Release(contactID string) {
	l.mu.Lock()
	ln, ok := l.lanes[contactID]
	if !ok {
		l.mu.Unlock()
		return
	}
	ln.refs--
	if ln.refs == 0 {
		delete(l.lanes, contactID)
	}
	l.mu.Unlock()

	ln.mu.Unlock()
}

// Len returns the number of live lanes.
func (l *LaneLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lanes)
}
