package conversation

import (
	"context"
	"errors"
	"sync"
	"time"
)

type memEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe, in-process Store with the same expiry
// semantics as the Redis backend. Values are kept encoded so that Load
// exercises the same decode path.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memEntry
	retention time.Duration
	now       func() time.Time
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store. A zero retention means DefaultRetention;
// a nil clock means time.Now.
func NewMemoryStore(retention time.Duration, now func() time.Time) *MemoryStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries:   make(map[string]memEntry),
		retention: retention,
		now:       now,
	}
}

// Load returns the stored history, or an empty one when absent or expired.
func (s *MemoryStore) Load(ctx context.Context, contactID string) (History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	e, ok := s.entries[contactID]
	if ok && !s.now().Before(e.expiresAt) {
		delete(s.entries, contactID)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return History{}, nil
	}
	h, err := Decode(e.raw)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.ContactID = contactID
		}
		return nil, err
	}
	return h, nil
}

// Save replaces the history and resets its expiry window.
func (s *MemoryStore) Save(ctx context.Context, contactID string, h History) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := Encode(h)
	if err != nil {
		return err
	}
	s.SetRaw(contactID, raw)
	return nil
}

// SetRaw stores raw bytes under contactID, bypassing encoding.
func (s *MemoryStore) SetRaw(contactID string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[contactID] = memEntry{raw: raw, expiresAt: s.now().Add(s.retention)}
}

// TTL returns the remaining lifetime of contactID's history, or zero when absent.
func (s *MemoryStore) TTL(contactID string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[contactID]
	if !ok {
		return 0
	}
	if d := e.expiresAt.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }
