// Package conversation defines per-contact conversation history: the record
// model, its JSON encoding, and the Store contract backends implement.
package conversation

import (
	"context"
	"time"
)

// DefaultRetention is how long a history survives after its most recent
// write. Every save resets the window.
const DefaultRetention = 10800 * time.Second

// timestampLayout matches ISO-8601 with millisecond precision in UTC,
// e.g. 2026-10-16T08:30:00.000Z.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Role identifies who authored a record.
type Role string

// Role constants for conversation records.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Record is a single immutable entry in a conversation.
type Record struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewRecord creates a record stamped with now.
func NewRecord(role Role, content string, now time.Time) Record {
	return Record{
		Role:      role,
		Content:   content,
		Timestamp: FormatTimestamp(now),
	}
}

// FormatTimestamp renders t the way records store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// History is the ordered, append-only sequence of records for one contact.
type History []Record

// Append returns a new history with a record added at the end.
// The receiver is never modified.
func (h History) Append(role Role, content string, now time.Time) History {
	out := make(History, len(h), len(h)+1)
	copy(out, h)
	return append(out, NewRecord(role, content, now))
}

// Store persists histories keyed by contact identifier.
// Implementations must be safe for concurrent use. There is no per-key
// locking: concurrent saves for the same contact are last-writer-wins.
type Store interface {
	// Load returns the stored history for contactID. A contact with no
	// stored history yields an empty, non-nil History. Malformed stored
	// content yields a *ParseError.
	Load(ctx context.Context, contactID string) (History, error)

	// Save replaces the stored history for contactID and resets its expiry.
	Save(ctx context.Context, contactID string, h History) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
