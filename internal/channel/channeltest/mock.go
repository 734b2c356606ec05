// Package channeltest provides test helpers for the channel package.
package channeltest

import (
	"context"
	"sync"

	"github.com/flemzord/warelay/internal/channel"
	"github.com/flemzord/warelay/internal/core"
	"github.com/flemzord/warelay/pkg/message"
)

// EventKind discriminates recorded outbound calls.
type EventKind string

// Recorded event kinds.
const (
	EventText     EventKind = "text"
	EventPresence EventKind = "presence"
)

// Event is one outbound call observed by MockChannel.
type Event struct {
	Kind      EventKind
	ContactID string
	Text      string
	Presence  message.Presence
}

// MockChannel is a test double that implements channel.Channel. It records
// every outbound call in order and lets tests push inbound batches.
type MockChannel struct {
	mu        sync.Mutex
	inbox     func(batch message.Batch)
	events    []Event
	connected bool

	// SendTextFunc, if set, runs before recording; a non-nil error is
	// returned to the caller and the call is not recorded.
	SendTextFunc func(ctx context.Context, contactID, text string) error

	// SendPresenceFunc behaves like SendTextFunc for presence updates.
	SendPresenceFunc func(ctx context.Context, contactID string, p message.Presence) error
}

// Compile-time interface guard.
var _ channel.Channel = (*MockChannel)(nil)

// NewMockChannel creates a connected MockChannel.
func NewMockChannel() *MockChannel {
	return &MockChannel{connected: true}
}

// ModuleInfo implements core.Module.
func (m *MockChannel) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: "channel.mock"}
}

// SendText records the outbound text.
func (m *MockChannel) SendText(ctx context.Context, contactID, text string) error {
	if m.SendTextFunc != nil {
		if err := m.SendTextFunc(ctx, contactID, text); err != nil {
			return err
		}
	}
	m.record(Event{Kind: EventText, ContactID: contactID, Text: text})
	return nil
}

// SendPresence records the presence update.
func (m *MockChannel) SendPresence(ctx context.Context, contactID string, p message.Presence) error {
	if m.SendPresenceFunc != nil {
		if err := m.SendPresenceFunc(ctx, contactID, p); err != nil {
			return err
		}
	}
	m.record(Event{Kind: EventPresence, ContactID: contactID, Presence: p})
	return nil
}

// SetInbox stores the inbox callback.
func (m *MockChannel) SetInbox(fn func(batch message.Batch)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = fn
}

// Connected implements channel.Channel.
func (m *MockChannel) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// SetConnected changes the reported connection state.
func (m *MockChannel) SetConnected(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = v
}

// Deliver pushes a batch into the inbox. It returns channel.ErrNoInbox if
// SetInbox has not been called.
func (m *MockChannel) Deliver(batch message.Batch) error {
	m.mu.Lock()
	inbox := m.inbox
	m.mu.Unlock()

	if inbox == nil {
		return channel.ErrNoInbox
	}
	inbox(batch)
	return nil
}

// Events returns a copy of all recorded outbound calls.
func (m *MockChannel) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Texts returns the recorded outbound texts in order.
func (m *MockChannel) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		if e.Kind == EventText {
			out = append(out, e.Text)
		}
	}
	return out
}

// Presences returns the recorded presence updates in order.
func (m *MockChannel) Presences() []message.Presence {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []message.Presence
	for _, e := range m.events {
		if e.Kind == EventPresence {
			out = append(out, e.Presence)
		}
	}
	return out
}

func (m *MockChannel) record(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}
