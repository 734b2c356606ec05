// Package channel defines the bridge between a messaging transport and the
// relay: outbound text, presence updates, and the inbound batch callback.
package channel

import (
	"context"

	"github.com/flemzord/warelay/internal/core"
	"github.com/flemzord/warelay/pkg/message"
)

// Sender is the outbound half of a channel.
type Sender interface {
	// SendText delivers a text message to contactID.
	SendText(ctx context.Context, contactID, text string) error

	// SendPresence updates the typing indicator shown to contactID.
	SendPresence(ctx context.Context, contactID string, p message.Presence) error
}

// Channel is a live transport session.
//
// A channel receives deliveries from its platform and pushes them to the
// relay via the inbox callback. The callback must not block the transport's
// event loop for the duration of a turn.
type Channel interface {
	core.Module
	Sender

	// SetInbox gives the channel a function to push inbound batches to the
	// relay. Called during wiring, before Start().
	SetInbox(fn func(batch message.Batch))

	// Connected reports whether the transport session is currently open.
	Connected() bool
}
