// Package provider defines the AI responder contract: turn a conversation
// history into a reply string via a remote completion service.
package provider

import (
	"context"

	"github.com/flemzord/warelay/internal/conversation"
)

// Responder produces the assistant's reply for a conversation.
// Concrete implementations live in separate packages (e.g., modules/provider/workersai).
type Responder interface {
	// Respond receives the history so far, ending with the user's newest
	// record, and returns the trimmed reply text. It never returns an
	// empty reply silently: failures come back as errors matching
	// ErrConfiguration or ErrUpstream.
	Respond(ctx context.Context, history conversation.History) (string, error)
}
