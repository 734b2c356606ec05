// Package providertest provides test helpers for the provider package.
package providertest

import (
	"context"
	"sync"

	"github.com/flemzord/warelay/internal/conversation"
	"github.com/flemzord/warelay/internal/provider"
)

// MockResponder is a configurable test double for provider.Responder.
// Set RespondFunc to control behavior; an unset func panics on call.
// All methods are safe for concurrent use.
type MockResponder struct {
	RespondFunc func(ctx context.Context, history conversation.History) (string, error)

	mu        sync.Mutex
	histories []conversation.History
}

// Respond records a copy of the history and delegates to RespondFunc.
func (m *MockResponder) Respond(ctx context.Context, history conversation.History) (string, error) {
	cp := make(conversation.History, len(history))
	copy(cp, history)

	m.mu.Lock()
	m.histories = append(m.histories, cp)
	m.mu.Unlock()

	return m.RespondFunc(ctx, history)
}

// Calls returns how many times Respond was invoked.
func (m *MockResponder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.histories)
}

// Histories returns the histories passed to each Respond call, in order.
func (m *MockResponder) Histories() []conversation.History {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]conversation.History, len(m.histories))
	copy(out, m.histories)
	return out
}

// Reply returns a MockResponder that always answers text.
func Reply(text string) *MockResponder {
	return &MockResponder{
		RespondFunc: func(context.Context, conversation.History) (string, error) {
			return text, nil
		},
	}
}

// Fail returns a MockResponder that always fails with err.
func Fail(err error) *MockResponder {
	return &MockResponder{
		RespondFunc: func(context.Context, conversation.History) (string, error) {
			return "", err
		},
	}
}

// Interface guard.
var _ provider.Responder = (*MockResponder)(nil)
