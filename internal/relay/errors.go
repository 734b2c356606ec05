// Package relay runs one conversational turn per inbound WhatsApp message:
// load history, ask the responder, persist, and reply.
package relay

import (
	"errors"

	"github.com/flemzord/warelay/internal/conversation"
	"github.com/flemzord/warelay/internal/provider"
)

// Sentinel errors for relay operations.
var (
	// ErrNoStore indicates the relay was built without a conversation store.
	ErrNoStore = errors.New("relay: no conversation store configured")

	// ErrNoResponder indicates the relay was built without a responder.
	ErrNoResponder = errors.New("relay: no responder configured")

	// ErrNoSender indicates the relay was built without an outbound sender.
	ErrNoSender = errors.New("relay: no sender configured")

	// ErrStore wraps failures reading or writing conversation history.
	ErrStore = errors.New("relay: conversation store failed")

	// ErrTransport wraps failures delivering text or presence to the contact.
	ErrTransport = errors.New("relay: transport failed")
)

// ErrorKind groups turn failures by the reply the contact should see.
type ErrorKind string

// Error kinds, most specific first.
const (
	KindConfiguration ErrorKind = "configuration"
	KindParse         ErrorKind = "parse"
	KindUpstream      ErrorKind = "upstream"
	KindStore         ErrorKind = "store"
	KindTransport     ErrorKind = "transport"
	KindUnknown       ErrorKind = "unknown"
)

// Classify maps a turn error to its kind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, conversation.ErrParse):
		return KindParse
	case provider.IsConfiguration(err):
		return KindConfiguration
	case provider.IsUpstream(err):
		return KindUpstream
	case errors.Is(err, ErrStore):
		return KindStore
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}
