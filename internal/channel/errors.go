package channel

import "errors"

// Sentinel errors for channel operations.
var (
	// ErrNotConnected indicates an outbound call was made while the
	// transport session is closed.
	ErrNotConnected = errors.New("channel: not connected")

	// ErrNoInbox indicates a channel's inbox callback has not been set.
	ErrNoInbox = errors.New("channel: inbox not set")

	// ErrInvalidContact indicates a contact identifier the transport cannot address.
	ErrInvalidContact = errors.New("channel: invalid contact identifier")
)
