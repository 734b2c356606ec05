package message

import "time"

// InboundMessage represents a message received from a channel.
type InboundMessage struct {
	ID string `json:"id"`

	// ContactID is the remote-party address; it doubles as the
	// conversation store key.
	ContactID string `json:"contact_id"`

	PushName  string    `json:"push_name,omitempty"`
	Text      string    `json:"text,omitempty"`
	FromMe    bool      `json:"from_me,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HasText reports whether the message carries any text. Non-text
// messages arrive with an empty Text.
func (m InboundMessage) HasText() bool {
	return m.Text != ""
}

// Batch is one delivery of inbound messages from the transport.
type Batch struct {
	Type     BatchType        `json:"type"`
	Messages []InboundMessage `json:"messages"`
}

// First returns the first message of the batch. Only the first message
// of a batch is ever processed.
func (b Batch) First() (InboundMessage, bool) {
	if len(b.Messages) == 0 {
		return InboundMessage{}, false
	}
	return b.Messages[0], true
}
