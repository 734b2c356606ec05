// Package message defines the platform-agnostic data contract between
// channels and the relay.
package message

// BatchType tells live deliveries apart from historical backfill.
type BatchType string

const (
	// BatchNotify is a live notification for messages that just arrived.
	BatchNotify BatchType = "notify"
	// BatchAppend is a historical backfill delivery (history sync,
	// offline catch-up). The relay never answers these.
	BatchAppend BatchType = "append"
)

// Presence is the transient chat state shown to the remote party.
type Presence string

const (
	// PresenceComposing shows the "typing..." indicator.
	PresenceComposing Presence = "composing"
	// PresencePaused clears the typing indicator.
	PresencePaused Presence = "paused"
)
