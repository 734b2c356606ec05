package whatsapp

// Disconnect status codes carried by a closed ConnectionUpdate.
const (
	// StatusUnknown means the socket dropped without a reported cause.
	StatusUnknown = 0

	// StatusLoggedOut means the credentials were revoked or expired.
	// The session cannot recover without pairing again.
	StatusLoggedOut = 401

	// StatusTemporaryBan is a connect failure while the account is banned
	// for a limited time.
	StatusTemporaryBan = 402

	// StatusClientOutdated is a connect failure rejecting the client version.
	StatusClientOutdated = 405

	// StatusStreamReplaced means another client took over the session.
	StatusStreamReplaced = 440
)

// ShouldReconnect reports whether a closed connection should be reopened.
// Every cause except StatusLoggedOut is considered transient.
func ShouldReconnect(status int) bool {
	return status != StatusLoggedOut
}
