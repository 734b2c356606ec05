package provider

import "errors"

// Sentinel errors for responder operations.
var (
	// ErrConfiguration indicates the responder is misconfigured (e.g. the
	// endpoint URL is missing or not http/https). No network call was made.
	ErrConfiguration = errors.New("provider: invalid configuration")

	// ErrUpstream indicates the remote completion call failed at the
	// transport or HTTP level, or returned an undecodable body.
	ErrUpstream = errors.New("provider: upstream request failed")
)

// IsConfiguration reports whether err is a configuration failure.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUpstream reports whether err is an upstream failure.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}
