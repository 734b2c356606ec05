package conversation

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("conversation: malformed stored history")

// ParseError reports stored history content that could not be decoded.
type ParseError struct {
	ContactID string
	Err       error
}

func (e *ParseError) Error() string {
	if e.ContactID == "" {
		return fmt.Sprintf("%v: %v", ErrParse, e.Err)
	}
	return fmt.Sprintf("%v for %s: %v", ErrParse, e.ContactID, e.Err)
}

// Unwrap exposes both the sentinel and the underlying decode error.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
