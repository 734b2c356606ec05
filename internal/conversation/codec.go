package conversation

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Encode serializes a history as a JSON array. A nil history encodes as [].
func Encode(h History) ([]byte, error) {
	if h == nil {
		h = History{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("conversation: encode history: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of records. Anything that is not a
// well-formed array yields a *ParseError.
func Decode(data []byte) (History, error) {
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, &ParseError{Err: err}
	}
	if h == nil {
		// "null" is valid JSON but not a stored history.
		return nil, &ParseError{Err: fmt.Errorf("expected array, got %q", data)}
	}
	return h, nil
}
