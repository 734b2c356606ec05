package workersai

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/flemzord/warelay/internal/conversation"
)

// Wire types for JSON serialization.

type aiRequest struct {
	Messages []aiMessage `json:"messages"`
}

type aiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildRequest prepends the system record to the history. Timestamps are
// storage metadata and are not sent upstream.
func buildRequest(systemPrompt string, history conversation.History) aiRequest {
	messages := make([]aiMessage, 0, len(history)+1)
	messages = append(messages, aiMessage{
		Role:    string(conversation.RoleSystem),
		Content: systemPrompt,
	})
	for _, r := range history {
		messages = append(messages, aiMessage{Role: string(r.Role), Content: r.Content})
	}
	return aiRequest{Messages: messages}
}

// maxResponseSize caps how much of a successful response body is read.
const maxResponseSize = 1 << 20

// parseReply extracts and trims result.response from a 2xx body. Anything
// without a usable result.response, including a body that is not JSON at
// all, yields FallbackReply. Only a response of a non-string type is an
// error.
func parseReply(body []byte) (string, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return FallbackReply, nil
	}
	result, ok := doc["result"].(map[string]any)
	if !ok {
		return FallbackReply, nil
	}
	switch v := result["response"].(type) {
	case nil:
		return FallbackReply, nil
	case string:
		if text := strings.TrimSpace(v); text != "" {
			return text, nil
		}
		return FallbackReply, nil
	default:
		return "", fmt.Errorf("result.response is a %T, not a string", v)
	}
}
