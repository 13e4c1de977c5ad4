package machine

import "fmt"

// Options configures the token endpoint and the chat completion backend.
type Options struct {
	// TokenHost is the scheme and host serving the token, default https://localhost.
	TokenHost string
	// TokenPath is appended to TokenHost to form the token URL.
	TokenPath string
	// InsecureTLS skips certificate verification for self-signed local hosts.
	InsecureTLS bool
	// Endpoint is the base URL of an OpenAI-compatible API.
	Endpoint string
	Model    string
	// Speaker labels the machine's turns in the dialogue.
	Speaker      string
	SystemPrompt string
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat completion request. Nil pointers are omitted.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// StatusError is returned when an endpoint answers with a non-success status.
// Body holds at most the first 200 bytes of the response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Body)
}
