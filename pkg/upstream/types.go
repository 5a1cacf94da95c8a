package upstream

import "time"

const (
	// DefaultURL is the ChatJimmy chat endpoint.
	DefaultURL = "https://chatjimmy.ai/api/chat"

	// DefaultModel is used when a request names no model.
	DefaultModel = "llama3.1-8B"

	// DefaultTopK is the retrieval breadth sent with every request.
	DefaultTopK = 8

	// DefaultOwner is the ownership tag reported for upstream models.
	DefaultOwner = "chatjimmy"
)

// Message roles accepted by the upstream.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions carries per-request model settings.
type ChatOptions struct {
	SelectedModel string `json:"selectedModel"`
	SystemPrompt  string `json:"systemPrompt"`
	TopK          int    `json:"topK"`
}

// Attachment is a file attached to a request. The proxy never sends one, but
// the upstream expects the field to be present, so a nil *Attachment
// serializes to JSON null.
type Attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Request is the body of a single upstream chat call. Messages never
// contains system messages; their text is carried in ChatOptions.SystemPrompt.
type Request struct {
	Messages    []Message   `json:"messages"`
	ChatOptions ChatOptions `json:"chatOptions"`
	Attachment  *Attachment `json:"attachment"`
}

// Health summarizes the outcome of recent upstream calls.
type Health struct {
	// IsHealthy is false after three consecutive failed calls.
	IsHealthy bool `json:"healthy"`

	// LastCheck is when the last call completed.
	LastCheck time.Time `json:"last_check"`

	// LastSuccess is when the last successful call completed.
	LastSuccess time.Time `json:"last_success"`

	// LastError is the message of the most recent failure, if any.
	LastError string `json:"last_error,omitempty"`

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int `json:"consecutive_failures"`

	// TotalRequests counts all calls made.
	TotalRequests int64 `json:"total_requests"`

	// FailedRequests counts calls that did not produce a body.
	FailedRequests int64 `json:"failed_requests"`
}
