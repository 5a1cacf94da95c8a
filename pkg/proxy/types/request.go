package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Message roles accepted on the inbound API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatCompletionRequest represents an OpenAI-compatible chat completion request.
// Only Model, Messages and Stream influence the upstream call. The sampling
// fields are accepted and range-checked so that standard SDKs work unchanged.
type ChatCompletionRequest struct {
	// Model is the ID of the model to use. Optional; the proxy falls back to
	// its default model when empty.
	Model string `json:"model,omitempty"`

	// Messages is the conversation history in order.
	Messages []Message `json:"messages"`

	// Stream enables server-sent events (SSE) streaming.
	// Optional, defaults to false.
	Stream bool `json:"stream,omitempty"`

	// Temperature controls randomness in the response (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// N is the number of completions to generate. Only 1 is supported.
	N *int `json:"n,omitempty"`

	// Stop lists sequences where generation should stop, maximum 4.
	Stop StopSequences `json:"stop,omitempty"`

	// PresencePenalty is between -2.0 and 2.0.
	PresencePenalty *float64 `json:"presence_penalty,omitempty"`

	// FrequencyPenalty is between -2.0 and 2.0.
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`

	// User is an end-user identifier, logged but not forwarded.
	User string `json:"user,omitempty"`
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the author of the message ("system", "user" or "assistant").
	Role string `json:"role"`

	// Content is the text of the message.
	Content MessageContent `json:"content"`

	// Name is the name of the author (optional).
	Name string `json:"name,omitempty"`
}

// MessageContent is the text of a message. On the wire it is either a JSON
// string or an array of content parts; text parts are concatenated in
// order. Any other part type is rejected when decoding.
type MessageContent struct {
	Text string

	// present records whether the field appeared in the JSON at all.
	present bool
}

// NewMessageContent wraps plain text.
func NewMessageContent(text string) MessageContent {
	return MessageContent{Text: text, present: true}
}

// Present reports whether the content field was supplied.
func (c MessageContent) Present() bool {
	return c.present
}

// String returns the text.
func (c MessageContent) String() string {
	return c.Text
}

// contentPart is one element of an array-form message content.
type contentPart struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}

// UnmarshalJSON accepts a string, null, or an array of text parts.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	c.present = true

	switch {
	case bytes.Equal(data, []byte("null")):
		c.Text = ""
		c.present = false
		return nil

	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &c.Text)

	case len(data) > 0 && data[0] == '[':
		var parts []contentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("content parts: %w", err)
		}
		var sb strings.Builder
		for i, part := range parts {
			if part.Type != "text" {
				return fmt.Errorf("content part %d: unsupported type %q", i, part.Type)
			}
			if part.Text == nil {
				return fmt.Errorf("content part %d: text is required", i)
			}
			sb.WriteString(*part.Text)
		}
		c.Text = sb.String()
		return nil

	default:
		return fmt.Errorf("content must be a string or an array of text parts")
	}
}

// MarshalJSON always encodes the content as a string.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Text)
}

// StopSequences accepts either a single string or an array of strings.
type StopSequences []string

// UnmarshalJSON accepts a string, null, or an array of strings.
func (s *StopSequences) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = StopSequences{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("stop must be a string or an array of strings")
	}
	*s = many
	return nil
}

// Validate validates the chat completion request.
// It checks that required fields are present and values are within acceptable ranges.
func (r *ChatCompletionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return &ValidationError{
			Field:   "messages",
			Message: "messages must contain at least one message",
			Missing: r.Messages == nil,
		}
	}

	for i, msg := range r.Messages {
		switch msg.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		case "":
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: "message role is required",
				Missing: true,
			}
		default:
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: fmt.Sprintf("unsupported role %q; expected system, user or assistant", msg.Role),
			}
		}

		if !msg.Content.Present() {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].content", i),
				Message: "message content is required",
				Missing: true,
			}
		}
	}

	if r.Temperature != nil && (*r.Temperature < 0.0 || *r.Temperature > 2.0) {
		return &ValidationError{
			Field:   "temperature",
			Message: "temperature must be between 0.0 and 2.0",
		}
	}

	if r.TopP != nil && (*r.TopP < 0.0 || *r.TopP > 1.0) {
		return &ValidationError{
			Field:   "top_p",
			Message: "top_p must be between 0.0 and 1.0",
		}
	}

	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return &ValidationError{
			Field:   "max_tokens",
			Message: "max_tokens must be greater than 0",
		}
	}

	if r.N != nil && *r.N != 1 {
		return &ValidationError{
			Field:   "n",
			Message: "only n=1 is supported",
		}
	}

	if len(r.Stop) > 4 {
		return &ValidationError{
			Field:   "stop",
			Message: "stop sequences must not exceed 4",
		}
	}

	if r.PresencePenalty != nil && (*r.PresencePenalty < -2.0 || *r.PresencePenalty > 2.0) {
		return &ValidationError{
			Field:   "presence_penalty",
			Message: "presence_penalty must be between -2.0 and 2.0",
		}
	}

	if r.FrequencyPenalty != nil && (*r.FrequencyPenalty < -2.0 || *r.FrequencyPenalty > 2.0) {
		return &ValidationError{
			Field:   "frequency_penalty",
			Message: "frequency_penalty must be between -2.0 and 2.0",
		}
	}

	return nil
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string

	// Missing is true when the field was absent rather than invalid.
	Missing bool
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
