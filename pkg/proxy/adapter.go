package proxy

import (
	"crypto/rand"
	"strings"
	"time"

	"mercator-hq/jimmybridge/pkg/proxy/types"
	"mercator-hq/jimmybridge/pkg/transcoder"
	"mercator-hq/jimmybridge/pkg/upstream"
)

const (
	completionIDPrefix = "chatcmpl-"
	completionIDLength = 12
	base36Alphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ResolveModel returns requested when it is non-empty, else fallback.
func ResolveModel(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}

// BuildUpstreamRequest maps an inbound request to the upstream shape.
// System messages are removed from the conversation and their contents
// joined with newlines into the system prompt; every other message keeps
// its position relative to the others.
func BuildUpstreamRequest(req *types.ChatCompletionRequest, model string, topK int) *upstream.Request {
	messages := make([]upstream.Message, 0, len(req.Messages))
	var systemPrompts []string

	for _, msg := range req.Messages {
		if msg.Role == types.RoleSystem {
			systemPrompts = append(systemPrompts, msg.Content.Text)
			continue
		}
		messages = append(messages, upstream.Message{
			Role:    msg.Role,
			Content: msg.Content.Text,
		})
	}

	return &upstream.Request{
		Messages: messages,
		ChatOptions: upstream.ChatOptions{
			SelectedModel: model,
			SystemPrompt:  strings.Join(systemPrompts, "\n"),
			TopK:          topK,
		},
		Attachment: nil,
	}
}

// NewCompletionID returns "chatcmpl-" followed by 12 random base36
// characters.
func NewCompletionID() string {
	var sb strings.Builder
	sb.Grow(len(completionIDPrefix) + completionIDLength)
	sb.WriteString(completionIDPrefix)

	// Bytes >= 252 are rejected so every character is equally likely.
	const limit = 252
	buf := make([]byte, completionIDLength*2)
	for n := 0; n < completionIDLength; {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if b >= limit {
				continue
			}
			sb.WriteByte(base36Alphabet[b%36])
			n++
			if n == completionIDLength {
				break
			}
		}
	}
	return sb.String()
}

// Envelope holds the identity shared by every frame or response object
// produced for one request: chat ID, creation time and echoed model.
type Envelope struct {
	ID      string
	Created int64
	Model   string
}

// NewEnvelope creates an envelope with a fresh chat ID.
func NewEnvelope(model string, now time.Time) *Envelope {
	return &Envelope{
		ID:      NewCompletionID(),
		Created: now.Unix(),
		Model:   model,
	}
}

// Chunk wraps a frame in a chat.completion.chunk object. It returns nil for
// FrameDone, which is written as the literal sentinel instead.
func (e *Envelope) Chunk(frame transcoder.Frame) *types.ChatCompletionStreamChunk {
	choice := types.StreamChoice{Index: 0}

	switch frame.Kind {
	case transcoder.FrameRole:
		empty := ""
		choice.Delta = types.Delta{Role: types.RoleAssistant, Content: &empty}
	case transcoder.FrameContent:
		content := frame.Content
		choice.Delta = types.Delta{Content: &content}
	case transcoder.FrameFinish:
		stop := types.FinishReasonStop
		choice.FinishReason = &stop
	default:
		return nil
	}

	return &types.ChatCompletionStreamChunk{
		ID:      e.ID,
		Object:  types.ObjectChatCompletionChunk,
		Created: e.Created,
		Model:   e.Model,
		Choices: []types.StreamChoice{choice},
	}
}

// Completion wraps accumulated text in a chat.completion object. Usage is
// always zero.
func (e *Envelope) Completion(content string) *types.ChatCompletionResponse {
	return &types.ChatCompletionResponse{
		ID:      e.ID,
		Object:  types.ObjectChatCompletion,
		Created: e.Created,
		Model:   e.Model,
		Choices: []types.Choice{
			{
				Index: 0,
				Message: types.Message{
					Role:    types.RoleAssistant,
					Content: types.NewMessageContent(content),
				},
				FinishReason: types.FinishReasonStop,
			},
		},
		Usage: types.Usage{},
	}
}
