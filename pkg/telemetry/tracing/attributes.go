package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for completion spans.
const (
	AttrCompletionID    = attribute.Key("jimmybridge.completion_id")
	AttrModel           = attribute.Key("gen_ai.request.model")
	AttrStream          = attribute.Key("jimmybridge.stream")
	AttrMessages        = attribute.Key("jimmybridge.messages")
	AttrRequestID       = attribute.Key("jimmybridge.request_id")
	AttrUpstreamOutcome = attribute.Key("jimmybridge.upstream.outcome")
	AttrUpstreamURL     = attribute.Key("server.address")
	AttrFrames          = attribute.Key("jimmybridge.frames")
	AttrChunksRead      = attribute.Key("jimmybridge.chunks_read")
	AttrContentBytes    = attribute.Key("jimmybridge.content_bytes")
	AttrTrailerStripped = attribute.Key("jimmybridge.trailer_stripped")
)

// SetCompletionAttributes records what a chat completion request asked for.
func SetCompletionAttributes(span trace.Span, completionID, model string, stream bool, messages int) {
	span.SetAttributes(
		AttrCompletionID.String(completionID),
		AttrModel.String(model),
		AttrStream.Bool(stream),
		AttrMessages.Int(messages),
	)
}

// SetResultAttributes records how much of the upstream reply was relayed.
// frames is zero for non-streaming completions.
func SetResultAttributes(span trace.Span, outcome string, frames, chunksRead, contentBytes int, trailerStripped bool) {
	span.SetAttributes(
		AttrUpstreamOutcome.String(outcome),
		AttrFrames.Int(frames),
		AttrChunksRead.Int(chunksRead),
		AttrContentBytes.Int(contentBytes),
		AttrTrailerStripped.Bool(trailerStripped),
	)
}
