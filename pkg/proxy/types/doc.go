// Package types defines OpenAI-compatible request and response types for the proxy server.
//
// The types cover the subset of the Chat Completions API the proxy serves:
//
// Request types:
//   - ChatCompletionRequest: request body for /v1/chat/completions
//   - Message: individual message in conversation history
//   - MessageContent: message text, accepted as a string or text parts
//
// Response types:
//   - ChatCompletionResponse: non-streaming response
//   - ChatCompletionStreamChunk: streaming response chunk (SSE)
//   - ModelList: response of /v1/models
//
// Error types:
//   - ErrorResponse: OpenAI-compatible error envelope
//   - ErrorDetail: message, type, param and code
//
// Standard SDKs can point at the proxy without modification:
//
//	from openai import OpenAI
//	client = OpenAI(base_url="http://localhost:8080/v1", api_key="...")
//	client.chat.completions.create(
//	    model="llama3.1-8B",
//	    messages=[{"role": "user", "content": "Hello!"}],
//	)
package types
