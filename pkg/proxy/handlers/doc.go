// Package handlers provides the HTTP request handlers for the proxy server.
//
// # Handler Types
//
//   - ChatHandler: POST /v1/chat/completions, buffered JSON or SSE stream
//   - ModelsHandler: GET /v1/models, a one-entry model list
//   - HealthHandler: GET /health, liveness plus an upstream health snapshot
//
// # Request Flow
//
// ChatHandler follows a fixed pattern:
//
//  1. Parse and validate the body (400 on failure, upstream never called)
//  2. Resolve the model and fix the completion ID and timestamp
//  3. Build the upstream request, lifting system messages into the prompt
//  4. Call the upstream (502 on connect failure, non-2xx, or empty body)
//  5. Relay frames from the transcoder, or accumulate the whole text
//
// # Streaming
//
// Frames are written as they are produced and flushed one by one:
//
//	data: {"id":"chatcmpl-...","object":"chat.completion.chunk",...}
//
//	data: [DONE]
//
// If the upstream fails after the stream has started, the handler writes
// one error event and stops without [DONE]:
//
//	data: {"error":{"message":"Upstream stream interrupted","type":"server_error"}}
//
// # Error Handling
//
// Every other failure is a JSON body in the OpenAI error format, produced
// by proxy.HandleError.
package handlers
