// Package proxy adapts OpenAI-style chat completion traffic to the
// ChatJimmy upstream and back.
//
// # Architecture
//
//   - Handlers: request processing (chat completions, models, health)
//   - Middleware: cross-cutting concerns (logging, CORS, request ID, recovery, timeouts)
//   - Types: OpenAI-compatible request/response data structures
//   - This package: request parsing, the request/response adapter, error
//     mapping and SSE/JSON writers shared by the handlers
//
// # Request Flow
//
//  1. ParseChatCompletionRequest decodes and validates the body (400 on failure)
//  2. ResolveModel and BuildUpstreamRequest derive the upstream call
//  3. NewEnvelope fixes the chat ID, timestamp and model for the response
//  4. The upstream body is consumed by a transcoder (stream) or an
//     accumulator (non-stream) and wrapped by the envelope
//  5. HandleError maps failures to the OpenAI error envelope
//
// # Error Mapping
//
// Upstream failures are never retried and surface as 502 server_error:
//
//	{"error":{"message":"Failed to connect to upstream","type":"server_error"}}
//	{"error":{"message":"Upstream error","type":"server_error"}}
//	{"error":{"message":"Empty upstream response","type":"server_error"}}
package proxy
