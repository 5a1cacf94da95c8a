// Package upstream implements the HTTP client for the ChatJimmy chat service.
//
// The upstream accepts a JSON body describing the conversation and replies
// with a chunked plain-text stream. The stream may end with an out-of-band
// stats trailer delimited by "<|stats|>" and "<|/stats|>"; this package does
// not interpret the trailer, it only delivers decoded text chunks.
//
// # Usage
//
//	client := upstream.NewClient(upstream.DefaultConfig())
//	defer client.Close()
//
//	body, err := client.Chat(ctx, &upstream.Request{...})
//	if err != nil {
//	    // *UnreachableError, *RejectedError or *EmptyResponseError
//	}
//	defer body.Close()
//
//	for {
//	    text, err := body.Read(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// # Error Handling
//
// Failures before the body is available are reported as one of three typed
// errors, none of which are retried:
//   - UnreachableError: the request could not be sent or no response arrived
//   - RejectedError: the upstream answered with a non-2xx status
//   - EmptyResponseError: the upstream answered 2xx without a body
//
// Failures while reading the body are reported as StreamError.
//
// # Timeouts
//
// A streaming response has no natural upper bound on its duration, so the
// client never sets http.Client.Timeout. Instead it bounds the dial, the wait
// for response headers, and the gap between two body reads.
package upstream
