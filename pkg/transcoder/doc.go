// Package transcoder turns the upstream's plain-text response into the
// frames of an OpenAI-style chat completion, removing the stats trailer the
// upstream appends to every answer.
//
// The trailer starts with "<|stats|>" and ends with "<|/stats|>". On the
// wire it can be split at any byte, so the streaming path never emits the
// last len(marker)-1 characters it has seen until it knows they cannot be
// the beginning of the marker.
//
// # Streaming
//
// A Transcoder pulls chunks from a ChunkReader and yields frames in a fixed
// order: one role frame, zero or more content frames, one finish frame and
// the done sentinel. Once the start marker is seen the reader is closed and
// nothing more is pulled from the upstream.
//
//	t := transcoder.NewTranscoder(body)
//	defer t.Close()
//	for {
//	    frame, err := t.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // *upstream.StreamError or ctx.Err(); no finish frame follows
//	    }
//	    ...
//	}
//
// # Non-streaming
//
// Accumulate reads the whole body, strips every trailer and trims the
// result. For the same upstream bytes its output equals the concatenated
// content frames of the streaming path, up to surrounding whitespace.
package transcoder
