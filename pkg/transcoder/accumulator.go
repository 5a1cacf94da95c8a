package transcoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mercator-hq/jimmybridge/pkg/upstream"
)

// DefaultMaxAccumulatedBytes bounds a non-streaming response.
const DefaultMaxAccumulatedBytes = 8 << 20

// Result is the outcome of accumulating a whole upstream response.
type Result struct {
	Content string
	Stats   Stats
}

// Accumulator reads a complete upstream response for a non-streaming
// completion.
type Accumulator struct {
	// Stripper removes trailers. Nil means DefaultStripper.
	Stripper *Stripper

	// MaxBytes bounds the buffered response. Zero means
	// DefaultMaxAccumulatedBytes.
	MaxBytes int
}

// Accumulate reads r to the end, strips every trailer section, drops a
// start marker left without its end marker together with everything after
// it, and trims surrounding whitespace. The reader is always closed.
func (a *Accumulator) Accumulate(ctx context.Context, r ChunkReader) (Result, error) {
	defer r.Close()

	stripper := a.Stripper
	if stripper == nil {
		stripper = DefaultStripper
	}
	maxBytes := a.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAccumulatedBytes
	}

	var (
		sb    strings.Builder
		stats Stats
	)
	for {
		chunk, err := r.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{Stats: stats}, readError(ctx, err)
		}
		stats.ChunksRead++

		if sb.Len()+len(chunk) > maxBytes {
			return Result{Stats: stats}, &upstream.StreamError{
				Message: fmt.Sprintf("upstream response exceeds %d bytes", maxBytes),
			}
		}
		sb.WriteString(chunk)
	}

	full := sb.String()
	text := stripper.Strip(full)
	if len(text) != len(full) {
		stats.TrailerDetected = true
	}
	if truncated := truncateAtMarker(text, stripper.Start()); len(truncated) != len(text) {
		stats.TrailerDetected = true
		text = truncated
	}

	content := strings.TrimSpace(text)
	if content != "" {
		stats.ContentFrames = 1
	}
	stats.BytesEmitted = len(content)

	return Result{Content: content, Stats: stats}, nil
}

// Accumulate reads r to the end and returns the cleaned text, using
// stripper (or DefaultStripper when nil).
func Accumulate(ctx context.Context, r ChunkReader, stripper *Stripper) (string, error) {
	a := &Accumulator{Stripper: stripper}
	result, err := a.Accumulate(ctx, r)
	return result.Content, err
}
