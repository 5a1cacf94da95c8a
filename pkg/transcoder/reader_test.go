package transcoder

import (
	"context"
	"io"
)

// sliceReader yields predefined chunks and records how it was used.
type sliceReader struct {
	chunks []string
	errAt  int // index at which err is returned; -1 for never
	err    error

	reads  int
	closes int
}

func newSliceReader(chunks ...string) *sliceReader {
	return &sliceReader{chunks: chunks, errAt: -1}
}

func (r *sliceReader) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.closes > 0 {
		return "", io.EOF
	}
	idx := r.reads
	r.reads++
	if idx == r.errAt {
		return "", r.err
	}
	if idx >= len(r.chunks) {
		return "", io.EOF
	}
	return r.chunks[idx], nil
}

func (r *sliceReader) Close() error {
	r.closes++
	return nil
}
