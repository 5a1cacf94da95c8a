package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// BodyReader is a pull-based iterator over the decoded text of an upstream
// response body. Each Read returns the text of one network read. A UTF-8
// sequence split across two network reads is held back until it is complete.
//
// Reads must not be called concurrently. Close may be called from any
// goroutine and more than once.
type BodyReader struct {
	body   io.ReadCloser
	cancel context.CancelFunc

	buf   []byte
	carry []byte
	eof   bool
	err   error

	idle     time.Duration
	timer    *time.Timer
	timedOut atomic.Bool

	closeOnce sync.Once
	closed    atomic.Bool
	bytesRead atomic.Int64
}

func newBodyReader(body io.ReadCloser, cancel context.CancelFunc, bufSize int, idle time.Duration) *BodyReader {
	r := &BodyReader{
		body:   body,
		cancel: cancel,
		buf:    make([]byte, bufSize),
		idle:   idle,
	}
	if idle > 0 {
		r.timer = time.AfterFunc(idle, r.expire)
		r.timer.Stop()
	}
	return r
}

// NewBodyReader wraps a body obtained outside of Client. It applies no idle
// timeout.
func NewBodyReader(body io.ReadCloser) *BodyReader {
	return newBodyReader(body, func() {}, DefaultConfig().ReadBufferSize, 0)
}

// Read returns the next decoded chunk. It returns "", io.EOF once the body
// is exhausted or the reader has been closed. A failed body read is returned
// as *StreamError and repeated on every later call. If ctx is canceled the
// upstream request is aborted and ctx.Err() is returned.
func (r *BodyReader) Read(ctx context.Context) (string, error) {
	for {
		if r.closed.Load() {
			return "", io.EOF
		}
		if r.err != nil {
			return "", r.err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if r.eof {
			// A dangling partial sequence is delivered as-is and becomes
			// U+FFFD once marshaled.
			if len(r.carry) > 0 {
				text := string(r.carry)
				r.carry = nil
				return text, nil
			}
			return "", io.EOF
		}

		n, err := r.readOnce(ctx)

		var text string
		if n > 0 {
			r.bytesRead.Add(int64(n))
			text = r.decode(r.buf[:n])
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			r.eof = true
		case r.closed.Load():
			return "", io.EOF
		default:
			r.err = r.classify(ctx, err)
		}

		if text != "" {
			return text, nil
		}
	}
}

// BytesRead returns the number of raw body bytes consumed so far.
func (r *BodyReader) BytesRead() int64 {
	return r.bytesRead.Load()
}

// Close releases the body and the underlying connection. Calling Close
// while a Read is blocked unblocks it.
func (r *BodyReader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		if r.timer != nil {
			r.timer.Stop()
		}
		err = r.body.Close()
		r.cancel()
	})
	return err
}

func (r *BodyReader) readOnce(ctx context.Context) (int, error) {
	stop := context.AfterFunc(ctx, r.cancel)
	defer stop()

	if r.timer != nil {
		r.timer.Reset(r.idle)
		defer r.timer.Stop()
	}

	return r.body.Read(r.buf)
}

func (r *BodyReader) expire() {
	r.timedOut.Store(true)
	r.cancel()
}

func (r *BodyReader) classify(ctx context.Context, err error) error {
	if r.timedOut.Load() {
		return &StreamError{
			Message: fmt.Sprintf("no data from upstream for %s", r.idle),
			Cause:   err,
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &StreamError{Message: "failed to read upstream body", Cause: err}
}

// decode returns the longest complete UTF-8 prefix of carry+p and keeps the
// remainder for the next call.
func (r *BodyReader) decode(p []byte) string {
	data := p
	if len(r.carry) > 0 {
		data = append(r.carry, p...)
		r.carry = nil
	}

	cut := completePrefixLen(data)
	if cut < len(data) {
		r.carry = append([]byte(nil), data[cut:]...)
	}
	return string(data[:cut])
}

func completePrefixLen(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
