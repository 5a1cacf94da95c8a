package transcoder

import (
	"context"
	"errors"
	"io"

	"mercator-hq/jimmybridge/pkg/upstream"
)

// State is a step of the streaming state machine.
type State int

const (
	// StateStarting is the initial state; the role frame has not been sent.
	StateStarting State = iota
	// StateStreaming pulls upstream chunks and emits safe prefixes.
	StateStreaming
	// StateFlushing emits the stripped remainder, the finish frame and the
	// done sentinel. The upstream reader is already closed.
	StateFlushing
	// StateDone is terminal.
	StateDone
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateFlushing:
		return "flushing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// FrameKind identifies the type of an emitted frame.
type FrameKind int

const (
	// FrameRole announces the assistant role. It is always first.
	FrameRole FrameKind = iota
	// FrameContent carries a non-empty piece of visible text.
	FrameContent
	// FrameFinish closes the choice with finish reason "stop".
	FrameFinish
	// FrameDone is the end-of-stream sentinel.
	FrameDone
)

// String returns the frame kind name used in logs and metrics.
func (k FrameKind) String() string {
	switch k {
	case FrameRole:
		return "role"
	case FrameContent:
		return "content"
	case FrameFinish:
		return "finish"
	case FrameDone:
		return "done"
	default:
		return "unknown"
	}
}

// Frame is one unit of the outgoing stream. Content is set only for
// FrameContent.
type Frame struct {
	Kind    FrameKind
	Content string
}

// ChunkReader is a cancellable, lazily advanced sequence of text chunks.
// Read returns io.EOF after the last chunk. Close must be safe to call more
// than once.
type ChunkReader interface {
	Read(ctx context.Context) (string, error)
	Close() error
}

// Stats describes what a transcoding pass has done so far.
type Stats struct {
	// ChunksRead counts chunks pulled from the reader.
	ChunksRead int
	// ContentFrames counts content frames produced.
	ContentFrames int
	// BytesEmitted counts bytes of visible content produced.
	BytesEmitted int
	// TrailerDetected reports whether a stats trailer was found.
	TrailerDetected bool
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithStripper replaces the default stats markers.
func WithStripper(s *Stripper) Option {
	return func(t *Transcoder) {
		t.stripper = s
	}
}

// Transcoder converts one upstream stream into frames. It is owned by a
// single request and is not safe for concurrent use.
type Transcoder struct {
	reader   ChunkReader
	stripper *Stripper
	marker   string

	state    State
	retained string
	pending  []Frame

	readerClosed bool
	stats        Stats
}

// NewTranscoder creates a transcoder in StateStarting that pulls from r.
// It panics if the configured start marker is empty.
func NewTranscoder(r ChunkReader, opts ...Option) *Transcoder {
	t := &Transcoder{
		reader:   r,
		stripper: DefaultStripper,
		state:    StateStarting,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.marker = t.stripper.Start()
	if t.marker == "" {
		panic("transcoder: start marker must not be empty")
	}
	return t
}

// Next returns the next frame. After the done sentinel it returns io.EOF.
//
// If ctx is canceled Next returns ctx.Err(). If the upstream read fails it
// returns a *upstream.StreamError. In both cases the reader is closed, the
// transcoder moves to StateDone and no finish frame is produced.
func (t *Transcoder) Next(ctx context.Context) (Frame, error) {
	for {
		switch t.state {
		case StateStarting:
			t.state = StateStreaming
			return Frame{Kind: FrameRole}, nil

		case StateStreaming:
			if err := ctx.Err(); err != nil {
				t.abort()
				return Frame{}, err
			}

			chunk, err := t.reader.Read(ctx)
			if errors.Is(err, io.EOF) {
				t.flush()
				continue
			}
			if err != nil {
				t.abort()
				return Frame{}, readError(ctx, err)
			}
			t.stats.ChunksRead++

			emittable, retained, found := Scan(t.retained+chunk, t.marker)
			t.retained = retained
			if found {
				t.stats.TrailerDetected = true
				t.flush()
			}
			if emittable != "" {
				return t.content(emittable), nil
			}

		case StateFlushing:
			frame := t.pending[0]
			t.pending = t.pending[1:]
			if len(t.pending) == 0 {
				t.state = StateDone
			}
			return frame, nil

		default:
			return Frame{}, io.EOF
		}
	}
}

// State returns the current state.
func (t *Transcoder) State() State {
	return t.state
}

// Stats returns counters for the frames produced so far.
func (t *Transcoder) Stats() Stats {
	return t.stats
}

// Close stops the transcoder and releases the upstream reader. It is safe
// to call at any point and more than once.
func (t *Transcoder) Close() error {
	t.state = StateDone
	t.pending = nil
	return t.closeReader()
}

// flush closes the reader and queues the trailing frames.
func (t *Transcoder) flush() {
	_ = t.closeReader()

	t.pending = t.pending[:0]
	if rest := t.stripper.Strip(t.retained); rest != "" {
		t.pending = append(t.pending, t.content(rest))
	}
	t.retained = ""
	t.pending = append(t.pending, Frame{Kind: FrameFinish}, Frame{Kind: FrameDone})
	t.state = StateFlushing
}

func (t *Transcoder) abort() {
	_ = t.closeReader()
	t.retained = ""
	t.pending = nil
	t.state = StateDone
}

func (t *Transcoder) closeReader() error {
	if t.readerClosed {
		return nil
	}
	t.readerClosed = true
	return t.reader.Close()
}

func (t *Transcoder) content(text string) Frame {
	t.stats.ContentFrames++
	t.stats.BytesEmitted += len(text)
	return Frame{Kind: FrameContent, Content: text}
}

// readError reports cancellation as is and wraps anything else as a
// stream error.
func readError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var streamErr *upstream.StreamError
	if errors.As(err, &streamErr) {
		return err
	}
	return &upstream.StreamError{Message: "failed to read upstream", Cause: err}
}
