// Package upstreamtest provides a scripted stand-in for the ChatJimmy
// upstream, for use in tests.
package upstreamtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"mercator-hq/jimmybridge/pkg/upstream"
)

// Response scripts how the server answers the next calls.
type Response struct {
	// Status is the HTTP status. Zero means 200.
	Status int

	// Chunks are written and flushed one at a time.
	Chunks []string

	// ChunkDelay is slept before each chunk.
	ChunkDelay time.Duration

	// Empty answers with Content-Length: 0 and no body.
	Empty bool

	// DropAfter, when positive, closes the connection without finishing
	// the chunked body after that many chunks have been written.
	DropAfter int

	// HoldOpen keeps the response open after the last chunk until the
	// client goes away.
	HoldOpen bool
}

// Server is an httptest server that records the upstream requests it
// receives and answers with the scripted Response.
type Server struct {
	server *httptest.Server

	mu       sync.Mutex
	response Response
	requests []upstream.Request
	headers  []http.Header
	aborted  int
	abortCh  chan struct{}
}

// NewServer starts a server answering with response.
func NewServer(response Response) *Server {
	s := &Server{
		response: response,
		abortCh:  make(chan struct{}, 16),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the endpoint clients should call.
func (s *Server) URL() string {
	return s.server.URL + "/api/chat"
}

// Close shuts the server down.
func (s *Server) Close() {
	s.server.CloseClientConnections()
	s.server.Close()
}

// SetResponse replaces the scripted response.
func (s *Server) SetResponse(response Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = response
}

// Requests returns the decoded request bodies received so far.
func (s *Server) Requests() []upstream.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]upstream.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastHeaders returns the headers of the most recent request.
func (s *Server) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil
	}
	return s.headers[len(s.headers)-1]
}

// Aborted returns how many responses were cut short by the client.
func (s *Server) Aborted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// WaitAborted blocks until a response is cut short by the client or the
// timeout elapses.
func (s *Server) WaitAborted(timeout time.Duration) bool {
	select {
	case <-s.abortCh:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)

	var req upstream.Request
	_ = json.Unmarshal(raw, &req)

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.headers = append(s.headers, r.Header.Clone())
	response := s.response
	s.mu.Unlock()

	status := response.Status
	if status == 0 {
		status = http.StatusOK
	}

	if response.Empty {
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)

	flusher, _ := w.(http.Flusher)
	ctx := r.Context()

	for i, chunk := range response.Chunks {
		if response.DropAfter > 0 && i == response.DropAfter {
			s.drop(w)
			return
		}

		if response.ChunkDelay > 0 {
			select {
			case <-time.After(response.ChunkDelay):
			case <-ctx.Done():
				s.markAborted()
				return
			}
		}

		if _, err := io.WriteString(w, chunk); err != nil {
			s.markAborted()
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if response.DropAfter > 0 && response.DropAfter >= len(response.Chunks) {
		s.drop(w)
		return
	}

	if response.HoldOpen {
		<-ctx.Done()
		s.markAborted()
	}
}

// drop closes the connection mid-body so the client sees a truncated
// chunked stream.
func (s *Server) drop(w http.ResponseWriter) {
	hijacker, ok := w.(http.Hijacker)
	if !ok {
		return
	}
	conn, _, err := hijacker.Hijack()
	if err != nil {
		return
	}
	_ = conn.Close()
}

func (s *Server) markAborted() {
	s.mu.Lock()
	s.aborted++
	s.mu.Unlock()

	select {
	case s.abortCh <- struct{}{}:
	default:
	}
}
