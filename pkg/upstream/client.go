package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// maxErrorBodySize bounds how much of a rejected response is kept for logging.
const maxErrorBodySize = 1024

// Config configures the upstream client.
type Config struct {
	// URL is the upstream chat endpoint.
	URL string

	// ConnectTimeout bounds establishing the TCP/TLS connection.
	ConnectTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for response headers after the
	// request body has been written.
	ResponseHeaderTimeout time.Duration

	// IdleChunkTimeout bounds the gap between two successful body reads.
	// Zero disables the check.
	IdleChunkTimeout time.Duration

	// ReadBufferSize is the size of each body read.
	ReadBufferSize int

	// MaxIdleConns is the maximum number of idle pooled connections.
	MaxIdleConns int

	// IdleConnTimeout is how long an idle pooled connection is kept.
	IdleConnTimeout time.Duration

	// UserAgent is sent with every upstream request when non-empty.
	UserAgent string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		URL:                   DefaultURL,
		ConnectTimeout:        10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleChunkTimeout:      60 * time.Second,
		ReadBufferSize:        4096,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		UserAgent:             "jimmybridge",
	}
}

// Client calls the upstream chat endpoint over a pooled HTTP transport.
// A Client is safe for concurrent use.
type Client struct {
	config    Config
	client    *http.Client
	transport *http.Transport

	healthMu sync.RWMutex
	health   Health
}

// NewClient creates a client with connection pooling. Zero-valued fields in
// config fall back to DefaultConfig.
func NewClient(config Config) *Client {
	defaults := DefaultConfig()
	if config.URL == "" {
		config.URL = defaults.URL
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = defaults.ConnectTimeout
	}
	if config.ResponseHeaderTimeout == 0 {
		config.ResponseHeaderTimeout = defaults.ResponseHeaderTimeout
	}
	if config.ReadBufferSize <= 0 {
		config.ReadBufferSize = defaults.ReadBufferSize
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = defaults.MaxIdleConns
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = defaults.IdleConnTimeout
	}

	dialer := &net.Dialer{
		Timeout:   config.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   config.ConnectTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConns,
		IdleConnTimeout:       config.IdleConnTimeout,
		ForceAttemptHTTP2:     true,
	}

	return &Client{
		config:    config,
		transport: transport,
		// No Client.Timeout: it would cut off long streams.
		client: &http.Client{Transport: transport},
		health: Health{IsHealthy: true},
	}
}

// URL returns the configured upstream endpoint.
func (c *Client) URL() string {
	return c.config.URL
}

// Chat sends req upstream and returns a reader over the decoded response
// text. The caller must Close the returned reader.
//
// Canceling ctx aborts the call and any later body reads.
func (c *Client) Chat(ctx context.Context, req *Request) (*BodyReader, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upstream request: %w", err)
	}

	// The body outlives this call, so it gets its own cancel func which the
	// reader releases on Close.
	reqCtx, cancel := context.WithCancel(ctx)

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}

	startTime := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		cancel()
		unreachable := &UnreachableError{URL: c.config.URL, Cause: err}
		// A caller that went away says nothing about upstream health.
		if ctx.Err() == nil {
			c.recordFailure(unreachable)
		}
		slog.WarnContext(ctx, "upstream request failed",
			"url", c.config.URL,
			"latency_ms", time.Since(startTime).Milliseconds(),
			"error", err,
		)
		return nil, unreachable
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		_ = resp.Body.Close()
		cancel()

		rejected := &RejectedError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
		c.recordFailure(rejected)
		slog.WarnContext(ctx, "upstream rejected request",
			"url", c.config.URL,
			"status", resp.StatusCode,
			"latency_ms", time.Since(startTime).Milliseconds(),
		)
		return nil, rejected
	}

	if resp.Body == nil || resp.Body == http.NoBody || resp.ContentLength == 0 {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
		cancel()

		empty := &EmptyResponseError{StatusCode: resp.StatusCode}
		c.recordFailure(empty)
		slog.WarnContext(ctx, "upstream returned empty response",
			"url", c.config.URL,
			"status", resp.StatusCode,
		)
		return nil, empty
	}

	c.recordSuccess()
	slog.DebugContext(ctx, "upstream response started",
		"url", c.config.URL,
		"status", resp.StatusCode,
		"latency_ms", time.Since(startTime).Milliseconds(),
	)

	return newBodyReader(resp.Body, cancel, c.config.ReadBufferSize, c.config.IdleChunkTimeout), nil
}

// Health returns a snapshot of recent call outcomes.
func (c *Client) Health() Health {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.health
}

// Close releases idle pooled connections.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

func (c *Client) recordSuccess() {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	now := time.Now()
	c.health.TotalRequests++
	c.health.LastCheck = now
	c.health.LastSuccess = now
	c.health.LastError = ""
	c.health.ConsecutiveFailures = 0
	c.health.IsHealthy = true
}

func (c *Client) recordFailure(err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()

	c.health.TotalRequests++
	c.health.FailedRequests++
	c.health.LastCheck = time.Now()
	c.health.LastError = err.Error()
	c.health.ConsecutiveFailures++

	if c.health.ConsecutiveFailures >= 3 && c.health.IsHealthy {
		c.health.IsHealthy = false
		slog.Warn("upstream marked unhealthy",
			"url", c.config.URL,
			"consecutive_failures", c.health.ConsecutiveFailures,
			"error", err,
		)
	}
}
