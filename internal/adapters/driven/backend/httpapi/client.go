// Package httpapi provides a content backend that talks to a remote content
// service over JSON REST.
//
// Endpoints, relative to the base URL:
//
//	GET    /api/content?limit=&offset=&dateFilter=&contentType=
//	POST   /api/content            {"items": [...]}
//	DELETE /api/documents/{id}
//	DELETE /api/images/{id}
//	GET    /api/info
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-library/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.ContentBackend = (*Client)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// eventBuffer is the capacity of the push channel.
	eventBuffer = 16

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 1024
)

// Config configures the HTTP backend client.
type Config struct {
	// BaseURL is the content service root, e.g. http://localhost:8000.
	BaseURL string

	// RateLimit is the maximum requests per second (0 = unlimited).
	RateLimit float64

	// Timeout bounds each request (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
}

// Client implements driven.ContentBackend over HTTP. Connection events are
// pushed on transitions between reachable and unreachable.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	limiter *rate.Limiter

	mu        sync.Mutex
	connected *bool
	closed    bool
	events    chan domain.Event
}

// New creates an HTTP backend client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("backend url %q: %w", cfg.BaseURL, domain.ErrInvalidInput)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		http:    httpClient,
		baseURL: base,
		limiter: rate.NewLimiter(limit, 1),
		events:  make(chan domain.Event, eventBuffer),
	}, nil
}

// List fetches one window of records.
func (c *Client) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(req.Limit))
	q.Set("offset", strconv.Itoa(req.Offset))
	if req.DateFilter != "" {
		q.Set("dateFilter", string(req.DateFilter))
	}
	if req.ContentType != "" {
		q.Set("contentType", string(req.ContentType))
	}

	var resp domain.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/content", q, nil, &resp); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return &resp, nil
}

// Add submits new records.
func (c *Client) Add(ctx context.Context, records []domain.Record) (*domain.MutationResult, error) {
	body := struct {
		Items []domain.Record `json:"items"`
	}{Items: records}

	var resp domain.MutationResult
	if err := c.do(ctx, http.MethodPost, "/api/content", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("add content: %w", err)
	}
	return &resp, nil
}

// RemoveDocument removes one document record.
func (c *Client) RemoveDocument(ctx context.Context, id string) (*domain.RemovalResult, error) {
	return c.remove(ctx, "/api/documents/", id)
}

// RemoveImage removes one image record.
func (c *Client) RemoveImage(ctx context.Context, id string) (*domain.RemovalResult, error) {
	return c.remove(ctx, "/api/images/", id)
}

func (c *Client) remove(ctx context.Context, prefix, id string) (*domain.RemovalResult, error) {
	if id == "" {
		return nil, fmt.Errorf("remove: empty id: %w", domain.ErrInvalidInput)
	}
	var resp domain.RemovalResult
	if err := c.do(ctx, http.MethodDelete, prefix+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("remove %s: %w", id, err)
	}
	return &resp, nil
}

// Info fetches the auxiliary info payload.
func (c *Client) Info(ctx context.Context) (*domain.BackendInfo, error) {
	var resp domain.BackendInfo
	if err := c.do(ctx, http.MethodGet, "/api/info", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("info: %w", err)
	}
	return &resp, nil
}

// Events returns the push notification channel.
func (c *Client) Events() <-chan domain.Event {
	return c.events
}

// Close closes the event channel and idle connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.http.CloseIdleConnections()
	return nil
}

// do sends one request and decodes a JSON answer into out.
//
// Transport failures and 5xx answers wrap domain.ErrBackendUnavailable,
// 429 wraps domain.ErrRateLimited and other non-2xx answers wrap
// domain.ErrBackendRejected.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("%s %s", method, u.Redacted())
	resp, err := c.http.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.setConnected(false)
		}
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.setConnected(false)
		return fmt.Errorf("%w: %s", domain.ErrBackendUnavailable, statusError(resp))
	}
	c.setConnected(true)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, statusError(resp))
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrBackendRejected, statusError(resp))
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError describes a non-2xx response, preferring a JSON message field.
func statusError(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			msg = body.Message
		} else if body.Error != "" {
			msg = body.Error
		}
	}
	if retry := resp.Header.Get("Retry-After"); retry != "" {
		msg += " (retry after " + retry + "s)"
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, msg)
}

// setConnected pushes an event when reachability changes. The first
// observation always produces one.
func (c *Client) setConnected(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || (c.connected != nil && *c.connected == ok) {
		return
	}
	c.connected = &ok

	ev := domain.Event{Type: domain.EventDisconnected, At: time.Now()}
	if ok {
		ev.Type = domain.EventConnected
	}
	select {
	case c.events <- ev:
	default:
		logger.Debug("http backend: dropping %s event, channel full", ev.Type)
	}
}
