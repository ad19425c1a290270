// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/config"
	"github.com/xkilldash9x/soko-cli/internal/network"
)

const (
	// DefaultBaseURL is the local backend address.
	DefaultBaseURL = "http://127.0.0.1:5000"
	// RequestIDHeader carries a per-call id that also appears in client logs.
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 16 << 20
)

// Client talks to the investigation backend. Calls are fire-once: there is no
// retry and no backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	runTimeout time.Duration
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeouts sets the per-call deadline and the longer deadline for the scan trigger.
// A zero value leaves the call bounded only by the caller's context.
func WithTimeouts(timeout, runTimeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.runTimeout = runTimeout
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.Named("api")
		}
	}
}

// NewClient builds a client for baseURL. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = network.NewClient(network.NewDefaultClientConfig(c.logger))
	}
	return c
}

// NewFromConfig builds a client from the backend section of the configuration.
func NewFromConfig(cfg config.BackendConfig, logger *zap.Logger) *Client {
	return NewClient(cfg.BaseURL,
		WithLogger(logger),
		WithTimeouts(cfg.Timeout, cfg.RunTimeout),
		WithHTTPClient(network.NewClient(network.NewDefaultClientConfig(logger))),
	)
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health succeeds iff the liveness endpoint answers 2xx.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/api/health", nil, c.timeout, nil)
}

// ListInvestigations returns every investigation summary in backend order.
func (c *Client) ListInvestigations(ctx context.Context) ([]Investigation, error) {
	var out []Investigation
	if err := c.do(ctx, "list", http.MethodGet, "/api/investigations", nil, c.timeout, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInvestigation registers a new investigation. The caller is expected to
// have trimmed and validated username already.
func (c *Client) CreateInvestigation(ctx context.Context, username string) (*Investigation, error) {
	body := map[string]string{"username": username}
	var out Investigation
	if err := c.do(ctx, "create", http.MethodPost, "/api/investigations", body, c.timeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunInvestigation triggers the scan-and-analyze pipeline and blocks until the
// backend responds. The response body is ignored.
func (c *Client) RunInvestigation(ctx context.Context, id int64) error {
	return c.do(ctx, "run", http.MethodPost, "/api/investigate/"+strconv.FormatInt(id, 10), nil, c.runTimeout, nil)
}

// GetInvestigation fetches the investigation with its findings and graph.
func (c *Client) GetInvestigation(ctx context.Context, id int64) (*Detail, error) {
	var out Detail
	if err := c.do(ctx, "get", http.MethodGet, investigationPath(id), nil, c.timeout, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInvestigation removes the investigation server-side.
func (c *Client) DeleteInvestigation(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, investigationPath(id), nil, c.timeout, nil)
}

func investigationPath(id int64) string {
	return "/api/investigations/" + strconv.FormatInt(id, 10)
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body any, timeout time.Duration, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	requestID := uuid.NewString()
	logger := c.logger.With(
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Message: fmt.Sprintf("encode %s request: %v", op, err), Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("Request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return &Error{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	logger.Debug("Response received",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		// An unparsable body simply falls through to the status fallback.
		_ = json.Unmarshal(data, &eb)
		return &Error{Op: op, Status: resp.StatusCode, Message: statusMessage(resp.StatusCode, eb.Error)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{
			Op:      op,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("decode %s response: %v", op, err),
			Err:     err,
		}
	}
	return nil
}
