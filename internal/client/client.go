package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cartable/internal/domain"
	"cartable/internal/metrics"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the pedagogy API origin used when none is configured
	DefaultBaseURL = "http://localhost:10000"
	// APIPrefix is the versioned base path every endpoint lives under
	APIPrefix = "/api/v1"
	// DefaultTimeout bounds a single upstream request
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error body is kept in TransportError
	maxErrorBody = 512
)

// Client talks to the pedagogy REST API.
// It holds no credentials: every authenticated call receives the bearer token
// explicitly, so one Client can serve many users.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for baseURL. A zero timeout disables the per-request deadline.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, logger)
}

// NewWithHTTPClient creates a client around a caller-provided *http.Client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(baseURL, APIPrefix) {
		baseURL += APIPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the resolved API root, including the version prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one upstream call.
type request struct {
	op          string // metrics/log label
	method      string
	path        string
	token       string
	anonymous   bool // true for endpoints that run before login
	body        io.Reader
	contentType string
}

// do executes req and returns the raw body of a 2xx answer.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	if !req.anonymous && req.token == "" {
		metrics.ObserveUpstream(req.op, metrics.OutcomeUnauth, 0)
		return nil, domain.ErrUnauthenticated
	}

	opLabel := req.method + " " + req.path
	started := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.ObserveUpstream(req.op, metrics.OutcomeTransport, time.Since(started).Seconds())
		c.logger.Warn("upstream request failed",
			"op", req.op,
			"request_id", requestID,
			"error", err,
		)
		return nil, &domain.TransportError{Op: opLabel, Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveUpstream(req.op, metrics.OutcomeTransport, time.Since(started).Seconds())
		return nil, &domain.TransportError{Op: opLabel, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("upstream response",
		"op", req.op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ObserveUpstream(req.op, metrics.OutcomeTransport, time.Since(started).Seconds())
		return nil, &domain.TransportError{
			Op:     opLabel,
			Status: resp.StatusCode,
			Body:   truncate(strings.TrimSpace(string(body)), maxErrorBody),
		}
	}

	metrics.ObserveUpstream(req.op, metrics.OutcomeOK, time.Since(started).Seconds())
	return body, nil
}

// doJSON sends in (if non-nil) as JSON and decodes the answer into out (if non-nil).
func (c *Client) doJSON(ctx context.Context, op, method, path, token string, in, out interface{}) error {
	req := request{op: op, method: method, path: path, token: token}
	if in != nil {
		payload, err := jsonBody(in)
		if err != nil {
			return err
		}
		req.body = payload
		req.contentType = "application/json"
	}

	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	return decodeObject(req.method+" "+req.path, body, out)
}

// getList fetches path and decodes a JSON array into out.
func (c *Client) getList(ctx context.Context, op, path, token string, out interface{}) error {
	body, err := c.do(ctx, request{op: op, method: http.MethodGet, path: path, token: token})
	if err != nil {
		return err
	}
	return decodeList(http.MethodGet+" "+path, body, out)
}

func jsonBody(in interface{}) (io.Reader, error) {
	if in == nil {
		return nil, nil
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(payload), nil
}

func decodeObject(op string, body []byte, out interface{}) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.FormatError{Op: op, Err: err}
	}
	return nil
}

// decodeList checks the body is a JSON array before decoding, so a
// wrong-shaped answer is reported as such rather than as a type mismatch.
func decodeList(op string, body []byte, out interface{}) error {
	if !gjson.ValidBytes(body) {
		return &domain.FormatError{Op: op, Err: errors.New("body is not valid JSON")}
	}
	if parsed := gjson.ParseBytes(body); !parsed.IsArray() {
		return &domain.FormatError{Op: op, Err: fmt.Errorf("expected a JSON array, got %s", parsed.Type)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.FormatError{Op: op, Err: err}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
