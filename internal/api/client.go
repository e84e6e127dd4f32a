// Package api provides typed HTTP clients for the canteen backend's
// menu and order REST endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Client is the shared HTTP layer under MenuService and OrderService.
// Requests are traced via otelhttp and tagged with a request id.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// Error is a non-2xx response from the backend, carrying the server's
// message when it sent one.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// errorBody matches the backend's error payload shape.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do issues one request and decodes the JSON response into out when
// out is non-nil. Transport failures and non-2xx statuses are both
// terminal for the operation; there are no retries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.log.Debug("api request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("network error, please check your connection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.asError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) asError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
		if eb.Message != "" {
			apiErr.Message = eb.Message
		} else if eb.Error != "" {
			apiErr.Message = eb.Error
		}
	}

	c.log.Debug("api error response",
		zap.Int("status", resp.StatusCode),
		zap.String("message", apiErr.Message))
	return apiErr
}
