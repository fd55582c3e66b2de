// Package rest implements a small generic HTTP/JSON client and a PostgREST
// table wrapper on top of it.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client performs JSON requests against a single base URL. Per-instance
// headers are merged over the default Content-Type header on every request.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	headers map[string]string
}

// RequestError is returned for any failed request: transport errors,
// non-success statuses and undecodable responses all surface through it.
type RequestError struct {
	Method     string
	Endpoint   string
	StatusCode int // 0 when the request never produced a response
	Message    string
	Err        error // underlying cause, if any
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// New creates a client for the given base URL. The headers map is copied.
func New(baseURL string, headers map[string]string) *Client {
	c := &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string, len(headers)),
	}
	for k, v := range headers {
		c.headers[k] = v
	}
	return c
}

// SetHeaders shallow-merges the given headers into the client's header set.
// Later calls override same-named headers; others persist.
func (c *Client) SetHeaders(headers map[string]string) {
	for k, v := range headers {
		c.headers[k] = v
	}
}

// Request performs a single attempt at method endpoint. A 204 response
// yields (nil, nil) — "no value", distinct from any decoded JSON. Every
// failure is logged with the method and endpoint before it propagates; there
// are no retries.
func (c *Client) Request(ctx context.Context, endpoint, method string, body any) (json.RawMessage, error) {
	url := c.BaseURL + endpoint

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, c.fail(method, endpoint, 0, "failed to marshal request body", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, c.fail(method, endpoint, 0, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.fail(method, endpoint, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(method, endpoint, resp.StatusCode, "failed to read response body", err)
	}

	var data json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, c.fail(method, endpoint, resp.StatusCode, "failed to decode response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(method, endpoint, resp.StatusCode, errorMessage(data), nil)
	}

	return data, nil
}

func (c *Client) Get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.Request(ctx, endpoint, http.MethodGet, nil)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.Request(ctx, endpoint, http.MethodPost, body)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.Request(ctx, endpoint, http.MethodPut, body)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	return c.Request(ctx, endpoint, http.MethodPatch, body)
}

func (c *Client) Delete(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return c.Request(ctx, endpoint, http.MethodDelete, nil)
}

func (c *Client) fail(method, endpoint string, status int, message string, cause error) error {
	reqErr := &RequestError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    message,
		Err:        cause,
	}
	slog.Error("api request failed",
		"method", method,
		"endpoint", endpoint,
		"status", status,
		"error", reqErr.Message,
		"cause", cause,
	)
	return reqErr
}

// errorMessage extracts a human-readable message from an error response
// body: the "message" field, then "error", then a generic fallback.
func errorMessage(data json.RawMessage) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return "API request failed"
}
