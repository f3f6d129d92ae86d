// Package rest implements the JSON HTTP client shared by the carrier
// adapters. It executes one request at a time and knows nothing about
// carriers or authentication.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emxanuel/cybership-test/pkg/carrier"
)

const defaultTimeout = 30 * time.Second

// Client executes HTTP requests against a carrier API base URL.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	defaultHeaders map[string]string
}

// Config holds configuration for the client.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
}

// NewClient creates a new REST client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	headers := make(map[string]string, len(cfg.DefaultHeaders))
	for k, v := range cfg.DefaultHeaders {
		headers[k] = v
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		defaultHeaders: headers,
	}
}

// Response holds a decoded 2xx response body.
type Response struct {
	StatusCode int
	Raw        json.RawMessage
}

// NoContent reports whether the response carried an empty body.
func (r *Response) NoContent() bool {
	return len(r.Raw) == 0
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if r.NoContent() {
		return fmt.Errorf("decode response: no content")
	}
	return json.Unmarshal(r.Raw, v)
}

// Do executes one HTTP request. The path is resolved against the base
// URL; absolute URLs pass through unchanged. Per-call headers win over
// default headers on conflict. A string body is sent verbatim; any
// other non-nil body is JSON-encoded with a JSON content type unless
// one was already set. Non-2xx statuses and undecodable 2xx bodies
// surface as *carrier.TransportError, never as a raw failure.
func (c *Client) Do(ctx context.Context, method, path string, headers map[string]string, body any) (*Response, error) {
	var bodyReader io.Reader
	jsonBody := false
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
		jsonBody = true
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if jsonBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &carrier.TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &Response{StatusCode: resp.StatusCode}, nil
	}
	if !json.Valid(raw) {
		return nil, &carrier.TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
			Malformed:  true,
		}
	}

	return &Response{StatusCode: resp.StatusCode, Raw: json.RawMessage(raw)}, nil
}

func (c *Client) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
