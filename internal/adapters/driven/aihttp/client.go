package aihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client sends JSON requests to a single provider API.
// It is safe for concurrent use once configured.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	header   http.Header
}

// NewClient creates a client for provider rooted at baseURL.
func NewClient(provider, baseURL string, timeout time.Duration) *Client {
	return &Client{
		provider: provider,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		header:   make(http.Header),
	}
}

// WithHeader adds a header sent on every request. Empty values are skipped.
func (c *Client) WithHeader(key, value string) *Client {
	if value != "" {
		c.header.Set(key, value)
	}
	return c
}

// WithBearer authenticates every request with key, if set.
func (c *Client) WithBearer(key string) *Client {
	if key == "" {
		return c
	}
	return c.WithHeader("Authorization", "Bearer "+key)
}

// Provider returns the provider name used in error messages.
func (c *Client) Provider() string {
	return c.provider
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON posts in to path and decodes a 200 response into out.
// Every failure wraps sentinel; see StatusError for non-200 responses.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any, sentinel error) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req, sentinel)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w: %w", c.provider, sentinel, err)
	}
	return nil
}

// Probe issues a GET to path and reports anything but 200 as sentinel.
// Providers use it for cheap reachability and credential checks.
func (c *Client) Probe(ctx context.Context, path string, sentinel error) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return err
	}
	_, err = c.do(req, sentinel)
	return err
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for key, values := range c.header {
		req.Header[key] = values
	}
	return req, nil
}

func (c *Client) do(req *http.Request, sentinel error) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, TransportError(c.provider, err, sentinel)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w: %w", c.provider, sentinel, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, StatusError(c.provider, resp.StatusCode, body, sentinel)
	}
	return body, nil
}
