package dummyjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nhle/todolist/internal/source"
)

// sourceName identifies this source in errors and logs.
const sourceName = "dummyjson"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Client is a thin HTTP client for a dummyjson-style JSON endpoint.
// It performs exactly one request per call: no retries, no caching.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint URL. A non-positive
// timeout falls back to 30 seconds.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the URL the client fetches.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Get performs an HTTP GET on the endpoint and unmarshals the JSON
// response into result. Failures are returned as *source.FetchError.
func (c *Client) Get(ctx context.Context, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return source.NewFetchError(sourceName, source.ErrNetwork,
			fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return source.NewFetchError(sourceName, source.ErrNetwork,
			fmt.Errorf("executing request GET %s: %w", c.endpoint, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return source.NewFetchError(sourceName, source.ErrNetwork,
			fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return source.NewFetchError(sourceName, source.ErrInvalidResponse,
			fmt.Errorf("unexpected status %d on GET %s: %s",
				resp.StatusCode, c.endpoint, snippet(body)))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return source.NewFetchError(sourceName, source.ErrInvalidResponse,
			errors.New("empty response body"))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return source.NewFetchError(sourceName, source.ErrDecode,
			fmt.Errorf("unmarshaling response from GET %s: %w", c.endpoint, err))
	}

	return nil
}

// snippet shortens a response body for inclusion in an error message.
func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
