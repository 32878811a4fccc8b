package gtfsrt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves the raw bytes of a feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client is an HTTP client for fetching GTFS-RT protobuf data from endpoints
// protected by a subscription-key header.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	apiKeyHeader string
}

// NewClient creates a new GTFS-RT HTTP client. Every request is bounded by timeout.
func NewClient(apiKey, apiKeyHeader string, timeout time.Duration) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		apiKey:       apiKey,
		apiKeyHeader: apiKeyHeader,
	}
}

// Fetch fetches a single GTFS-RT feed and returns raw protobuf bytes.
// Every failure, including an expired timeout, is a *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, &FetchError{Err: errors.New("no feed URL configured")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if c.apiKey != "" && c.apiKeyHeader != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}
	req.Header.Set("Accept", "application/x-protobuf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}
