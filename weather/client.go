// Package weather fetches forecasts from a WeatherAPI-compatible endpoint and
// passes the JSON document through unchanged.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/busboard/metrics"
)

const cacheName = "weather"

// Client fetches forecasts and keeps successful responses for a TTL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	ttl        time.Duration
	cache      gcache.Cache
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
	Logger   *zap.Logger
	Metrics  *metrics.Collector
}

// NewClient creates a forecast client. A zero CacheTTL disables caching.
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		ttl:        opts.CacheTTL,
		cache:      gcache.New(32).LRU().Build(),
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
}

// FetchForecast returns the forecast document for location over days, or nil
// if it could not be retrieved. Failures are logged, not returned.
func (c *Client) FetchForecast(ctx context.Context, location string, days int) json.RawMessage {
	key := location + "|" + strconv.Itoa(days)
	if c.ttl > 0 {
		if v, err := c.cache.Get(key); err == nil {
			c.metrics.CacheHit(cacheName)
			return v.(json.RawMessage)
		}
		c.metrics.CacheMiss(cacheName)
	}

	start := time.Now()
	body, err := c.fetch(ctx, location, days)
	c.metrics.ObserveUpstream(cacheName, start, err)
	if err != nil {
		c.logger.Error("failed to fetch weather",
			zap.String("location", location),
			zap.Int("days", days),
			zap.Error(err))
		return nil
	}

	if c.ttl > 0 {
		_ = c.cache.SetWithExpire(key, body, c.ttl)
	}
	return body
}

func (c *Client) fetch(ctx context.Context, location string, days int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", location)
	q.Set("days", strconv.Itoa(days))
	q.Set("aqi", "no")
	q.Set("alerts", "no")
	endpoint := c.baseURL + "/forecast.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error repeats the request URL, which carries the API key.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("failed to fetch forecast from %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from forecast endpoint", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read forecast: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("forecast response is not valid JSON")
	}
	return json.RawMessage(body), nil
}
