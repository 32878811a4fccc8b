package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/theoremus-urban-solutions/busboard/gtfsrt"
)

// fetcher reads GTFS-RT payloads from URLs or local files.
// HTTP sources go through the service client so the subscription key is sent.
type fetcher struct {
	client *gtfsrt.Client
}

func newFetcher(client *gtfsrt.Client) *fetcher {
	return &fetcher{client: client}
}

// Fetch implements gtfsrt.Fetcher. Anything that is not an http(s) URL is
// treated as a file path; a file:// prefix is stripped.
func (f *fetcher) Fetch(ctx context.Context, urlOrPath string) ([]byte, error) {
	if strings.HasPrefix(urlOrPath, "http://") || strings.HasPrefix(urlOrPath, "https://") {
		return f.client.Fetch(ctx, urlOrPath)
	}

	path := strings.TrimPrefix(urlOrPath, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &gtfsrt.FetchError{URL: urlOrPath, Err: fmt.Errorf("read file: %w", err)}
	}
	return data, nil
}
