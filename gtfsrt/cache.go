package gtfsrt

import (
	"context"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/theoremus-urban-solutions/busboard/metrics"
)

// Feed identifies one upstream feed and how long its decoded snapshot may be reused.
type Feed struct {
	Name string
	URL  string
	TTL  time.Duration
}

// SnapshotLoader is satisfied by FeedCache.
type SnapshotLoader interface {
	Load(ctx context.Context, feed Feed) (*Snapshot, error)
}

// FeedCache holds decoded snapshots keyed by feed URL. Concurrent misses for
// the same URL share a single fetch.
type FeedCache struct {
	fetcher Fetcher
	cache   gcache.Cache
	group   singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Collector
}

const feedCacheSize = 16

// NewFeedCache creates a cache in front of fetcher. logger and m may be nil.
func NewFeedCache(fetcher Fetcher, logger *zap.Logger, m *metrics.Collector) *FeedCache {
	return newFeedCache(fetcher, logger, m, gcache.NewRealClock())
}

func newFeedCache(fetcher Fetcher, logger *zap.Logger, m *metrics.Collector, clock gcache.Clock) *FeedCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedCache{
		fetcher: fetcher,
		cache:   gcache.New(feedCacheSize).LRU().Clock(clock).Build(),
		logger:  logger,
		metrics: m,
	}
}

// Load returns the snapshot for feed, fetching and decoding it when the cached
// copy is missing or older than feed.TTL. A zero TTL always fetches.
// Cancelling ctx abandons the wait but not a fetch other callers share.
func (fc *FeedCache) Load(ctx context.Context, feed Feed) (*Snapshot, error) {
	if feed.TTL > 0 {
		if v, err := fc.cache.Get(feed.URL); err == nil {
			fc.metrics.CacheHit(feed.Name)
			return v.(*Snapshot), nil
		}
		fc.metrics.CacheMiss(feed.Name)
	}

	// The shared fetch outlives any single caller; http.Client.Timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := fc.group.DoChan(feed.URL, func() (interface{}, error) {
		if feed.TTL > 0 {
			// A concurrent caller may have stored it since our miss.
			if v, err := fc.cache.Get(feed.URL); err == nil {
				return v, nil
			}
		}
		return fc.refresh(fetchCtx, feed)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch: %w", &FetchError{URL: feed.URL, Err: ctx.Err()})
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			fc.logger.Debug("shared in-flight feed fetch", zap.String("feed", feed.Name))
		}
		return res.Val.(*Snapshot), nil
	}
}

func (fc *FeedCache) refresh(ctx context.Context, feed Feed) (*Snapshot, error) {
	start := time.Now()
	snap, err := fc.fetchAndDecode(ctx, feed.URL)
	fc.metrics.ObserveUpstream(feed.Name, start, err)
	if err != nil {
		fc.logger.Warn("feed refresh failed",
			zap.String("feed", feed.Name),
			zap.String("url", feed.URL),
			zap.Error(err))
		return nil, err
	}

	fc.logger.Debug("feed refreshed",
		zap.String("feed", feed.Name),
		zap.Int("entities", len(snap.Entities)),
		zap.Duration("took", time.Since(start)))

	if feed.TTL > 0 {
		if err := fc.cache.SetWithExpire(feed.URL, snap, feed.TTL); err != nil {
			fc.logger.Warn("failed to cache snapshot", zap.String("feed", feed.Name), zap.Error(err))
		}
	}
	return snap, nil
}

func (fc *FeedCache) fetchAndDecode(ctx context.Context, url string) (*Snapshot, error) {
	body, err := fc.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	snap, err := Decode(url, body)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return snap, nil
}
