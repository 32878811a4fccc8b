package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	reg *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec   // feed, outcome
	UpstreamDuration *prometheus.HistogramVec // feed
	CacheLookups     *prometheus.CounterVec   // cache, result
	HTTPRequests     *prometheus.CounterVec   // route, status
	StopErrors       *prometheus.CounterVec   // kind
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busboard_upstream_requests_total",
			Help: "Upstream requests by feed and outcome.",
		}, []string{"feed", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "busboard_upstream_duration_seconds",
			Help:    "Duration of upstream requests.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"feed"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busboard_cache_lookups_total",
			Help: "Cache lookups by cache name and result.",
		}, []string{"cache", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busboard_http_requests_total",
			Help: "Served HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		StopErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busboard_stop_errors_total",
			Help: "Degraded per-stop arrival results by error kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.UpstreamRequests, c.UpstreamDuration,
		c.CacheLookups, c.HTTPRequests, c.StopErrors,
		collectors.NewGoCollector(),
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// ObserveUpstream records one upstream call.
func (c *Collector) ObserveUpstream(feed string, start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.UpstreamRequests.WithLabelValues(feed, outcome).Inc()
	c.UpstreamDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
}

func (c *Collector) CacheHit(cache string) {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (c *Collector) CacheMiss(cache string) {
	if c == nil {
		return
	}
	c.CacheLookups.WithLabelValues(cache, "miss").Inc()
}

func (c *Collector) ObserveHTTP(route string, status int) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (c *Collector) StopError(kind string) {
	if c == nil {
		return
	}
	c.StopErrors.WithLabelValues(kind).Inc()
}
